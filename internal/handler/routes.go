package handler

import "github.com/gin-gonic/gin"

// Handlers groups every endpoint mounted under the API prefix.
type Handlers struct {
	Store    *StoreHandler
	Orders   *OrderHandler
	Requests *RequestHandler
	Live     *LiveHandler
}

func (h Handlers) Register(api *gin.RouterGroup) {
	api.GET("/products", h.Store.ListProducts)
	api.GET("/products/:id", h.Store.GetProduct)

	api.GET("/cart", h.Store.GetCart)
	api.POST("/cart", h.Store.AddLine)
	api.PATCH("/cart/:id", h.Store.UpdateLine)
	api.DELETE("/cart/:id", h.Store.RemoveLine)
	api.DELETE("/cart", h.Store.ClearCart)

	api.GET("/wishlist", h.Store.GetWishlist)
	api.POST("/wishlist/:productId/toggle", h.Store.ToggleWishlist)

	api.POST("/orders", h.Orders.CreateOrder)
	api.GET("/orders", h.Orders.ListOrders)
	api.GET("/orders/export", h.Orders.ExportOrders)
	api.GET("/orders/:id", h.Orders.GetOrder)

	api.POST("/returns", h.Requests.SubmitReturn)
	api.POST("/exchanges", h.Requests.SubmitExchange)
	api.GET("/exchanges/options", h.Requests.ExchangeOptions)

	api.GET("/ws", h.Live.Stream)
	api.GET("/health", h.Live.Health)
}
