package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mhhmod/tes3/internal/domain"
	"github.com/mhhmod/tes3/internal/export"
	"github.com/mhhmod/tes3/internal/service"
	"github.com/mhhmod/tes3/internal/storefront"
	"github.com/mhhmod/tes3/pkg/middleware"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService *service.OrderService
	sessions     *storefront.Registry
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, sessions *storefront.Registry, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		sessions:     sessions,
		logger:       logger,
	}
}

type createOrderResponse struct {
	Order      domain.Order `json:"order"`
	MethodUsed string       `json:"methodUsed"`
	Message    string       `json:"message"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req domain.ShippingInfo

	// Request binding
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}

	// Request ID from middleware
	requestID := c.GetString(middleware.RequestIDKey)

	order, result, err := h.orderService.PlaceOrder(c.Request.Context(), session(c, h.sessions), req, requestID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, createOrderResponse{
		Order:      order,
		MethodUsed: result.Method,
		Message:    fmt.Sprintf("Order placed successfully! Order ID: %s", order.ID),
	})
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, session(c, h.sessions).Orders(c.Request.Context()))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := session(c, h.sessions).Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ExportOrders streams the session's order history as a spreadsheet.
func (h *OrderHandler) ExportOrders(c *gin.Context) {
	orders := session(c, h.sessions).Orders(c.Request.Context())

	c.Header("Content-Disposition", `attachment; filename="grindctrl-orders.xlsx"`)
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if err := export.WriteOrdersXLSX(c.Writer, orders, h.orderService.Currency()); err != nil {
		h.logger.Error("Failed to export orders",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err))
	}
}
