package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mhhmod/tes3/internal/catalog"
	"github.com/mhhmod/tes3/internal/storefront"
	"github.com/mhhmod/tes3/pkg/middleware"
	"go.uber.org/zap"
)

// StoreHandler serves the catalog and the session's cart and wishlist.
type StoreHandler struct {
	catalog  *catalog.Catalog
	sessions *storefront.Registry
	logger   *zap.Logger
}

func NewStoreHandler(cat *catalog.Catalog, sessions *storefront.Registry, logger *zap.Logger) *StoreHandler {
	return &StoreHandler{
		catalog:  cat,
		sessions: sessions,
		logger:   logger,
	}
}

func session(c *gin.Context, sessions *storefront.Registry) *storefront.Session {
	return sessions.Open(c.GetString(middleware.SessionIDKey))
}

func (h *StoreHandler) ListProducts(c *gin.Context) {
	category := c.Query("category")
	if featured, _ := strconv.ParseBool(c.Query("featured")); featured {
		c.JSON(http.StatusOK, h.catalog.Featured(category))
		return
	}
	c.JSON(http.StatusOK, h.catalog.ByCategory(category))
}

func (h *StoreHandler) GetProduct(c *gin.Context) {
	p, err := h.catalog.Product(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *StoreHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, session(c, h.sessions).Cart(c.Request.Context()))
}

type addLineRequest struct {
	ProductID     string `json:"productId" binding:"required"`
	Quantity      *int   `json:"quantity"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
}

func (h *StoreHandler) AddLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	line, err := session(c, h.sessions).AddLine(c.Request.Context(), req.ProductID, quantity, req.SelectedSize, req.SelectedColor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

type updateLineRequest struct {
	Quantity *int `json:"quantity"`
	Delta    *int `json:"delta"`
}

// UpdateLine sets an absolute quantity or applies a delta. A line that
// drops to zero is removed and answered with 204.
func (h *StoreHandler) UpdateLine(c *gin.Context) {
	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}
	ctx := c.Request.Context()
	s := session(c, h.sessions)
	lineID := c.Param("id")

	var (
		quantity int
		err      error
	)
	switch {
	case req.Quantity != nil:
		var removed bool
		removed, err = s.SetLineQuantity(ctx, lineID, *req.Quantity)
		if !removed {
			quantity = *req.Quantity
		}
	case req.Delta != nil:
		quantity, err = s.ChangeLineQuantity(ctx, lineID, *req.Delta)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity or delta is required"})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if quantity == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": lineID, "quantity": quantity})
}

func (h *StoreHandler) RemoveLine(c *gin.Context) {
	if err := session(c, h.sessions).RemoveLine(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoreHandler) ClearCart(c *gin.Context) {
	if err := session(c, h.sessions).ClearCart(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoreHandler) GetWishlist(c *gin.Context) {
	c.JSON(http.StatusOK, session(c, h.sessions).Wishlist(c.Request.Context()))
}

func (h *StoreHandler) ToggleWishlist(c *gin.Context) {
	added, err := session(c, h.sessions).ToggleWishlist(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}
