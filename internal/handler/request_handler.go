package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mhhmod/tes3/internal/domain"
	"github.com/mhhmod/tes3/internal/service"
	"github.com/mhhmod/tes3/internal/storefront"
	"github.com/mhhmod/tes3/pkg/middleware"
	"go.uber.org/zap"
)

// RequestHandler accepts return and exchange requests for placed orders.
type RequestHandler struct {
	requests *service.RequestService
	sessions *storefront.Registry
	logger   *zap.Logger
}

func NewRequestHandler(requests *service.RequestService, sessions *storefront.Registry, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{
		requests: requests,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *RequestHandler) SubmitReturn(c *gin.Context) {
	var req domain.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}

	result, err := h.requests.SubmitReturn(c.Request.Context(), session(c, h.sessions), req, c.GetString(middleware.RequestIDKey))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"success":    true,
		"methodUsed": result.Method,
		"message":    "Return request submitted successfully",
	})
}

func (h *RequestHandler) SubmitExchange(c *gin.Context) {
	var req domain.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}

	result, err := h.requests.SubmitExchange(c.Request.Context(), session(c, h.sessions), req, c.GetString(middleware.RequestIDKey))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"success":    true,
		"methodUsed": result.Method,
		"note":       h.requests.ExchangeNote(req.Normalize()),
		"message":    "Exchange request submitted successfully",
	})
}

func (h *RequestHandler) ExchangeOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.requests.ExchangeOptions())
}
