package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mhhmod/tes3/internal/domain"
	"github.com/mhhmod/tes3/internal/service"
	"github.com/mhhmod/tes3/internal/storefront"
	"github.com/mhhmod/tes3/pkg/middleware"
	"go.uber.org/zap"
)

// respondError maps domain failures onto HTTP statuses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	requestID := c.GetString(middleware.RequestIDKey)

	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "validation failed",
			"fields":     verrs,
			"request_id": requestID,
		})
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "request_id": requestID})
	case errors.Is(err, domain.ErrUnknownVariant),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, storefront.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": requestID})
	case errors.Is(err, service.ErrDeliveryFailed):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "Delivery failed. Please try again.",
			"request_id": requestID,
		})
	default:
		logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "internal error",
			"request_id": requestID,
		})
	}
}

func bindError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("Invalid request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      "Invalid request format",
		"details":    err.Error(),
		"request_id": c.GetString(middleware.RequestIDKey),
	})
}
