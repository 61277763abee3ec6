package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mhhmod/tes3/internal/events"
	"github.com/mhhmod/tes3/internal/notify"
	"github.com/mhhmod/tes3/internal/storefront"
	"github.com/mhhmod/tes3/pkg/middleware"
	"go.uber.org/zap"
)

// Frame types exchanged over the live connection.
const (
	FrameCartChanged     = "cart.changed"
	FrameWishlistChanged = "wishlist.changed"
	FrameOrdersChanged   = "orders.changed"
	FrameToastShow       = "toast.show"
	FrameToastHide       = "toast.hide"

	FrameToastPause   = "toast.pause"
	FrameToastResume  = "toast.resume"
	FrameToastDismiss = "toast.dismiss"
)

// LiveHandler pushes session changes and toasts to websocket clients and
// serves the health probe.
type LiveHandler struct {
	hub       *events.Hub
	sessions  *storefront.Registry
	publisher events.Publisher
	logger    *zap.Logger
}

func NewLiveHandler(hub *events.Hub, sessions *storefront.Registry, publisher events.Publisher, logger *zap.Logger) *LiveHandler {
	h := &LiveHandler{
		hub:       hub,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
	}
	sessions.Subscribe(h.forwardChange)
	sessions.OnToast(h.forwardToast)
	return h
}

func (h *LiveHandler) forwardChange(ch storefront.Change) {
	var typ string
	switch ch.Kind {
	case storefront.ChangeCart:
		typ = FrameCartChanged
	case storefront.ChangeWishlist:
		typ = FrameWishlistChanged
	case storefront.ChangeOrders:
		typ = FrameOrdersChanged
	default:
		return
	}
	msg, _ := events.NewMessage(typ, nil)
	h.hub.Publish(ch.SessionID, msg)
}

func (h *LiveHandler) forwardToast(sessionID string, ev notify.Event) {
	typ := FrameToastShow
	if ev.Type == notify.EventHide {
		typ = FrameToastHide
	}
	msg, err := events.NewMessage(typ, ev)
	if err != nil {
		h.logger.Warn("Failed to encode toast", zap.Error(err))
		return
	}
	h.hub.Publish(sessionID, msg)
}

// Stream upgrades to a websocket. Clients may pause, resume or dismiss the
// toast on screen, mirroring hover and the close button. Each frame reopens
// the session so a long-lived socket keeps it alive and always reaches the
// current owner.
func (h *LiveHandler) Stream(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)
	err := h.hub.Serve(c.Writer, c.Request, sessionID, func(msg events.Message) {
		s := h.sessions.Open(sessionID)
		switch msg.Type {
		case FrameToastPause:
			s.Toasts().Pause()
		case FrameToastResume:
			s.Toasts().Resume()
		case FrameToastDismiss:
			s.Toasts().Hide()
		default:
			h.logger.Debug("Ignoring frame", zap.String("type", msg.Type))
		}
	})
	if err != nil {
		h.logger.Warn("Websocket upgrade failed",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err))
	}
}

func (h *LiveHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	kafka := "healthy"
	if err := h.publisher.HealthCheck(ctx); err != nil {
		h.logger.Warn("Kafka health check failed", zap.Error(err))
		status = http.StatusServiceUnavailable
		kafka = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"service":  "grindctrl-storefront",
		"kafka":    kafka,
		"sessions": h.sessions.Len(),
	})
}
