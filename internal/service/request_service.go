package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mhhmod/tes3/internal/domain"
	"github.com/mhhmod/tes3/internal/events"
	"github.com/mhhmod/tes3/internal/notify"
	"github.com/mhhmod/tes3/internal/storefront"
	"github.com/mhhmod/tes3/internal/webhook"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductLister lists the catalog for exchange choices.
type ProductLister interface {
	Products() []domain.Product
}

// ExchangeOption is one product size a customer can exchange into.
type ExchangeOption struct {
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
}

// RequestService handles return and exchange requests for placed orders.
type RequestService struct {
	products  ProductLister
	delivery  webhook.Deliverer
	publisher events.Publisher
	clock     clockwork.Clock
	logger    *zap.Logger
	currency  string
}

func NewRequestService(products ProductLister, delivery webhook.Deliverer, publisher events.Publisher, clock clockwork.Clock, logger *zap.Logger, currency string) *RequestService {
	if currency == "" {
		currency = "EGP"
	}
	return &RequestService{
		products:  products,
		delivery:  delivery,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		currency:  currency,
	}
}

func (s *RequestService) SubmitReturn(ctx context.Context, session *storefront.Session, req domain.ReturnRequest, requestID string) (webhook.Result, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return webhook.Result{}, err
	}

	note := "Reason: " + req.Reason
	return s.submit(ctx, session, webhook.KindReturn, events.TypeReturnRequested, req.OrderID, req.Phone, note, requestID)
}

func (s *RequestService) SubmitExchange(ctx context.Context, session *storefront.Session, req domain.ExchangeRequest, requestID string) (webhook.Result, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return webhook.Result{}, err
	}

	return s.submit(ctx, session, webhook.KindExchange, events.TypeExchangeRequested, req.OrderID, req.Phone, s.ExchangeNote(req), requestID)
}

// ExchangeNote renders the single human-readable line that carries the
// whole exchange, e.g.
// "Exchange | Old: [1-M – Tee – 300.00 EGP] | New: [...] | Delta: +50.00 EGP | Comment: None".
func (s *RequestService) ExchangeNote(req domain.ExchangeRequest) string {
	delta := req.Delta()
	deltaText := delta.StringFixed(2)
	if !delta.IsNegative() {
		deltaText = "+" + deltaText
	}
	comment := req.Comment
	if comment == "" {
		comment = "None"
	}
	return fmt.Sprintf("Exchange | Old: [%s – %s – %s %s] | New: [%s – %s – %s %s] | Delta: %s %s | Comment: %s",
		req.OldItem.SKU, req.OldItem.Name, req.OldItem.Price.StringFixed(2), s.currency,
		req.NewItem.SKU, req.NewItem.Name, req.NewItem.Price.StringFixed(2), s.currency,
		deltaText, s.currency,
		comment)
}

// ExchangeOptions lists every size of every catalog product.
func (s *RequestService) ExchangeOptions() []ExchangeOption {
	var out []ExchangeOption
	for _, p := range s.products.Products() {
		for _, size := range p.Sizes {
			out = append(out, ExchangeOption{
				SKU:   domain.SKU(p.ID, size),
				Name:  p.Name,
				Size:  size,
				Price: p.Price,
			})
		}
	}
	return out
}

func (s *RequestService) submit(ctx context.Context, session *storefront.Session, kind webhook.Kind, eventType, orderID, phone, note, requestID string) (webhook.Result, error) {
	now := s.clock.Now()
	payload := webhook.Payload(domain.RequestFields(string(kind), orderID, phone, note, now))

	result := s.delivery.Deliver(ctx, kind, payload)
	if !result.Success {
		s.logger.Error("Request delivery failed",
			zap.String("kind", string(kind)),
			zap.String("order_id", orderID),
			zap.String("request_id", requestID))
		session.Toasts().Show(fmt.Sprintf("Failed to submit %s request. Please try again.", kind), notify.KindError, 0)
		return result, ErrDeliveryFailed
	}

	event := events.RequestSubmittedEvent{
		EventID:        uuid.New().String(),
		EventType:      eventType,
		OrderID:        orderID,
		SessionID:      session.ID(),
		Note:           note,
		DeliveryMethod: result.Method,
		Timestamp:      now.UTC(),
		RequestID:      requestID,
	}
	if err := s.publisher.Publish(ctx, orderID, event); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("order_id", orderID),
			zap.Error(err))
	}

	kindLabel := "Return"
	if kind == webhook.KindExchange {
		kindLabel = "Exchange"
	}
	session.Toasts().Show(kindLabel+" request submitted successfully", notify.KindSuccess, 0)

	s.logger.Info("Request submitted",
		zap.String("kind", string(kind)),
		zap.String("order_id", orderID),
		zap.String("delivery_method", result.Method))
	return result, nil
}
