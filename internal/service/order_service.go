package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mhhmod/tes3/internal/domain"
	"github.com/mhhmod/tes3/internal/events"
	"github.com/mhhmod/tes3/internal/mailer"
	"github.com/mhhmod/tes3/internal/notify"
	"github.com/mhhmod/tes3/internal/storefront"
	"github.com/mhhmod/tes3/internal/webhook"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrDeliveryFailed means every webhook strategy was exhausted. Nothing was
// committed and the caller should ask the customer to try again.
var ErrDeliveryFailed = errors.New("delivery failed")

type Settings struct {
	Courier  string
	Currency string
}

type OrderService struct {
	products  storefront.ProductSource
	delivery  webhook.Deliverer
	publisher events.Publisher
	mailer    mailer.Mailer
	clock     clockwork.Clock
	logger    *zap.Logger
	courier   string
	currency  string
}

func NewOrderService(
	products storefront.ProductSource,
	delivery webhook.Deliverer,
	publisher events.Publisher,
	m mailer.Mailer,
	clock clockwork.Clock,
	logger *zap.Logger,
	settings Settings,
) *OrderService {
	courier := settings.Courier
	if courier == "" {
		courier = "BOSTA"
	}
	currency := settings.Currency
	if currency == "" {
		currency = "EGP"
	}
	return &OrderService{
		products:  products,
		delivery:  delivery,
		publisher: publisher,
		mailer:    m,
		clock:     clock,
		logger:    logger,
		courier:   courier,
		currency:  currency,
	}
}

func (s *OrderService) Currency() string { return s.currency }

// CreateOrder validates the shipping form, freezes the cart into an order,
// appends it to the history and clears the cart. Validation failures leave
// the session untouched.
func (s *OrderService) CreateOrder(ctx context.Context, session *storefront.Session, info domain.ShippingInfo, requestID string) (domain.Order, error) {
	info = info.Normalize()
	if err := info.Validate(); err != nil {
		return domain.Order{}, err
	}

	order, err := session.Checkout(ctx, func(lines []domain.CartLine) (domain.Order, error) {
		return s.assemble(lines, info)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.afterCommit(ctx, session, order, "", requestID)
	return order, nil
}

// PlaceOrder is CreateOrder with the flat order record delivered through the
// webhook cascade first. The order is committed only when delivery succeeds.
func (s *OrderService) PlaceOrder(ctx context.Context, session *storefront.Session, info domain.ShippingInfo, requestID string) (domain.Order, webhook.Result, error) {
	info = info.Normalize()
	if err := info.Validate(); err != nil {
		return domain.Order{}, webhook.Result{}, err
	}

	var result webhook.Result
	order, err := session.Checkout(ctx, func(lines []domain.CartLine) (domain.Order, error) {
		order, err := s.assemble(lines, info)
		if err != nil {
			return domain.Order{}, err
		}
		result = s.delivery.Deliver(ctx, webhook.KindOrder, webhook.Payload(order.Fields()))
		if !result.Success {
			return domain.Order{}, ErrDeliveryFailed
		}
		return order, nil
	})
	if errors.Is(err, ErrDeliveryFailed) {
		s.logger.Error("Order delivery failed",
			zap.String("session_id", session.ID()),
			zap.String("request_id", requestID))
		session.Toasts().Show("Failed to submit order. Please try again.", notify.KindError, 0)
		return domain.Order{}, result, err
	}
	if err != nil {
		return domain.Order{}, result, err
	}

	s.afterCommit(ctx, session, order, result.Method, requestID)
	return order, result, nil
}

func (s *OrderService) assemble(lines []domain.CartLine, info domain.ShippingInfo) (domain.Order, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		p, err := s.products.Product(l.ProductID)
		if err != nil {
			s.logger.Warn("Skipping cart line for unknown product",
				zap.String("product_id", l.ProductID))
			continue
		}
		item := domain.OrderItem{
			LineID:        l.ID,
			ProductID:     p.ID,
			Name:          p.Name,
			Price:         p.Price,
			Quantity:      l.Quantity,
			SelectedSize:  l.SelectedSize,
			SelectedColor: l.SelectedColor,
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.LineTotal())
	}
	if len(items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	now := s.clock.Now()
	return domain.Order{
		ID:             NewOrderID(now),
		TrackingNumber: NewTrackingNumber(),
		Courier:        s.courier,
		Status:         domain.OrderStatusPending,
		Customer:       info.Customer,
		PaymentMethod:  info.PaymentMethod,
		Items:          items,
		Subtotal:       subtotal,
		Shipping:       decimal.Zero,
		Tax:            decimal.Zero,
		Total:          subtotal,
		Note:           info.Note,
		CreatedAt:      now.UTC(),
	}, nil
}

// afterCommit runs the side effects of a stored order. Failures here are
// logged only; the order already exists.
func (s *OrderService) afterCommit(ctx context.Context, session *storefront.Session, order domain.Order, method, requestID string) {
	event := events.OrderPlacedEvent{
		EventID:        uuid.New().String(),
		EventType:      events.TypeOrderPlaced,
		OrderID:        order.ID,
		SessionID:      session.ID(),
		TrackingNumber: order.TrackingNumber,
		TotalAmount:    domain.RoundForDisplay(order.Total),
		Currency:       s.currency,
		Items:          order.Items,
		Status:         string(order.Status),
		DeliveryMethod: method,
		Timestamp:      s.clock.Now().UTC(),
		RequestID:      requestID,
	}
	if err := s.publisher.Publish(ctx, order.ID, event); err != nil {
		// 이벤트 발행 실패 시 로그만 (Eventual Consistency)
		s.logger.Error("Failed to publish event",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}

	if err := s.mailer.SendOrderConfirmation(ctx, order, s.currency); err != nil {
		s.logger.Warn("Failed to send order confirmation",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}

	session.Toasts().Show(fmt.Sprintf("Order placed successfully! Order ID: %s", order.ID), notify.KindSuccess, 0)

	s.logger.Info("Order created successfully",
		zap.String("order_id", order.ID),
		zap.String("session_id", session.ID()),
		zap.String("total_amount", domain.RoundForDisplay(order.Total)),
		zap.String("delivery_method", method))
}
