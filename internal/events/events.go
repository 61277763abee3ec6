package events

import (
	"time"

	"github.com/mhhmod/tes3/internal/domain"
)

const (
	TypeOrderPlaced       = "order.placed"
	TypeReturnRequested   = "return.requested"
	TypeExchangeRequested = "exchange.requested"
)

type OrderPlacedEvent struct {
	EventID        string             `json:"event_id"`
	EventType      string             `json:"event_type"`
	OrderID        string             `json:"order_id"`
	SessionID      string             `json:"session_id"`
	TrackingNumber string             `json:"tracking_number"`
	TotalAmount    string             `json:"total_amount"`
	Currency       string             `json:"currency"`
	Items          []domain.OrderItem `json:"items"`
	Status         string             `json:"status"`
	DeliveryMethod string             `json:"delivery_method"`
	Timestamp      time.Time          `json:"timestamp"`
	RequestID      string             `json:"request_id"`
}

type RequestSubmittedEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	OrderID        string    `json:"order_id"`
	SessionID      string    `json:"session_id"`
	Note           string    `json:"note"`
	DeliveryMethod string    `json:"delivery_method"`
	Timestamp      time.Time `json:"timestamp"`
	RequestID      string    `json:"request_id"`
}
