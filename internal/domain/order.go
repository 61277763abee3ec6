package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentCard           PaymentMethod = "card"
	PaymentBankTransfer   PaymentMethod = "transfer"
)

// DisplayName is the label used in outbound payloads and exports.
func (m PaymentMethod) DisplayName() string {
	switch m {
	case PaymentCashOnDelivery:
		return "Cash on Delivery"
	case PaymentCard:
		return "Credit/Debit Card"
	case PaymentBankTransfer:
		return "Bank Transfer"
	default:
		return string(m)
	}
}

// Customer holds the contact and address fields collected by the shipping form.
type Customer struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Email      string `json:"email" validate:"required,email_address"`
	Phone      string `json:"phone" validate:"required,phone"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ShippingInfo is the checkout form submitted when placing an order.
type ShippingInfo struct {
	Customer
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,oneof=cod card transfer"`
	Note          string        `json:"note" validate:"max=500"`
}

// Normalize returns a copy with surrounding whitespace removed from every field.
func (s ShippingInfo) Normalize() ShippingInfo {
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Address = strings.TrimSpace(s.Address)
	s.City = strings.TrimSpace(s.City)
	s.PostalCode = strings.TrimSpace(s.PostalCode)
	s.PaymentMethod = PaymentMethod(strings.ToLower(strings.TrimSpace(string(s.PaymentMethod))))
	s.Note = strings.TrimSpace(s.Note)
	return s
}

func (s ShippingInfo) Validate() error {
	return validateStruct(s)
}

type Order struct {
	ID             string      `json:"id"`
	TrackingNumber string      `json:"trackingNumber"`
	Courier        string      `json:"courier"`
	Status         OrderStatus `json:"status"`
	Customer
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Shipping      decimal.Decimal `json:"shipping"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// OrderItem is a by-value copy of a cart line taken when the order was created.
type OrderItem struct {
	LineID        string          `json:"lineId"`
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor string          `json:"selectedColor,omitempty"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Describe renders the item the way the fulfilment sheet expects it,
// e.g. "Oversized Essential Hoodie - L (Black) (2x)".
func (i OrderItem) Describe() string {
	var b strings.Builder
	b.WriteString(i.Name)
	if i.SelectedSize != "" {
		b.WriteString(" - " + i.SelectedSize)
	}
	if i.SelectedColor != "" {
		b.WriteString(" (" + i.SelectedColor + ")")
	}
	if i.Quantity > 1 {
		b.WriteString(" (" + strconv.Itoa(i.Quantity) + "x)")
	}
	return b.String()
}

func (o Order) Quantity() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// ProductSummary joins every item description with ", ".
func (o Order) ProductSummary() string {
	parts := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		parts = append(parts, item.Describe())
	}
	return strings.Join(parts, ", ")
}
