package domain

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// ReturnRequest asks for an item of a placed order to be taken back.
type ReturnRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Phone   string `json:"phone" validate:"required,phone"`
	Reason  string `json:"reason" validate:"required,max=1000"`
}

func (r ReturnRequest) Normalize() ReturnRequest {
	r.OrderID = strings.TrimSpace(r.OrderID)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Reason = strings.TrimSpace(r.Reason)
	return r
}

func (r ReturnRequest) Validate() error {
	return validateStruct(r)
}

type ExchangeItem struct {
	SKU   string          `json:"sku" validate:"required"`
	Name  string          `json:"name" validate:"required"`
	Size  string          `json:"size,omitempty"`
	Price decimal.Decimal `json:"price"`
}

// ExchangeRequest swaps one purchased item for another catalog variant.
type ExchangeRequest struct {
	OrderID string       `json:"orderId" validate:"required"`
	Phone   string       `json:"phone" validate:"required,phone"`
	OldItem ExchangeItem `json:"oldItem"`
	NewItem ExchangeItem `json:"newItem"`
	Comment string       `json:"comment" validate:"max=500"`
}

func (r ExchangeRequest) Normalize() ExchangeRequest {
	r.OrderID = strings.TrimSpace(r.OrderID)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Comment = strings.TrimSpace(r.Comment)
	return r
}

func (r ExchangeRequest) Validate() error {
	return validateStruct(r)
}

// Delta is what the customer owes (positive) or gets back (negative).
func (r ExchangeRequest) Delta() decimal.Decimal {
	return r.NewItem.Price.Sub(r.OldItem.Price)
}

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]+`)

// SKU builds the stock keeping unit for a product size, e.g. "1-ONE-SIZE".
func SKU(productID, size string) string {
	t := norm.NFD.String(productID + "-" + size)
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	s := nonAlnum.ReplaceAllString(strings.ToUpper(b.String()), "-")
	return strings.Trim(s, "-")
}
