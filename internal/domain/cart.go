package domain

import "github.com/shopspring/decimal"

// CartLine is the persisted record of one product variant in a cart.
type CartLine struct {
	ID            string `json:"id"`
	ProductID     string `json:"productId"`
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selectedSize,omitempty"`
	SelectedColor string `json:"selectedColor,omitempty"`
}

// LineID builds the variant key shared by every line of the same product,
// size and color.
func LineID(productID, size, color string) string {
	return productID + "_" + orDefault(size) + "_" + orDefault(color)
}

func orDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}

// CartItem is a line joined with its live catalog product.
type CartItem struct {
	CartLine
	Product   Product         `json:"product"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// CartView is what the API returns for a cart.
type CartView struct {
	Items []CartItem `json:"items"`
	Count int        `json:"count"`
	Total string     `json:"total"`
}

// RoundForDisplay rounds a money amount to two decimals.
func RoundForDisplay(d decimal.Decimal) string {
	return d.StringFixed(2)
}
