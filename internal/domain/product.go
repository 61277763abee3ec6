package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Color struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Category      string           `json:"category"`
	Images        []string         `json:"images"`
	Colors        []Color          `json:"colors"`
	Sizes         []string         `json:"sizes"`
	InStock       bool             `json:"inStock"`
	Featured      bool             `json:"featured"`
	Rating        decimal.Decimal  `json:"rating"`
	ReviewCount   int              `json:"reviewCount"`
	Tags          []string         `json:"tags"`
}

// ResolveVariant maps a size/color selection onto the product's canonical
// options. An empty selection means the first offered option, or nothing
// when the product offers none. Quick-add and explicit selection therefore
// land on the same line.
func (p Product) ResolveVariant(size, color string) (string, string, error) {
	size = strings.TrimSpace(size)
	color = strings.TrimSpace(color)

	resolvedSize := ""
	switch {
	case size == "" && len(p.Sizes) > 0:
		resolvedSize = p.Sizes[0]
	case size != "":
		found := false
		for _, s := range p.Sizes {
			if strings.EqualFold(s, size) {
				resolvedSize, found = s, true
				break
			}
		}
		if !found {
			return "", "", ErrUnknownVariant
		}
	}

	resolvedColor := ""
	switch {
	case color == "" && len(p.Colors) > 0:
		resolvedColor = p.Colors[0].Name
	case color != "":
		found := false
		for _, c := range p.Colors {
			if strings.EqualFold(c.Name, color) || strings.EqualFold(c.Value, color) {
				resolvedColor, found = c.Name, true
				break
			}
		}
		if !found {
			return "", "", ErrUnknownVariant
		}
	}

	return resolvedSize, resolvedColor, nil
}

// Feed is the shape of the static product document.
type Feed struct {
	Products []Product `json:"products"`
}
