package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validShipping() ShippingInfo {
	return ShippingInfo{
		Customer: Customer{
			FirstName:  "Omar",
			LastName:   "Hassan",
			Email:      "omar@example.com",
			Phone:      "+20 100 123 4567",
			Address:    "12 Tahrir St",
			City:       "Cairo",
			PostalCode: "11511",
		},
		PaymentMethod: PaymentCashOnDelivery,
	}
}

func TestShippingInfoValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ShippingInfo)
		field  string
	}{
		{"valid", func(*ShippingInfo) {}, ""},
		{"email without at", func(s *ShippingInfo) { s.Email = "omar.example.com" }, "email"},
		{"email without domain dot", func(s *ShippingInfo) { s.Email = "omar@example" }, "email"},
		{"phone too short", func(s *ShippingInfo) { s.Phone = "12345" }, "phone"},
		{"phone with letters", func(s *ShippingInfo) { s.Phone = "call me maybe" }, "phone"},
		{"missing first name", func(s *ShippingInfo) { s.FirstName = "" }, "firstName"},
		{"missing postal code", func(s *ShippingInfo) { s.PostalCode = "" }, "postalCode"},
		{"unknown payment", func(s *ShippingInfo) { s.PaymentMethod = "crypto" }, "paymentMethod"},
		{"missing payment", func(s *ShippingInfo) { s.PaymentMethod = "" }, "paymentMethod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := validShipping()
			tt.mutate(&info)
			err := info.Normalize().Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.True(t, verrs.Has(tt.field), "expected %s in %v", tt.field, verrs)
		})
	}
}

func TestShippingInfoNoteLimit(t *testing.T) {
	info := validShipping()
	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}
	info.Note = string(long)

	var verrs ValidationErrors
	require.ErrorAs(t, info.Validate(), &verrs)
	assert.Equal(t, "note", verrs[0].Field)
	assert.Equal(t, "must be at most 500 characters", verrs[0].Reason)
}

func TestResolveVariant(t *testing.T) {
	tee := Product{
		ID:     "1",
		Sizes:  []string{"S", "M", "L"},
		Colors: []Color{{Name: "Black", Value: "#000000"}, {Name: "White", Value: "#FFFFFF"}},
	}
	logoCap := Product{ID: "3", Sizes: []string{"One Size"}, Colors: []Color{{Name: "Red", Value: "#DC2626"}}}
	sticker := Product{ID: "9"}

	tests := []struct {
		name        string
		product     Product
		size, color string
		wantSize    string
		wantColor   string
		wantErr     error
	}{
		{"quick add takes first options", tee, "", "", "S", "Black", nil},
		{"explicit selection", tee, "L", "White", "L", "White", nil},
		{"case insensitive", tee, "m", "white", "M", "White", nil},
		{"color by hex value", tee, "M", "#ffffff", "M", "White", nil},
		{"sole option implicit", logoCap, "", "", "One Size", "Red", nil},
		{"sole option explicit", logoCap, "One Size", "Red", "One Size", "Red", nil},
		{"no options", sticker, "", "", "", "", nil},
		{"unknown size", tee, "XXXL", "", "", "", ErrUnknownVariant},
		{"unknown color", tee, "S", "Purple", "", "", ErrUnknownVariant},
		{"size on optionless product", sticker, "M", "", "", "", ErrUnknownVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, color, err := tt.product.ResolveVariant(tt.size, tt.color)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, size)
			assert.Equal(t, tt.wantColor, color)
		})
	}
}

func TestLineID(t *testing.T) {
	assert.Equal(t, "1_M_Black", LineID("1", "M", "Black"))
	assert.Equal(t, "9_default_default", LineID("9", "", ""))
}

func TestOrderItemDescribe(t *testing.T) {
	order := Order{Items: []OrderItem{
		{Name: "Luxury Cropped Black T-Shirt", SelectedSize: "M", SelectedColor: "Black", Quantity: 2, Price: decimal.NewFromInt(300)},
		{Name: "Minimal Logo Cap", Quantity: 1, Price: decimal.NewFromInt(250)},
	}}

	assert.Equal(t, "Luxury Cropped Black T-Shirt - M (Black) (2x), Minimal Logo Cap", order.ProductSummary())
	assert.Equal(t, 3, order.Quantity())
	assert.Equal(t, "600", order.Items[0].LineTotal().String())
}

func TestSKU(t *testing.T) {
	assert.Equal(t, "1-ONE-SIZE", SKU("1", "One Size"))
	assert.Equal(t, "LUX-TEE-XL", SKU("lux tee", "XL"))
	assert.Equal(t, "CAFE-M", SKU("café", "M"))
}

func TestReturnRequestValidate(t *testing.T) {
	req := ReturnRequest{OrderID: "GC-1", Phone: "01001234567", Reason: "   "}.Normalize()

	var verrs ValidationErrors
	require.ErrorAs(t, req.Validate(), &verrs)
	assert.True(t, verrs.Has("reason"))
}

func TestExchangeRequestValidate(t *testing.T) {
	req := ExchangeRequest{
		OrderID: "GC-1",
		Phone:   "01001234567",
		OldItem: ExchangeItem{SKU: "1-M", Name: "Tee", Price: decimal.NewFromInt(300)},
	}

	var verrs ValidationErrors
	require.ErrorAs(t, req.Validate(), &verrs)
	assert.True(t, verrs.Has("newItem.sku"))
	assert.True(t, verrs.Has("newItem.name"))
	assert.False(t, verrs.Has("oldItem.sku"))

	req.NewItem = ExchangeItem{SKU: "2-L", Name: "Hoodie", Price: decimal.NewFromInt(650)}
	require.NoError(t, req.Validate())
	assert.Equal(t, "350", req.Delta().String())
}

func TestPaymentMethodDisplayName(t *testing.T) {
	assert.Equal(t, "Cash on Delivery", PaymentCashOnDelivery.DisplayName())
	assert.Equal(t, "Bank Transfer", PaymentBankTransfer.DisplayName())
	assert.Equal(t, "wallet", PaymentMethod("wallet").DisplayName())
}

func TestOrderFields(t *testing.T) {
	o := Order{
		ID:             "GC-MF3K2L1A-X7Q9ZP",
		TrackingNumber: "TRK123456789",
		Courier:        "BOSTA",
		Customer:       validShipping().Customer,
		PaymentMethod:  PaymentCashOnDelivery,
		Items: []OrderItem{
			{Name: "Luxury Cropped Black T-Shirt", Price: decimal.NewFromInt(300), Quantity: 2, SelectedSize: "M", SelectedColor: "Black"},
			{Name: "Minimal Logo Cap", Price: decimal.NewFromInt(250), Quantity: 1},
		},
		Total:     decimal.NewFromInt(850),
		CreatedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	f := o.Fields()
	assert.Len(t, f, len(OrderColumns))
	for _, col := range OrderColumns {
		assert.Contains(t, f, col)
	}
	assert.Equal(t, "Omar Hassan", f["Customer Name"])
	assert.Equal(t, "850.00", f["Total"])
	assert.Equal(t, "850.00", f["COD Amount"])
	assert.Equal(t, "Cash on Delivery", f["Payment Method"])
	assert.Equal(t, "Luxury Cropped Black T-Shirt - M (Black) (2x), Minimal Logo Cap", f["Product"])
	assert.Equal(t, "3", f["Quantity"])
	assert.Equal(t, "2026-03-01T10:30:00.000Z", f["Date"])
	assert.Equal(t, "New", f["Status"])
	assert.Equal(t, "", f["Note"])
}

func TestRequestFields(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("EET", 2*3600))
	f := RequestFields("return", "GC-1", "+201001234567", "Reason: too small", at)
	assert.Equal(t, map[string]string{
		"Request Type": "return",
		"Order ID":     "GC-1",
		"Phone":        "+201001234567",
		"Note":         "Reason: too small",
		"Date":         "2026-03-01T10:00:00.000Z",
	}, f)
}
