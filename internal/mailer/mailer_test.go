package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mhhmod/tes3/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sampleOrder() domain.Order {
	return domain.Order{
		ID:             "GC-MF3K2L1A-X7Q9ZP",
		TrackingNumber: "TRK123456789",
		Courier:        "BOSTA",
		Customer: domain.Customer{
			FirstName: "Omar",
			LastName:  "<Hassan>",
			Email:     "omar@example.com",
		},
		PaymentMethod: domain.PaymentCashOnDelivery,
		Items: []domain.OrderItem{
			{Name: "Oversized Essential Hoodie", Price: decimal.NewFromInt(650), Quantity: 2, SelectedSize: "L"},
		},
		Total:     decimal.NewFromInt(1300),
		CreatedAt: time.Now(),
	}
}

func TestRenderConfirmation(t *testing.T) {
	html, err := renderConfirmation(sampleOrder(), "EGP")
	require.NoError(t, err)

	assert.Contains(t, html, "GC-MF3K2L1A-X7Q9ZP")
	assert.Contains(t, html, "1300.00 EGP")
	assert.Contains(t, html, "Oversized Essential Hoodie - L (2x)")
	assert.Contains(t, html, "Cash on Delivery")
	assert.Contains(t, html, "&lt;Hassan&gt;")
	assert.NotContains(t, html, "<Hassan>")
}

func TestPostmarkMailer_Send(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email", r.URL.Path)
		assert.Equal(t, "server-token", r.Header.Get("X-Postmark-Server-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"omar@example.com","MessageID":"m-1","ErrorCode":0,"Message":"OK"}`))
	}))
	defer srv.Close()

	m := NewPostmarkMailer("server-token", "orders@grindctrl.example", zaptest.NewLogger(t))
	m.client.BaseURL = srv.URL
	m.client.HTTPClient = srv.Client()

	require.NoError(t, m.SendOrderConfirmation(context.Background(), sampleOrder(), "EGP"))
	assert.Equal(t, "orders@grindctrl.example", got["From"])
	assert.Equal(t, "omar@example.com", got["To"])
	assert.Equal(t, "Order Confirmation GC-MF3K2L1A-X7Q9ZP", got["Subject"])
}

func TestNopMailer(t *testing.T) {
	var m Mailer = NopMailer{}
	assert.NoError(t, m.SendOrderConfirmation(context.Background(), sampleOrder(), "EGP"))
}
