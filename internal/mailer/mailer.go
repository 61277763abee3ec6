package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/keighl/postmark"
	"github.com/mhhmod/tes3/internal/domain"
	"go.uber.org/zap"
)

// Mailer sends customer-facing email.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order domain.Order, currency string) error
}

type PostmarkMailer struct {
	client *postmark.Client
	sender string
	logger *zap.Logger
}

func NewPostmarkMailer(apiToken, sender string, logger *zap.Logger) *PostmarkMailer {
	return &PostmarkMailer{
		client: postmark.NewClient(apiToken, ""),
		sender: sender,
		logger: logger,
	}
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<strong>Dear {{.Name}},</strong><br><br>
Thank you for shopping with GrindCTRL! Your order <strong>{{.OrderID}}</strong> has been placed.<br>
<ul>{{range .Items}}<li>{{.}}</li>{{end}}</ul>
Total: <strong>{{.Total}} {{.Currency}}</strong><br>
Payment Method: <strong>{{.Payment}}</strong><br>
Tracking Number: <strong>{{.Tracking}}</strong> ({{.Courier}})<br>`))

type confirmationView struct {
	Name     string
	OrderID  string
	Items    []string
	Total    string
	Currency string
	Payment  string
	Tracking string
	Courier  string
}

func renderConfirmation(order domain.Order, currency string) (string, error) {
	view := confirmationView{
		Name:     order.FullName(),
		OrderID:  order.ID,
		Total:    domain.RoundForDisplay(order.Total),
		Currency: currency,
		Payment:  order.PaymentMethod.DisplayName(),
		Tracking: order.TrackingNumber,
		Courier:  order.Courier,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, item.Describe())
	}

	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (m *PostmarkMailer) SendOrderConfirmation(_ context.Context, order domain.Order, currency string) error {
	html, err := renderConfirmation(order, currency)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	_, err = m.client.SendEmail(postmark.Email{
		From:     m.sender,
		To:       order.Email,
		Subject:  fmt.Sprintf("Order Confirmation %s", order.ID),
		HtmlBody: html,
		TextBody: fmt.Sprintf("Your order %s has been placed. Total: %s %s. Tracking: %s",
			order.ID, domain.RoundForDisplay(order.Total), currency, order.TrackingNumber),
		Tag: "order-confirmation",
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("Order confirmation sent",
		zap.String("orderId", order.ID),
		zap.String("to", order.Email))
	return nil
}

// NopMailer is used when no Postmark token is configured.
type NopMailer struct{}

func (NopMailer) SendOrderConfirmation(context.Context, domain.Order, string) error { return nil }
