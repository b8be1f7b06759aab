package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/animestore-backend/config"
	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() OrderEmailData {
	return OrderEmailData{
		StoreName:     "متجر الأنمي",
		CustomerName:  "سارة",
		CustomerEmail: "sara@example.com",
		OrderNumber:   "ORD-20250114-ABCDEF12",
		Lines:         []OrderEmailLine{{Name: "مجسم ناروتو", Quantity: 2, LineTotal: "100.00"}},
		Subtotal:      "100.00",
		ShippingCost:  "0.00",
		TaxAmount:     "0.00",
		TotalAmount:   "100.00",
		Currency:      "sar",
		OrderURL:      "http://localhost:3000/orders/1",
	}
}

func TestSMTPMailer_LogOnlyWhenDisabled(t *testing.T) {
	m := New(config.SMTPConfig{}, "admin@example.com")

	assert.NoError(t, m.SendOrderConfirmation(context.Background(), sampleOrder()))
	assert.NoError(t, m.SendAdminNewOrder(context.Background(), sampleOrder()))
}

func TestSMTPMailer_SendsRenderedEmail(t *testing.T) {
	var sent *email.Email
	m := New(config.SMTPConfig{From: "shop@example.com"}, "")
	m.send = func(e *email.Email) error {
		sent = e
		return nil
	}

	require.NoError(t, m.SendOrderConfirmation(context.Background(), sampleOrder()))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"sara@example.com"}, sent.To)
	assert.Equal(t, "shop@example.com", sent.From)
	assert.Contains(t, sent.Subject, "ORD-20250114-ABCDEF12")
	body := string(sent.HTML)
	assert.Contains(t, body, "مجسم ناروتو")
	assert.True(t, strings.Contains(body, "100.00 SAR"))
}

func TestSMTPMailer_SkipsAdminWithoutAddress(t *testing.T) {
	called := false
	m := New(config.SMTPConfig{}, "")
	m.send = func(e *email.Email) error {
		called = true
		return nil
	}

	require.NoError(t, m.SendAdminNewOrder(context.Background(), sampleOrder()))
	assert.False(t, called)
}

func TestSMTPMailer_PropagatesSendError(t *testing.T) {
	m := New(config.SMTPConfig{}, "")
	m.send = func(e *email.Email) error { return errors.New("smtp down") }

	err := m.SendOrderConfirmation(context.Background(), sampleOrder())
	assert.ErrorContains(t, err, "smtp down")
}

func TestSMTPMailer_HonoursContextDeadline(t *testing.T) {
	m := New(config.SMTPConfig{}, "")
	release := make(chan struct{})
	defer close(release)
	m.send = func(e *email.Email) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := m.SendOrderConfirmation(ctx, sampleOrder())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
