package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"github.com/ikkim/animestore-backend/config"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/jordan-wright/email"
)

const sendTimeout = 15 * time.Second

// Mailer sends the transactional emails of the store. Callers treat every
// failure as best effort.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, data OrderEmailData) error
	SendAdminNewOrder(ctx context.Context, data OrderEmailData) error
}

type OrderEmailLine struct {
	Name      string
	Quantity  int
	LineTotal string
}

type OrderEmailData struct {
	StoreName     string
	CustomerName  string
	CustomerEmail string
	OrderNumber   string
	Lines         []OrderEmailLine
	Subtotal      string
	ShippingCost  string
	TaxAmount     string
	TotalAmount   string
	Currency      string
	OrderURL      string
}

type SMTPMailer struct {
	cfg        config.SMTPConfig
	adminEmail string
	send       func(e *email.Email) error
}

// New returns a mailer that sends through SMTP, or only logs when no SMTP
// host is configured.
func New(cfg config.SMTPConfig, adminEmail string) *SMTPMailer {
	m := &SMTPMailer{cfg: cfg, adminEmail: adminEmail}
	if cfg.Enabled() {
		addr := cfg.Host + ":" + cfg.Port
		auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		m.send = func(e *email.Email) error {
			return e.Send(addr, auth)
		}
	}
	return m
}

func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, data OrderEmailData) error {
	if data.CustomerEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("تأكيد طلبك رقم %s", data.OrderNumber)
	return m.deliver(ctx, data.CustomerEmail, subject, orderConfirmationTmpl, data)
}

func (m *SMTPMailer) SendAdminNewOrder(ctx context.Context, data OrderEmailData) error {
	if m.adminEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("طلب جديد %s", data.OrderNumber)
	return m.deliver(ctx, m.adminEmail, subject, adminNewOrderTmpl, data)
}

func (m *SMTPMailer) deliver(ctx context.Context, to, subject string, tmpl *template.Template, data OrderEmailData) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	if m.send == nil {
		logger.Info("SMTP disabled, email not sent", map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return nil
	}

	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.HTML = body.Bytes()

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.send(e) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email to %s: %w", to, err)
		}
		logger.Debug("Email sent", map[string]interface{}{"to": to, "subject": subject})
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email to %s: %w", to, ctx.Err())
	}
}

var funcs = template.FuncMap{"upper": strings.ToUpper}

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html dir="rtl" lang="ar">
<head><meta charset="UTF-8"><title>{{.StoreName}}</title></head>
<body style="font-family: Tahoma, Arial, sans-serif; color: #333;">
  <h2>شكراً لطلبك يا {{.CustomerName}}!</h2>
  <p>تم استلام طلبك رقم <strong>{{.OrderNumber}}</strong> وهو قيد المراجعة.</p>
  <table style="width:100%; border-collapse: collapse;">
    {{range .Lines}}<tr><td>{{.Name}}</td><td>× {{.Quantity}}</td><td>{{.LineTotal}} {{$.Currency | upper}}</td></tr>{{end}}
  </table>
  <p>المجموع الفرعي: {{.Subtotal}} {{.Currency | upper}}</p>
  <p>الشحن: {{.ShippingCost}} {{.Currency | upper}}</p>
  <p>الضريبة: {{.TaxAmount}} {{.Currency | upper}}</p>
  <p><strong>الإجمالي: {{.TotalAmount}} {{.Currency | upper}}</strong></p>
  <p><a href="{{.OrderURL}}">تتبع طلبك</a></p>
  <p style="font-size:12px;color:#888;">{{.StoreName}}</p>
</body>
</html>`))

var adminNewOrderTmpl = template.Must(template.New("admin_new_order").Funcs(funcs).Parse(`<!DOCTYPE html>
<html dir="rtl" lang="ar">
<head><meta charset="UTF-8"></head>
<body style="font-family: Tahoma, Arial, sans-serif;">
  <h3>طلب جديد {{.OrderNumber}}</h3>
  <p>العميل: {{.CustomerName}} ({{.CustomerEmail}})</p>
  <p>الإجمالي: {{.TotalAmount}} {{.Currency | upper}}</p>
  <p><a href="{{.OrderURL}}">عرض الطلب</a></p>
</body>
</html>`))
