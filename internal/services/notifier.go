package services

import (
	"context"
	"fmt"
	"html"

	"gnsons/internal/models"
	"gnsons/pkg/mailer"

	"go.uber.org/zap"
)

// Notifier delivers transactional email. Implementations may send directly or
// hand the message to a queue.
type Notifier interface {
	Notify(ctx context.Context, msg mailer.Message) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg mailer.Message) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, msg mailer.Message) error {
	return f(ctx, msg)
}

// LogNotifier only logs messages. It is used when no mail transport is configured.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg mailer.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	n.log.Info("Email notification (no transport configured)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

func orderConfirmationEmail(order *models.Order) mailer.Message {
	return mailer.Message{
		To:      order.CustomerEmail,
		Subject: fmt.Sprintf("Order Confirmation - %s", order.TrackingNumber),
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Thank you for your order!</h2>
<p><strong>Order ID:</strong> %s</p>
<p><strong>Tracking Number:</strong> %s</p>
<p><strong>Status:</strong> %s</p>
<p><strong>Total:</strong> Rs. %.2f</p>
<p><strong>Payment Method:</strong> %s</p>
<p>We will contact you shortly to confirm delivery to %s.</p>
</div>`,
			html.EscapeString(order.ID),
			html.EscapeString(order.TrackingNumber),
			html.EscapeString(string(order.Status)),
			order.FinalPrice,
			html.EscapeString(string(order.PaymentMethod)),
			html.EscapeString(order.ShippingAddress)),
	}
}

func contactConfirmationEmail(contact *models.Contact) mailer.Message {
	return mailer.Message{
		To:      contact.Email,
		Subject: "We received your message",
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Hi %s,</h2>
<p>Thanks for contacting us about "%s". Our team will get back to you within 24 hours.</p>
</div>`,
			html.EscapeString(contact.Name),
			html.EscapeString(contact.Subject)),
	}
}

func contactAdminEmail(to string, contact *models.Contact) mailer.Message {
	return mailer.Message{
		To:      to,
		Subject: fmt.Sprintf("New Contact Form Submission: %s", contact.Subject),
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>New contact form submission</h2>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Phone:</strong> %s</p>
<p><strong>Subject:</strong> %s</p>
<p><strong>Message:</strong></p>
<p>%s</p>
</div>`,
			html.EscapeString(contact.Name),
			html.EscapeString(contact.Email),
			html.EscapeString(contact.Phone),
			html.EscapeString(contact.Subject),
			html.EscapeString(contact.Message)),
	}
}
