package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Mailer delivers a rendered message. Customers are addressed by id; the
// mail transport resolves the address.
type Mailer interface {
	Send(ctx context.Context, customerID uint, subject, body string) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	From string
	Log  *zap.Logger
}

func (m LogMailer) Send(_ context.Context, customerID uint, subject, body string) error {
	m.Log.Info("email",
		zap.String("from", m.From),
		zap.Uint("customer_id", customerID),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

func NewServeMux(m Mailer, log *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAppointmentConfirmation, handleConfirmation(m, log))
	mux.HandleFunc(TypeInvoice, handleInvoice(m, log))
	return mux
}

func handleConfirmation(m Mailer, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var d AppointmentDetails
		if err := json.Unmarshal(task.Payload(), &d); err != nil {
			log.Error("invalid confirmation payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		subject := fmt.Sprintf("Appointment #%d confirmed", d.AppointmentID)
		return m.Send(ctx, d.CustomerID, subject, ConfirmationBody(d))
	}
}

func handleInvoice(m Mailer, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var d InvoiceDetails
		if err := json.Unmarshal(task.Payload(), &d); err != nil {
			log.Error("invalid invoice payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		subject := fmt.Sprintf("Invoice for appointment #%d", d.AppointmentID)
		return m.Send(ctx, d.CustomerID, subject, InvoiceBody(d))
	}
}

func ConfirmationBody(d AppointmentDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your appointment with %s is confirmed.\n", d.BarberName)
	fmt.Fprintf(&b, "Date: %s, %s-%s\n", d.Date, d.StartTime, d.EndTime)
	fmt.Fprintf(&b, "Services: %s\n", strings.Join(d.Services, ", "))
	fmt.Fprintf(&b, "Total: %d VND\n", d.TotalPrice)
	return b.String()
}

func InvoiceBody(d InvoiceDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Payment received for appointment #%d.\n", d.AppointmentID)
	fmt.Fprintf(&b, "Reference: %s\n", d.GatewayRef)
	fmt.Fprintf(&b, "Amount: %d VND\n", d.Amount)
	if d.BankCode != "" {
		fmt.Fprintf(&b, "Bank: %s\n", d.BankCode)
	}
	if !d.PaidAt.IsZero() {
		fmt.Fprintf(&b, "Paid at: %s\n", d.PaidAt.Format("2006-01-02 15:04"))
	}
	if len(d.Services) > 0 {
		fmt.Fprintf(&b, "Services: %s\n", strings.Join(d.Services, ", "))
	}
	return b.String()
}
