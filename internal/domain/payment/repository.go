package payment

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ErrLiveTransaction is returned by CreateTransaction when the appointment
// already has a pending or successful transaction.
var ErrLiveTransaction = errors.New("appointment already has a live transaction")

type Repository interface {
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)

	// FindPendingByAppointment returns nil, nil when there is none.
	FindPendingByAppointment(ctx context.Context, appointmentID uint) (*models.Transaction, error)
	FindByReference(ctx context.Context, ref string) (*models.Transaction, error)
	ListByAppointment(ctx context.Context, appointmentID uint) ([]models.Transaction, error)

	// CreateTransaction fails with ErrLiveTransaction when the appointment
	// already has a pending or successful transaction.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error

	// RotateReference swaps the gateway reference of a still-pending transaction.
	RotateReference(ctx context.Context, txn *models.Transaction, ref string, amount int64) (bool, error)

	// Resolve writes the gateway result only if the transaction is still
	// pending. When txn.Status is success the linked appointment is marked
	// paid in the same unit of work. It reports whether this call applied it.
	Resolve(ctx context.Context, txn *models.Transaction) (bool, error)
}

type PaymentRequest struct {
	Reference string
	Amount    int64
	OrderInfo string
	ClientIP  string
	CreatedAt time.Time
}

// Callback is the parsed inbound parameter set.
type Callback struct {
	Reference    string
	ResponseCode string
	Amount       int64
	// AmountMinor is vnp_Amount as sent, in hundredths of the currency unit.
	AmountMinor   int64
	BankCode      string
	TransactionNo string
	PayDate       string
}

func (c Callback) Succeeded() bool {
	return c.ResponseCode == "00"
}

// Matches reports whether the callback carries exactly amount.
func (c Callback) Matches(amount int64) bool {
	return c.AmountMinor == amount*100
}

type Gateway interface {
	PaymentURL(req PaymentRequest) (string, error)
	Verify(params url.Values) bool
	ParseCallback(params url.Values) (Callback, error)
	ParsePayDate(s string) (time.Time, bool)
	ResponseMessage(code string) string
}
