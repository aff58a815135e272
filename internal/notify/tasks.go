package notify

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeAppointmentConfirmation = "email:appointment_confirmation"
	TypeInvoice                 = "email:invoice"
)

type AppointmentDetails struct {
	AppointmentID uint     `json:"appointment_id"`
	CustomerID    uint     `json:"customer_id"`
	BarberName    string   `json:"barber_name"`
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	Services      []string `json:"services"`
	TotalPrice    int64    `json:"total_price"`
}

type InvoiceDetails struct {
	TransactionID uint      `json:"transaction_id"`
	AppointmentID uint      `json:"appointment_id"`
	CustomerID    uint      `json:"customer_id"`
	GatewayRef    string    `json:"gateway_ref"`
	Amount        int64     `json:"amount"`
	BankCode      string    `json:"bank_code"`
	PaidAt        time.Time `json:"paid_at"`
	Services      []string  `json:"services"`
}

func NewConfirmationTask(d AppointmentDetails) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, nil, err
	}
	return asynq.NewTask(TypeAppointmentConfirmation, b), []asynq.Option{asynq.MaxRetry(5)}, nil
}

// NewInvoiceTask is keyed on the transaction so a duplicate enqueue for the
// same payment is rejected by the queue.
func NewInvoiceTask(d InvoiceDetails) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.TaskID("invoice:" + d.GatewayRef),
	}
	return asynq.NewTask(TypeInvoice, b), opts, nil
}
