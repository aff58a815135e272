package dto

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type TransactionView struct {
	ID                   uint       `json:"id"`
	AppointmentID        uint       `json:"appointment_id"`
	Amount               int64      `json:"amount"`
	GatewayRef           string     `json:"gateway_ref"`
	GatewayTransactionNo string     `json:"gateway_transaction_no,omitempty"`
	ResponseCode         string     `json:"response_code,omitempty"`
	BankCode             string     `json:"bank_code,omitempty"`
	Status               string     `json:"status"`
	PaymentMethod        string     `json:"payment_method"`
	PaidAt               *time.Time `json:"paid_at,omitempty"`
	RefundedAt           *time.Time `json:"refunded_at,omitempty"`
	RefundAmount         *int64     `json:"refund_amount,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func NewTransactionView(t *models.Transaction) TransactionView {
	return TransactionView{
		ID:                   t.ID,
		AppointmentID:        t.AppointmentID,
		Amount:               t.Amount,
		GatewayRef:           t.GatewayRef,
		GatewayTransactionNo: t.GatewayTransactionNo,
		ResponseCode:         t.ResponseCode,
		BankCode:             t.BankCode,
		Status:               t.Status,
		PaymentMethod:        t.PaymentMethod,
		PaidAt:               t.PaidAt,
		RefundedAt:           t.RefundedAt,
		RefundAmount:         t.RefundAmount,
		CreatedAt:            t.CreatedAt,
	}
}

func NewTransactionViews(ts []models.Transaction) []TransactionView {
	out := make([]TransactionView, 0, len(ts))
	for i := range ts {
		out = append(out, NewTransactionView(&ts[i]))
	}
	return out
}
