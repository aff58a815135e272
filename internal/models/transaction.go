package models

import "time"

type Transaction struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint  `gorm:"index;not null" json:"appointment_id"`
	CustomerID    uint  `gorm:"index;not null" json:"customer_id"`
	Amount        int64 `gorm:"not null" json:"amount"`

	// GatewayRef is minted locally and correlates the redirect with its callbacks.
	GatewayRef string `gorm:"size:100;uniqueIndex;not null" json:"gateway_ref"`

	GatewayTransactionNo string `gorm:"size:50" json:"gateway_transaction_no"`
	ResponseCode         string `gorm:"size:10" json:"response_code"`
	BankCode             string `gorm:"size:20" json:"bank_code"`

	Status        string `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentMethod string `gorm:"size:20;default:'vnpay'" json:"payment_method"`

	PaidAt       *time.Time `json:"paid_at"`
	RefundedAt   *time.Time `json:"refunded_at"`
	RefundAmount *int64     `json:"refund_amount"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
