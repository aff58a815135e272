package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BarbershopID uint       `gorm:"index" json:"barbershop_id"`
	Barbershop   Barbershop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	CustomerID uint `gorm:"index;not null" json:"customer_id"`

	BarberID uint   `gorm:"not null;index:idx_appointments_barber_date,priority:1" json:"barber_id"`
	Barber   Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"barber"`

	Services []Service `gorm:"many2many:appointment_services;" json:"services"`

	// Date is the civil day at 00:00 UTC; StartTime/EndTime are wall-clock
	// values of the shop's timezone.
	Date        time.Time `gorm:"type:date;not null;index:idx_appointments_barber_date,priority:2" json:"date"`
	StartTime   string    `gorm:"size:5;not null" json:"start_time"`
	EndTime     string    `gorm:"size:5;not null" json:"end_time"`
	StartMinute int       `gorm:"not null" json:"-"`
	EndMinute   int       `gorm:"not null" json:"-"`

	TotalPrice    int64 `gorm:"not null" json:"total_price"`
	TotalDuration int   `gorm:"not null" json:"total_duration"`

	Status        string `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentStatus string `gorm:"size:10;default:'unpaid'" json:"payment_status"`

	CancelReason string `gorm:"size:500" json:"cancel_reason"`
	Notes        string `gorm:"size:500" json:"notes"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ap *Appointment) ServiceIDs() []uint {
	ids := make([]uint, 0, len(ap.Services))
	for _, s := range ap.Services {
		ids = append(ids, s.ID)
	}
	return ids
}
