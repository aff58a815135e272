package dto

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type ServiceDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	DurationMin int    `json:"duration_min"`
}

type BarberDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AppointmentView is the read projection returned by every appointment
// endpoint. It is built from committed state only.
type AppointmentView struct {
	ID            uint         `json:"id"`
	CustomerID    uint         `json:"customer_id"`
	Barber        BarberDTO    `json:"barber"`
	Services      []ServiceDTO `json:"services"`
	Date          string       `json:"date"`
	StartTime     string       `json:"start_time"`
	EndTime       string       `json:"end_time"`
	TotalPrice    int64        `json:"total_price"`
	TotalDuration int          `json:"total_duration"`
	Status        string       `json:"status"`
	PaymentStatus string       `json:"payment_status"`
	Notes         string       `json:"notes,omitempty"`
	CancelReason  string       `json:"cancel_reason,omitempty"`
	ConfirmedAt   *time.Time   `json:"confirmed_at,omitempty"`
	StartedAt     *time.Time   `json:"started_at,omitempty"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	CancelledAt   *time.Time   `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

func NewAppointmentView(ap *models.Appointment) AppointmentView {
	services := make([]ServiceDTO, 0, len(ap.Services))
	for _, s := range ap.Services {
		services = append(services, ServiceDTO{
			ID:          s.ID,
			Name:        s.Name,
			Price:       s.Price,
			DurationMin: s.DurationMin,
		})
	}

	return AppointmentView{
		ID:            ap.ID,
		CustomerID:    ap.CustomerID,
		Barber:        BarberDTO{ID: ap.BarberID, Name: ap.Barber.Name},
		Services:      services,
		Date:          ap.Date.Format("2006-01-02"),
		StartTime:     ap.StartTime,
		EndTime:       ap.EndTime,
		TotalPrice:    ap.TotalPrice,
		TotalDuration: ap.TotalDuration,
		Status:        ap.Status,
		PaymentStatus: ap.PaymentStatus,
		Notes:         ap.Notes,
		CancelReason:  ap.CancelReason,
		ConfirmedAt:   ap.ConfirmedAt,
		StartedAt:     ap.StartedAt,
		CompletedAt:   ap.CompletedAt,
		CancelledAt:   ap.CancelledAt,
		CreatedAt:     ap.CreatedAt,
	}
}

func NewAppointmentViews(aps []models.Appointment) []AppointmentView {
	out := make([]AppointmentView, 0, len(aps))
	for i := range aps {
		out = append(out, NewAppointmentView(&aps[i]))
	}
	return out
}
