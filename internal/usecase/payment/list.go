package payment

import (
	"context"

	appt "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/payment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type ListTransactions struct {
	repo domain.Repository
}

func NewListTransactions(repo domain.Repository) *ListTransactions {
	return &ListTransactions{repo: repo}
}

func (uc *ListTransactions) Execute(
	ctx context.Context,
	actor appt.Actor,
	appointmentID uint,
) ([]models.Transaction, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !appt.CanView(actor, ap) {
		return nil, httperr.Permission("forbidden", "appointment %d is not visible to you", appointmentID)
	}
	return uc.repo.ListByAppointment(ctx, appointmentID)
}
