package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type ListAppointmentsInput struct {
	Actor     domain.Actor
	Status    string
	Date      string
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

type ListAppointmentsOutput struct {
	Items []models.Appointment
	Total int64
	Page  int
	Limit int
}

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// Execute lists appointments scoped by role: customers see their own,
// barbers the ones assigned to them, admins everything.
func (uc *ListAppointments) Execute(
	ctx context.Context,
	in ListAppointmentsInput,
) (*ListAppointmentsOutput, error) {

	f := domain.ListFilter{Page: in.Page, Limit: in.Limit}

	switch in.Actor.Role {
	case domain.RoleCustomer:
		f.CustomerID = &in.Actor.UserID
	case domain.RoleBarber:
		f.BarberUserID = &in.Actor.UserID
	case domain.RoleAdmin:
	default:
		return nil, httperr.Permission("forbidden", "unknown role %q", in.Actor.Role)
	}

	if in.Status != "" {
		st := domain.Status(in.Status)
		if !st.Valid() {
			return nil, httperr.Validation("invalid_status", "unknown status %q", in.Status)
		}
		f.Status = st
	}

	var err error
	if f.Date, err = optionalDate(in.Date); err != nil {
		return nil, err
	}
	if f.From, err = optionalDate(in.StartDate); err != nil {
		return nil, err
	}
	if f.To, err = optionalDate(in.EndDate); err != nil {
		return nil, err
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, httperr.Validation("invalid_range", "startDate must not be after endDate")
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}

	items, total, err := uc.repo.ListAppointments(ctx, f)
	if err != nil {
		return nil, err
	}

	return &ListAppointmentsOutput{
		Items: items,
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	}, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
