package appointment

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

const MaxTextLength = 500

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	Actor      domain.Actor
	BarberID   uint
	ServiceIDs []uint
	Date       string
	StartTime  string
	Notes      string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo    domain.Repository
	cache   domain.SlotCache
	clock   timezone.Clock
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewCreateAppointment(
	repo domain.Repository,
	cache domain.SlotCache,
	clock timezone.Clock,
	audit *audit.Dispatcher,
	m *metrics.Metrics,
	log *zap.Logger,
) *CreateAppointment {
	return &CreateAppointment{
		repo:    repo,
		cache:   orNopCache(cache),
		clock:   clock,
		audit:   audit,
		metrics: m,
		log:     orNopLogger(log),
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	ap, err := uc.execute(ctx, in)
	if err != nil {
		uc.metrics.Booking(string(httperr.KindOf(err)))
		return nil, err
	}
	uc.metrics.Booking("created")
	return ap, nil
}

func (uc *CreateAppointment) execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// Actor / input
	// --------------------------------------------------
	if in.Actor.Role != domain.RoleCustomer {
		return nil, httperr.Permission("forbidden", "only customers can book appointments")
	}
	if err := checkText("notes", in.Notes); err != nil {
		return nil, err
	}

	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Barber / services
	// --------------------------------------------------
	barber, err := uc.repo.GetBarber(ctx, in.BarberID)
	if err != nil {
		return nil, err
	}

	found, err := uc.repo.ListServices(ctx, in.ServiceIDs)
	if err != nil {
		return nil, err
	}
	services, err := domain.SelectServices(in.ServiceIDs, found)
	if err != nil {
		return nil, err
	}
	price, duration := domain.Totals(services)

	// --------------------------------------------------
	// Window
	// --------------------------------------------------
	w, err := domain.NewWindow(date, in.StartTime, duration)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateWindow(barber, w, uc.clock.Now()); err != nil {
		return nil, err
	}

	ap := &models.Appointment{
		BarbershopID:  barber.BarbershopID,
		CustomerID:    in.Actor.UserID,
		BarberID:      barber.ID,
		Services:      services,
		Date:          w.Date,
		StartTime:     w.Start,
		EndTime:       w.End,
		StartMinute:   w.StartMin,
		EndMinute:     w.EndMin,
		TotalPrice:    price,
		TotalDuration: duration,
		Status:        string(domain.InitialStatus()),
		PaymentStatus: string(domain.PaymentUnpaid),
		Notes:         in.Notes,
	}

	// --------------------------------------------------
	// Overlap check + insert under the barber/day lock
	// --------------------------------------------------
	err = uc.repo.WithBarberDayLock(ctx, barber.ID, []time.Time{w.Date}, func(tx domain.Repository) error {
		existing, err := tx.ListAppointmentsForDay(ctx, barber.ID, w.Date)
		if err != nil {
			return err
		}
		if err := domain.FindConflict(w, existing, 0); err != nil {
			return err
		}
		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, barber.ID, w.Date.Format(domain.DateLayout))
	ap.Barber = *barber

	uc.audit.Dispatch(audit.Event{
		ActorID:   audit.Ptr(in.Actor.UserID),
		ActorRole: string(in.Actor.Role),
		Action:    "appointment_created",
		Entity:    "appointment",
		EntityID:  audit.Ptr(ap.ID),
		Metadata: map[string]any{
			"barber_id": barber.ID,
			"date":      w.Date.Format(domain.DateLayout),
			"start":     w.Start,
			"end":       w.End,
		},
	})

	uc.log.Info("appointment created",
		zap.Uint("appointment_id", ap.ID),
		zap.Uint("barber_id", barber.ID),
		zap.String("date", w.Date.Format(domain.DateLayout)),
		zap.String("start", w.Start),
	)

	return ap, nil
}

// ======================================================
// helpers
// ======================================================

func parseDate(s string) (time.Time, error) {
	d, err := domain.ParseCivilDate(s)
	if err != nil {
		return time.Time{}, httperr.Validation("invalid_date", "date must be YYYY-MM-DD")
	}
	return d, nil
}

func checkText(field, s string) error {
	if utf8.RuneCountInString(s) > MaxTextLength {
		return httperr.Validation("text_too_long", "%s must be at most %d characters", field, MaxTextLength)
	}
	return nil
}

func orNopCache(c domain.SlotCache) domain.SlotCache {
	if c == nil {
		return domain.NopSlotCache{}
	}
	return c
}

func orNopLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
