package appointment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type RescheduleInput struct {
	Actor         domain.Actor
	AppointmentID uint
	Date          string
	StartTime     string
}

// RescheduleAppointment moves an appointment to a new window. Duration and
// price keep the snapshot taken at booking time.
type RescheduleAppointment struct {
	repo    domain.Repository
	cache   domain.SlotCache
	clock   timezone.Clock
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewRescheduleAppointment(
	repo domain.Repository,
	cache domain.SlotCache,
	clock timezone.Clock,
	audit *audit.Dispatcher,
	m *metrics.Metrics,
	log *zap.Logger,
) *RescheduleAppointment {
	return &RescheduleAppointment{
		repo:    repo,
		cache:   orNopCache(cache),
		clock:   clock,
		audit:   audit,
		metrics: m,
		log:     orNopLogger(log),
	}
}

func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleInput,
) (*models.Appointment, error) {

	ap, err := uc.execute(ctx, in)
	action := string(domain.ActionReschedule)
	if err != nil {
		uc.metrics.Transition(action, string(httperr.KindOf(err)))
		return nil, err
	}
	uc.metrics.Transition(action, "ok")
	return ap, nil
}

func (uc *RescheduleAppointment) execute(
	ctx context.Context,
	in RescheduleInput,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(domain.ActionReschedule, in.Actor, ap); err != nil {
		return nil, err
	}
	if err := domain.CanTransition(domain.ActionReschedule, domain.Status(ap.Status)); err != nil {
		return nil, err
	}

	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	w, err := domain.NewWindow(date, in.StartTime, ap.TotalDuration)
	if err != nil {
		return nil, err
	}

	barber, err := uc.repo.GetBarber(ctx, ap.BarberID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateWindow(barber, w, uc.clock.Now()); err != nil {
		return nil, err
	}

	oldDate := domain.CivilDate(ap.Date)
	from := domain.Status(ap.Status)

	err = uc.repo.WithBarberDayLock(ctx, barber.ID, []time.Time{oldDate, w.Date}, func(tx domain.Repository) error {
		existing, err := tx.ListAppointmentsForDay(ctx, barber.ID, w.Date)
		if err != nil {
			return err
		}
		if err := domain.FindConflict(w, existing, ap.ID); err != nil {
			return err
		}

		if err := domain.Apply(domain.ActionReschedule, ap, uc.clock.Now(), ""); err != nil {
			return err
		}
		ap.Date = w.Date
		ap.StartTime, ap.EndTime = w.Start, w.End
		ap.StartMinute, ap.EndMinute = w.StartMin, w.EndMin

		saved, err := tx.SaveIfStatus(ctx, ap, from)
		if err != nil {
			return err
		}
		if !saved {
			return staleStatus(ctx, tx, ap.ID, domain.ActionReschedule)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, barber.ID,
		oldDate.Format(domain.DateLayout),
		w.Date.Format(domain.DateLayout),
	)

	uc.audit.Dispatch(audit.Event{
		ActorID:   audit.Ptr(in.Actor.UserID),
		ActorRole: string(in.Actor.Role),
		Action:    "appointment_rescheduled",
		Entity:    "appointment",
		EntityID:  audit.Ptr(ap.ID),
		Metadata: map[string]any{
			"from_date": oldDate.Format(domain.DateLayout),
			"to_date":   w.Date.Format(domain.DateLayout),
			"start":     w.Start,
			"end":       w.End,
		},
	})

	uc.log.Info("appointment rescheduled",
		zap.Uint("appointment_id", ap.ID),
		zap.String("date", w.Date.Format(domain.DateLayout)),
		zap.String("start", w.Start),
	)

	return committed(ctx, uc.repo, ap), nil
}
