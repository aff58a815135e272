package appointment

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type TransitionInput struct {
	Actor         domain.Actor
	AppointmentID uint
	Action        domain.Action
	Reason        string
}

// TransitionAppointment handles confirm, reject, start, complete and cancel.
type TransitionAppointment struct {
	repo     domain.Repository
	cache    domain.SlotCache
	clock    timezone.Clock
	notifier notify.Notifier
	audit    *audit.Dispatcher
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewTransitionAppointment(
	repo domain.Repository,
	cache domain.SlotCache,
	clock timezone.Clock,
	notifier notify.Notifier,
	audit *audit.Dispatcher,
	m *metrics.Metrics,
	log *zap.Logger,
) *TransitionAppointment {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &TransitionAppointment{
		repo:     repo,
		cache:    orNopCache(cache),
		clock:    clock,
		notifier: notifier,
		audit:    audit,
		metrics:  m,
		log:      orNopLogger(log),
	}
}

func (uc *TransitionAppointment) Execute(
	ctx context.Context,
	in TransitionInput,
) (*models.Appointment, error) {

	ap, err := uc.execute(ctx, in)
	if err != nil {
		uc.metrics.Transition(string(in.Action), string(httperr.KindOf(err)))
		return nil, err
	}
	uc.metrics.Transition(string(in.Action), "ok")
	return ap, nil
}

func (uc *TransitionAppointment) execute(
	ctx context.Context,
	in TransitionInput,
) (*models.Appointment, error) {

	if in.Action == domain.ActionReschedule {
		return nil, httperr.Validation("invalid_action", "use reschedule for %q", in.Action)
	}
	if err := checkText("reason", in.Reason); err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(in.Action, in.Actor, ap); err != nil {
		return nil, err
	}

	from := domain.Status(ap.Status)
	if err := domain.Apply(in.Action, ap, uc.clock.Now(), in.Reason); err != nil {
		return nil, err
	}

	saved, err := uc.repo.SaveIfStatus(ctx, ap, from)
	if err != nil {
		return nil, err
	}
	if !saved {
		return nil, staleStatus(ctx, uc.repo, ap.ID, in.Action)
	}

	if in.Action == domain.ActionCancel || in.Action == domain.ActionReject {
		uc.cache.Invalidate(ctx, ap.BarberID, ap.Date.Format(domain.DateLayout))
	}
	if in.Action == domain.ActionConfirm {
		uc.notifier.SendAppointmentConfirmation(ctx, ap)
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:   audit.Ptr(in.Actor.UserID),
		ActorRole: string(in.Actor.Role),
		Action:    "appointment_" + string(in.Action),
		Entity:    "appointment",
		EntityID:  audit.Ptr(ap.ID),
		Metadata: map[string]any{
			"from":   string(from),
			"to":     ap.Status,
			"reason": in.Reason,
		},
	})

	uc.log.Info("appointment transition",
		zap.Uint("appointment_id", ap.ID),
		zap.String("action", string(in.Action)),
		zap.String("from", string(from)),
		zap.String("to", ap.Status),
	)

	return committed(ctx, uc.repo, ap), nil
}

// committed re-reads ap after a write so fields owned by other writers,
// such as the payment status, are current in the response.
func committed(ctx context.Context, repo domain.Repository, ap *models.Appointment) *models.Appointment {
	fresh, err := repo.GetAppointment(ctx, ap.ID)
	if err != nil {
		return ap
	}
	return fresh
}

// staleStatus reports a lost compare-and-set with the status found now.
func staleStatus(ctx context.Context, repo domain.Repository, id uint, action domain.Action) error {
	fresh, err := repo.GetAppointment(ctx, id)
	if err != nil {
		return err
	}
	return httperr.State(fresh.Status, "cannot %s appointment", action)
}
