package appointment

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Apply moves ap to the action's target status and stamps the matching
// timestamp. The caller persists it conditionally on the previous status.
func Apply(action Action, ap *models.Appointment, now time.Time, reason string) error {
	if err := CanTransition(action, Status(ap.Status)); err != nil {
		return err
	}

	to, _ := Target(action)
	ap.Status = string(to)

	switch action {
	case ActionConfirm:
		ap.ConfirmedAt = &now
	case ActionStart:
		ap.StartedAt = &now
	case ActionComplete:
		ap.CompletedAt = &now
	case ActionReject, ActionCancel:
		ap.CancelledAt = &now
		ap.CancelReason = reason
	case ActionReschedule:
		ap.ConfirmedAt = nil
	}

	return nil
}
