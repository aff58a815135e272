package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func TestCanTransition_Table(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled}
	allowed := map[Action][]Status{
		ActionConfirm:    {StatusPending},
		ActionReject:     {StatusPending},
		ActionStart:      {StatusConfirmed},
		ActionComplete:   {StatusInProgress},
		ActionCancel:     {StatusPending, StatusConfirmed},
		ActionReschedule: {StatusPending, StatusConfirmed},
	}

	for action, from := range allowed {
		for _, s := range all {
			err := CanTransition(action, s)
			if contains(from, s) {
				assert.NoError(t, err, "%s from %s", action, s)
			} else {
				assert.True(t, httperr.Is(err, httperr.KindState), "%s from %s", action, s)
			}
		}
	}
}

func TestCompletedCannotBeConfirmed(t *testing.T) {
	ap := &models.Appointment{Status: string(StatusCompleted)}
	err := Apply(ActionConfirm, ap, time.Now(), "")
	require.Error(t, err)
	assert.True(t, httperr.Is(err, httperr.KindState))
	assert.Contains(t, err.Error(), "completed")
	assert.Equal(t, string(StatusCompleted), ap.Status)
}

func TestApply_StampsTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	ap := &models.Appointment{Status: string(StatusPending)}

	require.NoError(t, Apply(ActionConfirm, ap, now, ""))
	assert.Equal(t, string(StatusConfirmed), ap.Status)
	require.NotNil(t, ap.ConfirmedAt)

	require.NoError(t, Apply(ActionReschedule, ap, now, ""))
	assert.Equal(t, string(StatusPending), ap.Status)
	assert.Nil(t, ap.ConfirmedAt)

	require.NoError(t, Apply(ActionReject, ap, now, "sick"))
	assert.Equal(t, string(StatusCancelled), ap.Status)
	assert.Equal(t, "sick", ap.CancelReason)
	require.NotNil(t, ap.CancelledAt)
}

func TestAuthorize(t *testing.T) {
	ap := &models.Appointment{
		CustomerID: 7,
		Barber:     models.Barber{ID: 1, UserID: 100},
	}
	customer := Actor{UserID: 7, Role: RoleCustomer}
	stranger := Actor{UserID: 8, Role: RoleCustomer}
	barber := Actor{UserID: 100, Role: RoleBarber}
	otherBarber := Actor{UserID: 101, Role: RoleBarber}
	admin := Actor{UserID: 1, Role: RoleAdmin}

	assert.NoError(t, Authorize(ActionConfirm, barber, ap))
	assert.True(t, httperr.Is(Authorize(ActionConfirm, otherBarber, ap), httperr.KindPermission))
	assert.True(t, httperr.Is(Authorize(ActionConfirm, customer, ap), httperr.KindPermission))

	assert.NoError(t, Authorize(ActionCancel, customer, ap))
	assert.NoError(t, Authorize(ActionCancel, admin, ap))
	assert.True(t, httperr.Is(Authorize(ActionCancel, stranger, ap), httperr.KindPermission))
	assert.True(t, httperr.Is(Authorize(ActionCancel, barber, ap), httperr.KindPermission))

	assert.NoError(t, Authorize(ActionReschedule, customer, ap))
	assert.True(t, httperr.Is(Authorize(ActionReschedule, admin, ap), httperr.KindPermission))

	assert.True(t, CanView(barber, ap))
	assert.False(t, CanView(stranger, ap))
}

func contains(list []Status, s Status) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
