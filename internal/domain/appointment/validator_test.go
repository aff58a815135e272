package appointment

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func TestNewWindow(t *testing.T) {
	w, err := NewWindow(monday, "10:00", 45)
	require.NoError(t, err)
	assert.Equal(t, "10:45", w.End)
	assert.Equal(t, 600, w.StartMin)
	assert.Equal(t, 645, w.EndMin)

	_, err = NewWindow(monday, "23:30", 45)
	assert.True(t, httperr.IsCode(err, "crosses_midnight"))

	_, err = NewWindow(monday, "7:00", 45)
	assert.True(t, httperr.Is(err, httperr.KindValidation))
}

func TestSelectServices(t *testing.T) {
	found := []models.Service{
		{ID: 1, Name: "Cut", Price: 100000, DurationMin: 30, Active: true},
		{ID: 2, Name: "Shave", Price: 50000, DurationMin: 15, Active: true},
		{ID: 3, Name: "Old", Price: 1, DurationMin: 5, Active: false},
	}

	got, err := SelectServices([]uint{2, 1, 2}, found)
	require.NoError(t, err)
	require.Len(t, got, 2)
	price, dur := Totals(got)
	assert.Equal(t, int64(150000), price)
	assert.Equal(t, 45, dur)

	_, err = SelectServices([]uint{3}, found)
	assert.True(t, httperr.IsCode(err, "service_inactive"))

	_, err = SelectServices([]uint{9}, found)
	assert.True(t, httperr.Is(err, httperr.KindNotFound))

	_, err = SelectServices(nil, found)
	assert.True(t, httperr.Is(err, httperr.KindValidation))
}

func TestCheckWorkingHours(t *testing.T) {
	sched := ScheduleOf(weekdayBarber().WorkingHours)

	w, _ := NewWindow(monday, "11:30", 30)
	assert.NoError(t, CheckWorkingHours(sched, w))

	w, _ = NewWindow(monday, "11:45", 30)
	assert.True(t, httperr.IsCode(CheckWorkingHours(sched, w), "outside_working_hours"))

	w, _ = NewWindow(monday, "08:30", 30)
	assert.True(t, httperr.IsCode(CheckWorkingHours(sched, w), "outside_working_hours"))

	w, _ = NewWindow(sunday, "10:00", 30)
	assert.True(t, httperr.IsCode(CheckWorkingHours(sched, w), "day_off"))
}

func TestCheckWorkingHours_ShiftEndingAtMidnight(t *testing.T) {
	b := weekdayBarber()
	b.WorkingHours[0].StartTime, b.WorkingHours[0].EndTime = "22:00", "24:00" // monday
	sched := ScheduleOf(b.WorkingHours)

	w, err := NewWindow(monday, "23:30", 30)
	require.NoError(t, err)
	assert.Equal(t, "24:00", w.End)
	assert.NoError(t, CheckWorkingHours(sched, w))

	got := FreeSlots(b.ID, sched, true, []models.Appointment{
		booked(1, monday, "23:00", "24:00", StatusPending),
	}, monday, 30)
	assert.Equal(t, []string{"22:00", "22:30"}, got.Slots)
}

func TestCheckNotPast(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	w, _ := NewWindow(monday, "10:30", 30)
	assert.NoError(t, CheckNotPast(w, now))

	w, _ = NewWindow(monday, "09:30", 30)
	assert.True(t, httperr.IsCode(CheckNotPast(w, now), "past_time"))

	w, _ = NewWindow(sunday, "10:30", 30)
	assert.True(t, httperr.IsCode(CheckNotPast(w, now), "past_date"))
}

func TestFindConflict_HalfOpen(t *testing.T) {
	existing := []models.Appointment{booked(1, monday, "10:00", "10:30", StatusPending)}

	w, _ := NewWindow(monday, "10:15", 30)
	assert.True(t, httperr.Is(FindConflict(w, existing, 0), httperr.KindConflict))

	w, _ = NewWindow(monday, "10:30", 30)
	assert.NoError(t, FindConflict(w, existing, 0))

	w, _ = NewWindow(monday, "09:30", 30)
	assert.NoError(t, FindConflict(w, existing, 0))
}

func TestFindConflict_ExcludesSelfAndCancelled(t *testing.T) {
	existing := []models.Appointment{
		booked(1, monday, "10:00", "10:30", StatusConfirmed),
		booked(2, monday, "11:00", "11:30", StatusCancelled),
	}

	w, _ := NewWindow(monday, "10:15", 30)
	assert.NoError(t, FindConflict(w, existing, 1))

	w, _ = NewWindow(monday, "11:00", 30)
	assert.NoError(t, FindConflict(w, existing, 0))
}

// Accepting random windows one at a time through FindConflict must never
// leave two overlapping intervals behind, and an exact copy of an accepted
// window is always rejected.
func TestFindConflict_AcceptedSetNeverOverlaps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		var accepted []models.Appointment
		for i := 0; i < 40; i++ {
			start := 9*60 + rng.Intn(8*60)
			dur := 5 * (1 + rng.Intn(12))
			w, err := NewWindow(monday, formatMinutes(start), dur)
			require.NoError(t, err)

			if err := FindConflict(w, accepted, 0); err != nil {
				continue
			}
			accepted = append(accepted, models.Appointment{
				ID: uint(len(accepted) + 1), Date: w.Date, Status: string(StatusPending),
				StartTime: w.Start, EndTime: w.End, StartMinute: w.StartMin, EndMinute: w.EndMin,
			})

			dup, _ := NewWindow(monday, w.Start, dur)
			assert.Error(t, FindConflict(dup, accepted, 0))
		}

		for i := range accepted {
			for j := i + 1; j < len(accepted); j++ {
				a, b := accepted[i], accepted[j]
				overlap := a.StartMinute < b.EndMinute && b.StartMinute < a.EndMinute
				assert.False(t, overlap, "%s-%s overlaps %s-%s", a.StartTime, a.EndTime, b.StartTime, b.EndTime)
			}
		}
	}
}

func formatMinutes(m int) string {
	return time.Date(0, 1, 1, m/60, m%60, 0, 0, time.UTC).Format("15:04")
}
