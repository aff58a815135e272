package appointment

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timeofday"
)

// Window is a proposed [start,end) on a civil date.
type Window struct {
	Date     time.Time
	Start    string
	End      string
	StartMin int
	EndMin   int
}

// NewWindow derives the end from the duration and refuses windows that would
// cross midnight instead of wrapping.
func NewWindow(date time.Time, start string, duration int) (Window, error) {
	startMin, err := timeofday.ToMinutes(start)
	if err != nil {
		return Window{}, httperr.Validation("invalid_time", "start time must be HH:MM")
	}
	if duration <= 0 {
		return Window{}, httperr.Validation("invalid_duration", "total duration must be positive")
	}
	ok, _ := timeofday.EndsBeforeMidnight(start, duration)
	if !ok {
		return Window{}, httperr.Validation("crosses_midnight", "appointment cannot end after midnight")
	}

	endMin := startMin + duration
	end := timeofday.FromMinutes(endMin)
	if endMin == timeofday.MinutesPerDay {
		end = timeofday.EndOfDay
	}

	return Window{
		Date:     CivilDate(date),
		Start:    timeofday.FromMinutes(startMin),
		End:      end,
		StartMin: startMin,
		EndMin:   endMin,
	}, nil
}

// SelectServices returns the requested services in request order, ignoring
// duplicate ids. Every id must exist and be active.
func SelectServices(requested []uint, found []models.Service) ([]models.Service, error) {
	if len(requested) == 0 {
		return nil, httperr.Validation("services_required", "at least one service is required")
	}

	byID := make(map[uint]models.Service, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}

	seen := make(map[uint]bool, len(requested))
	out := make([]models.Service, 0, len(requested))
	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true

		s, ok := byID[id]
		if !ok {
			return nil, httperr.NotFoundErr("service_not_found", "service %d not found", id)
		}
		if !s.Active {
			return nil, httperr.Validation("service_inactive", "service %q is not available", s.Name)
		}
		out = append(out, s)
	}
	return out, nil
}

func Totals(services []models.Service) (price int64, duration int) {
	for _, s := range services {
		price += s.Price
		duration += s.DurationMin
	}
	return price, duration
}

// CheckBarber fails when the barber is globally unavailable.
func CheckBarber(barber *models.Barber) error {
	if !barber.IsAvailable {
		return httperr.Conflict("barber_unavailable", "barber is not accepting appointments")
	}
	return nil
}

// CheckNotPast rejects past dates and, for today, start times already gone.
func CheckNotPast(w Window, now time.Time) error {
	today := CivilDate(now)
	if w.Date.Before(today) {
		return httperr.Validation("past_date", "cannot book a date in the past")
	}
	if w.Date.Equal(today) && w.StartMin < now.Hour()*60+now.Minute() {
		return httperr.Validation("past_time", "cannot book a time in the past")
	}
	return nil
}

// CheckWorkingHours requires the weekday to be on and [start,end) to sit
// inside the day's working interval.
func CheckWorkingHours(schedule WeeklySchedule, w Window) error {
	weekday := WeekdayOf(w.Date)
	start, end, ok := schedule.Day(weekday).Window()
	if !ok {
		return httperr.Conflict("day_off", "barber does not work on %s", weekday)
	}
	if w.StartMin < start || w.EndMin > end {
		return httperr.Conflict("outside_working_hours", "%s-%s is outside working hours", w.Start, w.End)
	}
	return nil
}

// FindConflict reports an overlap with any non-cancelled appointment of the
// same date. excludeID skips the appointment being rescheduled.
func FindConflict(w Window, existing []models.Appointment, excludeID uint) error {
	for i := range existing {
		ap := &existing[i]
		if ap.ID == excludeID && excludeID != 0 {
			continue
		}
		if Status(ap.Status) == StatusCancelled || !CivilDate(ap.Date).Equal(w.Date) {
			continue
		}
		s, e, ok := Minutes(ap)
		if !ok {
			continue
		}
		if timeofday.OverlapsMinutes(w.StartMin, w.EndMin, s, e) {
			return httperr.Conflict(
				"time_conflict",
				"%s-%s overlaps appointment %d (%s-%s)",
				w.Start, w.End, ap.ID, ap.StartTime, ap.EndTime,
			)
		}
	}
	return nil
}

// ValidateWindow runs every check a booking window needs before the overlap
// check: barber availability, past dates, weekday and working hours.
func ValidateWindow(barber *models.Barber, w Window, now time.Time) error {
	if err := CheckBarber(barber); err != nil {
		return err
	}
	if err := CheckNotPast(w, now); err != nil {
		return err
	}
	return CheckWorkingHours(ScheduleOf(barber.WorkingHours), w)
}
