package appointment

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timeofday"
)

const (
	DefaultSlotMinutes = 30
	DefaultLeadMinutes = 30
)

const (
	ReasonDayOff            = "day off"
	ReasonBarberUnavailable = "barber unavailable"
	ReasonPastDate          = "past date"
)

type AvailabilityInput struct {
	BarberID uint
	Date     time.Time
}

type SlotOptions struct {
	SlotMinutes int
	LeadMinutes int
}

func (o SlotOptions) withDefaults() SlotOptions {
	if o.SlotMinutes <= 0 {
		o.SlotMinutes = DefaultSlotMinutes
	}
	if o.LeadMinutes < 0 {
		o.LeadMinutes = DefaultLeadMinutes
	}
	return o
}

type Availability struct {
	BarberID     uint         `json:"barber_id"`
	Date         string       `json:"date"`
	Weekday      string       `json:"weekday"`
	WorkingHours *DaySchedule `json:"working_hours,omitempty"`
	Slots        []string     `json:"slots"`
	Reason       string       `json:"reason,omitempty"`
}

// FreeSlots builds the slot grid of the day's working window and removes
// every slot that overlaps a non-cancelled appointment of that date. It does
// not look at the current time, so the result can be cached.
func FreeSlots(
	barberID uint,
	schedule WeeklySchedule,
	available bool,
	appointments []models.Appointment,
	date time.Time,
	slotMinutes int,
) Availability {
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}

	day := CivilDate(date)
	weekday := WeekdayOf(day)
	out := Availability{
		BarberID: barberID,
		Date:     day.Format(DateLayout),
		Weekday:  weekday.String(),
		Slots:    []string{},
	}

	if !available {
		out.Reason = ReasonBarberUnavailable
		return out
	}

	ds := schedule.Day(weekday)
	start, end, ok := ds.Window()
	if !ok {
		out.Reason = ReasonDayOff
		return out
	}
	out.WorkingHours = &ds

	var grid []int
	for m := start; m < end; m += slotMinutes {
		grid = append(grid, m)
	}

	booked := make([]bool, len(grid))
	for i := range appointments {
		ap := &appointments[i]
		if Status(ap.Status) == StatusCancelled || !CivilDate(ap.Date).Equal(day) {
			continue
		}
		apStart, apEnd, ok := Minutes(ap)
		if !ok {
			continue
		}
		for j, slot := range grid {
			if timeofday.OverlapsMinutes(slot, slot+slotMinutes, apStart, apEnd) {
				booked[j] = true
			}
		}
	}

	for j, slot := range grid {
		if !booked[j] {
			out.Slots = append(out.Slots, timeofday.FromMinutes(slot))
		}
	}

	return out
}

// ApplyLeadTime drops past dates entirely and, when the date is today, every
// slot starting before now + lead.
func ApplyLeadTime(a Availability, now time.Time, leadMinutes int) Availability {
	day, err := ParseCivilDate(a.Date)
	if err != nil {
		return a
	}

	today := CivilDate(now)
	if day.Before(today) {
		a.Slots = []string{}
		if a.Reason == "" {
			a.Reason = ReasonPastDate
		}
		return a
	}
	if !day.Equal(today) {
		return a
	}

	cutoff := now.Hour()*60 + now.Minute() + leadMinutes
	kept := make([]string, 0, len(a.Slots))
	for _, s := range a.Slots {
		m, err := timeofday.ToMinutes(s)
		if err != nil || m < cutoff {
			continue
		}
		kept = append(kept, s)
	}
	a.Slots = kept
	return a
}

// AvailableSlots is FreeSlots followed by ApplyLeadTime.
func AvailableSlots(
	barber *models.Barber,
	appointments []models.Appointment,
	date time.Time,
	now time.Time,
	opts SlotOptions,
) Availability {
	opts = opts.withDefaults()
	free := FreeSlots(
		barber.ID,
		ScheduleOf(barber.WorkingHours),
		barber.IsAvailable,
		appointments,
		date,
		opts.SlotMinutes,
	)
	return ApplyLeadTime(free, now, opts.LeadMinutes)
}

// Minutes returns the appointment interval in minutes of day.
func Minutes(ap *models.Appointment) (start, end int, ok bool) {
	if ap.EndMinute > ap.StartMinute {
		return ap.StartMinute, ap.EndMinute, true
	}
	s, err := timeofday.ToMinutes(ap.StartTime)
	if err != nil {
		return 0, 0, false
	}
	e, err := timeofday.EndToMinutes(ap.EndTime)
	if err != nil {
		return 0, 0, false
	}
	if e <= s {
		e = s + ap.TotalDuration
	}
	return s, e, e > s
}
