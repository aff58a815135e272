package appointment

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timeofday"
)

type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

func (d Weekday) String() string {
	if d < Sunday || d > Saturday {
		return "unknown"
	}
	return weekdayNames[d]
}

func WeekdayOf(date time.Time) Weekday {
	return Weekday(date.Weekday())
}

type DaySchedule struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Off   bool   `json:"off"`
}

// Window returns the working interval in minutes. ok is false when the day is
// off or the interval is empty or malformed.
func (d DaySchedule) Window() (start, end int, ok bool) {
	if d.Off {
		return 0, 0, false
	}
	s, err := timeofday.ToMinutes(d.Start)
	if err != nil {
		return 0, 0, false
	}
	e, err := timeofday.EndToMinutes(d.End)
	if err != nil {
		return 0, 0, false
	}
	if e <= s {
		return 0, 0, false
	}
	return s, e, true
}

type WeeklySchedule [7]DaySchedule

func (w WeeklySchedule) Day(d Weekday) DaySchedule {
	return w[d]
}

// ScheduleOf builds the weekly schedule from stored rows. Missing weekdays are off.
func ScheduleOf(rows []models.WorkingHours) WeeklySchedule {
	var w WeeklySchedule
	for i := range w {
		w[i] = DaySchedule{Off: true}
	}
	for _, r := range rows {
		if r.Weekday < 0 || r.Weekday > 6 {
			continue
		}
		w[r.Weekday] = DaySchedule{
			Start: r.StartTime,
			End:   r.EndTime,
			Off:   r.Off,
		}
	}
	return w
}

// CivilDate normalizes t to 00:00 UTC of its calendar day.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseCivilDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

const DateLayout = "2006-01-02"
