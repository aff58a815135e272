package appointment

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// 2026-03-01 is a Sunday.
var (
	sunday = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
)

func weekdayBarber() *models.Barber {
	b := &models.Barber{ID: 1, UserID: 100, Name: "Minh", IsAvailable: true}
	for d := 1; d <= 6; d++ {
		b.WorkingHours = append(b.WorkingHours, models.WorkingHours{
			BarberID: 1, Weekday: d, StartTime: "09:00", EndTime: "12:00",
		})
	}
	b.WorkingHours = append(b.WorkingHours, models.WorkingHours{
		BarberID: 1, Weekday: 0, StartTime: "09:00", EndTime: "12:00", Off: true,
	})
	return b
}

func booked(id uint, date time.Time, start, end string, status Status) models.Appointment {
	w, _ := NewWindow(date, start, mustMinutes(end)-mustMinutes(start))
	return models.Appointment{
		ID:          id,
		BarberID:    1,
		Date:        w.Date,
		StartTime:   w.Start,
		EndTime:     w.End,
		StartMinute: w.StartMin,
		EndMinute:   w.EndMin,
		Status:      string(status),
	}
}

func mustMinutes(s string) int {
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h*60 + m
}
