package appointment

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

func TestCreate_ComputesWindowAndTotals(t *testing.T) {
	s := newStore(t)
	cache := newRecordingCache()

	ap, err := newCreate(s, cache).Execute(context.Background(), CreateAppointmentInput{
		Actor:      customer,
		BarberID:   barberID,
		ServiceIDs: []uint{haircutID, shaveID, haircutID},
		Date:       mondayDate,
		StartTime:  "10:00",
		Notes:      "short on the sides",
	})
	require.NoError(t, err)

	assert.NotZero(t, ap.ID)
	assert.Equal(t, "10:45", ap.EndTime)
	assert.Equal(t, int64(150000), ap.TotalPrice)
	assert.Equal(t, 45, ap.TotalDuration)
	assert.Equal(t, string(domain.StatusPending), ap.Status)
	assert.Equal(t, string(domain.PaymentUnpaid), ap.PaymentStatus)
	assert.Equal(t, customerID, ap.CustomerID)
	assert.Len(t, ap.Services, 2)
	assert.Equal(t, []string{mondayDate}, cache.invalidated)
}

func TestCreate_OverlapBoundaries(t *testing.T) {
	s := newStore(t)
	book(t, s, mondayDate, "10:00", haircutID)

	uc := newCreate(s, nil)
	try := func(start string) error {
		_, err := uc.Execute(context.Background(), CreateAppointmentInput{
			Actor: customer, BarberID: barberID, ServiceIDs: []uint{haircutID},
			Date: mondayDate, StartTime: start,
		})
		return err
	}

	err := try("10:15")
	require.Error(t, err)
	assert.True(t, httperr.IsCode(err, "time_conflict"))

	assert.NoError(t, try("10:30"))
	assert.NoError(t, try("09:30"))
}

func TestCreate_CancelledAppointmentFreesWindow(t *testing.T) {
	s := newStore(t)
	ap := book(t, s, mondayDate, "10:00", haircutID)
	setStatus(t, s, ap.ID, domain.StatusCancelled)

	again := book(t, s, mondayDate, "10:00", haircutID)
	assert.NotEqual(t, ap.ID, again.ID)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		in   CreateAppointmentInput
		kind httperr.Kind
		code string
	}{
		{
			name: "barber cannot book",
			in:   CreateAppointmentInput{Actor: barber, BarberID: barberID, ServiceIDs: []uint{haircutID}, Date: mondayDate, StartTime: "10:00"},
			kind: httperr.KindPermission, code: "forbidden",
		},
		{
			name: "sunday is off",
			in:   CreateAppointmentInput{Actor: customer, BarberID: barberID, ServiceIDs: []uint{haircutID}, Date: sundayDate, StartTime: "10:00"},
			kind: httperr.KindConflict, code: "day_off",
		},
		{
			name: "outside working hours",
			in:   CreateAppointmentInput{Actor: customer, BarberID: barberID, ServiceIDs: []uint{haircutID}, Date: mondayDate, StartTime: "11:45"},
			kind: httperr.KindConflict, code: "outside_working_hours",
		},
		{
			name: "past date",
			in:   CreateAppointmentInput{Actor: customer, BarberID: barberID, ServiceIDs: []uint{haircutID}, Date: "2026-02-27", StartTime: "10:00"},
			kind: httperr.KindValidation, code: "past_date",
		},
		{
			name: "inactive service",
			in:   CreateAppointmentInput{Actor: customer, BarberID: barberID, ServiceIDs: []uint{retiredID}, Date: mondayDate, StartTime: "10:00"},
			kind: httperr.KindValidation, code: "service_inactive",
		},
		{
			name: "unknown service",
			in:   CreateAppointmentInput{Actor: customer, BarberID: barberID, ServiceIDs: []uint{999}, Date: mondayDate, StartTime: "10:00"},
			kind: httperr.KindNotFound, code: "service_not_found",
		},
		{
			name: "no services",
			in:   CreateAppointmentInput{Actor: customer, BarberID: barberID, Date: mondayDate, StartTime: "10:00"},
			kind: httperr.KindValidation, code: "services_required",
		},
		{
			name: "malformed time",
			in:   CreateAppointmentInput{Actor: customer, BarberID: barberID, ServiceIDs: []uint{haircutID}, Date: mondayDate, StartTime: "9am"},
			kind: httperr.KindValidation, code: "invalid_time",
		},
		{
			name: "malformed date",
			in:   CreateAppointmentInput{Actor: customer, BarberID: barberID, ServiceIDs: []uint{haircutID}, Date: "02/03/2026", StartTime: "10:00"},
			kind: httperr.KindValidation, code: "invalid_date",
		},
		{
			name: "crosses midnight",
			in:   CreateAppointmentInput{Actor: customer, BarberID: barberID, ServiceIDs: []uint{haircutID}, Date: mondayDate, StartTime: "23:45"},
			kind: httperr.KindValidation, code: "crosses_midnight",
		},
		{
			name: "notes too long",
			in:   CreateAppointmentInput{Actor: customer, BarberID: barberID, ServiceIDs: []uint{haircutID}, Date: mondayDate, StartTime: "10:00", Notes: strings.Repeat("x", 501)},
			kind: httperr.KindValidation, code: "text_too_long",
		},
		{
			name: "unknown barber",
			in:   CreateAppointmentInput{Actor: customer, BarberID: 42, ServiceIDs: []uint{haircutID}, Date: mondayDate, StartTime: "10:00"},
			kind: httperr.KindNotFound, code: "barber_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			_, err := newCreate(s, nil).Execute(context.Background(), tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, httperr.KindOf(err))
			assert.True(t, httperr.IsCode(err, tt.code), err.Error())
		})
	}
}

func TestCreate_ConcurrentRequestsForSameSlot(t *testing.T) {
	s := newStore(t)
	uc := newCreate(s, nil)

	const n = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), CreateAppointmentInput{
				Actor: customer, BarberID: barberID, ServiceIDs: []uint{haircutID},
				Date: mondayDate, StartTime: "10:00",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if httperr.IsCode(err, "time_conflict") {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, conflicts)
}
