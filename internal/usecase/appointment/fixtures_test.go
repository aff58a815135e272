package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/infra/memstore"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

const (
	barberID      uint = 1
	barberUserID  uint = 100
	customerID    uint = 200
	otherCustomer uint = 201
	haircutID     uint = 10
	shaveID       uint = 11
	retiredID     uint = 12
	sundayDate         = "2026-03-01"
	mondayDate         = "2026-03-02"
	tuesdayDate        = "2026-03-03"
)

var (
	customer = domain.Actor{UserID: customerID, Role: domain.RoleCustomer}
	barber   = domain.Actor{UserID: barberUserID, Role: domain.RoleBarber}
	admin    = domain.Actor{UserID: 1, Role: domain.RoleAdmin}
)

// sunday 08:00 in the shop's timezone.
func testClock() timezone.FixedClock {
	loc := timezone.Location(timezone.DefaultTimezone)
	return timezone.FixedClock{At: time.Date(2026, 3, 1, 8, 0, 0, 0, loc)}
}

func newStore(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()

	hours := []models.WorkingHours{{BarberID: barberID, Weekday: 0, Off: true}}
	for wd := 1; wd <= 6; wd++ {
		hours = append(hours, models.WorkingHours{BarberID: barberID, Weekday: wd, StartTime: "09:00", EndTime: "12:00"})
	}
	s.PutBarber(models.Barber{
		ID:           barberID,
		UserID:       barberUserID,
		Name:         "Minh",
		IsAvailable:  true,
		WorkingHours: hours,
	})

	s.PutService(models.Service{ID: haircutID, Name: "Haircut", Price: 100000, DurationMin: 30, Active: true})
	s.PutService(models.Service{ID: shaveID, Name: "Shave", Price: 50000, DurationMin: 15, Active: true})
	s.PutService(models.Service{ID: retiredID, Name: "Perm", Price: 300000, DurationMin: 90, Active: false})
	return s
}

func newCreate(s *memstore.Store, cache domain.SlotCache) *CreateAppointment {
	return NewCreateAppointment(s.Appointments(), cache, testClock(), nil, nil, nil)
}

func book(t *testing.T, s *memstore.Store, date, start string, services ...uint) *models.Appointment {
	t.Helper()
	ap, err := newCreate(s, nil).Execute(context.Background(), CreateAppointmentInput{
		Actor:      customer,
		BarberID:   barberID,
		ServiceIDs: services,
		Date:       date,
		StartTime:  start,
	})
	require.NoError(t, err)
	return ap
}

func setStatus(t *testing.T, s *memstore.Store, id uint, st domain.Status) {
	t.Helper()
	ap, ok := s.Appointment(id)
	require.True(t, ok)
	ap.Status = string(st)
	s.PutAppointment(ap)
}

type recordingCache struct {
	mu          sync.Mutex
	entries     map[string]domain.Availability
	dayGen      map[string]int64
	barberGen   int64
	invalidated []string
	gets        int
	skipped     int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string]domain.Availability{}, dayGen: map[string]int64{}}
}

func (c *recordingCache) Get(_ context.Context, _ uint, date string) (*domain.Availability, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	a, ok := c.entries[date]
	if !ok {
		return nil, false
	}
	return &a, true
}

func (c *recordingCache) Generation(_ context.Context, _ uint, date string) (domain.CacheGen, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CacheGen{Barber: c.barberGen, Day: c.dayGen[date]}, true
}

func (c *recordingCache) Set(_ context.Context, a *domain.Availability, gen domain.CacheGen) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != (domain.CacheGen{Barber: c.barberGen, Day: c.dayGen[a.Date]}) {
		c.skipped++
		return
	}
	c.entries[a.Date] = *a
}

func (c *recordingCache) Invalidate(_ context.Context, _ uint, dates ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range dates {
		c.dayGen[d]++
		delete(c.entries, d)
		c.invalidated = append(c.invalidated, d)
	}
}

func (c *recordingCache) InvalidateBarber(context.Context, uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.barberGen++
	for d := range c.entries {
		c.invalidated = append(c.invalidated, d)
	}
	c.entries = map[string]domain.Availability{}
}

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []uint
}

func (n *recordingNotifier) SendAppointmentConfirmation(_ context.Context, ap *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, ap.ID)
}

func (n *recordingNotifier) SendInvoiceEmail(context.Context, *models.Transaction, *models.Appointment) {
}
