package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type ListFilter struct {
	CustomerID *uint
	BarberID   *uint
	// BarberUserID scopes to the barber acting as this principal.
	BarberUserID *uint
	Status       Status
	Date         *time.Time
	From         *time.Time
	To           *time.Time
	Page         int
	Limit        int
}

type Repository interface {
	// -------- Barber / Service --------
	GetBarber(ctx context.Context, id uint) (*models.Barber, error)
	GetBarberByUser(ctx context.Context, userID uint) (*models.Barber, error)
	ReplaceWorkingHours(ctx context.Context, barberID uint, rows []models.WorkingHours) error
	ListServices(ctx context.Context, ids []uint) ([]models.Service, error)

	// -------- Appointment (read) --------
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	ListAppointmentsForDay(ctx context.Context, barberID uint, date time.Time) ([]models.Appointment, error)
	ListAppointments(ctx context.Context, filter ListFilter) ([]models.Appointment, int64, error)

	// -------- Appointment (write) --------

	// WithBarberDayLock runs fn inside a critical section held for every
	// (barber, date) pair, so overlap checks and writes for those days are
	// serialized. fn receives a repository bound to the same transaction.
	WithBarberDayLock(ctx context.Context, barberID uint, dates []time.Time, fn func(tx Repository) error) error

	CreateAppointment(ctx context.Context, ap *models.Appointment) error

	// SaveIfStatus persists the mutable fields of ap only when the stored
	// status still equals from. It reports whether the row was written.
	// PaymentStatus is not among them; only payment resolution writes it.
	SaveIfStatus(ctx context.Context, ap *models.Appointment, from Status) (bool, error)
}

// CacheGen identifies the invalidation generation a slot list was computed
// under: one counter per barber and one per barber and date.
type CacheGen struct {
	Barber int64
	Day    int64
}

// SlotCache stores FreeSlots results per barber and date. Invalidation bumps
// the generation, and Set drops a result whose generation has moved since
// it was read, so a list computed before a write is never stored after it.
type SlotCache interface {
	Get(ctx context.Context, barberID uint, date string) (*Availability, bool)
	// Generation must be read before the appointments the result is built
	// from. ok is false when the cache cannot vouch for it.
	Generation(ctx context.Context, barberID uint, date string) (gen CacheGen, ok bool)
	Set(ctx context.Context, a *Availability, gen CacheGen)
	Invalidate(ctx context.Context, barberID uint, dates ...string)
	// InvalidateBarber drops every cached date of the barber.
	InvalidateBarber(ctx context.Context, barberID uint)
}

type NopSlotCache struct{}

func (NopSlotCache) Get(context.Context, uint, string) (*Availability, bool) { return nil, false }
func (NopSlotCache) Generation(context.Context, uint, string) (CacheGen, bool) {
	return CacheGen{}, false
}
func (NopSlotCache) Set(context.Context, *Availability, CacheGen) {}
func (NopSlotCache) Invalidate(context.Context, uint, ...string)  {}
func (NopSlotCache) InvalidateBarber(context.Context, uint)       {}
