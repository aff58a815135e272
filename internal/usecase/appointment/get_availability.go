package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type GetAvailability struct {
	repo    domain.Repository
	cache   domain.SlotCache
	clock   timezone.Clock
	opts    domain.SlotOptions
	metrics *metrics.Metrics
}

func NewGetAvailability(
	repo domain.Repository,
	cache domain.SlotCache,
	clock timezone.Clock,
	opts domain.SlotOptions,
	m *metrics.Metrics,
) *GetAvailability {
	if opts.SlotMinutes <= 0 {
		opts.SlotMinutes = domain.DefaultSlotMinutes
	}
	if opts.LeadMinutes < 0 {
		opts.LeadMinutes = domain.DefaultLeadMinutes
	}
	return &GetAvailability{
		repo:    repo,
		cache:   orNopCache(cache),
		clock:   clock,
		opts:    opts,
		metrics: m,
	}
}

// Execute returns the bookable slot starts of a barber on a date. The
// time-independent part is cached; the lead-time cut is applied per call.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	barberID uint,
	date string,
) (*domain.Availability, error) {

	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	in := domain.AvailabilityInput{BarberID: barberID, Date: day}

	barber, err := uc.repo.GetBarber(ctx, in.BarberID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Unavailable barbers are never cached
	// --------------------------------------------------
	if !barber.IsAvailable {
		out := domain.FreeSlots(barber.ID, domain.WeeklySchedule{}, false, nil, in.Date, uc.opts.SlotMinutes)
		return &out, nil
	}

	key := in.Date.Format(domain.DateLayout)
	if cached, ok := uc.cache.Get(ctx, barber.ID, key); ok {
		uc.metrics.SlotCache(true)
		out := domain.ApplyLeadTime(*cached, uc.clock.Now(), uc.opts.LeadMinutes)
		return &out, nil
	}
	uc.metrics.SlotCache(false)

	gen, cacheable := uc.cache.Generation(ctx, barber.ID, key)

	appointments, err := uc.repo.ListAppointmentsForDay(ctx, barber.ID, in.Date)
	if err != nil {
		return nil, err
	}

	free := domain.FreeSlots(
		barber.ID,
		domain.ScheduleOf(barber.WorkingHours),
		true,
		appointments,
		in.Date,
		uc.opts.SlotMinutes,
	)
	if cacheable {
		uc.cache.Set(ctx, &free, gen)
	}

	out := domain.ApplyLeadTime(free, uc.clock.Now(), uc.opts.LeadMinutes)
	return &out, nil
}
