package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type WorkingDayInput struct {
	Weekday   int
	Off       bool
	StartTime string
	EndTime   string
}

// WeeklyHours is the barber's schedule, one entry per weekday starting
// with Sunday.
type WeeklyHours struct {
	BarberID uint                  `json:"barber_id"`
	Days     [7]domain.DaySchedule `json:"days"`
	Weekdays [7]string             `json:"weekdays"`
}

func weeklyHoursOf(b *models.Barber) *WeeklyHours {
	schedule := domain.ScheduleOf(b.WorkingHours)
	out := &WeeklyHours{BarberID: b.ID}
	for d := domain.Sunday; d <= domain.Saturday; d++ {
		out.Days[d] = schedule.Day(d)
		out.Weekdays[d] = d.String()
	}
	return out
}

// ======================================================
// GET
// ======================================================

type GetWorkingHours struct {
	repo domain.Repository
}

func NewGetWorkingHours(repo domain.Repository) *GetWorkingHours {
	return &GetWorkingHours{repo: repo}
}

func (uc *GetWorkingHours) Execute(ctx context.Context, barberID uint) (*WeeklyHours, error) {
	b, err := uc.repo.GetBarber(ctx, barberID)
	if err != nil {
		return nil, err
	}
	return weeklyHoursOf(b), nil
}

// ForUser resolves the barber profile of a principal first.
func (uc *GetWorkingHours) ForUser(ctx context.Context, userID uint) (*WeeklyHours, error) {
	b, err := uc.repo.GetBarberByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return weeklyHoursOf(b), nil
}

// ======================================================
// UPDATE
// ======================================================

// UpdateWorkingHours replaces the calling barber's weekly schedule. Days
// left out of the request become days off.
type UpdateWorkingHours struct {
	repo  domain.Repository
	cache domain.SlotCache
	audit *audit.Dispatcher
}

func NewUpdateWorkingHours(
	repo domain.Repository,
	cache domain.SlotCache,
	audit *audit.Dispatcher,
) *UpdateWorkingHours {
	return &UpdateWorkingHours{repo: repo, cache: orNopCache(cache), audit: audit}
}

func (uc *UpdateWorkingHours) Execute(
	ctx context.Context,
	actor domain.Actor,
	days []WorkingDayInput,
) (*WeeklyHours, error) {

	if actor.Role != domain.RoleBarber {
		return nil, httperr.Permission("forbidden", "only barbers manage working hours")
	}

	b, err := uc.repo.GetBarberByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	rows, err := workingHourRows(days)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.ReplaceWorkingHours(ctx, b.ID, rows); err != nil {
		return nil, err
	}
	uc.cache.InvalidateBarber(ctx, b.ID)

	uc.audit.Dispatch(audit.Event{
		ActorID:   audit.Ptr(actor.UserID),
		ActorRole: string(actor.Role),
		Action:    "working_hours_updated",
		Entity:    "barber",
		EntityID:  audit.Ptr(b.ID),
		Metadata:  days,
	})

	b.WorkingHours = rows
	return weeklyHoursOf(b), nil
}

func workingHourRows(days []WorkingDayInput) ([]models.WorkingHours, error) {
	seen := map[int]bool{}
	rows := make([]models.WorkingHours, 0, len(days))

	for _, d := range days {
		if d.Weekday < int(domain.Sunday) || d.Weekday > int(domain.Saturday) {
			return nil, httperr.Validation("invalid_weekday", "weekday must be 0 (sunday) to 6 (saturday)")
		}
		if seen[d.Weekday] {
			return nil, httperr.Validation("duplicate_weekday", "weekday %d appears twice", d.Weekday)
		}
		seen[d.Weekday] = true

		row := models.WorkingHours{Weekday: d.Weekday, Off: d.Off}
		if !d.Off {
			ds := domain.DaySchedule{Start: d.StartTime, End: d.EndTime}
			if _, _, ok := ds.Window(); !ok {
				return nil, httperr.Validation(
					"invalid_working_hours",
					"%s: start and end must be HH:MM with end after start",
					domain.Weekday(d.Weekday),
				)
			}
			row.StartTime, row.EndTime = d.StartTime, d.EndTime
		}
		rows = append(rows, row)
	}
	return rows, nil
}
