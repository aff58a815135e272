package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Barber / Service
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBarber(
	ctx context.Context,
	id uint,
) (*models.Barber, error) {

	var barber models.Barber
	err := r.db.WithContext(ctx).
		Preload("WorkingHours").
		First(&barber, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("barber_not_found", "barber %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &barber, nil
}

func (r *AppointmentGormRepository) GetBarberByUser(
	ctx context.Context,
	userID uint,
) (*models.Barber, error) {

	var barber models.Barber
	err := r.db.WithContext(ctx).
		Preload("WorkingHours", func(db *gorm.DB) *gorm.DB { return db.Order("weekday ASC") }).
		Where("user_id = ?", userID).
		First(&barber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("barber_not_found", "no barber profile for user %d", userID)
	}
	if err != nil {
		return nil, err
	}
	return &barber, nil
}

func (r *AppointmentGormRepository) ReplaceWorkingHours(
	ctx context.Context,
	barberID uint,
	rows []models.WorkingHours,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("barber_id = ?", barberID).Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].BarberID = barberID
		}
		return tx.Create(&rows).Error
	})
}

func (r *AppointmentGormRepository) ListServices(
	ctx context.Context,
	ids []uint,
) ([]models.Service, error) {

	var services []models.Service
	if len(ids) == 0 {
		return services, nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// --------------------------------------------------
// Appointment (read)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Barber").
		Preload("Barber.WorkingHours").
		Preload("Services").
		First(&ap, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("appointment_not_found", "appointment %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForDay(
	ctx context.Context,
	barberID uint,
	date time.Time,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"barber_id = ? AND date = ? AND status <> ?",
			barberID,
			domain.CivilDate(date).Format(domain.DateLayout),
			string(domain.StatusCancelled),
		).
		Order("start_minute ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}
	return aps, nil
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Appointment, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Appointment{})

	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.BarberID != nil {
		q = q.Where("barber_id = ?", *f.BarberID)
	}
	if f.BarberUserID != nil {
		q = q.Where("barber_id IN (?)",
			r.db.Model(&models.Barber{}).Select("id").Where("user_id = ?", *f.BarberUserID))
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Date != nil {
		q = q.Where("date = ?", f.Date.Format(domain.DateLayout))
	}
	if f.From != nil {
		q = q.Where("date >= ?", f.From.Format(domain.DateLayout))
	}
	if f.To != nil {
		q = q.Where("date <= ?", f.To.Format(domain.DateLayout))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := pageBounds(f.Page, f.Limit)

	var aps []models.Appointment
	if err := q.
		Preload("Barber").
		Preload("Services").
		Order("date DESC, start_minute DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&aps).Error; err != nil {
		return nil, 0, err
	}
	return aps, total, nil
}

func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// --------------------------------------------------
// Appointment (write)
// --------------------------------------------------

// WithBarberDayLock takes a transaction-scoped advisory lock per
// (barber, date). Keys are locked in sorted order so two reschedules that
// touch the same pair of days cannot deadlock.
func (r *AppointmentGormRepository) WithBarberDayLock(
	ctx context.Context,
	barberID uint,
	dates []time.Time,
	fn func(tx domain.Repository) error,
) error {

	keys := lockKeys(barberID, dates)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", k).Error; err != nil {
				return fmt.Errorf("lock %s: %w", k, err)
			}
		}
		return fn(&AppointmentGormRepository{db: tx})
	})
}

func lockKeys(barberID uint, dates []time.Time) []string {
	seen := make(map[string]struct{}, len(dates))
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		k := fmt.Sprintf("barber:%d:%s", barberID, domain.CivilDate(d).Format(domain.DateLayout))
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	// Services already exist; only the join rows are written.
	return r.db.WithContext(ctx).
		Omit("Services.*", "Barber", "Barbershop").
		Create(ap).Error
}

func (r *AppointmentGormRepository) SaveIfStatus(
	ctx context.Context,
	ap *models.Appointment,
	from domain.Status,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", ap.ID, string(from)).
		Updates(map[string]any{
			"status":        ap.Status,
			"date":          ap.Date.Format(domain.DateLayout),
			"start_time":    ap.StartTime,
			"end_time":      ap.EndTime,
			"start_minute":  ap.StartMinute,
			"end_minute":    ap.EndMinute,
			"cancel_reason": ap.CancelReason,
			"confirmed_at":  ap.ConfirmedAt,
			"started_at":    ap.StartedAt,
			"completed_at":  ap.CompletedAt,
			"cancelled_at":  ap.CancelledAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

var _ domain.Repository = (*AppointmentGormRepository)(nil)
