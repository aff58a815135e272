// Package memstore is an in-memory implementation of the appointment and
// payment repositories. It keeps the same locking and compare-and-set
// guarantees as the gorm repositories and backs the use-case tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/domain/payment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type Store struct {
	mu sync.Mutex

	dayLocks map[string]*sync.Mutex

	barbers      map[uint]models.Barber
	services     map[uint]models.Service
	appointments map[uint]models.Appointment
	transactions map[uint]models.Transaction

	nextAppointment uint
	nextTransaction uint
}

func New() *Store {
	return &Store{
		dayLocks:     map[string]*sync.Mutex{},
		barbers:      map[uint]models.Barber{},
		services:     map[uint]models.Service{},
		appointments: map[uint]models.Appointment{},
		transactions: map[uint]models.Transaction{},
	}
}

// ======================================================
// Seeding
// ======================================================

func (s *Store) PutBarber(b models.Barber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.barbers[b.ID] = b
}

func (s *Store) PutService(svc models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
}

func (s *Store) PutAppointment(ap models.Appointment) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ap.ID == 0 {
		s.nextAppointment++
		ap.ID = s.nextAppointment
	} else if ap.ID > s.nextAppointment {
		s.nextAppointment = ap.ID
	}
	s.appointments[ap.ID] = ap
	return ap.ID
}

func (s *Store) Appointment(id uint) (models.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ap, ok := s.appointments[id]
	return ap, ok
}

func (s *Store) Transactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Appointments returns a repository view over the store.
func (s *Store) Appointments() *AppointmentRepo {
	return &AppointmentRepo{s: s}
}

func (s *Store) Payments() *PaymentRepo {
	return &PaymentRepo{s: s}
}

func (s *Store) dayLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.dayLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.dayLocks[key] = l
	}
	return l
}

// hydrate fills the associations the gorm repository preloads. Caller holds mu.
func (s *Store) hydrate(ap models.Appointment) models.Appointment {
	if b, ok := s.barbers[ap.BarberID]; ok {
		ap.Barber = b
	}
	services := make([]models.Service, len(ap.Services))
	copy(services, ap.Services)
	ap.Services = services
	return ap
}

// ======================================================
// Appointment repository
// ======================================================

type AppointmentRepo struct {
	s *Store
}

func (r *AppointmentRepo) GetBarber(_ context.Context, id uint) (*models.Barber, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.barbers[id]
	if !ok {
		return nil, httperr.NotFoundErr("barber_not_found", "barber %d not found", id)
	}
	return &b, nil
}

func (r *AppointmentRepo) GetBarberByUser(_ context.Context, userID uint) (*models.Barber, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.barbers {
		if b.UserID == userID {
			return &b, nil
		}
	}
	return nil, httperr.NotFoundErr("barber_not_found", "no barber profile for user %d", userID)
}

func (r *AppointmentRepo) ReplaceWorkingHours(_ context.Context, barberID uint, rows []models.WorkingHours) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.barbers[barberID]
	if !ok {
		return httperr.NotFoundErr("barber_not_found", "barber %d not found", barberID)
	}
	hours := make([]models.WorkingHours, len(rows))
	for i, row := range rows {
		row.BarberID = barberID
		hours[i] = row
	}
	b.WorkingHours = hours
	r.s.barbers[barberID] = b
	return nil
}

func (r *AppointmentRepo) ListServices(_ context.Context, ids []uint) ([]models.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Service
	for _, id := range ids {
		if svc, ok := r.s.services[id]; ok {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (r *AppointmentRepo) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ap, ok := r.s.appointments[id]
	if !ok {
		return nil, httperr.NotFoundErr("appointment_not_found", "appointment %d not found", id)
	}
	ap = r.s.hydrate(ap)
	return &ap, nil
}

func (r *AppointmentRepo) ListAppointmentsForDay(_ context.Context, barberID uint, date time.Time) ([]models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := domain.CivilDate(date)
	var out []models.Appointment
	for _, ap := range r.s.appointments {
		if ap.BarberID != barberID || !domain.CivilDate(ap.Date).Equal(day) {
			continue
		}
		if domain.Status(ap.Status) == domain.StatusCancelled {
			continue
		}
		out = append(out, r.s.hydrate(ap))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMinute < out[j].StartMinute })
	return out, nil
}

func (r *AppointmentRepo) ListAppointments(_ context.Context, f domain.ListFilter) ([]models.Appointment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []models.Appointment
	for _, ap := range r.s.appointments {
		if f.CustomerID != nil && ap.CustomerID != *f.CustomerID {
			continue
		}
		if f.BarberID != nil && ap.BarberID != *f.BarberID {
			continue
		}
		if f.BarberUserID != nil && r.s.barbers[ap.BarberID].UserID != *f.BarberUserID {
			continue
		}
		if f.Status != "" && ap.Status != string(f.Status) {
			continue
		}
		d := domain.CivilDate(ap.Date)
		if f.Date != nil && !d.Equal(domain.CivilDate(*f.Date)) {
			continue
		}
		if f.From != nil && d.Before(domain.CivilDate(*f.From)) {
			continue
		}
		if f.To != nil && d.After(domain.CivilDate(*f.To)) {
			continue
		}
		matched = append(matched, r.s.hydrate(ap))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].StartMinute > matched[j].StartMinute
	})

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Appointment{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *AppointmentRepo) WithBarberDayLock(
	_ context.Context,
	barberID uint,
	dates []time.Time,
	fn func(tx domain.Repository) error,
) error {
	seen := map[string]bool{}
	var keys []string
	for _, d := range dates {
		k := fmt.Sprintf("barber:%d:%s", barberID, domain.CivilDate(d).Format(domain.DateLayout))
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		l := r.s.dayLock(k)
		l.Lock()
		defer l.Unlock()
	}
	return fn(r)
}

func (r *AppointmentRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextAppointment++
	ap.ID = r.s.nextAppointment
	now := time.Now()
	ap.CreatedAt, ap.UpdatedAt = now, now
	if ap.Status == "" {
		ap.Status = string(domain.StatusPending)
	}
	if ap.PaymentStatus == "" {
		ap.PaymentStatus = string(domain.PaymentUnpaid)
	}
	stored := *ap
	stored.Barber = models.Barber{}
	r.s.appointments[ap.ID] = stored
	return nil
}

func (r *AppointmentRepo) SaveIfStatus(_ context.Context, ap *models.Appointment, from domain.Status) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.appointments[ap.ID]
	if !ok || cur.Status != string(from) {
		return false, nil
	}
	cur.Status = ap.Status
	cur.Date = ap.Date
	cur.StartTime, cur.EndTime = ap.StartTime, ap.EndTime
	cur.StartMinute, cur.EndMinute = ap.StartMinute, ap.EndMinute
	cur.CancelReason = ap.CancelReason
	cur.ConfirmedAt = ap.ConfirmedAt
	cur.StartedAt = ap.StartedAt
	cur.CompletedAt = ap.CompletedAt
	cur.CancelledAt = ap.CancelledAt
	cur.UpdatedAt = time.Now()
	r.s.appointments[ap.ID] = cur
	return true, nil
}

// ======================================================
// Payment repository
// ======================================================

type PaymentRepo struct {
	s *Store
}

func (r *PaymentRepo) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	return r.s.Appointments().GetAppointment(ctx, id)
}

func (r *PaymentRepo) FindPendingByAppointment(_ context.Context, appointmentID uint) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.AppointmentID == appointmentID && t.Status == string(payment.StatusPending) {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *PaymentRepo) FindByReference(_ context.Context, ref string) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.GatewayRef == ref {
			return &t, nil
		}
	}
	return nil, httperr.NotFoundErr("transaction_not_found", "transaction %q not found", ref)
}

func (r *PaymentRepo) ListByAppointment(_ context.Context, appointmentID uint) ([]models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Transaction
	for _, t := range r.s.transactions {
		if t.AppointmentID == appointmentID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *PaymentRepo) CreateTransaction(_ context.Context, txn *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.GatewayRef == txn.GatewayRef {
			return fmt.Errorf("duplicate gateway ref %q", txn.GatewayRef)
		}
		live := t.Status == string(payment.StatusPending) || t.Status == string(payment.StatusSuccess)
		if t.AppointmentID == txn.AppointmentID && live {
			return payment.ErrLiveTransaction
		}
	}
	r.s.nextTransaction++
	txn.ID = r.s.nextTransaction
	if txn.Status == "" {
		txn.Status = string(payment.StatusPending)
	}
	if txn.PaymentMethod == "" {
		txn.PaymentMethod = payment.MethodVNPay
	}
	now := time.Now()
	txn.CreatedAt, txn.UpdatedAt = now, now
	r.s.transactions[txn.ID] = *txn
	return nil
}

func (r *PaymentRepo) RotateReference(_ context.Context, txn *models.Transaction, ref string, amount int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.transactions[txn.ID]
	if !ok || cur.Status != string(payment.StatusPending) {
		return false, nil
	}
	cur.GatewayRef = ref
	cur.Amount = amount
	r.s.transactions[txn.ID] = cur
	txn.GatewayRef, txn.Amount = ref, amount
	return true, nil
}

func (r *PaymentRepo) Resolve(_ context.Context, txn *models.Transaction) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.transactions[txn.ID]
	if !ok || cur.Status != string(payment.StatusPending) {
		return false, nil
	}
	cur.Status = txn.Status
	cur.ResponseCode = txn.ResponseCode
	cur.BankCode = txn.BankCode
	cur.GatewayTransactionNo = txn.GatewayTransactionNo
	cur.PaidAt = txn.PaidAt
	cur.UpdatedAt = time.Now()
	r.s.transactions[txn.ID] = cur

	if payment.Status(txn.Status) == payment.StatusSuccess {
		if ap, ok := r.s.appointments[txn.AppointmentID]; ok && ap.PaymentStatus == string(domain.PaymentUnpaid) {
			ap.PaymentStatus = string(domain.PaymentPaid)
			r.s.appointments[ap.ID] = ap
		}
	}
	return true, nil
}

var (
	_ domain.Repository  = (*AppointmentRepo)(nil)
	_ payment.Repository = (*PaymentRepo)(nil)
)
