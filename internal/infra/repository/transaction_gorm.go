package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/domain/payment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type TransactionGormRepository struct {
	db *gorm.DB
}

func NewTransactionGormRepository(db *gorm.DB) *TransactionGormRepository {
	return &TransactionGormRepository{db: db}
}

func (r *TransactionGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Barber").
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

func (r *TransactionGormRepository) FindPendingByAppointment(
	ctx context.Context,
	appointmentID uint,
) (*models.Transaction, error) {

	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Where("appointment_id = ? AND status = ?", appointmentID, string(payment.StatusPending)).
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionGormRepository) FindByReference(
	ctx context.Context,
	ref string,
) (*models.Transaction, error) {

	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Where("gateway_ref = ?", ref).
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("transaction_not_found", "transaction %q not found", ref)
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionGormRepository) ListByAppointment(
	ctx context.Context,
	appointmentID uint,
) ([]models.Transaction, error) {

	var txns []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at DESC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *TransactionGormRepository) CreateTransaction(
	ctx context.Context,
	txn *models.Transaction,
) error {
	err := r.db.WithContext(ctx).Create(txn).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return payment.ErrLiveTransaction
	}
	return err
}

func (r *TransactionGormRepository) RotateReference(
	ctx context.Context,
	txn *models.Transaction,
	ref string,
	amount int64,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", txn.ID, string(payment.StatusPending)).
		Updates(map[string]any{"gateway_ref": ref, "amount": amount})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		txn.GatewayRef = ref
		txn.Amount = amount
		return true, nil
	}
	return false, nil
}

func (r *TransactionGormRepository) Resolve(
	ctx context.Context,
	txn *models.Transaction,
) (bool, error) {

	applied := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", txn.ID, string(payment.StatusPending)).
			Updates(map[string]any{
				"status":                 txn.Status,
				"response_code":          txn.ResponseCode,
				"bank_code":              txn.BankCode,
				"gateway_transaction_no": txn.GatewayTransactionNo,
				"paid_at":                txn.PaidAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		if payment.Status(txn.Status) != payment.StatusSuccess {
			return nil
		}
		return tx.Model(&models.Appointment{}).
			Where("id = ? AND payment_status = ?", txn.AppointmentID, string(appointment.PaymentUnpaid)).
			Update("payment_status", string(appointment.PaymentPaid)).Error
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

var _ payment.Repository = (*TransactionGormRepository)(nil)
