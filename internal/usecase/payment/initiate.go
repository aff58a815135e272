package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	appt "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/payment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type InitiateInput struct {
	Actor         appt.Actor
	AppointmentID uint
	ClientIP      string
}

type InitiateOutput struct {
	PaymentURL    string `json:"payment_url"`
	TransactionID uint   `json:"transaction_id"`
	Reference     string `json:"reference"`
	Amount        int64  `json:"amount"`
}

// InitiatePayment opens (or reopens) the appointment's pending transaction
// and returns the signed gateway redirect.
type InitiatePayment struct {
	repo    domain.Repository
	gateway domain.Gateway
	clock   timezone.Clock
	audit   *audit.Dispatcher
	log     *zap.Logger
}

func NewInitiatePayment(
	repo domain.Repository,
	gateway domain.Gateway,
	clock timezone.Clock,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *InitiatePayment {
	if log == nil {
		log = zap.NewNop()
	}
	return &InitiatePayment{repo: repo, gateway: gateway, clock: clock, audit: audit, log: log}
}

func (uc *InitiatePayment) Execute(
	ctx context.Context,
	in InitiateInput,
) (*InitiateOutput, error) {

	// --------------------------------------------------
	// Appointment
	// --------------------------------------------------
	ap, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !in.Actor.IsCustomerOf(ap) {
		return nil, httperr.Permission("forbidden", "only the booking customer can pay for it")
	}
	if appt.PaymentStatus(ap.PaymentStatus) == appt.PaymentPaid {
		return nil, httperr.AlreadyPaid()
	}
	if appt.Status(ap.Status) == appt.StatusCancelled {
		return nil, httperr.State(ap.Status, "cannot pay for appointment")
	}

	// --------------------------------------------------
	// Transaction
	// --------------------------------------------------
	now := uc.clock.Now()
	txn, err := uc.openTransaction(ctx, ap, now)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Redirect
	// --------------------------------------------------
	redirect, err := uc.gateway.PaymentURL(domain.PaymentRequest{
		Reference: txn.GatewayRef,
		Amount:    txn.Amount,
		OrderInfo: fmt.Sprintf("Thanh toan lich hen %d", ap.ID),
		ClientIP:  in.ClientIP,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("build payment url: %w", err)
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:   audit.Ptr(in.Actor.UserID),
		ActorRole: string(in.Actor.Role),
		Action:    "payment_initiated",
		Entity:    "transaction",
		EntityID:  audit.Ptr(txn.ID),
		Metadata:  map[string]any{"gateway_ref": txn.GatewayRef, "amount": txn.Amount},
	})

	uc.log.Info("payment initiated",
		zap.Uint("appointment_id", ap.ID),
		zap.String("gateway_ref", txn.GatewayRef),
		zap.Int64("amount", txn.Amount),
	)

	return &InitiateOutput{
		PaymentURL:    redirect,
		TransactionID: txn.ID,
		Reference:     txn.GatewayRef,
		Amount:        txn.Amount,
	}, nil
}

// openTransaction reuses a pending transaction under a fresh reference, or
// creates one. A concurrent initiate that won the insert is reused too.
func (uc *InitiatePayment) openTransaction(
	ctx context.Context,
	ap *models.Appointment,
	now time.Time,
) (*models.Transaction, error) {

	for attempt := 0; attempt < 3; attempt++ {
		pending, err := uc.repo.FindPendingByAppointment(ctx, ap.ID)
		if err != nil {
			return nil, err
		}

		if pending != nil {
			ok, err := uc.repo.RotateReference(ctx, pending, NewReference(now), ap.TotalPrice)
			if err != nil {
				return nil, err
			}
			if ok {
				return pending, nil
			}
			// resolved in the meantime
			continue
		}

		txn := &models.Transaction{
			AppointmentID: ap.ID,
			CustomerID:    ap.CustomerID,
			Amount:        ap.TotalPrice,
			GatewayRef:    NewReference(now),
			Status:        string(domain.StatusPending),
			PaymentMethod: domain.MethodVNPay,
		}
		err = uc.repo.CreateTransaction(ctx, txn)
		if err == nil {
			return txn, nil
		}
		if !errors.Is(err, domain.ErrLiveTransaction) {
			return nil, err
		}

		// Either another request opened one, or the appointment was paid.
		if again, _ := uc.repo.FindPendingByAppointment(ctx, ap.ID); again == nil {
			return nil, httperr.AlreadyPaid()
		}
	}

	return nil, httperr.Conflict("payment_busy", "payment for appointment %d is being updated, retry", ap.ID)
}

// NewReference is a timestamp plus a random suffix, unique per attempt.
func NewReference(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.Format("20060102150405") + strings.ToUpper(suffix)
}
