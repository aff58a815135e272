package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/payment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type Variant string

const (
	VariantIPN    Variant = "ipn"
	VariantReturn Variant = "return"
)

// Outcome is what a callback resolved to.
type Outcome struct {
	Ack         domain.Ack
	Transaction *models.Transaction
	// GatewayCode/GatewayMessage describe the payment result reported by the
	// gateway, independent of the acknowledgement.
	GatewayCode    string
	GatewayMessage string
	Err            error
}

func (o Outcome) Succeeded() bool {
	return o.Transaction != nil && domain.Status(o.Transaction.Status) == domain.StatusSuccess
}

// ReconcilePayment applies gateway callbacks. The IPN and the browser
// return share the same verification and the same state transition.
type ReconcilePayment struct {
	repo     domain.Repository
	gateway  domain.Gateway
	clock    timezone.Clock
	notifier notify.Notifier
	audit    *audit.Dispatcher
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewReconcilePayment(
	repo domain.Repository,
	gateway domain.Gateway,
	clock timezone.Clock,
	notifier notify.Notifier,
	audit *audit.Dispatcher,
	m *metrics.Metrics,
	log *zap.Logger,
) *ReconcilePayment {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReconcilePayment{
		repo:     repo,
		gateway:  gateway,
		clock:    clock,
		notifier: notifier,
		audit:    audit,
		metrics:  m,
		log:      log,
	}
}

// HandleIPN never fails: every problem becomes an acknowledgement code.
func (uc *ReconcilePayment) HandleIPN(ctx context.Context, params url.Values) (ack domain.Ack) {
	defer func() {
		if r := recover(); r != nil {
			uc.log.Error("ipn panic", zap.Any("panic", r), zap.String("gateway_ref", params.Get("vnp_TxnRef")))
			ack = domain.NewAck(domain.AckUnknownError)
			uc.metrics.Callback(string(VariantIPN), string(ack.RspCode))
		}
	}()
	return uc.Reconcile(ctx, VariantIPN, params).Ack
}

// HandleReturn serves the browser redirect. Failures that leave the
// transaction untouched come back as errors.
func (uc *ReconcilePayment) HandleReturn(ctx context.Context, params url.Values) (Outcome, error) {
	o := uc.Reconcile(ctx, VariantReturn, params)

	switch o.Ack.RspCode {
	case domain.AckSuccess, domain.AckAlreadyProcessed:
		return o, nil
	case domain.AckInvalidSignature:
		return o, httperr.InvalidSignature()
	case domain.AckNotFound:
		return o, httperr.NotFoundErr("transaction_not_found", "transaction %q not found", params.Get("vnp_TxnRef"))
	case domain.AckAmountMismatch:
		return o, o.Err
	default:
		if o.Err == nil {
			o.Err = errors.New("payment callback failed")
		}
		return o, o.Err
	}
}

func (uc *ReconcilePayment) Reconcile(ctx context.Context, variant Variant, params url.Values) Outcome {
	o := uc.reconcile(ctx, params)
	uc.metrics.Callback(string(variant), string(o.Ack.RspCode))

	fields := []zap.Field{
		zap.String("variant", string(variant)),
		zap.String("gateway_ref", params.Get("vnp_TxnRef")),
		zap.String("rsp_code", string(o.Ack.RspCode)),
		zap.String("gateway_code", o.GatewayCode),
	}
	switch o.Ack.RspCode {
	case domain.AckSuccess, domain.AckAlreadyProcessed:
		uc.log.Info("payment callback", fields...)
	default:
		if o.Err != nil {
			fields = append(fields, zap.Error(o.Err))
		}
		uc.log.Warn("payment callback rejected", fields...)
	}
	return o
}

func (uc *ReconcilePayment) reconcile(ctx context.Context, params url.Values) Outcome {
	// --------------------------------------------------
	// 1. Signature
	// --------------------------------------------------
	if !uc.gateway.Verify(params) {
		return Outcome{Ack: domain.NewAck(domain.AckInvalidSignature), Err: httperr.InvalidSignature()}
	}

	cb, err := uc.gateway.ParseCallback(params)
	if err != nil {
		return Outcome{Ack: domain.NewAck(domain.AckUnknownError), Err: err}
	}
	out := Outcome{GatewayCode: cb.ResponseCode, GatewayMessage: uc.gateway.ResponseMessage(cb.ResponseCode)}

	// --------------------------------------------------
	// 2. Transaction
	// --------------------------------------------------
	txn, err := uc.repo.FindByReference(ctx, cb.Reference)
	if httperr.Is(err, httperr.KindNotFound) {
		out.Ack, out.Err = domain.NewAck(domain.AckNotFound), err
		return out
	}
	if err != nil {
		out.Ack, out.Err = domain.NewAck(domain.AckUnknownError), err
		return out
	}
	out.Transaction = txn

	if domain.Status(txn.Status) != domain.StatusPending {
		out.Ack = domain.NewAck(domain.AckAlreadyProcessed)
		return out
	}
	if !cb.Matches(txn.Amount) {
		out.Ack, out.Err = domain.NewAck(domain.AckAmountMismatch), httperr.AmountMismatch(txn.Amount, cb.Amount)
		return out
	}

	// --------------------------------------------------
	// 3. Conditional transition out of pending
	// --------------------------------------------------
	resolved := *txn
	resolved.ResponseCode = cb.ResponseCode
	resolved.BankCode = cb.BankCode
	resolved.GatewayTransactionNo = cb.TransactionNo
	if cb.Succeeded() {
		resolved.Status = string(domain.StatusSuccess)
		paidAt, ok := uc.gateway.ParsePayDate(cb.PayDate)
		if !ok {
			paidAt = uc.clock.Now()
		}
		resolved.PaidAt = &paidAt
	} else {
		resolved.Status = string(domain.StatusFailed)
	}

	applied, err := uc.repo.Resolve(ctx, &resolved)
	if err != nil {
		out.Ack, out.Err = domain.NewAck(domain.AckUnknownError), fmt.Errorf("resolve transaction: %w", err)
		return out
	}
	if !applied {
		out.Ack = domain.NewAck(domain.AckAlreadyProcessed)
		if fresh, err := uc.repo.FindByReference(ctx, cb.Reference); err == nil {
			out.Transaction = fresh
		}
		return out
	}
	out.Transaction = &resolved

	uc.audit.Dispatch(audit.Event{
		Action:   "payment_" + resolved.Status,
		Entity:   "transaction",
		EntityID: audit.Ptr(resolved.ID),
		Metadata: map[string]any{
			"gateway_ref":   resolved.GatewayRef,
			"response_code": cb.ResponseCode,
			"amount":        cb.Amount,
		},
	})

	if cb.Succeeded() {
		ap, err := uc.repo.GetAppointment(ctx, resolved.AppointmentID)
		if err != nil {
			uc.log.Warn("load appointment for invoice", zap.Uint("appointment_id", resolved.AppointmentID), zap.Error(err))
			ap = nil
		}
		uc.notifier.SendInvoiceEmail(ctx, &resolved, ap)
	}

	out.Ack = domain.NewAck(domain.AckSuccess)
	return out
}
