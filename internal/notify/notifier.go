// Package notify sends customer notifications. Producers enqueue asynq
// tasks; cmd/worker runs the handlers that hand them to a Mailer.
package notify

import (
	"context"
	"errors"
	"sort"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// Notifier never fails the caller's operation: delivery errors are logged.
type Notifier interface {
	SendAppointmentConfirmation(ctx context.Context, ap *models.Appointment)
	SendInvoiceEmail(ctx context.Context, txn *models.Transaction, ap *models.Appointment)
}

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type QueueNotifier struct {
	q   Enqueuer
	log *zap.Logger
}

func NewQueueNotifier(q Enqueuer, log *zap.Logger) *QueueNotifier {
	return &QueueNotifier{q: q, log: log}
}

func (n *QueueNotifier) SendAppointmentConfirmation(ctx context.Context, ap *models.Appointment) {
	task, opts, err := NewConfirmationTask(DetailsOf(ap))
	if err != nil {
		n.log.Error("build confirmation task", zap.Uint("appointment_id", ap.ID), zap.Error(err))
		return
	}
	n.enqueue(ctx, task, opts, zap.Uint("appointment_id", ap.ID))
}

func (n *QueueNotifier) SendInvoiceEmail(ctx context.Context, txn *models.Transaction, ap *models.Appointment) {
	task, opts, err := NewInvoiceTask(InvoiceOf(txn, ap))
	if err != nil {
		n.log.Error("build invoice task", zap.String("gateway_ref", txn.GatewayRef), zap.Error(err))
		return
	}
	n.enqueue(ctx, task, opts, zap.String("gateway_ref", txn.GatewayRef))
}

func (n *QueueNotifier) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option, field zap.Field) {
	info, err := n.q.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		n.log.Info("notification already queued", zap.String("type", task.Type()), field)
		return
	}
	if err != nil {
		n.log.Error("enqueue notification", zap.String("type", task.Type()), field, zap.Error(err))
		return
	}
	n.log.Debug("notification queued", zap.String("type", task.Type()), zap.String("task_id", info.ID), field)
}

func DetailsOf(ap *models.Appointment) AppointmentDetails {
	return AppointmentDetails{
		AppointmentID: ap.ID,
		CustomerID:    ap.CustomerID,
		BarberName:    ap.Barber.Name,
		Date:          ap.Date.Format("2006-01-02"),
		StartTime:     ap.StartTime,
		EndTime:       ap.EndTime,
		Services:      serviceNames(ap),
		TotalPrice:    ap.TotalPrice,
	}
}

func InvoiceOf(txn *models.Transaction, ap *models.Appointment) InvoiceDetails {
	d := InvoiceDetails{
		TransactionID: txn.ID,
		AppointmentID: txn.AppointmentID,
		CustomerID:    txn.CustomerID,
		GatewayRef:    txn.GatewayRef,
		Amount:        txn.Amount,
		BankCode:      txn.BankCode,
	}
	if txn.PaidAt != nil {
		d.PaidAt = *txn.PaidAt
	}
	if ap != nil {
		d.Services = serviceNames(ap)
	}
	return d
}

func serviceNames(ap *models.Appointment) []string {
	names := make([]string, 0, len(ap.Services))
	for _, s := range ap.Services {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Nop discards every notification.
type Nop struct{}

func (Nop) SendAppointmentConfirmation(context.Context, *models.Appointment)           {}
func (Nop) SendInvoiceEmail(context.Context, *models.Transaction, *models.Appointment) {}

var (
	_ Notifier = (*QueueNotifier)(nil)
	_ Notifier = Nop{}
)
