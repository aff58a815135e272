package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/handlers"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/infra/vnpay"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-booking/internal/usecase/appointment"
	ucPayment "github.com/BruksfildServices01/barber-booking/internal/usecase/payment"
)

// Deps are the process-wide singletons built by cmd/api.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Log      *zap.Logger
	Cache    domain.SlotCache
	Notifier notify.Notifier
	Audit    *audit.Dispatcher
	Metrics  *metrics.Metrics
	Clock    timezone.Clock
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config

	// ======================================================
	// INFRA
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)
	transactionRepo := infraRepo.NewTransactionGormRepository(d.DB)
	auditLogger := audit.New(d.DB)

	gateway := vnpay.New(vnpay.Config{
		TmnCode:    cfg.VNPayTmnCode,
		HashSecret: cfg.VNPayHashSecret,
		PayURL:     cfg.VNPayURL,
		ReturnURL:  cfg.VNPayReturnURL,
	})

	slotOpts := domain.SlotOptions{
		SlotMinutes: cfg.SlotMinutes,
		LeadMinutes: cfg.LeadMinutes,
	}

	// ======================================================
	// USE CASES — APPOINTMENTS
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo, d.Cache, d.Clock, d.Audit, d.Metrics, d.Log,
	)
	listAppointmentsUC := ucAppointment.NewListAppointments(appointmentRepo)
	getAppointmentUC := ucAppointment.NewGetAppointment(appointmentRepo)
	transitionAppointmentUC := ucAppointment.NewTransitionAppointment(
		appointmentRepo, d.Cache, d.Clock, d.Notifier, d.Audit, d.Metrics, d.Log,
	)
	rescheduleAppointmentUC := ucAppointment.NewRescheduleAppointment(
		appointmentRepo, d.Cache, d.Clock, d.Audit, d.Metrics, d.Log,
	)
	getAvailabilityUC := ucAppointment.NewGetAvailability(
		appointmentRepo, d.Cache, d.Clock, slotOpts, d.Metrics,
	)
	getWorkingHoursUC := ucAppointment.NewGetWorkingHours(appointmentRepo)
	updateWorkingHoursUC := ucAppointment.NewUpdateWorkingHours(appointmentRepo, d.Cache, d.Audit)

	// ======================================================
	// USE CASES — PAYMENTS
	// ======================================================
	initiatePaymentUC := ucPayment.NewInitiatePayment(transactionRepo, gateway, d.Clock, d.Audit, d.Log)
	reconcilePaymentUC := ucPayment.NewReconcilePayment(
		transactionRepo, gateway, d.Clock, d.Notifier, d.Audit, d.Metrics, d.Log,
	)
	listTransactionsUC := ucPayment.NewListTransactions(transactionRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		listAppointmentsUC,
		getAppointmentUC,
		transitionAppointmentUC,
		rescheduleAppointmentUC,
	)
	availabilityHandler := handlers.NewAvailabilityHandler(getAvailabilityUC)
	workingHoursHandler := handlers.NewWorkingHoursHandler(getWorkingHoursUC, updateWorkingHoursUC)
	paymentHandler := handlers.NewPaymentHandler(initiatePaymentUC, reconcilePaymentUC, listTransactionsUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(auditLogger)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMin)

	r.GET("/metrics", d.Metrics.Handler())

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		public := api.Group("/")
		public.Use(limiter.Middleware())
		{
			public.GET("/barbers/:id/available-slots", availabilityHandler.Slots)
			public.GET("/barbers/:id/working-hours", workingHoursHandler.Get)
		}

		// ------------------------------
		// GATEWAY CALLBACKS
		// ------------------------------
		// No bearer token and no rate limit: the signature is the auth, and
		// the IPN must answer 200 with an RspCode even under retry bursts.
		api.GET("/payments/vnpay-return", paymentHandler.VNPayReturn)
		api.GET("/payments/vnpay-ipn", paymentHandler.VNPayIPN)

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			secured.POST("/appointments", middleware.RequireRole(domain.RoleCustomer), appointmentHandler.Create)
			secured.GET("/appointments", appointmentHandler.List)
			secured.GET("/appointments/:id", appointmentHandler.Get)

			secured.PATCH("/appointments/:id/confirm", appointmentHandler.Transition(domain.ActionConfirm))
			secured.PATCH("/appointments/:id/reject", appointmentHandler.Transition(domain.ActionReject))
			secured.PATCH("/appointments/:id/start", appointmentHandler.Transition(domain.ActionStart))
			secured.PATCH("/appointments/:id/complete", appointmentHandler.Transition(domain.ActionComplete))
			secured.PATCH("/appointments/:id/cancel", appointmentHandler.Transition(domain.ActionCancel))
			secured.PUT("/appointments/:id/reschedule", appointmentHandler.Reschedule)

			secured.POST("/payments/create", limiter.Middleware(), paymentHandler.Create)
			secured.GET("/payments/appointments/:id", paymentHandler.ListByAppointment)

			barber := secured.Group("/barbers/me")
			barber.Use(middleware.RequireRole(domain.RoleBarber))
			{
				barber.GET("/working-hours", workingHoursHandler.Mine)
				barber.PUT("/working-hours", workingHoursHandler.Update)
			}

			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRole(domain.RoleAdmin))
			{
				admin.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
