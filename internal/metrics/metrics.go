package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	reg         *prometheus.Registry
	bookings    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	callbacks   *prometheus.CounterVec
	slotCache   *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		bookings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "barber_bookings_total",
			Help: "Booking attempts by outcome.",
		}, []string{"outcome"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "barber_appointment_transitions_total",
			Help: "Appointment status transitions by action and outcome.",
		}, []string{"action", "outcome"}),
		callbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "barber_payment_callbacks_total",
			Help: "Gateway callbacks by variant and acknowledgement code.",
		}, []string{"variant", "rsp_code"}),
		slotCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "barber_slot_cache_total",
			Help: "Availability cache lookups by result.",
		}, []string{"result"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "barber_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) Booking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Transition(action, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) Callback(variant, rspCode string) {
	if m == nil {
		return
	}
	m.callbacks.WithLabelValues(variant, rspCode).Inc()
}

func (m *Metrics) SlotCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.slotCache.WithLabelValues(result).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpLatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}
