package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/infra/memstore"
	"github.com/BruksfildServices01/barber-booking/internal/infra/vnpay"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-booking/internal/usecase/appointment"
	ucPayment "github.com/BruksfildServices01/barber-booking/internal/usecase/payment"
	"github.com/BruksfildServices01/barber-booking/internal/validators"
)

const (
	barberID     uint = 1
	barberUserID uint = 100
	customerID   uint = 200
	haircutID    uint = 10
	mondayDate        = "2026-03-02"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validators.Register(); err != nil {
		panic(err)
	}
}

// ======================================================
// FIXTURE
// ======================================================

type fixture struct {
	store  *memstore.Store
	router *gin.Engine
	gw     *vnpay.Gateway
	audit  *fakeAuditReader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := memstore.New()
	hours := []models.WorkingHours{{Weekday: 0, Off: true}}
	for wd := 1; wd <= 6; wd++ {
		hours = append(hours, models.WorkingHours{Weekday: wd, StartTime: "09:00", EndTime: "12:00"})
	}
	s.PutBarber(models.Barber{ID: barberID, UserID: barberUserID, Name: "Minh", IsAvailable: true, WorkingHours: hours})
	s.PutService(models.Service{ID: haircutID, Name: "Haircut", Price: 100000, DurationMin: 30, Active: true})

	loc := timezone.Location(timezone.DefaultTimezone)
	clock := timezone.FixedClock{At: time.Date(2026, 3, 1, 8, 0, 0, 0, loc)}
	gw := vnpay.New(vnpay.Config{
		TmnCode:    "TESTTMN1",
		HashSecret: "SECRETKEY",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:3000/payment/vnpay-return",
	})

	appts := s.Appointments()
	pays := s.Payments()
	opts := domain.SlotOptions{SlotMinutes: 30, LeadMinutes: 30}

	ah := NewAppointmentHandler(
		ucAppointment.NewCreateAppointment(appts, nil, clock, nil, nil, nil),
		ucAppointment.NewListAppointments(appts),
		ucAppointment.NewGetAppointment(appts),
		ucAppointment.NewTransitionAppointment(appts, nil, clock, nil, nil, nil, nil),
		ucAppointment.NewRescheduleAppointment(appts, nil, clock, nil, nil, nil),
	)
	avh := NewAvailabilityHandler(ucAppointment.NewGetAvailability(appts, nil, clock, opts, nil))
	ph := NewPaymentHandler(
		ucPayment.NewInitiatePayment(pays, gw, clock, nil, nil),
		ucPayment.NewReconcilePayment(pays, gw, clock, nil, nil, nil, nil),
		ucPayment.NewListTransactions(pays),
	)
	wh := NewWorkingHoursHandler(
		ucAppointment.NewGetWorkingHours(appts),
		ucAppointment.NewUpdateWorkingHours(appts, nil, nil),
	)
	reader := &fakeAuditReader{}
	alh := NewAuditLogsHandler(reader)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/barbers/:id/available-slots", avh.Slots)
	api.GET("/barbers/:id/working-hours", wh.Get)
	api.GET("/payments/vnpay-return", ph.VNPayReturn)
	api.GET("/payments/vnpay-ipn", ph.VNPayIPN)

	secured := api.Group("/")
	secured.Use(testAuth())
	{
		secured.POST("/appointments", ah.Create)
		secured.GET("/appointments", ah.List)
		secured.GET("/appointments/:id", ah.Get)
		secured.PATCH("/appointments/:id/confirm", ah.Transition(domain.ActionConfirm))
		secured.PATCH("/appointments/:id/cancel", ah.Transition(domain.ActionCancel))
		secured.PUT("/appointments/:id/reschedule", ah.Reschedule)
		secured.POST("/payments/create", ph.Create)
		secured.GET("/payments/appointments/:id", ph.ListByAppointment)
		secured.GET("/barbers/me/working-hours", wh.Mine)
		secured.PUT("/barbers/me/working-hours", wh.Update)
		secured.GET("/admin/audit-logs", alh.List)
	}

	return &fixture{store: s, router: r, gw: gw, audit: reader}
}

// testAuth stands in for the JWT middleware: X-User is "<role>:<id>".
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var role string
		var id uint64
		if h := c.GetHeader("X-User"); h != "" {
			for i := range h {
				if h[i] == ':' {
					role = h[:i]
					id, _ = strconv.ParseUint(h[i+1:], 10, 64)
				}
			}
		}
		if id == 0 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(middleware.ContextUserID, uint(id))
		c.Set(middleware.ContextUserRole, role)
		c.Next()
	}
}

func asCustomer() string { return "customer:" + strconv.Itoa(int(customerID)) }
func asBarber() string   { return "barber:" + strconv.Itoa(int(barberUserID)) }

func (f *fixture) do(method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User", user)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (f *fixture) book(t *testing.T, start string) uint {
	t.Helper()
	w := f.do(http.MethodPost, "/api/appointments", asCustomer(), map[string]any{
		"barber_id":   barberID,
		"service_ids": []uint{haircutID},
		"date":        mondayDate,
		"start_time":  start,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view struct {
		ID uint `json:"id"`
	}
	decode(t, w, &view)
	return view.ID
}

type errorBody struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

type fakeAuditReader struct {
	last audit.Filter
}

func (r *fakeAuditReader) List(_ context.Context, f audit.Filter) ([]models.AuditLog, int64, error) {
	r.last = f
	return []models.AuditLog{{ID: 1, Action: "appointment_created", Entity: "appointment"}}, 1, nil
}

// ======================================================
// APPOINTMENTS
// ======================================================

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/appointments", asCustomer(), map[string]any{
		"barber_id":   barberID,
		"service_ids": []uint{haircutID},
		"date":        mondayDate,
		"start_time":  "10:00",
		"notes":       "short on the sides",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var view struct {
		Status     string `json:"status"`
		EndTime    string `json:"end_time"`
		TotalPrice int64  `json:"total_price"`
		Notes      string `json:"notes"`
	}
	decode(t, w, &view)
	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, "10:30", view.EndTime)
	assert.Equal(t, int64(100000), view.TotalPrice)
	assert.Equal(t, "short on the sides", view.Notes)
}

func TestCreateAppointment_BadRequests(t *testing.T) {
	f := newFixture(t)

	cases := map[string]map[string]any{
		"missing services": {"barber_id": barberID, "date": mondayDate, "start_time": "10:00"},
		"bad date":         {"barber_id": barberID, "service_ids": []uint{haircutID}, "date": "02/03/2026", "start_time": "10:00"},
		"bad time":         {"barber_id": barberID, "service_ids": []uint{haircutID}, "date": mondayDate, "start_time": "25:00"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/api/appointments", asCustomer(), body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var e errorBody
			decode(t, w, &e)
			assert.Equal(t, "invalid_request", e.Code)
		})
	}
}

func TestCreateAppointment_ConflictIs409(t *testing.T) {
	f := newFixture(t)
	f.book(t, "10:00")

	w := f.do(http.MethodPost, "/api/appointments", asCustomer(), map[string]any{
		"barber_id":   barberID,
		"service_ids": []uint{haircutID},
		"date":        mondayDate,
		"start_time":  "10:15",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	var e errorBody
	decode(t, w, &e)
	assert.Equal(t, "time_conflict", e.Code)
}

func TestTransition_EmptyBodyAndPermissions(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "10:00")
	path := "/api/appointments/" + strconv.Itoa(int(id))

	w := f.do(http.MethodPatch, path+"/confirm", asCustomer(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPatch, path+"/confirm", asBarber(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodPatch, path+"/confirm", asBarber(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPatch, path+"/cancel", asCustomer(), map[string]string{"reason": "sick"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view struct {
		Status       string `json:"status"`
		CancelReason string `json:"cancel_reason"`
	}
	decode(t, w, &view)
	assert.Equal(t, "cancelled", view.Status)
	assert.Equal(t, "sick", view.CancelReason)
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "09:00")
	f.book(t, "10:00")

	w := f.do(http.MethodGet, "/api/appointments/"+strconv.Itoa(int(id)), asBarber(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/appointments/"+strconv.Itoa(int(id)), "customer:999", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodGet, "/api/appointments/abc", asBarber(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/api/appointments?limit=1&page=2", asCustomer(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data       []json.RawMessage `json:"data"`
		Total      int64             `json:"total"`
		Page       int               `json:"page"`
		TotalPages int               `json:"total_pages"`
	}
	decode(t, w, &page)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)

	w = f.do(http.MethodGet, "/api/appointments?status=bogus", asCustomer(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "10:00")

	w := f.do(http.MethodPut, "/api/appointments/"+strconv.Itoa(int(id))+"/reschedule", asCustomer(), map[string]string{
		"date":       mondayDate,
		"start_time": "10:15",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view struct {
		StartTime string `json:"start_time"`
	}
	decode(t, w, &view)
	assert.Equal(t, "10:15", view.StartTime)
}

// ======================================================
// AVAILABILITY
// ======================================================

func TestAvailableSlots(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/barbers/1/available-slots", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.book(t, "10:00")

	w = f.do(http.MethodGet, "/api/barbers/1/available-slots?date="+mondayDate, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var a domain.Availability
	decode(t, w, &a)
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "11:00", "11:30"}, a.Slots)

	w = f.do(http.MethodGet, "/api/barbers/1/available-slots?date=2026-03-01", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &a)
	assert.Empty(t, a.Slots)
	assert.Equal(t, domain.ReasonDayOff, a.Reason)

	w = f.do(http.MethodGet, "/api/barbers/42/available-slots?date="+mondayDate, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ======================================================
// PAYMENTS
// ======================================================

func signedCallback(f *fixture, ref string, amount int64, code string) url.Values {
	p := url.Values{}
	p.Set("vnp_TmnCode", "TESTTMN1")
	p.Set("vnp_TxnRef", ref)
	p.Set("vnp_Amount", strconv.FormatInt(amount*100, 10))
	p.Set("vnp_ResponseCode", code)
	p.Set("vnp_BankCode", "NCB")
	p.Set("vnp_TransactionNo", "14000001")
	p.Set("vnp_PayDate", "20260301081500")
	p.Set(vnpay.ParamSecureHash, f.gw.Sign(p))
	return p
}

func TestPaymentFlow(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "10:00")

	w := f.do(http.MethodPost, "/api/payments/create", asCustomer(), map[string]any{"appointment_id": id})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out ucPayment.InitiateOutput
	decode(t, w, &out)
	assert.Contains(t, out.PaymentURL, "vnp_Amount=10000000")
	assert.Equal(t, int64(100000), out.Amount)

	// tampered
	bad := signedCallback(f, out.Reference, out.Amount, "00")
	bad.Set("vnp_Amount", "1")
	w = f.do(http.MethodGet, "/api/payments/vnpay-ipn?"+bad.Encode(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ack struct{ RspCode, Message string }
	decode(t, w, &ack)
	assert.Equal(t, "97", ack.RspCode)

	good := signedCallback(f, out.Reference, out.Amount, "00")
	w = f.do(http.MethodGet, "/api/payments/vnpay-ipn?"+good.Encode(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &ack)
	assert.Equal(t, "00", ack.RspCode)
	assert.Equal(t, "Confirm Success", ack.Message)

	w = f.do(http.MethodGet, "/api/payments/vnpay-return?"+good.Encode(), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res PaymentResult
	decode(t, w, &res)
	assert.True(t, res.Success)
	assert.Equal(t, "02", res.RspCode)

	ap, ok := f.store.Appointment(id)
	require.True(t, ok)
	assert.Equal(t, string(domain.PaymentPaid), ap.PaymentStatus)

	w = f.do(http.MethodPost, "/api/payments/create", asCustomer(), map[string]any{"appointment_id": id})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodGet, "/api/payments/appointments/"+strconv.Itoa(int(id)), asBarber(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data  []struct{ Status string } `json:"data"`
		Total int                       `json:"total"`
	}
	decode(t, w, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "success", list.Data[0].Status)
}

func TestVNPayReturn_InvalidSignatureIs400(t *testing.T) {
	f := newFixture(t)

	p := url.Values{"vnp_TxnRef": {"X"}, vnpay.ParamSecureHash: {"00"}}
	w := f.do(http.MethodGet, "/api/payments/vnpay-return?"+p.Encode(), "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ======================================================
// WORKING HOURS
// ======================================================

func TestWorkingHours(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/barbers/me/working-hours", asBarber(), map[string]any{
		"days": []map[string]any{
			{"weekday": 0, "off": true},
			{"weekday": 1, "start_time": "13:00", "end_time": "14:00"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodGet, "/api/barbers/1/working-hours", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var week ucAppointment.WeeklyHours
	decode(t, w, &week)
	assert.Equal(t, "13:00", week.Days[1].Start)
	assert.True(t, week.Days[2].Off)

	w = f.do(http.MethodGet, "/api/barbers/me/working-hours", asBarber(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPut, "/api/barbers/me/working-hours", asBarber(), map[string]any{
		"days": []map[string]any{{"weekday": 9}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/api/barbers/me/working-hours", asCustomer(), map[string]any{
		"days": []map[string]any{{"weekday": 1, "off": true}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ======================================================
// AUDIT LOGS
// ======================================================

func TestAuditLogs(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/admin/audit-logs?action=appointment_created&from=2026-03-01&limit=500", "admin:1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "appointment_created", f.audit.last.Action)
	require.NotNil(t, f.audit.last.From)
	assert.Nil(t, f.audit.last.To)
	assert.Equal(t, audit.DefaultListLimit, f.audit.last.Limit)

	w = f.do(http.MethodGet, "/api/admin/audit-logs?to=yesterday", "admin:1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
