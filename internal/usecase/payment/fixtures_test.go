package payment

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	appt "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/infra/memstore"
	"github.com/BruksfildServices01/barber-booking/internal/infra/vnpay"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

const (
	customerID   uint  = 200
	barberUserID uint  = 100
	price        int64 = 150000
)

var (
	customer = appt.Actor{UserID: customerID, Role: appt.RoleCustomer}
	barber   = appt.Actor{UserID: barberUserID, Role: appt.RoleBarber}
)

func testClock() timezone.FixedClock {
	loc := timezone.Location(timezone.DefaultTimezone)
	return timezone.FixedClock{At: time.Date(2026, 3, 1, 8, 0, 0, 0, loc)}
}

func testGateway() *vnpay.Gateway {
	return vnpay.New(vnpay.Config{
		TmnCode:    "TESTTMN1",
		HashSecret: "SECRETKEY",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:3000/payment/vnpay-return",
	})
}

func newStore(t *testing.T) (*memstore.Store, uint) {
	t.Helper()
	s := memstore.New()
	s.PutBarber(models.Barber{ID: 1, UserID: barberUserID, Name: "Minh", IsAvailable: true})
	id := s.PutAppointment(models.Appointment{
		CustomerID:    customerID,
		BarberID:      1,
		Date:          time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		EndTime:       "10:45",
		StartMinute:   600,
		EndMinute:     645,
		TotalPrice:    price,
		TotalDuration: 45,
		Status:        string(appt.StatusPending),
		PaymentStatus: string(appt.PaymentUnpaid),
		Services:      []models.Service{{ID: 10, Name: "Haircut"}},
	})
	return s, id
}

// callback builds signed gateway parameters for ref.
func callback(g *vnpay.Gateway, ref string, amount int64, code string) url.Values {
	p := url.Values{}
	p.Set("vnp_TmnCode", "TESTTMN1")
	p.Set("vnp_TxnRef", ref)
	p.Set("vnp_Amount", strconv.FormatInt(amount*100, 10))
	p.Set("vnp_ResponseCode", code)
	p.Set("vnp_TransactionStatus", code)
	p.Set("vnp_BankCode", "NCB")
	p.Set("vnp_TransactionNo", "14000001")
	p.Set("vnp_PayDate", "20260301081500")
	p.Set("vnp_OrderInfo", "Thanh toan lich hen 1")
	p.Set(vnpay.ParamSecureHash, g.Sign(p))
	return p
}

type invoiceRecorder struct {
	mu       sync.Mutex
	invoices []string
}

func (r *invoiceRecorder) SendAppointmentConfirmation(context.Context, *models.Appointment) {}

func (r *invoiceRecorder) SendInvoiceEmail(_ context.Context, txn *models.Transaction, _ *models.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices = append(r.invoices, txn.GatewayRef)
}

func (r *invoiceRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invoices)
}
