// Package vnpay signs outbound payment redirects and verifies inbound
// callbacks for the VNPay gateway (API version 2.1.0).
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/domain/payment"
)

const (
	Version      = "2.1.0"
	CommandPay   = "pay"
	CurrencyVND  = "VND"
	LocaleVN     = "vn"
	OrderType    = "other"
	dateLayout   = "20060102150405"
	expiresAfter = 15 * time.Minute

	ParamSecureHash     = "vnp_SecureHash"
	ParamSecureHashType = "vnp_SecureHashType"
)

type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
}

type Gateway struct {
	cfg Config
	loc *time.Location
}

func New(cfg Config) *Gateway {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		loc = time.FixedZone("ICT", 7*60*60)
	}
	return &Gateway{cfg: cfg, loc: loc}
}

// PaymentURL builds the signed redirect. The amount is sent in the smallest
// unit (VND x 100).
func (g *Gateway) PaymentURL(req payment.PaymentRequest) (string, error) {
	if req.Reference == "" || req.Amount <= 0 {
		return "", fmt.Errorf("vnpay: reference and positive amount are required")
	}

	created := req.CreatedAt.In(g.loc)
	params := url.Values{}
	params.Set("vnp_Version", Version)
	params.Set("vnp_Command", CommandPay)
	params.Set("vnp_TmnCode", g.cfg.TmnCode)
	params.Set("vnp_Locale", LocaleVN)
	params.Set("vnp_CurrCode", CurrencyVND)
	params.Set("vnp_TxnRef", req.Reference)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", OrderType)
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*100, 10))
	params.Set("vnp_ReturnUrl", g.cfg.ReturnURL)
	params.Set("vnp_IpAddr", req.ClientIP)
	params.Set("vnp_CreateDate", created.Format(dateLayout))
	params.Set("vnp_ExpireDate", created.Add(expiresAfter).Format(dateLayout))

	query := Canonical(params)
	return g.cfg.PayURL + "?" + query + "&" + ParamSecureHash + "=" + g.sign(query), nil
}

// Verify recomputes the signature over every parameter except the hash
// fields and compares it byte for byte.
func (g *Gateway) Verify(params url.Values) bool {
	got := params.Get(ParamSecureHash)
	if got == "" {
		return false
	}
	want := g.sign(Canonical(params))
	return hmac.Equal([]byte(got), []byte(want))
}

// Sign returns the hex HMAC-SHA512 of the canonical form of params.
func (g *Gateway) Sign(params url.Values) string {
	return g.sign(Canonical(params))
}

func (g *Gateway) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(g.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Canonical sorts the non-empty parameters by key, skipping the hash fields,
// and joins query-escaped key=value pairs with '&'.
func Canonical(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		if params.Get(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(k)))
	}
	return b.String()
}

func (g *Gateway) ParseCallback(params url.Values) (payment.Callback, error) {
	ref := params.Get("vnp_TxnRef")
	if ref == "" {
		return payment.Callback{}, fmt.Errorf("vnpay: missing vnp_TxnRef")
	}

	raw, err := strconv.ParseInt(params.Get("vnp_Amount"), 10, 64)
	if err != nil {
		return payment.Callback{}, fmt.Errorf("vnpay: invalid vnp_Amount: %w", err)
	}

	return payment.Callback{
		Reference:     ref,
		ResponseCode:  params.Get("vnp_ResponseCode"),
		Amount:        raw / 100,
		AmountMinor:   raw,
		BankCode:      params.Get("vnp_BankCode"),
		TransactionNo: params.Get("vnp_TransactionNo"),
		PayDate:       params.Get("vnp_PayDate"),
	}, nil
}

// ParsePayDate reads vnp_PayDate in the gateway's timezone.
func (g *Gateway) ParsePayDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, s, g.loc)
	return t, err == nil
}

var responseMessages = map[string]string{
	"00": "Transaction successful",
	"07": "Amount deducted; transaction flagged as suspicious",
	"09": "Card or account is not registered for internet banking",
	"10": "Card or account verification failed more than 3 times",
	"11": "Payment window expired",
	"12": "Card or account is locked",
	"13": "Wrong one-time password",
	"24": "Customer cancelled the transaction",
	"51": "Insufficient balance",
	"65": "Daily transaction limit exceeded",
	"75": "Issuing bank is under maintenance",
	"79": "Wrong payment password entered too many times",
	"99": "Other error",
}

func (g *Gateway) ResponseMessage(code string) string {
	if msg, ok := responseMessages[code]; ok {
		return msg
	}
	return "Unknown error"
}

var _ payment.Gateway = (*Gateway)(nil)
