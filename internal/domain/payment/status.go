package payment

type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

const MethodVNPay = "vnpay"

// AckCode is the acknowledgement vocabulary returned to the gateway's
// server-to-server notification.
type AckCode string

const (
	AckSuccess          AckCode = "00"
	AckNotFound         AckCode = "01"
	AckAlreadyProcessed AckCode = "02"
	AckAmountMismatch   AckCode = "04"
	AckInvalidSignature AckCode = "97"
	AckUnknownError     AckCode = "99"
)

var ackMessages = map[AckCode]string{
	AckSuccess:          "Confirm Success",
	AckNotFound:         "Order not found",
	AckAlreadyProcessed: "Order already confirmed",
	AckAmountMismatch:   "Invalid amount",
	AckInvalidSignature: "Invalid signature",
	AckUnknownError:     "Unknown error",
}

type Ack struct {
	RspCode AckCode `json:"RspCode"`
	Message string  `json:"Message"`
}

func NewAck(code AckCode) Ack {
	msg, ok := ackMessages[code]
	if !ok {
		code, msg = AckUnknownError, ackMessages[AckUnknownError]
	}
	return Ack{RspCode: code, Message: msg}
}
