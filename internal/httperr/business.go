package httperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindPermission       Kind = "permission"
	KindState            Kind = "state"
	KindConflict         Kind = "conflict"
	KindInvalidSignature Kind = "invalid_signature"
	KindAmountMismatch   Kind = "amount_mismatch"
	KindAlreadyPaid      Kind = "already_paid"
	KindInternal         Kind = "internal"
)

// Error is the business failure every use case returns. Code is the stable
// machine-readable identifier written to clients as error_code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newErr(kind Kind, code, format string, args ...any) error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(code, format string, args ...any) error {
	return newErr(KindValidation, code, format, args...)
}

func NotFoundErr(code, format string, args ...any) error {
	return newErr(KindNotFound, code, format, args...)
}

func Permission(code, format string, args ...any) error {
	return newErr(KindPermission, code, format, args...)
}

// State reports an illegal transition and always names the current status.
func State(current string, format string, args ...any) error {
	return &Error{
		Kind:    KindState,
		Code:    "invalid_state",
		Message: fmt.Sprintf(format, args...) + fmt.Sprintf(" (current status: %s)", current),
	}
}

func Conflict(code, format string, args ...any) error {
	return newErr(KindConflict, code, format, args...)
}

func InvalidSignature() error {
	return &Error{Kind: KindInvalidSignature, Code: "invalid_signature", Message: "gateway signature mismatch"}
}

func AmountMismatch(expected, got int64) error {
	return newErr(KindAmountMismatch, "amount_mismatch", "expected %d, gateway reported %d", expected, got)
}

func AlreadyPaid() error {
	return &Error{Kind: KindAlreadyPaid, Code: "already_paid", Message: "appointment is already paid"}
}

// KindOf returns KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func IsCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
