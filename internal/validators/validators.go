package validators

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/barber-booking/internal/timeofday"
)

const (
	TagDate    = "civildate"
	TagTime    = "hhmm"
	TagEndTime = "hhmmend"
)

// Register installs the custom tags on gin's validator engine.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation(TagDate, isDate); err != nil {
		return err
	}
	if err := v.RegisterValidation(TagTime, isTime); err != nil {
		return err
	}
	return v.RegisterValidation(TagEndTime, isEndTime)
}

func IsDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func IsTime(s string) bool {
	_, err := timeofday.ToMinutes(s)
	return err == nil
}

// IsEndTime also accepts 24:00.
func IsEndTime(s string) bool {
	_, err := timeofday.EndToMinutes(s)
	return err == nil
}

func isDate(fl validator.FieldLevel) bool {
	return IsDate(fl.Field().String())
}

func isTime(fl validator.FieldLevel) bool {
	return IsTime(fl.Field().String())
}

func isEndTime(fl validator.FieldLevel) bool {
	return IsEndTime(fl.Field().String())
}

// Message turns binding errors into a short client-facing sentence.
func Message(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case TagDate:
		return fe.Field() + " must be YYYY-MM-DD"
	case TagTime, TagEndTime:
		return fe.Field() + " must be HH:MM"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "min":
		return fe.Field() + " must have at least " + fe.Param() + " item(s)"
	default:
		return fe.Field() + " is invalid"
	}
}
