package appointment

import (
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleBarber   Role = "barber"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated principal performing an operation.
type Actor struct {
	UserID uint
	Role   Role
}

func (a Actor) IsCustomerOf(ap *models.Appointment) bool {
	return a.Role == RoleCustomer && ap.CustomerID == a.UserID
}

// IsBarberOf needs ap.Barber loaded.
func (a Actor) IsBarberOf(ap *models.Appointment) bool {
	return a.Role == RoleBarber && ap.Barber.UserID != 0 && ap.Barber.UserID == a.UserID
}

// Authorize checks that the actor may perform action on ap.
func Authorize(action Action, actor Actor, ap *models.Appointment) error {
	r, ok := rules[action]
	if !ok {
		return httperr.Validation("invalid_action", "unknown action %q", action)
	}

	for _, role := range r.actors {
		if role != actor.Role {
			continue
		}
		switch role {
		case RoleAdmin:
			return nil
		case RoleCustomer:
			if actor.IsCustomerOf(ap) {
				return nil
			}
		case RoleBarber:
			if actor.IsBarberOf(ap) {
				return nil
			}
		}
	}

	return httperr.Permission("forbidden", "%s may not %s this appointment", actor.Role, action)
}

// CanView reports whether the actor may read ap.
func CanView(actor Actor, ap *models.Appointment) bool {
	return actor.Role == RoleAdmin || actor.IsCustomerOf(ap) || actor.IsBarberOf(ap)
}
