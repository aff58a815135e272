package appointment

import (
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// ===============================
// Transitions
// ===============================

type Action string

const (
	ActionConfirm    Action = "confirm"
	ActionReject     Action = "reject"
	ActionStart      Action = "start"
	ActionComplete   Action = "complete"
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
)

type rule struct {
	from   []Status
	to     Status
	actors []Role
}

var rules = map[Action]rule{
	ActionConfirm:    {from: []Status{StatusPending}, to: StatusConfirmed, actors: []Role{RoleBarber}},
	ActionReject:     {from: []Status{StatusPending}, to: StatusCancelled, actors: []Role{RoleBarber}},
	ActionStart:      {from: []Status{StatusConfirmed}, to: StatusInProgress, actors: []Role{RoleBarber}},
	ActionComplete:   {from: []Status{StatusInProgress}, to: StatusCompleted, actors: []Role{RoleBarber}},
	ActionCancel:     {from: []Status{StatusPending, StatusConfirmed}, to: StatusCancelled, actors: []Role{RoleCustomer, RoleAdmin}},
	ActionReschedule: {from: []Status{StatusPending, StatusConfirmed}, to: StatusPending, actors: []Role{RoleCustomer}},
}

// Target returns the status an action leads to.
func Target(action Action) (Status, bool) {
	r, ok := rules[action]
	return r.to, ok
}

// CanTransition validates the current status against the action's sources.
func CanTransition(action Action, current Status) error {
	r, ok := rules[action]
	if !ok {
		return httperr.Validation("invalid_action", "unknown action %q", action)
	}
	for _, s := range r.from {
		if s == current {
			return nil
		}
	}
	return httperr.State(string(current), "cannot %s appointment", action)
}

// InitialStatus is the status of every new booking.
func InitialStatus() Status {
	return StatusPending
}
