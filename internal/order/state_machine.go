package order

import (
	"errors"
	"fmt"
)

// ErrUnknownStatus means an order row carries a status value outside the
// known set. This is a data-integrity bug, not an expected outcome.
var ErrUnknownStatus = errors.New("unknown order status")

// Action is a requested lifecycle operation on an order.
type Action string

const (
	ActionPay    Action = "pay"
	ActionCancel Action = "cancel"
	ActionShip   Action = "ship"
)

// Transition applies an action to the current status and returns the
// resulting status together with whether the transition is allowed. A
// refused transition returns the current status unchanged and allowed=false;
// it never errors. The only error case is a status value outside the known
// set.
//
// Allowed transitions:
//
//	AWAITING_PAYMENT --pay-->    PAID
//	AWAITING_PAYMENT --cancel--> CANCELLED
//	PAID             --cancel--> CANCELLED
//	PAID             --ship-->   SHIPPED
//
// SHIPPED and CANCELLED are terminal; every action on them is refused.
func Transition(current Status, action Action) (Status, bool, error) {
	switch current {
	case StatusAwaitingPayment:
		switch action {
		case ActionPay:
			return StatusPaid, true, nil
		case ActionCancel:
			return StatusCancelled, true, nil
		}
	case StatusPaid:
		switch action {
		case ActionCancel:
			return StatusCancelled, true, nil
		case ActionShip:
			return StatusShipped, true, nil
		}
	case StatusShipped, StatusCancelled:
		// terminal states refuse everything
	default:
		return current, false, fmt.Errorf("%w: %q", ErrUnknownStatus, current)
	}
	return current, false, nil
}
