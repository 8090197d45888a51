package service

import "errors"

// ErrInvalidTransition marks a lifecycle action refused by the order state
// machine. It is a business outcome, not a system failure.
var ErrInvalidTransition = errors.New("illegal order status transition")
