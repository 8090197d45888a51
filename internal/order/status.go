package order

// Status is the lifecycle state of an order. The string values are stored
// in the orders table and returned over the API as-is.
type Status string

const (
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusPaid            Status = "PAID"
	StatusShipped         Status = "SHIPPED"
	StatusCancelled       Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusShipped || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusAwaitingPayment, StatusPaid, StatusShipped, StatusCancelled:
		return true
	}
	return false
}
