package payment

type Status string

const (
	StatusIdle            Status = "IDLE"
	StatusSdkLoading      Status = "SDK_LOADING"
	StatusOrderCreating   Status = "ORDER_CREATING"
	StatusAwaitingPayment Status = "AWAITING_USER_PAYMENT"
	StatusVerifying       Status = "VERIFYING"
	StatusSucceeded       Status = "SUCCEEDED"
	StatusFailed          Status = "FAILED"
	StatusCancelled       Status = "CANCELLED"
)

func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}

// transitions is the legal edge set of the payment flow. Failed is reachable
// from every non-terminal state; Cancelled only from the open widget.
var transitions = map[Status][]Status{
	StatusIdle:            {StatusSdkLoading, StatusFailed},
	StatusSdkLoading:      {StatusOrderCreating, StatusFailed},
	StatusOrderCreating:   {StatusAwaitingPayment, StatusFailed},
	StatusAwaitingPayment: {StatusVerifying, StatusFailed, StatusCancelled},
	StatusVerifying:       {StatusSucceeded, StatusFailed},
}

func CanTransitionTo(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
