package model

type OutcomeStatus string

const (
	StatusSuccess   OutcomeStatus = "success"
	StatusDuplicate OutcomeStatus = "duplicate"
	StatusFailed    OutcomeStatus = "failed"
)

// FailReason is a machine readable reason of a failed outcome.
type FailReason string

const (
	ReasonNoRoute          FailReason = "no_route_available"
	ReasonRouteExhausted   FailReason = "route_switches_exhausted"
	ReasonRefreshExhausted FailReason = "ticket_refresh_exhausted"
	ReasonTimeout          FailReason = "run_timeout"
	ReasonTransport        FailReason = "transport_failure"
	ReasonRejected         FailReason = "rejected"
)

// Outcome is the terminal result of one task, exactly one is produced per task.
type Outcome struct {
	Status  OutcomeStatus
	Message string
	Payload map[string]any
	Reason  FailReason
	Err     error
}

func SuccessOutcome(message string, payload map[string]any) Outcome {
	return Outcome{Status: StatusSuccess, Message: message, Payload: payload}
}

// DuplicateOutcome is terminal and non-retryable, the account already has an accepted application.
func DuplicateOutcome(message string) Outcome {
	return Outcome{Status: StatusDuplicate, Message: message}
}

func FailedOutcome(reason FailReason, err error) Outcome {
	o := Outcome{Status: StatusFailed, Reason: reason, Err: err}
	if err != nil {
		o.Message = err.Error()
	}
	return o
}

func (o Outcome) IsTerminalSuccess() bool {
	return o.Status == StatusSuccess
}
