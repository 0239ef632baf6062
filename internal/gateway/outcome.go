package gateway

// Outcome classifies a raw callback status.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomePending
	OutcomeSucceeded
	OutcomeAcceptedAwaitingExecution
	OutcomeAdditionalInfoRequired
)

const (
	StatusNotExecuted        = 0
	StatusSuccess            = 1
	StatusAcceptedNotExecute = 2
	StatusAdditionalInfo     = 3
)

// OutcomeOf maps gateway status codes; anything unknown folds to failed.
func OutcomeOf(status int) Outcome {
	switch status {
	case StatusNotExecuted:
		return OutcomePending
	case StatusSuccess:
		return OutcomeSucceeded
	case StatusAcceptedNotExecute:
		return OutcomeAcceptedAwaitingExecution
	case StatusAdditionalInfo:
		return OutcomeAdditionalInfoRequired
	default:
		return OutcomeFailed
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeAcceptedAwaitingExecution:
		return "accepted_awaiting_execution"
	case OutcomeAdditionalInfoRequired:
		return "additional_info_required"
	default:
		return "failed"
	}
}
