package payment

import (
	"time"

	"paysera-app/internal/gateway"
	"paysera-app/internal/reporter"
)

const Provider = "PAYSERA"

type Status string

const (
	StatusPending           Status = "PENDING"
	StatusPaid              Status = "PAID"
	StatusAwaitingExecution Status = "AWAITING_EXECUTION"
	StatusActionRequired    Status = "ACTION_REQUIRED"
	StatusFailed            Status = "FAILED"
)

// Payment links a platform transaction to the gateway order created for it.
type Payment struct {
	ID            int64
	TransactionID string
	ChannelID     string
	OrderID       string
	Amount        int64 // minor units
	Currency      string
	Status        Status
	PspReference  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SessionInput is what the platform sends when a checkout starts paying.
type SessionInput struct {
	TransactionID string  `json:"transactionId"`
	ChannelID     string  `json:"channelId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	AcceptURL     string  `json:"acceptUrl"`
	CancelURL     string  `json:"cancelUrl"`

	Email       *string `json:"email,omitempty"`
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Description *string `json:"description,omitempty"`
	Language    *string `json:"language,omitempty"`
}

type SessionResult struct {
	RedirectURL string  `json:"redirectUrl"`
	OrderID     string  `json:"orderId"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

type CallbackResult struct {
	OrderID   string
	RequestID string
	Outcome   gateway.Outcome
	Duplicate bool
	Reported  bool
}

// PlatformEventFor maps a gateway outcome to the platform event vocabulary.
func PlatformEventFor(o gateway.Outcome) reporter.EventType {
	switch o {
	case gateway.OutcomeSucceeded:
		return reporter.ChargeSuccess
	case gateway.OutcomePending, gateway.OutcomeAcceptedAwaitingExecution:
		return reporter.ChargeRequest
	case gateway.OutcomeAdditionalInfoRequired:
		return reporter.ChargeActionRequired
	default:
		return reporter.ChargeFailure
	}
}

func StatusFor(o gateway.Outcome) Status {
	switch o {
	case gateway.OutcomeSucceeded:
		return StatusPaid
	case gateway.OutcomePending:
		return StatusPending
	case gateway.OutcomeAcceptedAwaitingExecution:
		return StatusAwaitingExecution
	case gateway.OutcomeAdditionalInfoRequired:
		return StatusActionRequired
	default:
		return StatusFailed
	}
}
