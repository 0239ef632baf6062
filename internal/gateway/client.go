// Package gateway encodes signed payment requests for the Paysera redirect
// gateway and authenticates its server-to-server callbacks.
//
// A Client is immutable after construction and safe for concurrent use.
package gateway

import "strings"

// MerchantConfig identifies a merchant project at the gateway.
type MerchantConfig struct {
	AccountID    string
	SharedSecret string
	SandboxMode  bool
}

type Client struct {
	config  MerchantConfig
	baseURL string
}

type Option func(*Client)

// WithBaseURL overrides the gateway redirect endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// NewClient validates cfg once; no later operation re-checks it.
func NewClient(cfg MerchantConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.AccountID) == "" {
		return nil, configurationError("merchant account id is empty")
	}
	if strings.TrimSpace(cfg.SharedSecret) == "" {
		return nil, configurationError("merchant secret is empty")
	}
	c := &Client{config: cfg, baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) SandboxMode() bool {
	return c.config.SandboxMode
}

// CreatePaymentRequest builds the signed redirect for req. It performs no I/O.
func (c *Client) CreatePaymentRequest(req PaymentRequest) (*PaymentRedirect, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	orderID, err := NewOrderID(req.TransactionID)
	if err != nil {
		return nil, err
	}

	env := c.Seal(c.buildParams(req, orderID))
	return &PaymentRedirect{
		RedirectURL: c.redirectURL(env),
		OrderID:     orderID,
		AmountMinor: ToMinorUnits(req.Amount),
	}, nil
}

// IsSucceeded reports whether the callback confirms a completed payment.
func (c *Client) IsSucceeded(ev *CallbackEvent) bool {
	return OutcomeOf(ev.Status) == OutcomeSucceeded
}

// IsPending is true for not-yet-executed and accepted-awaiting-execution.
func (c *Client) IsPending(ev *CallbackEvent) bool {
	switch OutcomeOf(ev.Status) {
	case OutcomePending, OutcomeAcceptedAwaitingExecution:
		return true
	}
	return false
}
