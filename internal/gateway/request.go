package gateway

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	ProtocolVersion = "1.6"
	DefaultBaseURL  = "https://www.paysera.com/pay/"

	maxOrderIDLength  = 40
	orderIDPrefixSize = 8
	orderIDUniqueSize = 24
)

// ErrInvalidRequest marks a malformed PaymentRequest. It is a caller bug,
// not one of the gateway error kinds.
var ErrInvalidRequest = errors.New("invalid payment request")

// PaymentRequest describes a payment the customer will be redirected to pay.
// Optional fields are omitted from the wire payload when nil or empty.
type PaymentRequest struct {
	TransactionID string
	Amount        float64 // major units
	Currency      string
	AcceptURL     string
	CancelURL     string
	CallbackURL   string

	Email       *string
	FirstName   *string
	LastName    *string
	Description *string
	Language    *string
}

// SignedEnvelope is the data/signature pair exchanged with the gateway.
type SignedEnvelope struct {
	Payload   string
	Signature string
}

type PaymentRedirect struct {
	RedirectURL string
	OrderID     string
	AmountMinor int64
}

// NewOrderID derives a gateway order id from the platform transaction id:
// up to eight alphanumerics of the transaction id followed by 24 hex
// characters of a fresh UUIDv7, capped at 40 characters.
func NewOrderID(transactionID string) (string, error) {
	var prefix strings.Builder
	for _, r := range transactionID {
		if prefix.Len() == orderIDPrefixSize {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			prefix.WriteRune(r)
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate order id: %w", err)
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	orderID := prefix.String() + hex[len(hex)-orderIDUniqueSize:]
	if len(orderID) > maxOrderIDLength {
		orderID = orderID[:maxOrderIDLength]
	}
	return orderID, nil
}

// ToMinorUnits converts a major-unit amount with round(amount * 100).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func validateRequest(req PaymentRequest) error {
	if req.TransactionID == "" {
		return fmt.Errorf("%w: transaction id is required", ErrInvalidRequest)
	}
	if !(req.Amount > 0) || math.IsInf(req.Amount, 0) {
		return fmt.Errorf("%w: amount must be positive, got %v", ErrInvalidRequest, req.Amount)
	}
	// float64(math.MaxInt64) rounds up to 2^63, so >= rejects every overflow.
	if minor := math.Round(req.Amount * 100); minor < 1 || minor >= math.MaxInt64 {
		return fmt.Errorf("%w: amount %v is out of range in minor units", ErrInvalidRequest, req.Amount)
	}
	if len(req.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code, got %q", ErrInvalidRequest, req.Currency)
	}
	urls := []struct{ name, raw string }{
		{"accept url", req.AcceptURL},
		{"cancel url", req.CancelURL},
		{"callback url", req.CallbackURL},
	}
	for _, u := range urls {
		parsed, err := url.Parse(u.raw)
		if err != nil || !parsed.IsAbs() || parsed.Host == "" {
			return fmt.Errorf("%w: %s must be absolute, got %q", ErrInvalidRequest, u.name, u.raw)
		}
	}
	return nil
}

func (c *Client) buildParams(req PaymentRequest, orderID string) *Params {
	return NewParams().
		Set("projectid", c.config.AccountID).
		Set("orderid", orderID).
		Set("accepturl", req.AcceptURL).
		Set("cancelurl", req.CancelURL).
		Set("callbackurl", req.CallbackURL).
		Set("version", ProtocolVersion).
		SetInt("amount", ToMinorUnits(req.Amount)).
		Set("currency", strings.ToUpper(req.Currency)).
		SetBit("test", c.config.SandboxMode).
		SetOptional("p_email", req.Email).
		SetOptional("p_firstname", req.FirstName).
		SetOptional("p_lastname", req.LastName).
		SetOptional("paytext", req.Description).
		SetOptional("lang", req.Language)
}

// Seal encodes and signs params with the merchant secret.
func (c *Client) Seal(params *Params) SignedEnvelope {
	payload := EncodeURLSafeBase64([]byte(EncodeParams(params)))
	return SignedEnvelope{
		Payload:   payload,
		Signature: Sign(payload, c.config.SharedSecret),
	}
}

func (c *Client) redirectURL(env SignedEnvelope) string {
	// The payload is already URL-safe and must reach the gateway unmodified.
	return strings.TrimRight(c.baseURL, "/") + "/?data=" + env.Payload + "&sign=" + env.Signature
}
