package gateway

import (
	"crypto/subtle"
	"strconv"
	"strings"
)

// RawCallback is the query shape the gateway posts to callbackurl.
// SS2 is the RSA-signed alternative and is carried but not verified.
type RawCallback struct {
	Data string
	SS1  string
	SS2  string
}

func (r RawCallback) Envelope() SignedEnvelope {
	return SignedEnvelope{Payload: r.Data, Signature: r.SS1}
}

// CallbackEvent is a verified and decoded gateway callback.
type CallbackEvent struct {
	ProjectID string `json:"projectid"`
	OrderID   string `json:"orderid"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    int    `json:"status"`
	RequestID string `json:"requestid"`

	PayText  *string `json:"paytext,omitempty"`
	Name     *string `json:"name,omitempty"`
	Surename *string `json:"surename,omitempty"`
	Payment  *string `json:"payment,omitempty"`
	Country  *string `json:"country,omitempty"`
	Test     *bool   `json:"test,omitempty"`
}

var requiredCallbackFields = []string{"projectid", "orderid", "amount", "currency", "status", "requestid"}

// ProcessCallback authenticates env with the merchant secret and only then
// decodes it into a CallbackEvent. Unknown status codes are accepted.
func (c *Client) ProcessCallback(env SignedEnvelope) (*CallbackEvent, error) {
	if env.Payload == "" || env.Signature == "" {
		return nil, callbackDataError("missing data or signature")
	}
	if !c.verify(env) {
		return nil, signatureError("signature mismatch")
	}

	raw, err := DecodeURLSafeBase64(env.Payload)
	if err != nil {
		return nil, callbackDataError("payload is not valid base64: %v", err)
	}
	fields, err := parseQuery(string(raw))
	if err != nil {
		return nil, err
	}
	return decodeEvent(fields)
}

// verify compares signatures case-insensitively in constant time.
func (c *Client) verify(env SignedEnvelope) bool {
	want := Sign(env.Payload, c.config.SharedSecret)
	got := strings.ToLower(env.Signature)
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func decodeEvent(fields map[string]string) (*CallbackEvent, error) {
	for _, name := range requiredCallbackFields {
		if fields[name] == "" {
			return nil, callbackDataError("missing required field %s", name)
		}
	}

	amount, err := strconv.ParseInt(fields["amount"], 10, 64)
	if err != nil {
		return nil, callbackDataError("invalid amount %q", fields["amount"])
	}
	status, err := strconv.Atoi(fields["status"])
	if err != nil {
		return nil, callbackDataError("invalid status %q", fields["status"])
	}

	return &CallbackEvent{
		ProjectID: fields["projectid"],
		OrderID:   fields["orderid"],
		Amount:    amount,
		Currency:  fields["currency"],
		Status:    status,
		RequestID: fields["requestid"],
		PayText:   optional(fields, "paytext"),
		Name:      optional(fields, "name"),
		Surename:  optional(fields, "surename"),
		Payment:   optional(fields, "payment"),
		Country:   optional(fields, "country"),
		Test:      testFlag(fields),
	}, nil
}

func optional(fields map[string]string, key string) *string {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	return &v
}

func testFlag(fields map[string]string) *bool {
	var b bool
	switch fields["test"] {
	case "1":
		b = true
	case "0":
		b = false
	default:
		return nil
	}
	return &b
}
