package gateway

import (
	"math"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func testRequest() PaymentRequest {
	return PaymentRequest{
		TransactionID: "TX-001",
		Amount:        10.50,
		Currency:      "EUR",
		AcceptURL:     "https://shop.example/checkout/accept",
		CancelURL:     "https://shop.example/checkout/cancel",
		CallbackURL:   "https://app.example/webhook/paysera?channel=default",
	}
}

func newTestClient(t *testing.T, sandbox bool) *Client {
	t.Helper()
	c, err := NewClient(MerchantConfig{AccountID: "12345", SharedSecret: "s3cr3t", SandboxMode: sandbox})
	require.NoError(t, err)
	return c
}

// decodeRedirect returns the decoded payload fields and the raw query params.
func decodeRedirect(t *testing.T, redirect string) (map[string]string, url.Values) {
	t.Helper()
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	q := u.Query()
	raw, err := DecodeURLSafeBase64(q.Get("data"))
	require.NoError(t, err)
	fields, err := parseQuery(string(raw))
	require.NoError(t, err)
	return fields, q
}

func TestNewOrderID(t *testing.T) {
	t.Run("Prefix from alphanumerics", func(t *testing.T) {
		id, err := NewOrderID("TX-001")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "TX001"))
		assert.Len(t, id, len("TX001")+24)
	})

	t.Run("Prefix capped at eight characters", func(t *testing.T) {
		id, err := NewOrderID("VHJhbnNhY3Rpb25JdGVtOjE=")
		require.NoError(t, err)
		assert.Equal(t, "VHJhbnNh", id[:8])
		assert.LessOrEqual(t, len(id), 40)
		assert.Len(t, id, 32)
	})

	t.Run("Non ascii dropped", func(t *testing.T) {
		id, err := NewOrderID("ąčę-42")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "42"))
	})

	t.Run("Unique for identical input", func(t *testing.T) {
		seen := make(map[string]struct{}, 1000)
		for i := 0; i < 1000; i++ {
			id, err := NewOrderID("TX-001")
			require.NoError(t, err)
			assert.LessOrEqual(t, len(id), 40)
			seen[id] = struct{}{}
		}
		assert.Len(t, seen, 1000)
	})

	t.Run("Unique under concurrency", func(t *testing.T) {
		var mu sync.Mutex
		var wg sync.WaitGroup
		seen := make(map[string]struct{})
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					id, err := NewOrderID("same")
					if err != nil {
						t.Error(err)
						return
					}
					mu.Lock()
					seen[id] = struct{}{}
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Len(t, seen, 1600)
	})
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1050), ToMinorUnits(10.50))
	assert.Equal(t, int64(1000), ToMinorUnits(10))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(1), ToMinorUnits(0.005))
}

func TestCreatePaymentRequest(t *testing.T) {
	t.Run("Sandbox payload", func(t *testing.T) {
		c := newTestClient(t, true)
		res, err := c.CreatePaymentRequest(testRequest())
		require.NoError(t, err)

		fields, q := decodeRedirect(t, res.RedirectURL)
		assert.Equal(t, "1050", fields["amount"])
		assert.Equal(t, "1", fields["test"])
		assert.Equal(t, "12345", fields["projectid"])
		assert.Equal(t, res.OrderID, fields["orderid"])
		assert.Equal(t, "EUR", fields["currency"])
		assert.Equal(t, ProtocolVersion, fields["version"])
		assert.Equal(t, "https://shop.example/checkout/accept", fields["accepturl"])
		assert.Equal(t, "https://app.example/webhook/paysera?channel=default", fields["callbackurl"])
		assert.Equal(t, int64(1050), res.AmountMinor)

		assert.Equal(t, Sign(q.Get("data"), "s3cr3t"), q.Get("sign"))
	})

	t.Run("Production sets test=0", func(t *testing.T) {
		c := newTestClient(t, false)
		req := testRequest()
		req.Amount = 10
		res, err := c.CreatePaymentRequest(req)
		require.NoError(t, err)

		fields, _ := decodeRedirect(t, res.RedirectURL)
		assert.Equal(t, "0", fields["test"])
		assert.Equal(t, "1000", fields["amount"])
	})

	t.Run("Redirect shape", func(t *testing.T) {
		c := newTestClient(t, false)
		res, err := c.CreatePaymentRequest(testRequest())
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(res.RedirectURL, "https://www.paysera.com/pay/?data="))
		idx := strings.Index(res.RedirectURL, "&sign=")
		require.Greater(t, idx, 0)
		assert.Len(t, res.RedirectURL[idx+len("&sign="):], 32)
	})

	t.Run("Custom base url", func(t *testing.T) {
		c, err := NewClient(MerchantConfig{AccountID: "1", SharedSecret: "x"}, WithBaseURL("https://sandbox.example/pay"))
		require.NoError(t, err)
		res, err := c.CreatePaymentRequest(testRequest())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.RedirectURL, "https://sandbox.example/pay/?data="))
	})

	t.Run("Optional fields", func(t *testing.T) {
		c := newTestClient(t, true)
		req := testRequest()
		req.Email = strPtr("buyer@example.com")
		req.FirstName = strPtr("Jonas")
		req.LastName = strPtr("")
		req.Language = strPtr("LIT")

		res, err := c.CreatePaymentRequest(req)
		require.NoError(t, err)

		fields, _ := decodeRedirect(t, res.RedirectURL)
		assert.Equal(t, "buyer@example.com", fields["p_email"])
		assert.Equal(t, "Jonas", fields["p_firstname"])
		assert.Equal(t, "LIT", fields["lang"])
		assert.NotContains(t, fields, "p_lastname")
		assert.NotContains(t, fields, "paytext")
	})

	t.Run("Unset optional key never encoded", func(t *testing.T) {
		c := newTestClient(t, true)
		res, err := c.CreatePaymentRequest(testRequest())
		require.NoError(t, err)

		u, err := url.Parse(res.RedirectURL)
		require.NoError(t, err)
		raw, err := DecodeURLSafeBase64(u.Query().Get("data"))
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "p_email")
		assert.NotContains(t, string(raw), "paytext=")
	})

	t.Run("Distinct order ids", func(t *testing.T) {
		c := newTestClient(t, true)
		a, err := c.CreatePaymentRequest(testRequest())
		require.NoError(t, err)
		b, err := c.CreatePaymentRequest(testRequest())
		require.NoError(t, err)
		assert.NotEqual(t, a.OrderID, b.OrderID)
	})

	t.Run("Invalid input", func(t *testing.T) {
		c := newTestClient(t, true)
		cases := map[string]func(*PaymentRequest){
			"no transaction": func(r *PaymentRequest) { r.TransactionID = "" },
			"zero amount":    func(r *PaymentRequest) { r.Amount = 0 },
			"below one cent": func(r *PaymentRequest) { r.Amount = 0.001 },
			"int64 overflow": func(r *PaymentRequest) { r.Amount = 1e17 },
			"max float":      func(r *PaymentRequest) { r.Amount = math.MaxFloat64 },
			"bad currency":   func(r *PaymentRequest) { r.Currency = "EURO" },
			"relative url":   func(r *PaymentRequest) { r.AcceptURL = "/accept" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				req := testRequest()
				mutate(&req)
				_, err := c.CreatePaymentRequest(req)
				assert.ErrorIs(t, err, ErrInvalidRequest)
				assert.Equal(t, Kind(0), KindOf(err))
			})
		}
	})
}
