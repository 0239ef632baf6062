package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"paysera-app/internal/gateway"
	"paysera-app/internal/logger"
	"paysera-app/internal/merchant"
	"paysera-app/internal/payment"

	"go.uber.org/zap"
)

const maxInitializeBody = 1 << 20

// Handler exposes the payment service over HTTP: the platform's session
// initialization webhook and the gateway's callback endpoint.
type Handler struct {
	Svc payment.Service
}

func NewWebhookHandler(svc payment.Service) *Handler {
	return &Handler{Svc: svc}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// InitializeHandler creates a gateway redirect for a platform transaction.
func (h *Handler) InitializeHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInitializeBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read body"})
		return
	}
	defer r.Body.Close()

	var in payment.SessionInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	res, err := h.Svc.InitializeSession(r.Context(), in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, gateway.ErrInvalidRequest), errors.Is(err, payment.ErrMissingChannel):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, merchant.ErrNotConfigured):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		log.Error("initialize session failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// CallbackHandler accepts the gateway's server-to-server callback. The
// gateway retries until it reads "OK", so only requests it could never get
// right are rejected; downstream failures are still acknowledged.
func (h *Handler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	channelID := r.Form.Get("channel")
	raw := gateway.RawCallback{
		Data: r.Form.Get("data"),
		SS1:  r.Form.Get("ss1"),
		SS2:  r.Form.Get("ss2"),
	}

	res, err := h.Svc.HandleCallback(r.Context(), channelID, raw)
	if err != nil {
		switch {
		case payment.IsConfigurationError(err):
			http.Error(w, "gateway not configured", http.StatusInternalServerError)
		case gateway.IsSignature(err):
			http.Error(w, "invalid signature", http.StatusBadRequest)
		default:
			http.Error(w, "invalid callback", http.StatusBadRequest)
		}
		return
	}

	logger.FromCtx(r.Context()).Debug("callback acknowledged",
		zap.String("order_id", res.OrderID),
		zap.Bool("duplicate", res.Duplicate),
		zap.Bool("reported", res.Reported),
	)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}
