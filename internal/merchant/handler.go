package merchant

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"paysera-app/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxConfigBody = 64 << 10

// Handler lets the platform install, rotate and remove the gateway
// credentials of a channel.
type Handler struct {
	Repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{Repo: repo}
}

type configInput struct {
	AccountID    string `json:"accountId"`
	SharedSecret string `json:"sharedSecret"`
	SandboxMode  bool   `json:"sandboxMode"`
}

type configView struct {
	ChannelID   string `json:"channelId"`
	AccountID   string `json:"accountId"`
	SandboxMode bool   `json:"sandboxMode"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SaveHandler upserts the config of the {channel} in the path.
// The shared secret is accepted but never echoed back.
func (h *Handler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channel")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxConfigBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var in configInput
	if err := json.Unmarshal(body, &in); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	cfg := &Config{
		ChannelID:    channelID,
		AccountID:    in.AccountID,
		SharedSecret: in.SharedSecret,
		SandboxMode:  in.SandboxMode,
	}
	if err := h.Repo.Save(r.Context(), cfg); err != nil {
		if errors.Is(err, ErrInvalidConfig) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.FromCtx(r.Context()).Error("failed to save merchant config",
			zap.String("channel_id", channelID), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logger.FromCtx(r.Context()).Info("merchant config saved",
		zap.String("channel_id", channelID),
		zap.Bool("sandbox", cfg.SandboxMode),
	)
	writeJSON(w, http.StatusOK, configView{
		ChannelID:   cfg.ChannelID,
		AccountID:   cfg.AccountID,
		SandboxMode: cfg.SandboxMode,
	})
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channel")
	if err := h.Repo.Delete(r.Context(), channelID); err != nil {
		logger.FromCtx(r.Context()).Error("failed to delete merchant config",
			zap.String("channel_id", channelID), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
