package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"paysera-app/internal/gateway"
	"paysera-app/internal/logger"
	"paysera-app/internal/merchant"
	"paysera-app/internal/metrics"
	"paysera-app/internal/reporter"

	"go.uber.org/zap"
)

const callbackPath = "/webhook/paysera"

type Service interface {
	InitializeSession(ctx context.Context, in SessionInput) (*SessionResult, error)
	HandleCallback(ctx context.Context, channelID string, raw gateway.RawCallback) (*CallbackResult, error)
}

type service struct {
	merchants      merchant.Store
	repo           Repository
	reporter       reporter.Reporter
	gatewayBaseURL string
	publicBaseURL  string
}

func NewService(
	merchants merchant.Store,
	repo Repository,
	rep reporter.Reporter,
	gatewayBaseURL string,
	publicBaseURL string,
) Service {
	return &service{
		merchants:      merchants,
		repo:           repo,
		reporter:       rep,
		gatewayBaseURL: gatewayBaseURL,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
	}
}

// clientFor loads the merchant config for channelID and builds a gateway
// client from it. Every failure here is a configuration problem.
func (s *service) clientFor(ctx context.Context, channelID string) (*gateway.Client, *merchant.Config, error) {
	if channelID == "" {
		return nil, nil, ErrMissingChannel
	}
	cfg, err := s.merchants.Get(ctx, channelID)
	if err != nil {
		return nil, nil, err
	}
	client, err := gateway.NewClient(cfg.ToGatewayConfig(), gateway.WithBaseURL(s.gatewayBaseURL))
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

func (s *service) callbackURL(channelID string) string {
	return s.publicBaseURL + callbackPath + "?channel=" + url.QueryEscape(channelID)
}

func (s *service) InitializeSession(ctx context.Context, in SessionInput) (*SessionResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("transaction_id", in.TransactionID),
		zap.String("channel_id", in.ChannelID),
		zap.Float64("amount", in.Amount),
		zap.String("currency", in.Currency),
	)

	client, _, err := s.clientFor(ctx, in.ChannelID)
	if err != nil {
		metrics.IncPaymentRequest("config_error")
		log.Error("merchant configuration unavailable", zap.Error(err))
		return nil, err
	}

	redirect, err := client.CreatePaymentRequest(gateway.PaymentRequest{
		TransactionID: in.TransactionID,
		Amount:        in.Amount,
		Currency:      in.Currency,
		AcceptURL:     in.AcceptURL,
		CancelURL:     in.CancelURL,
		CallbackURL:   s.callbackURL(in.ChannelID),
		Email:         in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Description:   in.Description,
		Language:      in.Language,
	})
	if err != nil {
		metrics.IncPaymentRequest("invalid")
		log.Warn("payment request rejected", zap.Error(err))
		return nil, err
	}

	p := &Payment{
		TransactionID: in.TransactionID,
		ChannelID:     in.ChannelID,
		OrderID:       redirect.OrderID,
		Amount:        redirect.AmountMinor,
		Currency:      strings.ToUpper(in.Currency),
		Status:        StatusPending,
	}
	if err := s.repo.SavePayment(ctx, p); err != nil {
		metrics.IncPaymentRequest("store_error")
		log.Error("failed to store payment", zap.Error(err))
		return nil, fmt.Errorf("save payment: %w", err)
	}

	metrics.IncPaymentRequest("ok")
	log.Info("payment redirect created",
		zap.String("order_id", redirect.OrderID),
		zap.Bool("sandbox", client.SandboxMode()),
	)

	return &SessionResult{
		RedirectURL: redirect.RedirectURL,
		OrderID:     redirect.OrderID,
		Amount:      in.Amount,
		Currency:    p.Currency,
	}, nil
}

// HandleCallback authenticates and records one gateway callback and reports
// its outcome to the platform at most once per (order, request, status).
//
// Only configuration, signature and structural failures are returned as
// errors. Anything that goes wrong after the callback is trusted is logged,
// recorded on the webhook row, and reflected in CallbackResult.Reported.
func (s *service) HandleCallback(ctx context.Context, channelID string, raw gateway.RawCallback) (*CallbackResult, error) {
	timer := metrics.StartTimer()
	defer timer.ObserveTo(metrics.CallbackDuration)

	log := logger.FromCtx(ctx).With(zap.String("channel_id", channelID))

	client, cfg, err := s.clientFor(ctx, channelID)
	if err != nil {
		metrics.IncCallback("config_error")
		log.Error("merchant configuration unavailable", zap.Error(err))
		return nil, err
	}

	ev, err := client.ProcessCallback(raw.Envelope())
	if err != nil {
		metrics.IncCallback(rejectLabel(err))
		log.Warn("callback rejected", zap.Error(err))
		return nil, err
	}
	if ev.ProjectID != cfg.AccountID {
		metrics.IncCallback("project_mismatch")
		log.Warn("callback for another project", zap.String("project_id", ev.ProjectID))
		return nil, ErrProjectMismatch
	}

	outcome := gateway.OutcomeOf(ev.Status)
	log = log.With(
		zap.String("order_id", ev.OrderID),
		zap.String("gateway_request_id", ev.RequestID),
		zap.Int("status", ev.Status),
		zap.String("outcome", outcome.String()),
	)
	result := &CallbackResult{
		OrderID:   ev.OrderID,
		RequestID: ev.RequestID,
		Outcome:   outcome,
	}

	payload, _ := json.Marshal(ev)
	eventID := fmt.Sprintf("%s:%s:%d", ev.OrderID, ev.RequestID, ev.Status)
	webhookID, dup, err := s.repo.SavePaymentWebhook(ctx, Provider, eventID, outcome.String(), ev.OrderID, payload, true)
	if err != nil {
		metrics.IncCallback("store_error")
		log.Error("failed to record webhook", zap.Error(err))
		return result, nil
	}
	if dup {
		metrics.IncCallback("duplicate")
		log.Info("duplicate callback ignored")
		result.Duplicate = true
		return result, nil
	}

	if err := s.apply(ctx, ev, outcome); err != nil {
		metrics.IncCallback("report_error")
		log.Error("callback processing failed", zap.Error(err))
		if mErr := s.repo.MarkWebhookFailed(ctx, webhookID, err.Error()); mErr != nil {
			log.Error("failed to mark webhook failed", zap.Error(mErr))
		}
		return result, nil
	}

	if err := s.repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Error("failed to mark webhook processed", zap.Error(err))
	}
	result.Reported = true
	metrics.IncCallback("ok")
	log.Info("callback processed")
	return result, nil
}

// apply reports ev to the platform and moves the stored payment to the
// matching status. A callback whose amount or currency disagrees with the
// stored payment is reported as a failure.
func (s *service) apply(ctx context.Context, ev *gateway.CallbackEvent, outcome gateway.Outcome) error {
	p, err := s.repo.GetPaymentByOrder(ctx, ev.OrderID)
	if err != nil {
		return err
	}

	report := reporter.Event{
		TransactionID: p.TransactionID,
		Type:          PlatformEventFor(outcome),
		Amount:        float64(ev.Amount) / 100,
		PspReference:  ev.RequestID,
	}
	status := StatusFor(outcome)

	var mismatch error
	switch {
	case ev.Amount != p.Amount:
		mismatch = fmt.Errorf("%w: callback=%d stored=%d", ErrAmountMismatch, ev.Amount, p.Amount)
	case !strings.EqualFold(ev.Currency, p.Currency):
		mismatch = fmt.Errorf("%w: callback=%s stored=%s", ErrCurrencyMismatch, ev.Currency, p.Currency)
	}
	if mismatch != nil && outcome == gateway.OutcomeSucceeded {
		logger.FromCtx(ctx).Warn("paid callback does not match stored payment",
			zap.String("order_id", ev.OrderID),
			zap.Error(mismatch),
		)
		report.Type = reporter.ChargeFailure
		report.Message = mismatch.Error()
		status = StatusFailed
	}

	if err := s.reporter.Report(ctx, report); err != nil {
		return fmt.Errorf("report transaction event: %w", err)
	}
	if err := s.repo.UpdatePaymentStatus(ctx, ev.OrderID, status, ev.RequestID); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

func rejectLabel(err error) string {
	if gateway.IsSignature(err) {
		return "bad_signature"
	}
	return "bad_data"
}

// IsConfigurationError reports whether err should surface as a server-side
// misconfiguration rather than a bad request.
func IsConfigurationError(err error) bool {
	return gateway.IsConfiguration(err) ||
		errors.Is(err, merchant.ErrNotConfigured)
}
