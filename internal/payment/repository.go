package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error
	UpdatePaymentStatus(ctx context.Context, orderID string, status Status, pspReference string) error
	GetPaymentByOrder(ctx context.Context, orderID string) (*Payment, error)
	SavePaymentWebhook(
		ctx context.Context,
		provider string,
		eventID string,
		eventType string,
		externalID string,
		payload json.RawMessage,
		signatureValid bool,
	) (webhookID int64, isDuplicate bool, err error)

	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	const q = `
	INSERT INTO payments (
		transaction_id,
		channel_id,
		order_id,
		amount,
		currency,
		status,
		provider
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowContext(ctx, q,
		p.TransactionID, p.ChannelID, p.OrderID, p.Amount, p.Currency, p.Status, Provider,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, orderID string, status Status, pspReference string) error {
	const q = `
	UPDATE payments
	SET status = $1, psp_reference = $2, updated_at = now()
	WHERE order_id = $3
	`

	res, err := r.db.ExecContext(ctx, q, status, pspReference, orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *repository) GetPaymentByOrder(ctx context.Context, orderID string) (*Payment, error) {
	const q = `
	SELECT id, transaction_id, channel_id, order_id, amount, currency, status,
		COALESCE(psp_reference, ''), created_at, updated_at
	FROM payments WHERE order_id = $1
	`

	var p Payment
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&p.ID, &p.TransactionID, &p.ChannelID, &p.OrderID, &p.Amount, &p.Currency,
		&p.Status, &p.PspReference, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) SavePaymentWebhook(
	ctx context.Context,
	provider string,
	eventID string,
	eventType string,
	externalID string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_id,
		event_type,
		external_id,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET
		payload = EXCLUDED.payload,
		signature_valid = EXCLUDED.signature_valid,
		process_error = NULL,
		received_at = now()
	WHERE payment_webhooks.processed_at IS NULL
		AND payment_webhooks.process_error IS NOT NULL
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		provider,
		eventID,
		eventType,
		externalID,
		signatureValid,
		[]byte(payload),
	).Scan(&id)

	if err != nil {
		// a replay of a processed or in-flight event updates nothing and returns no row
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	const q = `
	UPDATE payment_webhooks
	SET processed_at = now(), process_error = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
