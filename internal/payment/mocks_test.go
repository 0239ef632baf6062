package payment

import (
	"context"
	"encoding/json"

	"paysera-app/internal/merchant"
	"paysera-app/internal/reporter"

	"github.com/stretchr/testify/mock"
)

type MockMerchantStore struct {
	mock.Mock
}

func (m *MockMerchantStore) Get(ctx context.Context, channelID string) (*merchant.Config, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Config), args.Error(1)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SavePayment(ctx context.Context, p *Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) UpdatePaymentStatus(ctx context.Context, orderID string, status Status, psp string) error {
	return m.Called(ctx, orderID, status, psp).Error(0)
}

func (m *MockRepository) GetPaymentByOrder(ctx context.Context, orderID string) (*Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) SavePaymentWebhook(ctx context.Context, provider, eventID, eventType, externalID string, payload json.RawMessage, valid bool) (int64, bool, error) {
	args := m.Called(ctx, provider, eventID, eventType, externalID, payload, valid)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockRepository) MarkWebhookProcessed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) MarkWebhookFailed(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Report(ctx context.Context, ev reporter.Event) error {
	return m.Called(ctx, ev).Error(0)
}
