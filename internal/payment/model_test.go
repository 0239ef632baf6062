package payment

import (
	"testing"

	"paysera-app/internal/gateway"
	"paysera-app/internal/reporter"

	"github.com/stretchr/testify/assert"
)

func TestPlatformEventFor(t *testing.T) {
	assert.Equal(t, reporter.ChargeSuccess, PlatformEventFor(gateway.OutcomeOf(1)))
	assert.Equal(t, reporter.ChargeRequest, PlatformEventFor(gateway.OutcomeOf(0)))
	assert.Equal(t, reporter.ChargeRequest, PlatformEventFor(gateway.OutcomeOf(2)))
	assert.Equal(t, reporter.ChargeActionRequired, PlatformEventFor(gateway.OutcomeOf(3)))
	assert.Equal(t, reporter.ChargeFailure, PlatformEventFor(gateway.OutcomeOf(42)))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusPaid, StatusFor(gateway.OutcomeSucceeded))
	assert.Equal(t, StatusPending, StatusFor(gateway.OutcomePending))
	assert.Equal(t, StatusAwaitingExecution, StatusFor(gateway.OutcomeAcceptedAwaitingExecution))
	assert.Equal(t, StatusActionRequired, StatusFor(gateway.OutcomeAdditionalInfoRequired))
	assert.Equal(t, StatusFailed, StatusFor(gateway.OutcomeFailed))
}
