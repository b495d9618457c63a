package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo_LegalPaths(t *testing.T) {
	legal := []struct{ from, to SaleState }{
		{SaleStateScanning, SaleStateItemConfirmation},
		{SaleStateScanning, SaleStateCheckout},
		{SaleStateScanning, SaleStateClosed},
		{SaleStateItemConfirmation, SaleStateScanning},
		{SaleStateCheckout, SaleStateScanning},
		{SaleStateCheckout, SaleStateReceipt},
		{SaleStateCheckout, SaleStateClosed},
		{SaleStateReceipt, SaleStateClosed},
		{SaleStateClosed, SaleStateScanning},
	}
	for _, tc := range legal {
		assert.True(t, CanTransitionTo(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionTo_ReceiptOnlyFromCheckout(t *testing.T) {
	for _, from := range []SaleState{SaleStateScanning, SaleStateItemConfirmation, SaleStateReceipt, SaleStateClosed} {
		assert.False(t, CanTransitionTo(from, SaleStateReceipt), "%s -> RECEIPT must be illegal", from)
	}
}

func TestCanTransitionTo_IllegalPaths(t *testing.T) {
	illegal := []struct{ from, to SaleState }{
		{SaleStateReceipt, SaleStateScanning},
		{SaleStateReceipt, SaleStateCheckout},
		{SaleStateItemConfirmation, SaleStateCheckout},
		{SaleStateClosed, SaleStateCheckout},
		{SaleStateClosed, SaleStateClosed},
	}
	for _, tc := range illegal {
		assert.False(t, CanTransitionTo(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, SaleStateClosed.IsTerminal())
	assert.False(t, SaleStateScanning.IsTerminal())
	assert.False(t, SaleStateReceipt.IsTerminal())
}
