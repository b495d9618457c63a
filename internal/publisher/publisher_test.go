package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayload(t *testing.T) {
	receipt := &domain.Receipt{
		OrderNumber:   "ORD-1001",
		TransactionID: "txn-abc",
		Lines: []domain.ReceiptLine{
			{Title: "Vintage Lamp", UnitPrice: 24.00, Quantity: 1, LineTotal: 24.00},
		},
		TotalAmount:   24.00,
		PaymentMethod: domain.PaymentMethodCard,
		ProcessedBy:   "casey",
		Timestamp:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Customer:      domain.CustomerInfo{Name: "Jan Kowalski"},
	}

	raw, err := buildPayload("terminal-7", receipt)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))

	assert.Equal(t, "terminal-7", payload["terminal_id"])
	assert.Equal(t, "ORD-1001", payload["order_number"])
	assert.Equal(t, "txn-abc", payload["transaction_id"])
	assert.Equal(t, 24.00, payload["total_amount"])
	assert.Equal(t, "card", payload["payment_method"])
	assert.Equal(t, "casey", payload["processed_by"])
	assert.Equal(t, "Jan Kowalski", payload["customer_name"])

	lines, ok := payload["lines"].([]interface{})
	require.True(t, ok)
	require.Len(t, lines, 1)
}
