package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.RunMigrations("../../migrations"))
	return store
}

func sampleReceipt(orderNumber string, settledAt time.Time) *domain.Receipt {
	return &domain.Receipt{
		OrderNumber:   orderNumber,
		TransactionID: "txn-" + orderNumber,
		Lines: []domain.ReceiptLine{
			{Title: "Vintage Lamp", UnitPrice: 24.00, Quantity: 1, LineTotal: 24.00},
			{Title: "Teapot", UnitPrice: 12.50, Quantity: 2, LineTotal: 25.00},
		},
		TotalAmount:   49.00,
		PaymentMethod: domain.PaymentMethodCash,
		ProcessedBy:   "casey",
		Timestamp:     settledAt,
		Customer: domain.CustomerInfo{
			Name:  "Jan Kowalski",
			Email: "jan@example.com",
			Phone: "555-0101",
		},
	}
}

func TestRecordAndGetByOrderNumber(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	want := sampleReceipt("ORD-1001", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, store.Record(ctx, want))

	got, err := store.GetByOrderNumber(ctx, "ORD-1001")
	require.NoError(t, err)
	assert.Equal(t, want.TransactionID, got.TransactionID)
	assert.Equal(t, want.TotalAmount, got.TotalAmount)
	assert.Equal(t, want.PaymentMethod, got.PaymentMethod)
	assert.Equal(t, want.Customer, got.Customer)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, want.Lines, got.Lines)
}

func TestGetByOrderNumber_NotFound(t *testing.T) {
	store := setupTestStore(t)

	receipt, err := store.GetByOrderNumber(context.Background(), "ORD-9999")
	assert.ErrorIs(t, err, ErrReceiptNotFound)
	assert.Nil(t, receipt)
}

func TestListRecent_NewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.Record(ctx, sampleReceipt("ORD-1001", base.Add(-2*time.Hour))))
	require.NoError(t, store.Record(ctx, sampleReceipt("ORD-1002", base.Add(-time.Hour))))
	require.NoError(t, store.Record(ctx, sampleReceipt("ORD-1003", base)))

	receipts, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "ORD-1003", receipts[0].OrderNumber)
	assert.Equal(t, "ORD-1002", receipts[1].OrderNumber)
}

func TestRecord_DuplicateOrderNumberRejected(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	receipt := sampleReceipt("ORD-1001", time.Now().UTC())
	require.NoError(t, store.Record(ctx, receipt))
	assert.Error(t, store.Record(ctx, receipt), "the journal never holds two rows for one settlement")
}
