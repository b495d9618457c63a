package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
	"github.com/segmentio/kafka-go"
)

const saleTopic = "pos-sales"

// SalePublisher emits a sale.completed event for every settled sale so the
// back office (analytics, consignor payouts) can consume them. The stream
// is best-effort: the receipt is already journaled locally before anything
// is published here.
type SalePublisher struct {
	terminalID string
	writer     *kafka.Writer
}

func NewSalePublisher(terminalID string, brokers ...string) *SalePublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  saleTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &SalePublisher{terminalID: terminalID, writer: w}
}

// Record publishes the receipt as a sale.completed event, keyed by order
// number so a re-published order lands in the same partition.
func (p *SalePublisher) Record(ctx context.Context, receipt *domain.Receipt) error {
	payload, err := buildPayload(p.terminalID, receipt)
	if err != nil {
		return fmt.Errorf("build sale payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(receipt.OrderNumber),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("sale.completed")},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}

func (p *SalePublisher) Close() error {
	return p.writer.Close()
}

func buildPayload(terminalID string, receipt *domain.Receipt) ([]byte, error) {
	payload := map[string]interface{}{
		"terminal_id":    terminalID,
		"order_number":   receipt.OrderNumber,
		"transaction_id": receipt.TransactionID,
		"total_amount":   receipt.TotalAmount,
		"payment_method": receipt.PaymentMethod,
		"processed_by":   receipt.ProcessedBy,
		"customer_name":  receipt.Customer.Name,
		"lines":          receipt.Lines,
		"settled_at":     receipt.Timestamp,
	}
	return json.Marshal(payload)
}
