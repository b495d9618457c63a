package domain

import "time"

type ReceiptLine struct {
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// Receipt is the immutable result of a successful settlement. It is built
// from the backend's settle response and never mutated afterwards; the
// field layout matches the printed receipt format.
type Receipt struct {
	OrderNumber   string        `json:"order_number"`
	TransactionID string        `json:"transaction_id"`
	Lines         []ReceiptLine `json:"lines"`
	TotalAmount   float64       `json:"total_amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	ProcessedBy   string        `json:"processed_by"`
	Timestamp     time.Time     `json:"timestamp"`
	Customer      CustomerInfo  `json:"customer"`
}
