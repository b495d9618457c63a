package domain

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

// PaymentAttempt is transient: it exists between the cashier entering an
// amount and the settlement call resolving.
type PaymentAttempt struct {
	ID                string        `json:"id"`
	Method            PaymentMethod `json:"method"`
	Amount            float64       `json:"amount"`
	CartSnapshotTotal float64       `json:"cart_snapshot_total"`
}
