package domain

type SaleState string

const (
	SaleStateScanning         SaleState = "SCANNING"
	SaleStateItemConfirmation SaleState = "ITEM_CONFIRMATION"
	SaleStateCheckout         SaleState = "CHECKOUT"
	SaleStateReceipt          SaleState = "RECEIPT"
	SaleStateClosed           SaleState = "CLOSED"
)

func (s SaleState) IsTerminal() bool {
	return s == SaleStateClosed
}

// String representation (for logging)
func (s SaleState) String() string {
	return string(s)
}

var saleTransitions = map[SaleState][]SaleState{
	SaleStateScanning:         {SaleStateItemConfirmation, SaleStateCheckout, SaleStateClosed},
	SaleStateItemConfirmation: {SaleStateScanning, SaleStateClosed},
	SaleStateCheckout:         {SaleStateScanning, SaleStateReceipt, SaleStateClosed},
	SaleStateReceipt:          {SaleStateClosed},
	SaleStateClosed:           {SaleStateScanning},
}

// CanTransitionTo reports whether the sale may move from one state to
// another. Receipt is only reachable from checkout, and nothing leaves
// closed except a fresh scanning session.
func CanTransitionTo(from, to SaleState) bool {
	for _, next := range saleTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
