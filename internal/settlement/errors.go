package settlement

import "errors"

var (
	ErrCustomerNameRequired = errors.New("customer name is required for settlement")
	ErrEmptyCart            = errors.New("cart is empty, nothing to settle")
	ErrAmountMismatch       = errors.New("amount must equal total")
	ErrUnknownPaymentMethod = errors.New("payment method must be cash or card")
)
