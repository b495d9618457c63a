package session

import "errors"

var (
	ErrIllegalTransition     = errors.New("operation not allowed in current sale state")
	ErrNoPendingItem         = errors.New("no item awaiting confirmation")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrNoSharedCart          = errors.New("no shared cart attached")
	ErrPaymentInProgress     = errors.New("a payment attempt is already in progress")
	ErrQueryTooShort         = errors.New("customer search needs at least 3 characters")
	ErrLineNotFound          = errors.New("no cart line for that item")
	ErrSharedCartUnreachable = errors.New("could not reach shared cart backend")
)
