package settlement

import (
	"context"
	"fmt"

	"github.com/StuartGrossman/Consigment-sub002/internal/backend"
	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
	"github.com/google/uuid"
)

// amountTolerance is how far over the cart total a tendered amount may be
// and still settle. Underpayment is never accepted; the slack only absorbs
// cent rounding on the way in.
const amountTolerance = 0.01

// roundingEpsilon papers over float64 noise when the entered amount is
// meant to be exact.
const roundingEpsilon = 1e-9

type Settler interface {
	SettleSale(ctx context.Context, req backend.SettleRequest) (*domain.Receipt, error)
}

// Engine validates a payment against a cart snapshot and submits the sale.
// It performs no retries of its own: one call to Settle is one attempt.
type Engine struct {
	backend Settler
}

func NewEngine(backend Settler) *Engine {
	return &Engine{backend: backend}
}

// Validate checks the sale is settleable: a named customer, a non-empty
// cart, and a tendered amount matching the snapshot total.
func (e *Engine) Validate(cart *domain.Cart, customer domain.CustomerInfo, payment domain.PaymentAttempt) error {
	if customer.Name == "" {
		return ErrCustomerNameRequired
	}
	if cart == nil || cart.IsEmpty() {
		return ErrEmptyCart
	}
	if !payment.Method.Valid() {
		return ErrUnknownPaymentMethod
	}

	diff := payment.Amount - cart.Total
	if diff < -roundingEpsilon || diff > amountTolerance+roundingEpsilon {
		return ErrAmountMismatch
	}
	return nil
}

// Settle validates and submits the sale once. The returned receipt is the
// backend's; the engine never fabricates one.
func (e *Engine) Settle(ctx context.Context, cart *domain.Cart, customer domain.CustomerInfo, payment domain.PaymentAttempt, processedBy string) (*domain.Receipt, error) {
	if err := e.Validate(cart, customer, payment); err != nil {
		return nil, err
	}

	payment.CartSnapshotTotal = cart.Total
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}

	req := backend.NewSettleRequest(payment.ID, cart, customer, payment, processedBy)
	receipt, err := e.backend.SettleSale(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("settle attempt %s: %w", payment.ID, err)
	}
	return receipt, nil
}
