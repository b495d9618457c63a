package session

import (
	"context"
	"errors"
	"log"

	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
	"github.com/StuartGrossman/Consigment-sub002/internal/throttle"
	"github.com/google/uuid"
)

// Pay validates the payment against the cart snapshot and submits the sale
// once. A duplicate click while an attempt is on the wire (or cooling down)
// returns ErrPaymentInProgress without touching the backend. On success the
// sale moves to receipt; on failure it stays in checkout and the cashier's
// next click is a fresh attempt.
func (s *Session) Pay(ctx context.Context, customer domain.CustomerInfo, method domain.PaymentMethod, amount float64) (*domain.Receipt, error) {
	s.mu.Lock()
	if s.state != domain.SaleStateCheckout {
		s.mu.Unlock()
		return nil, ErrIllegalTransition
	}
	snapshot := s.cart.Snapshot()
	s.customer = &customer
	operator := s.cfg.OperatorName
	s.mu.Unlock()

	attempt := domain.PaymentAttempt{
		ID:     uuid.NewString(),
		Method: method,
		Amount: amount,
	}

	// Fail validation before consuming the throttle key: a rejected amount
	// should not start a cooldown that delays the corrected resubmit.
	if err := s.engine.Validate(snapshot, customer, attempt); err != nil {
		return nil, err
	}

	var receipt *domain.Receipt
	err := s.throttle.Guard(payActionKey, func() error {
		var errSettle error
		receipt, errSettle = s.engine.Settle(ctx, snapshot, customer, attempt, operator)
		return errSettle
	})
	if errors.Is(err, throttle.ErrInProgress) {
		return nil, ErrPaymentInProgress
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state == domain.SaleStateCheckout {
		s.receipt = receipt
		s.stopPollingLocked()
		s.transition(domain.SaleStateReceipt)
	}
	s.mu.Unlock()

	for _, sink := range s.sinks {
		if errSink := sink.Record(ctx, receipt); errSink != nil {
			log.Printf("receipt sink error for order %s: %v", receipt.OrderNumber, errSink)
		}
	}

	return receipt, nil
}
