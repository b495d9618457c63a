package session

import (
	"context"
	"fmt"

	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
	"github.com/StuartGrossman/Consigment-sub002/internal/sharedcart"
)

// AttachSharedCart obtains (or creates) the mirror for this terminal and
// starts polling it. Lines already scanned by other devices before the
// terminal attached are folded in immediately.
func (s *Session) AttachSharedCart(ctx context.Context) (*domain.SharedCartSession, error) {
	s.mu.Lock()
	if s.state != domain.SaleStateScanning {
		s.mu.Unlock()
		return nil, ErrIllegalTransition
	}
	if s.shared != nil {
		existing := s.shared
		s.mu.Unlock()
		return existing, nil
	}
	terminalID := s.cfg.TerminalID
	s.mu.Unlock()

	mirror, err := s.mirror.GetOrCreateSharedCart(ctx, terminalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSharedCartUnreachable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.SaleStateScanning || s.shared != nil {
		// The sale moved on (or another attach won) while we were on the
		// wire; the mirror outlives us either way.
		return s.shared, nil
	}

	s.shared = mirror
	s.mergeRemoteLocked(mirror.Items)
	s.startPollingLocked()
	return mirror, nil
}

// DetachSharedCart ends the local subscription. The mirror itself is left
// alone; other devices may still hold the access code.
func (s *Session) DetachSharedCart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shared == nil {
		return ErrNoSharedCart
	}
	s.stopPollingLocked()
	s.shared = nil
	return nil
}

// startPollingLocked spins up a synchronizer bound to the current
// generation. A merge arriving with a stale generation is dropped, which is
// what guarantees no late poll touches a cart that has been reset or
// settled since.
func (s *Session) startPollingLocked() {
	s.stopPollingLocked()

	gen := s.syncGen
	cartID := s.shared.CartID
	ctx, cancel := context.WithCancel(context.Background())
	s.syncCancel = cancel

	poller := sharedcart.NewSynchronizer(s.mirror, cartID, s.cfg.PollInterval, func(items []domain.RemoteLine) {
		s.applyRemote(gen, items)
	})
	go poller.Run(ctx)
}

func (s *Session) stopPollingLocked() {
	if s.syncCancel != nil {
		s.syncCancel()
		s.syncCancel = nil
	}
	s.syncGen++
}

func (s *Session) applyRemote(gen int, items []domain.RemoteLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.syncGen || s.state != domain.SaleStateScanning {
		return
	}
	s.mergeRemoteLocked(items)
}

// mergeRemoteLocked folds a mirror snapshot into the local cart as a set
// union keyed by item id: lines already present locally are left exactly as
// they are, so applying the same snapshot twice is a no-op.
func (s *Session) mergeRemoteLocked(items []domain.RemoteLine) {
	for _, line := range items {
		item := domain.SellableItem{
			ID:    line.ItemID,
			Title: line.Title,
			Price: line.Price,
		}
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		s.cart.AppendLine(item, qty)
	}
}

// SearchCustomers proxies the backend customer lookup, enforcing the
// minimum query length locally so short prefixes never hit the network.
func (s *Session) SearchCustomers(ctx context.Context, query string) ([]domain.CustomerMatch, error) {
	if len(query) < 3 {
		return nil, ErrQueryTooShort
	}
	return s.searcher.SearchCustomers(ctx, query)
}

// SetCustomer attaches customer info ahead of settlement.
func (s *Session) SetCustomer(info domain.CustomerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer = &info
}

func (s *Session) Customer() *domain.CustomerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}
