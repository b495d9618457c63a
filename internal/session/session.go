package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/StuartGrossman/Consigment-sub002/internal/backend"
	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
	"github.com/StuartGrossman/Consigment-sub002/internal/settlement"
	"github.com/StuartGrossman/Consigment-sub002/internal/throttle"
	"github.com/google/uuid"
)

const (
	// DefaultPollInterval is how often the shared cart mirror is polled
	// while the sale sits in scanning.
	DefaultPollInterval = 5 * time.Second

	// DefaultCooldown is the throttle window after a guarded action
	// completes. Long enough to swallow a double-click or a camera decoder
	// re-reporting the same frame, short enough to never be felt.
	DefaultCooldown = 300 * time.Millisecond

	payActionKey    = "process-payment"
	lookupKeyPrefix = "lookup:"
)

// ItemLookup resolves a barcode. Both the camera decode stream and manual
// entry funnel through it.
type ItemLookup interface {
	Lookup(ctx context.Context, barcode string) (*domain.SellableItem, error)
}

// SharedCartBackend is the mirror side of the shared cart. It deliberately
// has no settle operation: only the terminal settles.
type SharedCartBackend interface {
	GetOrCreateSharedCart(ctx context.Context, terminalID string) (*domain.SharedCartSession, error)
	GetSharedCartSnapshot(ctx context.Context, cartID string) ([]domain.RemoteLine, error)
}

// CustomerSearcher finds customer records by partial email or phone.
type CustomerSearcher interface {
	SearchCustomers(ctx context.Context, query string) ([]domain.CustomerMatch, error)
}

// ReceiptSink receives every receipt produced by a successful settlement
// (journal, event publisher). Sinks are best-effort; failures are logged.
type ReceiptSink interface {
	Record(ctx context.Context, receipt *domain.Receipt) error
}

// Config carries the per-terminal knobs. Zero durations get defaults.
type Config struct {
	TerminalID   string
	OperatorName string

	// ConfirmBeforeAdd switches the scan flow from auto-add to
	// confirm-then-add: a successful lookup parks the item in the
	// item-confirmation state until the cashier accepts or skips it.
	ConfirmBeforeAdd bool

	PollInterval time.Duration
	Cooldown     time.Duration
}

// Session is one terminal's active sale. All public operations serialize on
// an internal mutex, so cart and state mutations apply in the order calls
// arrive, exactly like events on a UI loop.
type Session struct {
	mu sync.Mutex

	cfg      Config
	state    domain.SaleState
	cart     *domain.Cart
	pending  *domain.SellableItem
	shared   *domain.SharedCartSession
	customer *domain.CustomerInfo
	receipt  *domain.Receipt

	throttle *throttle.ActionThrottle
	lookup   ItemLookup
	mirror   SharedCartBackend
	searcher CustomerSearcher
	engine   *settlement.Engine
	sinks    []ReceiptSink

	// syncGen invalidates in-flight poll results: any merge carrying a
	// stale generation is dropped. Bumped on every attach/detach and on
	// every poll stop.
	syncGen    int
	syncCancel context.CancelFunc
}

func New(cfg Config, lookup ItemLookup, mirror SharedCartBackend, searcher CustomerSearcher, engine *settlement.Engine, sinks ...ReceiptSink) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.TerminalID == "" {
		cfg.TerminalID = uuid.NewString()
	}
	return &Session{
		cfg:      cfg,
		state:    domain.SaleStateScanning,
		cart:     domain.NewCart(uuid.NewString()),
		throttle: throttle.New(cfg.Cooldown),
		lookup:   lookup,
		mirror:   mirror,
		searcher: searcher,
		engine:   engine,
		sinks:    sinks,
	}
}

func (s *Session) State() domain.SaleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cart returns a snapshot; callers never see the live cart.
func (s *Session) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Snapshot()
}

func (s *Session) Receipt() *domain.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipt
}

func (s *Session) PendingItem() *domain.SellableItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) SharedCart() *domain.SharedCartSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shared
}

// ScanStatus describes what a scan event did.
type ScanStatus string

const (
	ScanAdded       ScanStatus = "added"
	ScanPending     ScanStatus = "pending_confirmation"
	ScanUnavailable ScanStatus = "unavailable"
	ScanSuppressed  ScanStatus = "suppressed"
)

type ScanResult struct {
	Status ScanStatus
	Item   *domain.SellableItem
	Reason string
}

// Scan handles one barcode event, whether it came from the camera decoder
// or manual entry. Duplicate events for a barcode whose lookup is still in
// flight (or cooling down) are suppressed, so a decoder firing the same
// frame five times yields one lookup and one added unit.
func (s *Session) Scan(ctx context.Context, barcode string) (ScanResult, error) {
	s.mu.Lock()
	if s.state != domain.SaleStateScanning {
		s.mu.Unlock()
		return ScanResult{}, ErrIllegalTransition
	}
	s.mu.Unlock()

	var result ScanResult
	err := s.throttle.Guard(lookupKeyPrefix+barcode, func() error {
		item, errLookup := s.lookup.Lookup(ctx, barcode)
		if errLookup != nil {
			var unavailable *backend.UnavailableError
			if errors.As(errLookup, &unavailable) {
				result = ScanResult{Status: ScanUnavailable, Reason: unavailable.Reason}
				return nil
			}
			return errLookup
		}
		result = s.itemFound(item)
		return nil
	})

	if errors.Is(err, throttle.ErrInProgress) {
		return ScanResult{Status: ScanSuppressed}, nil
	}
	if err != nil {
		return ScanResult{}, err
	}
	return result, nil
}

func (s *Session) itemFound(item *domain.SellableItem) ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The sale may have moved on while the lookup was on the wire.
	if s.state != domain.SaleStateScanning {
		return ScanResult{Status: ScanSuppressed}
	}

	if s.cfg.ConfirmBeforeAdd {
		s.pending = item
		s.transition(domain.SaleStateItemConfirmation)
		return ScanResult{Status: ScanPending, Item: item}
	}

	s.cart.AddItem(*item)
	return ScanResult{Status: ScanAdded, Item: item}
}

// ConfirmPendingItem merges the found item into the cart and returns to
// scanning.
func (s *Session) ConfirmPendingItem() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SaleStateItemConfirmation {
		return ErrIllegalTransition
	}
	if s.pending == nil {
		return ErrNoPendingItem
	}
	s.cart.AddItem(*s.pending)
	s.pending = nil
	s.transition(domain.SaleStateScanning)
	return nil
}

// SkipPendingItem discards the found item and returns to scanning.
func (s *Session) SkipPendingItem() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SaleStateItemConfirmation {
		return ErrIllegalTransition
	}
	s.pending = nil
	s.transition(domain.SaleStateScanning)
	return nil
}

// RemoveLine drops a line. Legal while scanning or reviewing.
func (s *Session) RemoveLine(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SaleStateScanning && s.state != domain.SaleStateCheckout {
		return ErrIllegalTransition
	}
	if !s.cart.RemoveLine(itemID) {
		return ErrLineNotFound
	}
	return nil
}

// SetQuantity sets a line's quantity; n <= 0 removes the line.
func (s *Session) SetQuantity(itemID string, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SaleStateScanning && s.state != domain.SaleStateCheckout {
		return ErrIllegalTransition
	}
	if !s.cart.SetQuantity(itemID, n) {
		return ErrLineNotFound
	}
	return nil
}

// ReviewCart moves the sale into checkout. Polling pauses until the sale
// returns to scanning; the shared cart stays attached.
func (s *Session) ReviewCart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SaleStateScanning {
		return ErrIllegalTransition
	}
	if s.cart.IsEmpty() {
		return ErrEmptyCart
	}
	s.stopPollingLocked()
	s.transition(domain.SaleStateCheckout)
	return nil
}

// BackToScanning returns from checkout with the cart preserved. If a shared
// cart is attached its polling resumes.
func (s *Session) BackToScanning() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SaleStateCheckout {
		return ErrIllegalTransition
	}
	s.transition(domain.SaleStateScanning)
	if s.shared != nil {
		s.startPollingLocked()
	}
	return nil
}

// CloseResult reports what closing the modal did.
type CloseResult struct {
	// Redirected is true when a non-empty cart turned the close into a
	// transition to checkout instead of discarding the sale.
	Redirected bool
}

// Close handles the cashier dismissing the sale. Scanning with items in the
// cart redirects into checkout; anything else resets every bit of sale
// state and leaves the session closed.
func (s *Session) Close() CloseResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SaleStateClosed {
		return CloseResult{}
	}

	if s.state == domain.SaleStateItemConfirmation {
		s.pending = nil
		s.transition(domain.SaleStateScanning)
	}

	if s.state == domain.SaleStateScanning && !s.cart.IsEmpty() {
		s.stopPollingLocked()
		s.transition(domain.SaleStateCheckout)
		return CloseResult{Redirected: true}
	}

	s.resetLocked()
	return CloseResult{}
}

// NewSale leaves a finished (or closed) sale and opens a fresh scanning
// session.
func (s *Session) NewSale() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SaleStateReceipt && s.state != domain.SaleStateClosed {
		return ErrIllegalTransition
	}
	if s.state == domain.SaleStateReceipt {
		s.resetLocked()
	}
	s.cart = domain.NewCart(uuid.NewString())
	s.transition(domain.SaleStateScanning)
	return nil
}

// resetLocked tears the sale down to nothing: cart, shared session,
// customer, pending item and receipt all go, polling stops, state lands on
// closed.
func (s *Session) resetLocked() {
	s.stopPollingLocked()
	s.shared = nil
	s.pending = nil
	s.customer = nil
	s.receipt = nil
	s.cart = domain.NewCart(uuid.NewString())
	s.transition(domain.SaleStateClosed)
}

func (s *Session) transition(to domain.SaleState) {
	if !domain.CanTransitionTo(s.state, to) {
		// Transitions are all driven from inside this package; a bad one
		// is a programming error worth a loud log, not a panic mid-sale.
		log.Printf("illegal sale transition %s -> %s", s.state, to)
		return
	}
	s.state = to
}
