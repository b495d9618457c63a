package sharedcart

import (
	"context"
	"log"
	"time"

	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
)

// SnapshotFetcher fetches the current state of a shared cart mirror.
type SnapshotFetcher interface {
	GetSharedCartSnapshot(ctx context.Context, cartID string) ([]domain.RemoteLine, error)
}

// Synchronizer polls a shared cart mirror on a fixed interval and hands
// each snapshot to the apply callback. Fetch failures are logged and the
// next tick retries; a slow poll never overlaps the next one. The caller
// owns cancellation via the context passed to Run, and is responsible for
// dropping snapshots that resolve after it no longer wants them.
type Synchronizer struct {
	fetcher      SnapshotFetcher
	cartID       string
	interval     time.Duration
	fetchTimeout time.Duration
	apply        func([]domain.RemoteLine)
}

func NewSynchronizer(fetcher SnapshotFetcher, cartID string, interval time.Duration, apply func([]domain.RemoteLine)) *Synchronizer {
	return &Synchronizer{
		fetcher:      fetcher,
		cartID:       cartID,
		interval:     interval,
		fetchTimeout: 5 * time.Second,
		apply:        apply,
	}
}

func (s *Synchronizer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Synchronizer) poll(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	items, err := s.fetcher.GetSharedCartSnapshot(fetchCtx, s.cartID)
	if err != nil {
		// Transient by assumption; the next tick retries.
		log.Printf("shared cart poll failed for %s: %v", s.cartID, err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	s.apply(items)
}
