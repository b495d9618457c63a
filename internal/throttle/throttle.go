package throttle

import (
	"errors"
	"sync"
	"time"
)

// ErrInProgress is returned when an action key is already in flight or
// still cooling down. Callers treat it as "ignore this input event", not as
// a failure.
var ErrInProgress = errors.New("action already in progress")

type keyState int

const (
	stateIdle keyState = iota
	stateInFlight
	stateCoolingDown
)

// ActionThrottle makes named critical actions at-most-once per user intent.
// A key is created on first use, held in-flight for the duration of the
// guarded operation, then cools down for a fixed window before becoming
// idle again. Camera decoders firing the same barcode many times per second
// and double-clicked payment buttons both collapse to a single invocation.
type ActionThrottle struct {
	mu       sync.Mutex
	cooldown time.Duration
	keys     map[string]keyState
}

func New(cooldown time.Duration) *ActionThrottle {
	return &ActionThrottle{
		cooldown: cooldown,
		keys:     make(map[string]keyState),
	}
}

// Guard runs op under the named key. If the key is not idle the call is a
// no-op returning ErrInProgress and op is never invoked. Otherwise op runs
// to completion (its error is returned as-is) and the key cools down.
func (t *ActionThrottle) Guard(key string, op func() error) error {
	t.mu.Lock()
	if t.keys[key] != stateIdle {
		t.mu.Unlock()
		return ErrInProgress
	}
	t.keys[key] = stateInFlight
	t.mu.Unlock()

	err := op()

	t.mu.Lock()
	if t.cooldown <= 0 {
		t.keys[key] = stateIdle
		t.mu.Unlock()
		return err
	}
	t.keys[key] = stateCoolingDown
	t.mu.Unlock()

	time.AfterFunc(t.cooldown, func() {
		t.mu.Lock()
		if t.keys[key] == stateCoolingDown {
			t.keys[key] = stateIdle
		}
		t.mu.Unlock()
	})

	return err
}

// Idle reports whether the key would currently admit an invocation.
func (t *ActionThrottle) Idle(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.keys[key] == stateIdle
}
