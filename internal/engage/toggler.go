package engage

import (
	"context"
	"errors"
	"sync"

	"github.com/tubeview/tubeview/internal/api"
	"github.com/tubeview/tubeview/internal/auth"
)

// Notifier surfaces toggle outcomes to the viewer (the toast analog).
type Notifier interface {
	Success(message string)
	Error(message string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

type phase int

const (
	phaseIdle phase = iota
	phasePending
)

// Toggler is the per-entity optimistic toggle state machine:
// Idle -> Pending(snapshot) -> Idle, either reconciled to the server's
// authoritative pair or rolled back to the snapshot.
type Toggler struct {
	creds    *auth.Store
	notifier Notifier
	call     func(ctx context.Context) (ToggleState, error)
	guard    func() error

	mu    sync.Mutex
	phase phase
	state ToggleState
}

// NewLikeToggler creates a toggler for likes on a video, comment, or tweet.
func NewLikeToggler(svc *Service, creds *auth.Store, notifier Notifier, target LikeTarget, id string, initial ToggleState) *Toggler {
	return &Toggler{
		creds:    creds,
		notifier: notifier,
		state:    initial,
		call: func(ctx context.Context) (ToggleState, error) {
			return svc.ToggleLike(ctx, target, id)
		},
	}
}

// NewSubscribeToggler creates a toggler for channel subscriptions. The
// viewer's own channel is rejected before any network call.
func NewSubscribeToggler(svc *Service, creds *auth.Store, notifier Notifier, channelID string, initial ToggleState) *Toggler {
	return &Toggler{
		creds:    creds,
		notifier: notifier,
		state:    initial,
		call: func(ctx context.Context) (ToggleState, error) {
			return svc.ToggleSubscription(ctx, channelID)
		},
		guard: func() error {
			identity, err := creds.Inspect()
			if err != nil {
				return nil // no identity claim, let the server decide
			}
			if identity.UserID == channelID {
				return errors.New("you cannot subscribe to your own channel")
			}
			return nil
		},
	}
}

// State returns the current on/count pair.
func (t *Toggler) State() ToggleState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetState replaces the pair with an externally fetched authoritative value.
// A pending toggle's eventual reconcile or rollback still wins; the server
// stays the source of truth on the next reload either way.
func (t *Toggler) SetState(state ToggleState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
}

// Toggle flips the pair optimistically, issues the server call, and
// reconciles to the reply. On failure the pre-toggle snapshot is restored
// and the error is surfaced through the notifier. Unauthenticated viewers
// and toggles already in flight make no network call.
func (t *Toggler) Toggle(ctx context.Context) {
	t.mu.Lock()
	if t.phase == phasePending {
		t.mu.Unlock()
		return
	}
	if !t.creds.Authenticated() {
		t.mu.Unlock()
		t.notifier.Error("please log in first")
		return
	}
	if t.guard != nil {
		if err := t.guard(); err != nil {
			t.mu.Unlock()
			t.notifier.Error(err.Error())
			return
		}
	}

	snapshot := t.state
	optimistic := ToggleState{On: !snapshot.On}
	if snapshot.On {
		optimistic.Count = snapshot.Count - 1
	} else {
		optimistic.Count = snapshot.Count + 1
	}
	t.state = optimistic
	t.phase = phasePending
	t.mu.Unlock()

	server, err := t.call(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = phaseIdle
	if err != nil {
		t.state = snapshot
		t.notifier.Error(toggleErrorMessage(err))
		return
	}
	t.state = server
}

func toggleErrorMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "something went wrong, please try again"
}
