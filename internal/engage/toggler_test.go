package engage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tubeview/tubeview/internal/api"
	"github.com/tubeview/tubeview/internal/auth"
)

type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

func seededStore(t *testing.T, access string) *auth.Store {
	t.Helper()
	store := auth.NewStore(t.TempDir())
	if access != "" {
		if err := store.Save(auth.Credentials{AccessToken: access, RefreshToken: "r"}); err != nil {
			t.Fatalf("seed credentials: %v", err)
		}
	}
	return store
}

// tokenFor builds an unsigned JWT whose _id claim is the given user id.
func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	header, _ := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	payload, _ := json.Marshal(map[string]string{"_id": userID})
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + ".sig"
}

func newEngageService(t *testing.T, handler http.Handler, store *auth.Store) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewService(api.NewClient(server.URL, store))
}

func toggleHandler(t *testing.T, calls *atomic.Int32, reply map[string]interface{}, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"statusCode": status,
			"success":    status >= 200 && status < 300,
			"data":       reply,
			"message":    "",
		})
	})
}

func TestToggler_ReconcilesToServerState(t *testing.T) {
	var calls atomic.Int32
	store := seededStore(t, "token")
	// Server says the count drifted: 7 likes, not the optimistic 1.
	svc := newEngageService(t, toggleHandler(t, &calls, map[string]interface{}{
		"liked": true, "likeCount": 7,
	}, 200), store)

	notifier := &recordingNotifier{}
	toggler := NewLikeToggler(svc, store, notifier, LikeVideo, "v1", ToggleState{On: false, Count: 0})

	toggler.Toggle(context.Background())

	state := toggler.State()
	if !state.On || state.Count != 7 {
		t.Errorf("state not reconciled to server truth: %+v", state)
	}
	if calls.Load() != 1 {
		t.Errorf("expected one toggle call, got %d", calls.Load())
	}
	if len(notifier.errors) != 0 {
		t.Errorf("unexpected errors: %v", notifier.errors)
	}
}

func TestToggler_RollbackOnFailure(t *testing.T) {
	var calls atomic.Int32
	store := seededStore(t, "token")
	svc := newEngageService(t, toggleHandler(t, &calls, nil, 500), store)

	notifier := &recordingNotifier{}
	initial := ToggleState{On: true, Count: 12}
	toggler := NewLikeToggler(svc, store, notifier, LikeVideo, "v1", initial)

	toggler.Toggle(context.Background())

	if state := toggler.State(); state != initial {
		t.Errorf("state = %+v, want exact pre-toggle snapshot %+v", state, initial)
	}
	if len(notifier.errors) != 1 {
		t.Errorf("expected one error notification, got %v", notifier.errors)
	}
}

func TestToggler_UnauthenticatedMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	store := seededStore(t, "")
	svc := newEngageService(t, toggleHandler(t, &calls, nil, 200), store)

	notifier := &recordingNotifier{}
	toggler := NewLikeToggler(svc, store, notifier, LikeVideo, "v1", ToggleState{Count: 3})

	toggler.Toggle(context.Background())

	if calls.Load() != 0 {
		t.Error("unauthenticated toggle must not reach the network")
	}
	if state := toggler.State(); state.On || state.Count != 3 {
		t.Errorf("state must be unchanged: %+v", state)
	}
	if len(notifier.errors) != 1 {
		t.Errorf("expected a please-log-in notification, got %v", notifier.errors)
	}
}

func TestToggler_SelfSubscriptionRejected(t *testing.T) {
	var calls atomic.Int32
	store := seededStore(t, tokenFor(t, "me-123"))
	svc := newEngageService(t, toggleHandler(t, &calls, nil, 200), store)

	notifier := &recordingNotifier{}
	toggler := NewSubscribeToggler(svc, store, notifier, "me-123", ToggleState{Count: 5})

	toggler.Toggle(context.Background())

	if calls.Load() != 0 {
		t.Error("self-subscription must be rejected before any network call")
	}
	if len(notifier.errors) != 1 {
		t.Errorf("expected rejection notification, got %v", notifier.errors)
	}
	if state := toggler.State(); state.On || state.Count != 5 {
		t.Errorf("state must be unchanged: %+v", state)
	}
}

func TestToggler_SubscribeOtherChannel(t *testing.T) {
	var calls atomic.Int32
	store := seededStore(t, tokenFor(t, "me-123"))
	svc := newEngageService(t, toggleHandler(t, &calls, map[string]interface{}{
		"subscribed": true, "subscribersCount": 6,
	}, 200), store)

	toggler := NewSubscribeToggler(svc, store, &recordingNotifier{}, "other-456", ToggleState{Count: 5})
	toggler.Toggle(context.Background())

	if calls.Load() != 1 {
		t.Errorf("expected one toggle call, got %d", calls.Load())
	}
	state := toggler.State()
	if !state.On || state.Count != 6 {
		t.Errorf("unexpected state: %+v", state)
	}
}

func TestToggler_InFlightToggleIsNoOp(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	store := seededStore(t, "token")
	svc := newEngageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"statusCode": 200, "success": true,
			"data": map[string]interface{}{"liked": true, "likeCount": 1},
		})
	}), store)

	toggler := NewLikeToggler(svc, store, &recordingNotifier{}, LikeVideo, "v1", ToggleState{})

	done := make(chan struct{})
	go func() {
		toggler.Toggle(context.Background())
		close(done)
	}()

	// Wait for the first toggle to be in flight, then fire a second one.
	for calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	toggler.Toggle(context.Background())

	close(release)
	<-done

	if calls.Load() != 1 {
		t.Errorf("second toggle during flight must be a no-op, got %d calls", calls.Load())
	}
}

func TestToggleReply_StateVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ToggleState
	}{
		{"liked+likeCount", `{"liked":true,"likeCount":4}`, ToggleState{true, 4}},
		{"likedBy object", `{"likedBy":{"_id":"x"},"likesCount":2}`, ToggleState{true, 2}},
		{"likedBy null", `{"likedBy":null,"likeCount":0}`, ToggleState{false, 0}},
		{"isLiked", `{"isLiked":false,"likeCount":9}`, ToggleState{false, 9}},
		{"subscription", `{"subscribed":true,"subscribersCount":11}`, ToggleState{true, 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reply toggleReply
			if err := json.Unmarshal([]byte(tt.body), &reply); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := reply.state(); got != tt.want {
				t.Errorf("state = %+v, want %+v", got, tt.want)
			}
		})
	}
}
