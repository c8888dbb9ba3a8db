package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/tubeview/tubeview/internal/api"
	"github.com/tubeview/tubeview/internal/auth"
	"github.com/tubeview/tubeview/internal/tweets"
)

func newService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := api.NewClient(server.URL, auth.NewStore(t.TempDir()))
	return NewService(client, tweets.NewService(client))
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"statusCode": 200, "success": true, "data": data, "message": "",
	}
}

func TestService_Stats(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard/stats" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(envelope(map[string]int64{
			"totalVideos": 3, "totalViews": 1200, "totalLikes": 80, "totalSubscribers": 42,
		}))
	}))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalViews != 1200 || stats.TotalSubscribers != 42 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestService_LoadJoinsAllThree(t *testing.T) {
	var requests atomic.Int32
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/dashboard/stats":
			_ = json.NewEncoder(w).Encode(envelope(map[string]int64{"totalVideos": 2}))
		case "/dashboard/videos":
			_ = json.NewEncoder(w).Encode(envelope([]map[string]interface{}{
				{"_id": "v1", "title": "draft", "isPublished": false},
				{"_id": "v2", "title": "live", "isPublished": true},
			}))
		case "/tweets/user/u1":
			_ = json.NewEncoder(w).Encode(envelope([]map[string]interface{}{
				{"_id": "t1", "content": "hello"},
			}))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	overview, err := svc.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if requests.Load() != 3 {
		t.Errorf("expected 3 requests, got %d", requests.Load())
	}
	if overview.Stats.TotalVideos != 2 {
		t.Errorf("stats missing: %+v", overview.Stats)
	}
	if len(overview.Videos) != 2 || overview.Videos[0].IsPublished {
		t.Errorf("videos missing or wrong: %+v", overview.Videos)
	}
	if len(overview.Tweets) != 1 || overview.Tweets[0].Content != "hello" {
		t.Errorf("tweets missing: %+v", overview.Tweets)
	}
}

func TestService_LoadFailsWhenAnyLegFails(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/dashboard/videos" {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"statusCode": 500, "success": false, "message": "aggregation failed",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(envelope(nil))
	}))

	if _, err := svc.Load(context.Background(), "u1"); err == nil {
		t.Fatal("expected load to fail when one leg errors")
	}
}
