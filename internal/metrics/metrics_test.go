package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.IncRecipeCacheHit()
	p.IncRecipeCacheHit()
	p.IncRecipeCacheMiss()
	p.IncRecipeCreated()
	p.IncRecipeDeleted()
	p.IncImageUpload(OutcomeRejected)
	p.IncLogin(OutcomeSuccess)
	p.IncRegistration(OutcomeFailed)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"cache hit", promtest.ToFloat64(p.recipeCache.WithLabelValues("hit")), 2},
		{"cache miss", promtest.ToFloat64(p.recipeCache.WithLabelValues("miss")), 1},
		{"create", promtest.ToFloat64(p.recipeChanges.WithLabelValues("create")), 1},
		{"update", promtest.ToFloat64(p.recipeChanges.WithLabelValues("update")), 0},
		{"delete", promtest.ToFloat64(p.recipeChanges.WithLabelValues("delete")), 1},
		{"upload rejected", promtest.ToFloat64(p.imageUploads.WithLabelValues(OutcomeRejected)), 1},
		{"login success", promtest.ToFloat64(p.logins.WithLabelValues(OutcomeSuccess)), 1},
		{"registration failed", promtest.ToFloat64(p.registrations.WithLabelValues(OutcomeFailed)), 1},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestPrometheusRecorder_ObserveHTTPRequest(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.ObserveHTTPRequest(http.MethodGet, "/recipes", http.StatusOK, 25*time.Millisecond)

	if n := promtest.CollectAndCount(p.httpDuration, "recetapp_http_request_duration_seconds"); n != 1 {
		t.Errorf("expected 1 histogram series, got %d", n)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)
	p.IncRecipeCreated()

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `recetapp_recipe_changes_total{operation="create"} 1`) {
		t.Errorf("scrape output missing recipe counter:\n%s", body)
	}
}

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncRecipeCacheHit()
	m.IncRecipeCacheMiss()
	m.IncRecipeCreated()
	m.IncRecipeUpdated()
	m.IncRecipeUpdated()
	m.IncImageUpload(OutcomeSuccess)
	m.IncLogin(OutcomeRejected)
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)

	snap := m.Snapshot()
	if snap.RecipeCacheHits != 1 || snap.RecipeCacheMisses != 1 {
		t.Errorf("unexpected cache counters: %+v", snap)
	}
	if snap.RecipesCreated != 1 || snap.RecipesUpdated != 2 || snap.RecipesDeleted != 0 {
		t.Errorf("unexpected recipe counters: %+v", snap)
	}
	if snap.ImageUploads[OutcomeSuccess] != 1 || snap.Logins[OutcomeRejected] != 1 {
		t.Errorf("unexpected outcome counters: %+v", snap)
	}
	if snap.HTTPRequests != 1 {
		t.Errorf("HTTPRequests = %d, want 1", snap.HTTPRequests)
	}

	// Snapshots are copies.
	snap.Logins[OutcomeRejected] = 99
	if m.Snapshot().Logins[OutcomeRejected] != 1 {
		t.Error("mutating a snapshot must not affect the recorder")
	}
}

func TestNoop_ImplementsRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder = NewNoop()
	r.IncRecipeCreated()
	r.IncImageUpload(OutcomeFailed)
	r.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Second)
}
