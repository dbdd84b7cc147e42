package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RecipeCacheHits   uint64
	RecipeCacheMisses uint64
	RecipesCreated    uint64
	RecipesUpdated    uint64
	RecipesDeleted    uint64
	ImageUploads      map[string]uint64
	Registrations     map[string]uint64
	Logins            map[string]uint64
	HTTPRequests      uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	recipeCacheHits   uint64
	recipeCacheMisses uint64
	recipesCreated    uint64
	recipesUpdated    uint64
	recipesDeleted    uint64
	httpRequests      uint64

	mu            sync.Mutex
	imageUploads  map[string]uint64
	registrations map[string]uint64
	logins        map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		imageUploads:  make(map[string]uint64),
		registrations: make(map[string]uint64),
		logins:        make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		RecipeCacheHits:   atomic.LoadUint64(&m.recipeCacheHits),
		RecipeCacheMisses: atomic.LoadUint64(&m.recipeCacheMisses),
		RecipesCreated:    atomic.LoadUint64(&m.recipesCreated),
		RecipesUpdated:    atomic.LoadUint64(&m.recipesUpdated),
		RecipesDeleted:    atomic.LoadUint64(&m.recipesDeleted),
		ImageUploads:      copyCounts(m.imageUploads),
		Registrations:     copyCounts(m.registrations),
		Logins:            copyCounts(m.logins),
		HTTPRequests:      atomic.LoadUint64(&m.httpRequests),
	}
}

// IncRecipeCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncRecipeCacheHit() {
	atomic.AddUint64(&m.recipeCacheHits, 1)
}

// IncRecipeCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncRecipeCacheMiss() {
	atomic.AddUint64(&m.recipeCacheMisses, 1)
}

// IncRecipeCreated increments created counter.
func (m *InMemoryRecorder) IncRecipeCreated() {
	atomic.AddUint64(&m.recipesCreated, 1)
}

// IncRecipeUpdated increments updated counter.
func (m *InMemoryRecorder) IncRecipeUpdated() {
	atomic.AddUint64(&m.recipesUpdated, 1)
}

// IncRecipeDeleted increments deleted counter.
func (m *InMemoryRecorder) IncRecipeDeleted() {
	atomic.AddUint64(&m.recipesDeleted, 1)
}

// IncImageUpload counts an upload by outcome.
func (m *InMemoryRecorder) IncImageUpload(outcome string) {
	m.mu.Lock()
	m.imageUploads[outcome]++
	m.mu.Unlock()
}

// IncRegistration counts a registration by outcome.
func (m *InMemoryRecorder) IncRegistration(outcome string) {
	m.mu.Lock()
	m.registrations[outcome]++
	m.mu.Unlock()
}

// IncLogin counts a login by outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.mu.Lock()
	m.logins[outcome]++
	m.mu.Unlock()
}

// ObserveHTTPRequest counts served requests.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
