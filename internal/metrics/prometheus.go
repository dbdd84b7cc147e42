package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder on top of client_golang collectors.
type PrometheusRecorder struct {
	recipeCache   *prometheus.CounterVec
	recipeChanges *prometheus.CounterVec
	imageUploads  *prometheus.CounterVec
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	p := &PrometheusRecorder{
		recipeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recetapp_recipe_cache_lookups_total",
			Help: "Recipe cache lookups by result.",
		}, []string{"result"}),
		recipeChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recetapp_recipe_changes_total",
			Help: "Recipe writes by operation.",
		}, []string{"operation"}),
		imageUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recetapp_image_uploads_total",
			Help: "Image uploads by outcome.",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recetapp_registrations_total",
			Help: "Account registrations by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recetapp_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recetapp_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		p.recipeCache,
		p.recipeChanges,
		p.imageUploads,
		p.registrations,
		p.logins,
		p.httpDuration,
	)

	return p
}

// IncRecipeCacheHit records a cache hit.
func (p *PrometheusRecorder) IncRecipeCacheHit() {
	p.recipeCache.WithLabelValues("hit").Inc()
}

// IncRecipeCacheMiss records a cache miss.
func (p *PrometheusRecorder) IncRecipeCacheMiss() {
	p.recipeCache.WithLabelValues("miss").Inc()
}

// IncRecipeCreated records a created recipe.
func (p *PrometheusRecorder) IncRecipeCreated() {
	p.recipeChanges.WithLabelValues("create").Inc()
}

// IncRecipeUpdated records an updated recipe.
func (p *PrometheusRecorder) IncRecipeUpdated() {
	p.recipeChanges.WithLabelValues("update").Inc()
}

// IncRecipeDeleted records a deleted recipe.
func (p *PrometheusRecorder) IncRecipeDeleted() {
	p.recipeChanges.WithLabelValues("delete").Inc()
}

// IncImageUpload records an upload outcome.
func (p *PrometheusRecorder) IncImageUpload(outcome string) {
	p.imageUploads.WithLabelValues(outcome).Inc()
}

// IncRegistration records a registration outcome.
func (p *PrometheusRecorder) IncRegistration(outcome string) {
	p.registrations.WithLabelValues(outcome).Inc()
}

// IncLogin records a login outcome.
func (p *PrometheusRecorder) IncLogin(outcome string) {
	p.logins.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest records request latency.
func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
