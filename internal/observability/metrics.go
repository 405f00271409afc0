// Package observability provides Prometheus metrics for the application.
package observability

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iforum_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PostViews counts view-counter increments recorded on post retrieval.
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iforum_post_views_total",
		Help: "Total number of post detail retrievals counted as views",
	})

	// PostsPublished counts publish transitions.
	PostsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iforum_posts_published_total",
		Help: "Total number of publish actions applied to posts",
	})

	// CommentsCreated counts created comments by target entity kind.
	CommentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iforum_comments_created_total",
		Help: "Total number of comments created, by target content type",
	}, []string{"content_type"})

	// GalleryUploads counts gallery image uploads by outcome.
	GalleryUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iforum_gallery_uploads_total",
		Help: "Total number of gallery upload attempts by outcome",
	}, []string{"outcome"})
)

var (
	promOnce       sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus HTTP middleware for the given service
// name. The middleware registers collectors with the default registry, so it
// is created once and shared across server instances.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMiddleware = fiberprometheus.New(serviceName)
	})
	return promMiddleware
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
