package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	swipesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devmatch_swipes_total",
			Help: "Total number of swipes recorded",
		},
		[]string{"type"},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devmatch_matches_total",
			Help: "Total number of matches created",
		},
	)

	conversationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devmatch_conversations_total",
			Help: "Total number of conversations opened",
		},
	)

	messagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devmatch_messages_total",
			Help: "Total number of messages sent",
		},
	)

	messagesReadTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devmatch_messages_read_total",
			Help: "Total number of messages marked as read",
		},
	)

	usersRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devmatch_users_registered_total",
			Help: "Total number of accounts registered",
		},
	)

	usersDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devmatch_users_deleted_total",
			Help: "Total number of accounts deleted",
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devmatch_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devmatch_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	grpcRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devmatch_grpc_requests_total",
			Help: "gRPC unary calls by method and code",
		},
		[]string{"method", "code"},
	)
)

func SwipeRecorded(swipeType string) { swipesTotal.WithLabelValues(swipeType).Inc() }
func MatchCreated()                  { matchesTotal.Inc() }
func ConversationCreated()           { conversationsTotal.Inc() }
func MessageSent()                   { messagesTotal.Inc() }
func MessageRead()                   { messagesReadTotal.Inc() }
func UserRegistered()                { usersRegisteredTotal.Inc() }
func UserDeleted()                   { usersDeletedTotal.Inc() }

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler { return promhttp.Handler() }

// Middleware records per-route counts and latency. Routes are labelled by
// their chi pattern so path parameters don't explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(code)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// UnaryServerInterceptor counts gRPC calls by status code.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		grpcRequests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return resp, err
	}
}
