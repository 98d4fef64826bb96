package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics хранит счётчики сервиса. Каждый экземпляр регистрирует их
// в собственном реестре, поэтому в тестах можно создавать сколько угодно копий.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests          *prometheus.CounterVec
	RecipesCreated        prometheus.Counter
	MembershipChanges     *prometheus.CounterVec
	FollowChanges         *prometheus.CounterVec
	ShoppingListDownloads prometheus.Counter
}

func InitMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodgram_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		RecipesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "foodgram_recipes_created_total",
				Help: "Total number of created recipes",
			},
		),
		MembershipChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodgram_membership_changes_total",
				Help: "Total number of favorites and shopping cart changes",
			},
			[]string{"relation", "action"},
		),
		FollowChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodgram_follow_changes_total",
				Help: "Total number of subscribe and unsubscribe requests",
			},
			[]string{"action"},
		),
		ShoppingListDownloads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "foodgram_shopping_list_downloads_total",
				Help: "Total number of downloaded shopping lists",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.RecipesCreated,
		m.MembershipChanges,
		m.FollowChanges,
		m.ShoppingListDownloads,
	)
	return m
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware считает запросы по шаблону маршрута chi, а не по сырому пути,
// чтобы идентификаторы не раздували кардинальность.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
