// Package metrics exports the plan driver's counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/levelplan/levelplan/internal/core/event"
)

// Plans observes the plan driver. It satisfies plan.Observer.
type Plans struct {
	active    prometheus.Gauge
	activated prometheus.Counter
	retired   prometheus.Counter
	dropped   prometheus.Counter
	tick      prometheus.Histogram
	outcomes  *prometheus.CounterVec
}

// NewPlans registers the plan collectors on reg.
func NewPlans(reg prometheus.Registerer) *Plans {
	p := &Plans{
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "levelplan_plans_active",
			Help: "Plans activated and not yet retired or dropped",
		}),
		activated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "levelplan_plans_activated_total",
			Help: "Plans whose root element was activated",
		}),
		retired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "levelplan_plans_retired_total",
			Help: "Plans whose root element finished",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "levelplan_plans_dropped_total",
			Help: "Plans whose target left the world before the root finished",
		}),
		tick: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "levelplan_plan_tick_seconds",
			Help:    "Time spent stepping every plan in one tick",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levelplan_level_outcomes_total",
			Help: "Terminal level outcomes",
		}, []string{"result"}),
	}
	reg.MustRegister(p.active, p.activated, p.retired, p.dropped, p.tick, p.outcomes)
	return p
}

func (p *Plans) PlanActivated() {
	p.activated.Inc()
	p.active.Inc()
}

func (p *Plans) PlanRetired() {
	p.retired.Inc()
	p.active.Dec()
}

func (p *Plans) PlanDropped() {
	p.dropped.Inc()
	p.active.Dec()
}

func (p *Plans) TickObserved(_ int, took time.Duration) {
	p.tick.Observe(took.Seconds())
}

func (p *Plans) ObserveOutcome(r event.Result) {
	p.outcomes.WithLabelValues(r.String()).Inc()
}

// NewHandler routes /metrics to g and answers /healthz.
func NewHandler(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// Serve exposes NewHandler(g) on addr until ctx is done. An empty addr
// disables the endpoint.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log *zap.Logger) {
	if addr == "" {
		return
	}
	srv := &http.Server{Addr: addr, Handler: NewHandler(g), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
	go func() {
		log.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.Error(err))
		}
	}()
}
