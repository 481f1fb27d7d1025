// Package telemetry is the Prometheus-backed implementation of both
// simulation.Sink and gasprice.Sink: a struct of pre-registered
// CounterVec/Gauge fields plus a Gin middleware and scrape handler.
package telemetry

import (
	"math/big"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aa-bundler/bundler-core/simulation"
)

// Sink holds every Prometheus metric this core exports.
type Sink struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge

	validationTotal     *prometheus.CounterVec
	unexpectedResponses *prometheus.CounterVec
	gasPriceMaxFee      prometheus.Gauge
	gasPriceMaxPriority prometheus.Gauge
	gasQueueDepth       *prometheus.GaugeVec
}

// New creates and registers every metric this core exports.
func New() *Sink {
	s := &Sink{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlercore_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bundlercore_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlercore_active_requests",
				Help: "Number of currently active requests",
			},
		),
		validationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlercore_validation_total",
				Help: "Total number of UserOperation validation attempts",
			},
			[]string{"result", "kind"},
		),
		unexpectedResponses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlercore_unexpected_simulation_responses_total",
				Help: "Total number of simulation responses that did not match any known ABI shape",
			},
			[]string{"reason"},
		),
		gasPriceMaxFee: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlercore_gas_price_max_fee_per_gas_wei",
				Help: "Most recently computed maxFeePerGas, in wei",
			},
		),
		gasPriceMaxPriority: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlercore_gas_price_max_priority_fee_per_gas_wei",
				Help: "Most recently computed maxPriorityFeePerGas, in wei",
			},
		),
		gasQueueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bundlercore_gas_price_queue_depth",
				Help: "Current depth of a rolling gas-price minimum queue",
			},
			[]string{"component"},
		),
	}

	prometheus.MustRegister(
		s.requestsTotal,
		s.requestDuration,
		s.activeRequests,
		s.validationTotal,
		s.unexpectedResponses,
		s.gasPriceMaxFee,
		s.gasPriceMaxPriority,
		s.gasQueueDepth,
	)

	return s
}

// Middleware returns a Gin middleware that records HTTP request metrics.
func (s *Sink) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		s.activeRequests.Inc()

		c.Next()

		s.activeRequests.Dec()
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		s.requestsTotal.WithLabelValues(c.Request.Method, c.FullPath(), status).Inc()
		s.requestDuration.WithLabelValues(c.Request.Method, c.FullPath()).Observe(duration)
	}
}

// Handler returns the Prometheus scrape handler.
func (s *Sink) Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// ReportUnexpected implements simulation.Sink.
func (s *Sink) ReportUnexpected(reason string, raw []byte) {
	s.unexpectedResponses.WithLabelValues(reason).Inc()
}

// RecordValidationSuccess implements simulation.Sink.
func (s *Sink) RecordValidationSuccess() {
	s.validationTotal.WithLabelValues("success", "").Inc()
}

// RecordValidationFailure implements simulation.Sink.
func (s *Sink) RecordValidationFailure(kind simulation.Kind) {
	s.validationTotal.WithLabelValues("failure", kind.String()).Inc()
}

// ObserveQueueDepth implements gasprice.Sink.
func (s *Sink) ObserveQueueDepth(component string, depth int) {
	s.gasQueueDepth.WithLabelValues(component).Set(float64(depth))
}

// ObserveGasPrice implements gasprice.Sink.
func (s *Sink) ObserveGasPrice(maxFeePerGas, maxPriorityFeePerGas *big.Int) {
	if maxFeePerGas != nil {
		s.gasPriceMaxFee.Set(weiToFloat(maxFeePerGas))
	}
	if maxPriorityFeePerGas != nil {
		s.gasPriceMaxPriority.Set(weiToFloat(maxPriorityFeePerGas))
	}
}

func weiToFloat(v *big.Int) float64 {
	f := new(big.Float).SetInt(v)
	result, _ := f.Float64()
	return result
}
