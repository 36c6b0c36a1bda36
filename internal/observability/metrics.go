package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	predictionsTotal       *prometheus.CounterVec
	predictionLatency      prometheus.Histogram
	cacheLookupsTotal      *prometheus.CounterVec
	inferenceFailuresTotal prometheus.Counter
	highRiskAlertsTotal    prometheus.Counter
	httpRequestsTotal      *prometheus.CounterVec
	httpLatency            *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the prediction
// pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		predictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dropout_predictions_total",
			Help: "Total number of prediction requests served, by outcome.",
		}, []string{"outcome"})

		predictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dropout_prediction_duration_seconds",
			Help:    "Latency distribution of the full prediction pipeline.",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dropout_cache_lookups_total",
			Help: "Prediction cache lookups, by result.",
		}, []string{"result"})

		inferenceFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dropout_inference_failures_total",
			Help: "Total number of scaler/classifier invocation failures.",
		})

		highRiskAlertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dropout_high_risk_alerts_total",
			Help: "Total number of high-risk alerts published.",
		})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dropout_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"})

		httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dropout_http_request_duration_seconds",
			Help:    "HTTP request latency, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dropout_http_errors_total",
			Help: "HTTP responses with status >= 400, by method, route and status.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(predictionsTotal, predictionLatency, cacheLookupsTotal, inferenceFailuresTotal, highRiskAlertsTotal,
			httpRequestsTotal, httpLatency, httpErrorsTotal)
	})
}

// Predictions exposes the prediction outcome counter.
func Predictions() *prometheus.CounterVec {
	RegisterMetrics()
	return predictionsTotal
}

// PredictionLatency exposes the pipeline latency histogram.
func PredictionLatency() prometheus.Histogram {
	RegisterMetrics()
	return predictionLatency
}

// CacheLookups exposes the cache lookup counter.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}

// InferenceFailures exposes the inference failure counter.
func InferenceFailures() prometheus.Counter {
	RegisterMetrics()
	return inferenceFailuresTotal
}

// HighRiskAlerts exposes the alert counter.
func HighRiskAlerts() prometheus.Counter {
	RegisterMetrics()
	return highRiskAlertsTotal
}

// HTTPRequests exposes the HTTP request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the HTTP latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatency
}

// HTTPErrors exposes the HTTP error counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}
