package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promhttppkg "github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	FieldErrorCode = "error_code"

	ValueNoError = ""

	Namespace      = "traffic_rollup"
	SubIngestion   = "ingestion"
	SubAggregation = "aggregation"
	SubPipeline    = "pipeline"
	SubStream      = "stream"
	SubHTTP        = "http"
)

type CounterOpts = prometheus.CounterOpts

type GaugeOpts = prometheus.GaugeOpts

type HistogramOpts = prometheus.HistogramOpts

var DefBuckets = prometheus.DefBuckets

var ExponentialBuckets = prometheus.ExponentialBuckets

// RunDurationBuckets spans 50ms to about 7 minutes.
var RunDurationBuckets = ExponentialBuckets(0.05, 2, 14)

// Constructors register with the default prometheus registry.
var (
	NewCounterVec   = promauto.NewCounterVec
	NewGauge        = promauto.NewGauge
	NewGaugeVec     = promauto.NewGaugeVec
	NewHistogramVec = promauto.NewHistogramVec
)

// PromHTTP wraps the promhttp package to provide access via metrics.promhttp.
type promHTTP struct{}

// Handler returns an http.Handler for the Prometheus metrics endpoint.
func (promHTTP) Handler() http.Handler {
	return promhttppkg.Handler()
}

// PromHTTP is an instance that wraps the promhttp package functionality.
// Access it via metrics.PromHTTP.
var PromHTTP = promHTTP{}
