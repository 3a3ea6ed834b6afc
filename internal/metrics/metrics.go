package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP метрики
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// OKX API метрики
	OKXAPIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "okx_api_requests_total",
			Help: "Total number of OKX API requests",
		},
		[]string{"endpoint", "status"},
	)
	OKXAPIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "okx_api_request_duration_seconds",
			Help: "Duration of OKX API requests in seconds",
		},
		[]string{"endpoint"},
	)

	// Депозиты
	DepositAddressesIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deposit_addresses_issued_total",
			Help: "Deposit address requests by outcome",
		},
		[]string{"currency", "outcome"},
	)
	DepositStatusPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deposit_status_polls_total",
			Help: "Deposit status polls by resulting status",
		},
		[]string{"status"},
	)
	LedgerWriteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "deposit_ledger_write_duration_seconds",
			Help: "Duration of deposit ledger inserts in seconds",
		},
	)
)

func InitMetrics() {
	// HTTP
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsInFlight)

	// OKX
	prometheus.MustRegister(OKXAPIRequestsTotal)
	prometheus.MustRegister(OKXAPIRequestDuration)

	// Депозиты
	prometheus.MustRegister(DepositAddressesIssued)
	prometheus.MustRegister(DepositStatusPolls)
	prometheus.MustRegister(LedgerWriteDuration)

	// Go- и process-коллекторы уже есть в DefaultRegisterer
}
