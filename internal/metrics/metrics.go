package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// BorrowsTotal counts successfully created loans.
	BorrowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "borrows_total",
			Help: "Total number of books borrowed",
		},
	)

	// ReturnsTotal counts successfully returned loans.
	ReturnsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "returns_total",
			Help: "Total number of books returned",
		},
	)

	// LoansOverdue is the number of open loans past their due date,
	// refreshed by the overdue sweep.
	LoansOverdue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "loans_overdue",
			Help: "Number of borrowed books past their due date",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, BorrowsTotal, ReturnsTotal, LoansOverdue)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /books/123 -> /books/{id}, /history/45 -> /history/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncBorrows increments the borrow counter (call when a loan is created).
func IncBorrows() {
	BorrowsTotal.Inc()
}

// IncReturns increments the return counter (call when a loan is closed).
func IncReturns() {
	ReturnsTotal.Inc()
}

// SetLoansOverdue sets the overdue gauge (call from the sweep).
func SetLoansOverdue(n int) {
	LoansOverdue.Set(float64(n))
}
