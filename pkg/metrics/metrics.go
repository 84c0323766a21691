package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration  *prometheus.HistogramVec
	DBOpenConns      prometheus.Gauge
	DBInUseConns     prometheus.Gauge
	DBIdleConns      prometheus.Gauge
	DBWaitCountTotal prometheus.Gauge

	BookingsCreatedTotal *prometheus.CounterVec
	OrdersFinishedTotal  *prometheus.CounterVec
	WebhookEventsTotal   *prometheus.CounterVec
	JobRunsTotal         *prometheus.CounterVec
}

// New создает и регистрирует метрики в глобальном реестре
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики в указанном реестре (используется в тестах)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds.",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation", "status"}),

		DBOpenConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections.",
			ConstLabels: constLabels,
		}),
		DBInUseConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use.",
			ConstLabels: constLabels,
		}),
		DBIdleConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections.",
			ConstLabels: constLabels,
		}),
		DBWaitCountTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count_total",
			Help:        "Total number of connections waited for.",
			ConstLabels: constLabels,
		}),

		BookingsCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Bookings created by source.",
			ConstLabels: constLabels,
		}, []string{"source"}),

		OrdersFinishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "orders_finished_total",
			Help:        "Orders that reached a final status.",
			ConstLabels: constLabels,
		}, []string{"status"}),

		WebhookEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_webhook_events_total",
			Help:        "Payment webhook events by type and result.",
			ConstLabels: constLabels,
		}, []string{"type", "result"}),

		JobRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "job_runs_total",
			Help:        "Background job runs by job and result.",
			ConstLabels: constLabels,
		}, []string{"job", "result"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConns,
		m.DBInUseConns,
		m.DBIdleConns,
		m.DBWaitCountTotal,
		m.BookingsCreatedTotal,
		m.OrdersFinishedTotal,
		m.WebhookEventsTotal,
		m.JobRunsTotal,
	)

	return m
}

// ObserveHTTPRequest записывает запрос: route это шаблон пути mux, а не сам URL
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, started time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
}

// ObserveDBQuery записывает длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueryDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

// IncBookingCreated увеличивает счетчик созданных бронирований
func (m *Metrics) IncBookingCreated(source string) {
	if m == nil {
		return
	}
	m.BookingsCreatedTotal.WithLabelValues(source).Inc()
}

// IncOrderFinished увеличивает счетчик завершенных заказов
func (m *Metrics) IncOrderFinished(status string) {
	if m == nil {
		return
	}
	m.OrdersFinishedTotal.WithLabelValues(status).Inc()
}

// IncWebhookEvent увеличивает счетчик событий вебхука
func (m *Metrics) IncWebhookEvent(eventType, result string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, result).Inc()
}

// IncJobRun увеличивает счетчик запусков фоновых задач
func (m *Metrics) IncJobRun(job, result string) {
	if m == nil {
		return
	}
	m.JobRunsTotal.WithLabelValues(job, result).Inc()
}
