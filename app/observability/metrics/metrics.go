package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	CityListRequestsTotal  metric.Int64Counter
	POIMutationsTotal      metric.Int64Counter
	NotificationsSentTotal metric.Int64Counter
	DbQueryDurationSeconds metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments only once, using
// the meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("CityInfoAPI")
		var err error
		m := &AppMetrics{}

		m.CityListRequestsTotal, err = meter.Int64Counter(
			"city_list_requests_total",
			metric.WithDescription("Total number of city listing requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create city_list_requests_total: %v", err)
		}

		m.POIMutationsTotal, err = meter.Int64Counter(
			"poi_mutations_total",
			metric.WithDescription("Total number of committed point of interest mutations"),
			metric.WithUnit("{mutation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create poi_mutations_total: %v", err)
		}

		m.NotificationsSentTotal, err = meter.Int64Counter(
			"notifications_sent_total",
			metric.WithDescription("Total number of deletion notifications attempted"),
			metric.WithUnit("{notification}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create notifications_sent_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the initialized metrics instance. InitAppMetrics must have been
// called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}
