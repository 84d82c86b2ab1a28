package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	UpdatesProcessedTotal  metric.Int64Counter
	HandlerErrorsTotal     metric.Int64Counter
	ProviderRequestSeconds metric.Float64Histogram
	StoreWriteErrorsTotal  metric.Int64Counter
	ActiveSessions         metric.Int64UpDownCounter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() { // Ensure this only runs once
		meter := otel.GetMeterProvider().Meter("go-leisure-bot")
		var err error
		m := &AppMetrics{}

		m.UpdatesProcessedTotal, err = meter.Int64Counter(
			"updates_processed_total",
			metric.WithDescription("Total number of chat updates handled"),
			metric.WithUnit("{update}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create updates_processed_total: %v", err)
		}

		m.HandlerErrorsTotal, err = meter.Int64Counter(
			"handler_errors_total",
			metric.WithDescription("Total number of update handler errors by category"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create handler_errors_total: %v", err)
		}

		m.ProviderRequestSeconds, err = meter.Float64Histogram(
			"provider_request_duration_seconds",
			metric.WithDescription("Duration of weather/POI provider requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_request_duration_seconds: %v", err)
		}

		m.StoreWriteErrorsTotal, err = meter.Int64Counter(
			"store_write_errors_total",
			metric.WithDescription("Total number of persistence write errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_write_errors_total: %v", err)
		}

		m.ActiveSessions, err = meter.Int64UpDownCounter(
			"active_sessions",
			metric.WithDescription("Number of session records currently held in memory"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create active_sessions: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m // Assign to global variable
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		// This indicates a programming error - InitAppMetrics must be called at startup.
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
