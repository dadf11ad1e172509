package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sardorbek/atmos-paylink/pkg/telemetry"
)

var (
	// Payment-link counters
	LinksCreated     *telemetry.Counter
	LinkCreateFailed *telemetry.Counter
	TransactionsPaid *telemetry.Counter

	// Webhook counters
	WebhooksReceived  *telemetry.Counter
	WebhooksProcessed *telemetry.Counter
	WebhooksFailed    *telemetry.Counter

	// Histograms
	GatewayCallDuration   *telemetry.Histogram
	WebhookProcessingTime *telemetry.Histogram
	LinkAmount            *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all paylink metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	LinksCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "paylink_created_total",
		Description: "Total number of payment links created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	LinkCreateFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "paylink_create_failed_total",
		Description: "Total number of failed payment-link creations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TransactionsPaid, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "paylink_paid_total",
		Description: "Total number of transactions transitioned to paid",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	WebhooksReceived, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "paylink_webhooks_received_total",
		Description: "Total number of webhooks received",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	WebhooksProcessed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "paylink_webhooks_processed_total",
		Description: "Total number of webhooks successfully processed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	WebhooksFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "paylink_webhooks_failed_total",
		Description: "Total number of webhooks that failed processing",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	GatewayCallDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "paylink_gateway_call_seconds",
		Description: "Duration of outbound gateway calls",
		Unit:        "s",
	}, []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30})
	if err != nil {
		return err
	}

	WebhookProcessingTime, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "paylink_webhook_processing_seconds",
		Description: "Webhook processing duration",
		Unit:        "s",
	}, []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5})
	if err != nil {
		return err
	}

	LinkAmount, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "paylink_amount_som",
		Description: "Payment-link amounts distribution",
		Unit:        "som",
	}, []float64{1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000})
	if err != nil {
		return err
	}

	return nil
}

// RecordLinkCreated records a payment-link creation metric
func RecordLinkCreated(ctx context.Context, account string, amount float64) {
	if LinksCreated != nil {
		LinksCreated.Inc(ctx, attribute.String("account", account))
	}
	if LinkAmount != nil {
		LinkAmount.Record(ctx, amount)
	}
}

// RecordLinkCreateFailed records a failed payment-link creation
func RecordLinkCreateFailed(ctx context.Context, reason string) {
	if LinkCreateFailed != nil {
		LinkCreateFailed.Inc(ctx, attribute.String("reason", reason))
	}
}

// RecordWebhookReceived records a webhook receipt metric
func RecordWebhookReceived(ctx context.Context) {
	if WebhooksReceived != nil {
		WebhooksReceived.Inc(ctx)
	}
}

// RecordWebhookProcessed records a successful webhook processing metric
func RecordWebhookProcessed(ctx context.Context, durationSeconds float64, transitioned bool) {
	if WebhooksProcessed != nil {
		WebhooksProcessed.Inc(ctx, attribute.Bool("transitioned", transitioned))
	}
	if WebhookProcessingTime != nil {
		WebhookProcessingTime.Record(ctx, durationSeconds)
	}
	if transitioned && TransactionsPaid != nil {
		TransactionsPaid.Inc(ctx)
	}
}

// RecordWebhookFailed records a webhook processing failure metric
func RecordWebhookFailed(ctx context.Context, reason string) {
	if WebhooksFailed != nil {
		WebhooksFailed.Inc(ctx, attribute.String("reason", reason))
	}
}

// RecordGatewayCall records the duration of an outbound gateway call
func RecordGatewayCall(ctx context.Context, operation string, durationSeconds float64) {
	if GatewayCallDuration != nil {
		GatewayCallDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
