package client

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "netpong/internal/client"

// dispatchMetrics counts inbound messages by outcome. Without an explicit
// meter it uses the global OTel meter, which records nothing until a
// MeterProvider with an exporter is installed.
type dispatchMetrics struct {
	handled   metric.Int64Counter
	ignored   metric.Int64Counter
	malformed metric.Int64Counter
}

func newDispatchMetrics(m metric.Meter) (*dispatchMetrics, error) {
	if m == nil {
		m = otel.Meter(instrumentationName)
	}

	var (
		d   dispatchMetrics
		err error
	)
	d.handled, err = m.Int64Counter("pong.messages.handled",
		metric.WithDescription("Inbound messages applied to the match"))
	if err != nil {
		return nil, fmt.Errorf("creating handled counter: %w", err)
	}
	d.ignored, err = m.Int64Counter("pong.messages.ignored",
		metric.WithDescription("Inbound messages of unknown type"))
	if err != nil {
		return nil, fmt.Errorf("creating ignored counter: %w", err)
	}
	d.malformed, err = m.Int64Counter("pong.messages.malformed",
		metric.WithDescription("Inbound messages rejected as malformed"))
	if err != nil {
		return nil, fmt.Errorf("creating malformed counter: %w", err)
	}
	return &d, nil
}

func typeAttr(t string) metric.AddOption {
	return metric.WithAttributes(attribute.String("type", t))
}

func (d *dispatchMetrics) countHandled(t string) {
	d.handled.Add(context.Background(), 1, typeAttr(t))
}

func (d *dispatchMetrics) countIgnored(t string) {
	d.ignored.Add(context.Background(), 1, typeAttr(t))
}

func (d *dispatchMetrics) countMalformed(t string) {
	d.malformed.Add(context.Background(), 1, typeAttr(t))
}
