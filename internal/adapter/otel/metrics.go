package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "genia"

// Metrics holds all GENIA metric instruments.
type Metrics struct {
	IntentsClassified   metric.Int64Counter
	ClassifierFallbacks metric.Int64Counter
	ClonesSelected      metric.Int64Counter
	TasksStarted        metric.Int64Counter
	TasksCompleted      metric.Int64Counter
	TasksFailed         metric.Int64Counter
	TaskDuration        metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.IntentsClassified, err = meter.Int64Counter("genia.intents.classified",
		metric.WithDescription("Number of messages classified, by intent and strategy"))
	if err != nil {
		return nil, err
	}

	m.ClassifierFallbacks, err = meter.Int64Counter("genia.intents.fallbacks",
		metric.WithDescription("Number of keyword fallbacks, by classifier error kind"))
	if err != nil {
		return nil, err
	}

	m.ClonesSelected, err = meter.Int64Counter("genia.clones.selected",
		metric.WithDescription("Number of messages routed to each clone"))
	if err != nil {
		return nil, err
	}

	m.TasksStarted, err = meter.Int64Counter("genia.tasks.started",
		metric.WithDescription("Number of tasks started"))
	if err != nil {
		return nil, err
	}

	m.TasksCompleted, err = meter.Int64Counter("genia.tasks.completed",
		metric.WithDescription("Number of tasks completed"))
	if err != nil {
		return nil, err
	}

	m.TasksFailed, err = meter.Int64Counter("genia.tasks.failed",
		metric.WithDescription("Number of tasks failed"))
	if err != nil {
		return nil, err
	}

	m.TaskDuration, err = meter.Float64Histogram("genia.task.duration_seconds",
		metric.WithDescription("Task execution duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordIntent counts one classification. A nil receiver is a no-op.
func (m *Metrics) RecordIntent(ctx context.Context, intent, strategy string) {
	if m == nil {
		return
	}
	m.IntentsClassified.Add(ctx, 1, metric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("strategy", strategy),
	))
}

// RecordFallback counts one keyword fallback caused by kind.
func (m *Metrics) RecordFallback(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.ClassifierFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordClone counts one message routed to clone.
func (m *Metrics) RecordClone(ctx context.Context, clone string) {
	if m == nil {
		return
	}
	m.ClonesSelected.Add(ctx, 1, metric.WithAttributes(attribute.String("clone", clone)))
}

// RecordTaskStart counts a task entering processing.
func (m *Metrics) RecordTaskStart(ctx context.Context, taskType, platform string) {
	if m == nil {
		return
	}
	m.TasksStarted.Add(ctx, 1, metric.WithAttributes(taskAttrs(taskType, platform)...))
}

// RecordTaskEnd counts a finished task and its duration.
func (m *Metrics) RecordTaskEnd(ctx context.Context, taskType, platform string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(taskAttrs(taskType, platform)...)
	if ok {
		m.TasksCompleted.Add(ctx, 1, attrs)
	} else {
		m.TasksFailed.Add(ctx, 1, attrs)
	}
	m.TaskDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func taskAttrs(taskType, platform string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("task.type", taskType),
		attribute.String("task.platform", platform),
	}
}
