// Package sinks delivers rendered notifications to best-effort external
// targets (email, push). Sink failures never surface to the write path that
// produced the notification; they are logged and counted only.
package sinks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pulsefeed/backend/pkg/logger"
	"github.com/pulsefeed/backend/pkg/metrics"
)

const defaultDeliverTimeout = 15 * time.Second

// Delivery is one rendered notification handed to the external sinks.
type Delivery struct {
	RecipientID    string
	RecipientEmail string
	PushToken      string
	Title          string
	Body           string
	Data           map[string]string
}

// Sink is a single external delivery target.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, d Delivery) error
}

// Fanout dispatches a delivery to every configured sink in the background.
type Fanout struct {
	sinks   []Sink
	timeout time.Duration
	log     *zap.Logger

	wg sync.WaitGroup
}

// NewFanout constructs a sink fanout. An empty sink list yields a no-op fanout.
func NewFanout(targets ...Sink) *Fanout {
	return &Fanout{
		sinks:   targets,
		timeout: defaultDeliverTimeout,
		log:     logger.WithModule("sinks"),
	}
}

// Deliver hands the delivery to each sink on its own goroutine and returns
// immediately. The sink context is detached from the caller's so an already
// answered request does not cancel in-flight handoffs.
func (f *Fanout) Deliver(ctx context.Context, d Delivery) {
	if f == nil || len(f.sinks) == 0 {
		return
	}

	base := context.WithoutCancel(ctx)
	for _, target := range f.sinks {
		f.wg.Add(1)
		go func(s Sink) {
			defer f.wg.Done()

			sinkCtx, cancel := context.WithTimeout(base, f.timeout)
			defer cancel()

			if err := s.Deliver(sinkCtx, d); err != nil {
				metrics.SinkDeliveries.WithLabelValues(s.Name(), "failed").Inc()
				f.log.Warn("sink delivery failed",
					zap.String("sink", s.Name()),
					zap.String("recipient_id", d.RecipientID),
					zap.Error(err),
				)
				return
			}
			metrics.SinkDeliveries.WithLabelValues(s.Name(), "ok").Inc()
		}(target)
	}
}

// Wait blocks until all in-flight deliveries finish. Used on shutdown and in tests.
func (f *Fanout) Wait() {
	if f != nil {
		f.wg.Wait()
	}
}
