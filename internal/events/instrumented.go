package events

import (
	"context"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/metrics"
)

type instrumented struct {
	Producer
	system  string
	metrics *metrics.MessagingMetrics
}

// Instrument records publish counts, latency and failures for p under the
// given messaging system name.
func Instrument(p Producer, system string, m *metrics.MessagingMetrics) Producer {
	return &instrumented{Producer: p, system: system, metrics: m}
}

func (i *instrumented) SendMessage(ctx context.Context, key string, value interface{}) error {
	start := time.Now()
	err := i.Producer.SendMessage(ctx, key, value)
	i.metrics.RecordPublish(ctx, i.system, TypeOf(value), time.Since(start), err)
	return err
}
