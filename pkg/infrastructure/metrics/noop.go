package metrics

import "time"

// NoopSink discards every metric.
type NoopSink struct{}

var _ Sink = NoopSink{}

func (NoopSink) QueueDepth(int)                                {}
func (NoopSink) Dispatched(string)                             {}
func (NoopSink) RetryScheduled(time.Duration)                  {}
func (NoopSink) PacingWait(time.Duration)                      {}
func (NoopSink) UpstreamRequest(string, string, time.Duration) {}
