package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveTo records the elapsed time in seconds.
func (t *Timer) ObserveTo(o prometheus.Observer) {
	o.Observe(t.Duration().Seconds())
}
