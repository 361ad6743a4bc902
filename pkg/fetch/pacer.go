package fetch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Pacer enforces the fixed politeness delay that precedes every request.
// Requests are strictly sequential, so there is no per-host bookkeeping.
type Pacer struct {
	delay time.Duration
	log   *logrus.Entry
}

// NewPacer creates a Pacer; a non-positive delay disables waiting
func NewPacer(delay time.Duration, log *logrus.Entry) *Pacer {
	return &Pacer{delay: delay, log: log}
}

// Wait sleeps for the configured delay, returning early with ctx.Err() if the context is cancelled
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.delay <= 0 {
		return nil
	}

	p.log.WithField("sleep", p.delay).Trace("Politeness delay")
	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
