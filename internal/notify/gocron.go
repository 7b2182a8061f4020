package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// GocronBackend installs timers as gocron duration jobs.
type GocronBackend struct {
	scheduler gocron.Scheduler
}

// NewGocronBackend wraps an existing gocron scheduler. Starting and shutting
// down the scheduler stays with its owner.
func NewGocronBackend(s gocron.Scheduler) (*GocronBackend, error) {
	if s == nil {
		return nil, errors.New("gocron scheduler cannot be nil")
	}
	return &GocronBackend{scheduler: s}, nil
}

// Every registers tick as a singleton duration job so a slow delivery never
// overlaps the next run of the same timer.
func (g *GocronBackend) Every(name string, period time.Duration, immediate bool, tick func()) (Handle, error) {
	if tick == nil {
		return Handle{}, errors.New("nil tick function")
	}
	if period <= 0 {
		return Handle{}, fmt.Errorf("invalid period %s", period)
	}

	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithTags("notify", name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if immediate {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	job, err := g.scheduler.NewJob(
		gocron.DurationJob(period),
		gocron.NewTask(tick),
		opts...,
	)
	if err != nil {
		return Handle{}, fmt.Errorf("failed to create job %s: %w", name, err)
	}
	return job.ID(), nil
}

// Cancel removes the job. Unknown handles are reported as errors.
func (g *GocronBackend) Cancel(h Handle) error {
	if err := g.scheduler.RemoveJob(h); err != nil {
		return fmt.Errorf("failed to remove job %s: %w", h, err)
	}
	return nil
}
