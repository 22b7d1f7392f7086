package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/besttime/besttime-api/pkg/logger"
)

// Job is a recurring background task.
type Job func(ctx context.Context) error

// Scheduler runs periodic maintenance jobs (refresh token purging and the
// like). Jobs run on their own goroutines and stop together on Shutdown.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a stopped-on-demand scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// Every runs job at fixed intervals, with one run at startup.
func (s *Scheduler) Every(interval time.Duration, name string, job Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.run(name, job)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.run(name, job)
			}
		}
	}()
}

func (s *Scheduler) run(name string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("[Scheduler] %s panicked: %v", name, r))
		}
	}()

	start := time.Now()
	if err := job(s.ctx); err != nil {
		logger.Error(fmt.Sprintf("[Scheduler] %s failed: %v", name, err))
		return
	}
	logger.Info(fmt.Sprintf("[Scheduler] %s completed in %v", name, time.Since(start)))
}

// Shutdown stops every job and waits for in-flight runs to finish.
func (s *Scheduler) Shutdown() {
	s.cancel()
	s.wg.Wait()
}
