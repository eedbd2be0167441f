package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
)

// Scheduler runs world systems on a fixed tick
// Tick deadlines are absolute so the loop does not drift with slow updates
type Scheduler struct {
	world    *World
	timeRes  *TimeResource
	interval time.Duration

	tickCount atomic.Int64
	running   atomic.Bool
}

// NewScheduler creates a scheduler ticking every interval
func NewScheduler(world *World, interval time.Duration) *Scheduler {
	return &Scheduler{
		world:    world,
		timeRes:  MustGetResource[*TimeResource](world.Resources),
		interval: interval,
	}
}

// Interval returns the configured tick interval
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Ticks returns the number of completed ticks
func (s *Scheduler) Ticks() int64 {
	return s.tickCount.Load()
}

// Step advances the world by dt synchronously
// Deterministic entry point for tests and fixed-step replays
func (s *Scheduler) Step(dt time.Duration) {
	s.world.RunSafe(func() {
		frame := s.tickCount.Add(1)
		s.timeRes.Update(dt, frame)
		s.world.UpdateLocked(dt)
	})
}

// Run ticks until ctx is cancelled; returns nil on cancellation
// The delta passed to systems is the measured time since the previous tick
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return eris.Errorf("scheduler: invalid tick interval %v", s.interval)
	}
	if !s.running.CompareAndSwap(false, true) {
		return eris.New("scheduler: already running")
	}
	defer s.running.Store(false)

	logger := s.world.Logger()
	logger.Info().Dur("interval", s.interval).Msg("scheduler started")

	last := time.Now()
	deadline := last.Add(s.interval)
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Int64("ticks", s.Ticks()).Msg("scheduler stopped")
			return nil
		case now := <-timer.C:
			s.Step(now.Sub(last))
			last = now

			deadline = deadline.Add(s.interval)
			// Skip missed deadlines instead of bursting
			if wait := time.Until(deadline); wait > 0 {
				timer.Reset(wait)
			} else {
				deadline = time.Now().Add(s.interval)
				timer.Reset(s.interval)
			}
		}
	}
}
