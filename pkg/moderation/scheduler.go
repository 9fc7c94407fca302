package moderation

import "time"

// Clock abstracts wall time so expiry behavior is deterministic in tests
type Clock interface {
	NowMs() int64
}

// Timer is a cancellation handle for a scheduled callback.
// Stop reports whether the callback was prevented from running.
type Timer interface {
	Stop() bool
}

// Scheduler schedules one-shot callbacks. The production implementation is a
// thin wrapper over time.AfterFunc; tests drive a manual fake instead.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Timer
}

type systemClock struct{}

func (systemClock) NowMs() int64 {
	return time.Now().UnixMilli()
}

// SystemClock returns the wall clock
func SystemClock() Clock {
	return systemClock{}
}

type systemTimer struct {
	t *time.Timer
}

func (s *systemTimer) Stop() bool {
	return s.t.Stop()
}

type systemScheduler struct{}

func (systemScheduler) Schedule(delay time.Duration, fn func()) Timer {
	return &systemTimer{t: time.AfterFunc(delay, fn)}
}

// SystemScheduler returns the time.AfterFunc-backed scheduler
func SystemScheduler() Scheduler {
	return systemScheduler{}
}
