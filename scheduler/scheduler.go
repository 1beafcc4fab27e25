// Package scheduler provides cancellable delayed tasks on an injectable
// time source. Model code never calls time.AfterFunc directly; it goes
// through a Clock so tests can drive timers deterministically.
package scheduler

import "time"

// Task is a handle to a scheduled callback. Cancel reports whether the
// callback was stopped before it ran.
type Task interface {
	Cancel() bool
}

// Clock abstracts the time source used for delayed work.
type Clock interface {
	Now() time.Time
	// AfterFunc runs fn after d elapses and returns a cancellable handle.
	AfterFunc(d time.Duration, fn func()) Task
}

type systemClock struct{}

// System returns a Clock backed by the runtime timers.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, fn func()) Task {
	return &timerTask{t: time.AfterFunc(d, fn)}
}

type timerTask struct {
	t *time.Timer
}

func (tt *timerTask) Cancel() bool {
	return tt.t.Stop()
}
