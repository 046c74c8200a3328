package scheduler

import "time"

// Scheduler runs one-shot tasks after a fixed delay without blocking the
// caller. One instance serves the whole process.
type Scheduler struct{}

func New() *Scheduler {
	return &Scheduler{}
}

// ScheduledTask is a handle to a pending task. Cancelling is best effort:
// a task that already started is not interrupted.
type ScheduledTask struct {
	timer *time.Timer
}

// Cancel stops the task if it has not fired yet. It reports whether the
// task was still pending.
func (t *ScheduledTask) Cancel() bool {
	return t.timer.Stop()
}

// RunWithDelay schedules task to run after at least delay has elapsed.
// Tasks are fire-and-forget; there is no ordering guarantee between
// scheduled tasks beyond their relative delays.
func (s *Scheduler) RunWithDelay(task func(), delay time.Duration) *ScheduledTask {
	return &ScheduledTask{timer: time.AfterFunc(delay, task)}
}
