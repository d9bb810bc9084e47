package saleshistory

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Debouncer runs the most recently triggered task once input has been quiet
// for the delay. A newer Trigger replaces the pending task.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	seq     uint64
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules task after the delay, replacing any pending task.
func (d *Debouncer) Trigger(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = task
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	task := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	task()
}

// Flush runs the pending task now. It reports whether one was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.pending == nil || d.stopped {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	task := d.pending
	d.pending = nil
	d.mu.Unlock()

	task()
	return true
}

// Pending reports whether a task is waiting for the quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop drops the pending task; later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = nil
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// RefreshScheduler runs a job at a fixed interval until the returned stop
// function is called.
type RefreshScheduler interface {
	Every(interval time.Duration, job func()) (stop func())
}

// CronScheduler schedules interval jobs on one shared cron runner.
type CronScheduler struct {
	cron *cron.Cron
}

// NewCronScheduler starts a cron runner.
func NewCronScheduler() *CronScheduler {
	c := cron.New()
	c.Start()
	return &CronScheduler{cron: c}
}

func (s *CronScheduler) Every(interval time.Duration, job func()) func() {
	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(job))
	var once sync.Once
	return func() {
		once.Do(func() { s.cron.Remove(id) })
	}
}

// Jobs reports how many interval jobs are registered.
func (s *CronScheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Stop halts the runner and waits for running jobs to finish.
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}
