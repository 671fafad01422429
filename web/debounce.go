package web

import (
	"sync"
	"time"
)

// debouncer runs fn once events stop arriving for delay. stop cancels a
// pending run and waits for one already in progress.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	running sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil && d.timer.Stop() {
		d.running.Done()
	}

	d.running.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.running.Done()
		fn()
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.running.Done()
	}
	d.mu.Unlock()

	d.running.Wait()
}
