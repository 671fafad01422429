package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/gnucash/output"
)

// TimingCollector records timers as a tree. The first timer started on it
// is the root, later ones hang below the innermost timer still running.
type TimingCollector struct {
	mu    sync.Mutex
	root  *span
	stack []*span
}

// span is one timed stage together with what it processed.
type span struct {
	name     string
	start    time.Time
	elapsed  time.Duration
	done     bool
	counts   []count
	children []*span
}

type count struct {
	n    int
	unit string
}

func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &span{name: name, start: time.Now()}
	if c.root == nil {
		c.root = s
	} else {
		parent := c.root
		if n := len(c.stack); n > 0 {
			parent = c.stack[n-1]
		}
		parent.children = append(parent.children, s)
	}
	c.stack = append(c.stack, s)

	return &spanTimer{c: c, s: s}
}

// Report writes the timer tree. Timers still running are reported with
// the time elapsed so far.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return
	}
	formatTimingTree(w, c.root, styles)
}

type spanTimer struct {
	c *TimingCollector
	s *span
}

func (t *spanTimer) End() {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()

	if t.s.done {
		return
	}
	t.s.done = true
	t.s.elapsed = time.Since(t.s.start)

	for i := len(t.c.stack) - 1; i >= 0; i-- {
		if t.c.stack[i] == t.s {
			t.c.stack = append(t.c.stack[:i], t.c.stack[i+1:]...)
			break
		}
	}
}

func (t *spanTimer) Child(name string) Timer {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()

	s := &span{name: name, start: time.Now()}
	t.s.children = append(t.s.children, s)
	return &spanTimer{c: t.c, s: s}
}

func (t *spanTimer) Count(n int, unit string) {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()

	t.s.counts = append(t.s.counts, count{n: n, unit: unit})
}

func (s *span) duration() time.Duration {
	if s.done {
		return s.elapsed
	}
	return time.Since(s.start)
}
