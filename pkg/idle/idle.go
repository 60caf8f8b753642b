// Package idle abstracts the host's "run when idle" primitive: a callback
// invoked with a time-remaining estimate that the engine's work loop checks
// between units of work. Hosts lacking a real idle signal use the
// deferred-immediate fallback, which reports a minimal remaining budget on
// every call.
package idle

import (
	"sync"
	"time"
)

// Deadline carries the host's time-remaining estimate for one callback.
type Deadline struct {
	until time.Time
}

// Until builds a Deadline expiring at t.
func Until(t time.Time) Deadline { return Deadline{until: t} }

// Budget builds a Deadline expiring after d from now.
func Budget(d time.Duration) Deadline { return Deadline{until: time.Now().Add(d)} }

// Remaining returns the estimated time left in this slice, never negative.
func (d Deadline) Remaining() time.Duration {
	r := time.Until(d.until)
	if r < 0 {
		return 0
	}
	return r
}

// ShouldYield reports whether the current slice is exhausted.
func (d Deadline) ShouldYield() bool {
	return !time.Now().Before(d.until)
}

// Task is one scheduled slice of cooperative work.
type Task func(Deadline)

// Scheduler delivers idle time slices to the engine. Implementations must
// deliver tasks one at a time; the engine assumes its state is confined to
// whichever goroutine runs the task.
type Scheduler interface {
	RequestIdle(task Task)
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(task Task)

// RequestIdle implements Scheduler.
func (f SchedulerFunc) RequestIdle(task Task) { f(task) }

// immediate is the deferred-immediate fallback. Tasks queue and drain on the
// caller's stack without recursion, each receiving a minimal budget so the
// work loop yields after roughly one unit and re-requests.
type immediate struct {
	queue   []Task
	running bool
}

// Immediate returns the deferred-immediate fallback scheduler. It is not
// safe for concurrent use; it exists for synchronous hosts and tests.
func Immediate() Scheduler { return &immediate{} }

func (s *immediate) RequestIdle(task Task) {
	s.queue = append(s.queue, task)
	if s.running {
		return
	}
	s.running = true
	defer func() { s.running = false }()
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		next(Deadline{until: time.Now()})
	}
}

// Loop is a goroutine-backed scheduler for live hosts. All tasks and
// dispatched functions run on the single loop goroutine, preserving the
// engine's thread-confinement invariant. Each task receives a fixed slice
// budget. The internal queue is unbounded so work running on the loop can
// enqueue freely; a bounded channel here would let the loop block on its
// own consumer.
type Loop struct {
	slice time.Duration

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	stopped bool
	done    chan struct{}
}

// NewLoop starts a scheduler loop with the given slice budget per callback.
func NewLoop(slice time.Duration) *Loop {
	if slice <= 0 {
		slice = 4 * time.Millisecond
	}
	l := &Loop{
		slice: slice,
		done:  make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.stopped {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
	}
}

// RequestIdle implements Scheduler.
func (l *Loop) RequestIdle(task Task) {
	slice := l.slice
	l.enqueue(func() { task(Budget(slice)) })
}

// Dispatch runs fn on the loop goroutine. Use it to deliver external events
// (state-setter triggers, host callbacks) into the engine's thread.
func (l *Loop) Dispatch(fn func()) {
	l.enqueue(fn)
}

func (l *Loop) enqueue(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
}

// Stop shuts the loop down and waits for already-queued work to finish.
// Tasks scheduled after Stop are dropped.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.stopped = true
	l.cond.Signal()
	l.mu.Unlock()
	<-l.done
}
