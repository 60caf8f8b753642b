package fiber

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/loom-ui/loom/pkg/element"
	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/idle"
)

// Metrics receives engine instrumentation. The core stays free of any
// metrics backend; pkg/metrics provides a Prometheus implementation.
type Metrics interface {
	RenderScheduled()
	UnitProcessed()
	Yielded()
	Committed(elapsed time.Duration, placements, updates, deletions int)
	EffectsRun(count int)
	RenderAborted()
}

type nopMetrics struct{}

func (nopMetrics) RenderScheduled()                              {}
func (nopMetrics) UnitProcessed()                                {}
func (nopMetrics) Yielded()                                      {}
func (nopMetrics) Committed(time.Duration, int, int, int)        {}
func (nopMetrics) EffectsRun(int)                                {}
func (nopMetrics) RenderAborted()                                {}

// Engine owns the process-wide rendering state: the committed tree, the
// work-in-progress tree, the pending-deletion list, and the next unit of
// work. It is created once per mounted tree and never torn down. All engine
// state is confined to the goroutine that runs the scheduler's callbacks.
type Engine struct {
	adapter host.Adapter
	sched   idle.Scheduler
	log     *slog.Logger
	metrics Metrics

	container host.Node
	current   *Fiber
	wipRoot   *Fiber
	nextUnit  *Fiber
	deletions []*Fiber

	idleRequested bool
	lastErr       error
	onCommit      func()

	renders uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler sets the idle scheduler. Defaults to the deferred-immediate
// fallback, which renders synchronously on the caller's stack.
func WithScheduler(s idle.Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithCommitHook registers fn to run after every successful commit, on the
// engine goroutine. Hosts use it to flush accumulated patches.
func WithCommitHook(fn func()) Option {
	return func(e *Engine) { e.onCommit = fn }
}

// New creates an engine bound to a host adapter.
func New(adapter host.Adapter, opts ...Option) *Engine {
	e := &Engine{
		adapter: adapter,
		sched:   idle.Immediate(),
		log:     slog.Default(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render seeds a new work-in-progress root whose single child is el, aliasing
// the container handle as the root's host node, and hands control to the work
// loop. Any in-flight uncommitted work is discarded; the committed tree stays
// untouched until the next commit.
func (e *Engine) Render(el *element.Element, container host.Node) {
	e.container = container
	e.wipRoot = &Fiber{
		kind:      element.KindHost,
		tag:       "#root",
		props:     element.Props{},
		children:  []*element.Element{el},
		hostNode:  container,
		alternate: e.current,
	}
	e.deletions = nil
	e.nextUnit = e.wipRoot
	e.lastErr = nil
	e.renders++
	e.metrics.RenderScheduled()
	e.requestIdle()
}

// scheduleUpdate starts a re-render from the committed root. Called by state
// setters; multiple calls before the next work-loop pass simply rebuild the
// same WIP root, and the pending updates batch in the hook queues.
func (e *Engine) scheduleUpdate() {
	if e.current == nil {
		return
	}
	e.wipRoot = &Fiber{
		kind:      e.current.kind,
		tag:       e.current.tag,
		props:     e.current.props,
		children:  e.current.children,
		hostNode:  e.current.hostNode,
		alternate: e.current,
	}
	e.deletions = nil
	e.nextUnit = e.wipRoot
	e.lastErr = nil
	e.renders++
	e.metrics.RenderScheduled()
	e.requestIdle()
}

func (e *Engine) requestIdle() {
	if e.idleRequested {
		return
	}
	e.idleRequested = true
	e.sched.RequestIdle(e.workLoop)
}

// workLoop advances reconciliation one fiber at a time, yielding control
// when the host's deadline expires. A unit of work is never interrupted
// mid-way; suspension happens only at unit boundaries. When the units are
// exhausted the commit phase runs synchronously.
func (e *Engine) workLoop(deadline idle.Deadline) {
	e.idleRequested = false

	for e.nextUnit != nil {
		next, err := e.performUnit(e.nextUnit)
		if err != nil {
			e.abortRender(err)
			return
		}
		e.nextUnit = next
		e.metrics.UnitProcessed()

		if e.nextUnit != nil && deadline.ShouldYield() {
			e.metrics.Yielded()
			e.requestIdle()
			return
		}
	}

	if e.wipRoot != nil {
		if err := e.commitRoot(); err != nil {
			e.abortRender(err)
		}
	}
}

// abortRender discards the in-progress render. The committed tree is
// untouched by WIP processing, so no cleanup is needed; a failed render must
// be re-triggered by the caller.
func (e *Engine) abortRender(err error) {
	e.lastErr = err
	e.wipRoot = nil
	e.nextUnit = nil
	e.deletions = nil
	e.metrics.RenderAborted()
	e.log.Error("render aborted", "error", err)
}

// Err returns the error that aborted the most recent render, or nil.
func (e *Engine) Err() error { return e.lastErr }

// Root returns the committed root fiber, nil before the first commit.
func (e *Engine) Root() *Fiber { return e.current }

// Renders returns the number of render passes started.
func (e *Engine) Renders() uint64 { return e.renders }

// performUnit processes one fiber: component fibers evaluate their function
// under a fresh render context, host and text fibers materialize their host
// node if missing, and both hand their child element list to the reconciler.
// Returns the next unit in depth-first pre-order.
func (e *Engine) performUnit(f *Fiber) (*Fiber, error) {
	var children []*element.Element

	switch f.kind {
	case element.KindComponent:
		comp, ok := componentFunc(f.comp)
		if !ok {
			return nil, fmt.Errorf("fiber: element has non-component kind value %T", f.comp)
		}
		ctx := &Ctx{engine: e, fiber: f}
		f.hooks = f.hooks[:0]
		if child := comp(ctx, f.props); child != nil {
			children = []*element.Element{child}
		}
	default:
		if f.hostNode == nil {
			n, err := e.adapter.CreateNode(f.kind, f.tag, f.props)
			if err != nil {
				return nil, fmt.Errorf("fiber: create host node for %q: %w", f.tag, err)
			}
			f.hostNode = n
		}
		children = f.children
	}

	e.reconcileChildren(f, children)
	return nextUnitAfter(f), nil
}
