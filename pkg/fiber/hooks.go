package fiber

import (
	"github.com/loom-ui/loom/pkg/element"
	"github.com/loom-ui/loom/pkg/host"
)

// Cleanup is returned by an effect callback and invoked before the effect
// re-runs or when its component unmounts.
type Cleanup func()

type hookKind uint8

const (
	hookState hookKind = iota
	hookEffect
)

// hook is one positional hook record on a fiber. Records are rebuilt every
// render; state survives through the alternate fiber's record at the same
// ordinal position.
type hook struct {
	kind hookKind

	// State hooks.
	state any
	queue *updateQueue

	// Effect hooks.
	effect  func() Cleanup
	deps    []any
	hasDeps bool
	changed bool
	cleanup Cleanup
}

// updateQueue carries pending state updates in FIFO order. The queue cell is
// shared between a hook and every successor at the same position, so setters
// captured during any render generation, committed or since discarded, feed
// the same queue. Applied updates are dropped only when a render commits;
// renders never mutate it.
type updateQueue struct {
	updates []func(any) any
}

// Ctx is the render context threaded into a component invocation. It holds
// the target fiber and the hook cursor, replacing any ambient
// currently-rendering global. A Ctx is only valid for the duration of the
// component call that received it.
type Ctx struct {
	engine  *Engine
	fiber   *Fiber
	hookIdx int
}

// Engine returns the engine this render belongs to.
func (c *Ctx) Engine() *Engine { return c.engine }

// Container returns the host container handle the tree is mounted on.
func (c *Ctx) Container() host.Node { return c.engine.container }

// Children returns the child elements passed to the component's element,
// for components that slot caller content into their output.
func (c *Ctx) Children() []*element.Element { return c.fiber.children }

// nextHook appends a fresh hook record and returns it together with the
// record at the same position in the alternate fiber, if any. Hook identity
// is strictly positional: calling hooks conditionally or in a different
// order across renders is out of contract and produces an undefined state
// mapping.
func (c *Ctx) nextHook(kind hookKind) (h, old *hook) {
	idx := c.hookIdx
	c.hookIdx++

	if alt := c.fiber.alternate; alt != nil && idx < len(alt.hooks) {
		old = alt.hooks[idx]
		if old.kind != kind {
			old = nil
		}
	}

	h = &hook{kind: kind}
	c.fiber.hooks = append(c.fiber.hooks, h)
	return h, old
}

// SetState enqueues pending updates for one state hook and schedules a
// re-render. Both methods must be called on the engine goroutine; updates
// enqueued before the next render batch into a single pass.
type SetState[T any] struct {
	h *hook
	e *Engine
}

// Set enqueues a replacement value.
func (s SetState[T]) Set(v T) {
	s.push(func(any) any { return v })
}

// Update enqueues a function of the previous value.
func (s SetState[T]) Update(fn func(T) T) {
	s.push(func(prev any) any {
		v, _ := prev.(T)
		return fn(v)
	})
}

func (s SetState[T]) push(update func(any) any) {
	s.h.queue.updates = append(s.h.queue.updates, update)
	s.e.scheduleUpdate()
}

// UseState declares a state hook. The value is seeded from the same-position
// hook of the previous render (or initial on first render), then every
// update enqueued since the last commit is applied left to right to produce
// this render's value. The queue drains only when the render commits; an
// aborted or superseded pass leaves the pending updates in place for the
// next attempt.
func UseState[T any](ctx *Ctx, initial T) (T, SetState[T]) {
	h, old := ctx.nextHook(hookState)

	if old != nil {
		h.queue = old.queue
		h.state = old.state
		for _, update := range h.queue.updates {
			h.state = update(h.state)
		}
	} else {
		h.queue = &updateQueue{}
		h.state = initial
	}

	v, _ := h.state.(T)
	return v, SetState[T]{h: h, e: ctx.engine}
}

// UseEffect declares an effect hook. The callback runs during the commit
// phase, after all host mutations, whenever the dependency slice changed:
// a nil deps slice re-runs on every render, an empty non-nil slice runs
// exactly once, and otherwise any element differing by value at the same
// index marks the effect changed. The previous cleanup handle is carried
// forward unexecuted; commit invokes it just before the new callback.
func UseEffect(ctx *Ctx, fn func() Cleanup, deps []any) {
	h, old := ctx.nextHook(hookEffect)
	h.effect = fn
	h.deps = deps
	h.hasDeps = deps != nil

	if old == nil {
		h.changed = true
		return
	}
	h.cleanup = old.cleanup
	h.changed = depsChanged(old, deps, h.hasDeps)
}

func depsChanged(old *hook, deps []any, hasDeps bool) bool {
	if !hasDeps || !old.hasDeps {
		return true
	}
	if len(deps) != len(old.deps) {
		return true
	}
	for i := range deps {
		if !host.ValuesEqual(deps[i], old.deps[i]) {
			return true
		}
	}
	return false
}

// Deps builds a dependency slice. Deps() with no arguments yields the
// run-once empty slice, distinct from passing nil.
func Deps(values ...any) []any {
	if values == nil {
		return []any{}
	}
	return values
}

// Props is re-exported for component signatures.
type Props = element.Props
