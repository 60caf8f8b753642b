package fiber

import (
	"fmt"
	"time"

	"github.com/loom-ui/loom/pkg/host"
)

// commitRoot applies all accumulated effects to the host tree in one
// synchronous, uninterruptible pass: deletions first, then placements and
// updates in a depth-first walk, then the committed-tree swap, then effect
// hook callbacks. Effect callbacks run strictly after every host mutation
// for the render has landed.
func (e *Engine) commitRoot() error {
	start := time.Now()
	var placements, updates, deletions int

	for _, d := range e.deletions {
		if err := e.commitDeletion(d); err != nil {
			return err
		}
		deletions++
	}

	// Placements and updates, child-then-sibling, via an explicit stack so
	// deep trees cannot exhaust the call stack.
	stack := []*Fiber{e.wipRoot.child}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f == nil {
			continue
		}

		switch f.effect {
		case EffectPlacement:
			if f.hostNode != nil {
				parent := nearestHostAncestor(f)
				if parent == nil {
					return fmt.Errorf("fiber: placement with no host ancestor")
				}
				if err := e.adapter.AppendChild(parent, f.hostNode); err != nil {
					return fmt.Errorf("fiber: append child: %w", err)
				}
				placements++
			}
		case EffectUpdate:
			if f.hostNode != nil && f.alternate != nil {
				if err := e.adapter.ApplyProps(f.hostNode, f.alternate.props, f.props); err != nil {
					return fmt.Errorf("fiber: apply props: %w", err)
				}
				updates++
			}
		}

		stack = append(stack, f.sibling, f.child)
	}

	// Swap before effects so state setters fired inside effect callbacks
	// schedule from the tree they just observed.
	committed := e.wipRoot
	committed.alternate = nil
	e.current = committed
	e.wipRoot = nil
	e.deletions = nil

	// Settle before effects so updates enqueued by effect callbacks land in
	// emptied queues and survive to the render they schedule.
	settleStateQueues(committed.child)
	effects := e.runEffects(committed.child)

	e.metrics.Committed(time.Since(start), placements, updates, deletions)
	e.metrics.EffectsRun(effects)
	e.log.Debug("committed render",
		"placements", placements,
		"updates", updates,
		"deletions", deletions,
		"effects", effects,
		"elapsed", time.Since(start))

	if e.onCommit != nil {
		e.onCommit()
	}
	return nil
}

// nearestHostAncestor walks up the fiber tree past component fibers to the
// closest materialized host node.
func nearestHostAncestor(f *Fiber) host.Node {
	for p := f.parent; p != nil; p = p.parent {
		if p.hostNode != nil {
			return p.hostNode
		}
	}
	return nil
}

// commitDeletion removes the host nodes of a deleted subtree from their host
// parent. A component-only fiber has no node of its own, so the walk descends
// through it to the nearest host descendants, covering every sibling chain
// below. Hook cleanups for the whole subtree run first, since unmounted
// effects never get another commit pass.
func (e *Engine) commitDeletion(f *Fiber) error {
	e.runUnmountCleanups(f)

	parent := nearestHostAncestor(f)
	stack := []*Fiber{f}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		if n.hostNode != nil {
			if parent == nil {
				return fmt.Errorf("fiber: deletion with no host ancestor")
			}
			if err := e.adapter.RemoveChild(parent, n.hostNode); err != nil {
				return fmt.Errorf("fiber: remove child: %w", err)
			}
			continue // the subtree goes with its root node
		}
		for c := n.child; c != nil; c = c.sibling {
			stack = append(stack, c)
		}
	}
	return nil
}

// settleStateQueues drops the applied updates from every state hook in the
// committed tree. Queues drain here rather than during render: an aborted or
// superseded pass must leave enqueued updates intact for the next attempt.
// The work loop runs pushes and commits on one goroutine, and any push
// restarts reconciliation from the committed root, so everything queued at
// this point has been applied by the render being committed.
func settleStateQueues(root *Fiber) {
	stack := []*Fiber{root}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f == nil {
			continue
		}
		for _, h := range f.hooks {
			if h.kind == hookState {
				h.queue.updates = nil
			}
		}
		stack = append(stack, f.sibling, f.child)
	}
}

// runUnmountCleanups invokes the stored cleanup handles of every effect hook
// in the subtree, in document order.
func (e *Engine) runUnmountCleanups(root *Fiber) {
	stack := []*Fiber{root}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f == nil {
			continue
		}
		for _, h := range f.hooks {
			if h.kind == hookEffect && h.cleanup != nil {
				h.cleanup()
				h.cleanup = nil
			}
		}
		if f != root {
			stack = append(stack, f.sibling)
		}
		stack = append(stack, f.child)
	}
}

// runEffects walks the committed tree and invokes every effect hook whose
// dependencies changed this render: previous cleanup first, then the
// callback, whose returned handle becomes the new cleanup. Alternate links
// are severed here; the previous tree has served its last diff.
func (e *Engine) runEffects(root *Fiber) int {
	count := 0
	stack := []*Fiber{root}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f == nil {
			continue
		}

		for _, h := range f.hooks {
			if h.kind != hookEffect || !h.changed {
				continue
			}
			if h.cleanup != nil {
				h.cleanup()
				h.cleanup = nil
			}
			if h.effect != nil {
				h.cleanup = h.effect()
			}
			h.changed = false
			count++
		}

		f.alternate = nil
		stack = append(stack, f.sibling, f.child)
	}
	return count
}
