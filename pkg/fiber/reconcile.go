package fiber

import "github.com/loom-ui/loom/pkg/element"

// reconcileChildren diffs the new element list against the previous fibers
// (reached through wip.alternate) and builds wip's child/sibling chain.
//
// The diff is positional and single-pass, O(n) in child count, with no keyed
// matching beyond type identity at the same index: same type at an index
// reuses the old fiber's host node as an update, a type change tears the old
// subtree down and builds fresh, trailing old fibers become deletions and
// trailing new elements become placements. Subtrees under a type change are
// never diffed internally.
func (e *Engine) reconcileChildren(wip *Fiber, elements []*element.Element) {
	var oldFiber *Fiber
	if wip.alternate != nil {
		oldFiber = wip.alternate.child
	}

	index := 0
	var prevSibling *Fiber

	for index < len(elements) || oldFiber != nil {
		var el *element.Element
		if index < len(elements) {
			el = elements[index]
		}

		same := sameType(oldFiber, el)

		var newFiber *Fiber
		switch {
		case same:
			newFiber = &Fiber{
				kind:      oldFiber.kind,
				tag:       oldFiber.tag,
				comp:      el.Comp,
				props:     el.Props,
				children:  el.Children,
				hostNode:  oldFiber.hostNode,
				parent:    wip,
				alternate: oldFiber,
				effect:    EffectUpdate,
			}
		case el != nil:
			newFiber = &Fiber{
				kind:     el.Kind,
				tag:      el.Tag,
				comp:     el.Comp,
				props:    el.Props,
				children: el.Children,
				parent:   wip,
				effect:   EffectPlacement,
			}
		}

		if oldFiber != nil && !same {
			// The whole old subtree goes; it is destroyed host-side during
			// commit, not here.
			oldFiber.effect = EffectDeletion
			e.deletions = append(e.deletions, oldFiber)
		}

		if oldFiber != nil {
			oldFiber = oldFiber.sibling
		}

		if index == 0 {
			wip.child = newFiber
		} else if newFiber != nil && prevSibling != nil {
			prevSibling.sibling = newFiber
		}
		if newFiber != nil {
			prevSibling = newFiber
		}
		index++
	}
}
