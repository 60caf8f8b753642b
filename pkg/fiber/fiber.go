package fiber

import (
	"reflect"

	"github.com/loom-ui/loom/pkg/element"
	"github.com/loom-ui/loom/pkg/host"
)

// EffectTag is the pending host-tree action recorded on a fiber during
// reconciliation and consumed during commit.
type EffectTag uint8

const (
	EffectNone      EffectTag = iota // No host action
	EffectPlacement                  // Append a newly created host node
	EffectUpdate                     // Diff and apply props on an existing node
	EffectDeletion                   // Remove the subtree's host nodes
)

// String returns the string representation of the EffectTag.
func (t EffectTag) String() string {
	switch t {
	case EffectNone:
		return "None"
	case EffectPlacement:
		return "Placement"
	case EffectUpdate:
		return "Update"
	case EffectDeletion:
		return "Deletion"
	default:
		return "Unknown"
	}
}

// Fiber is a mutable work/record node tracking one tree position across
// renders. Fibers link through parent/child/sibling for iterative traversal
// and through alternate to the same position in the previously committed
// tree. At most two fiber trees exist at a time: the committed tree and the
// work-in-progress tree being built; the committed tree is never mutated in
// place.
type Fiber struct {
	kind     element.Kind
	tag      string
	comp     any
	props    element.Props
	children []*element.Element // desired children for host/text fibers

	// hostNode is set exactly when the fiber is not a component fiber;
	// component fibers delegate host identity to their nearest host
	// descendant.
	hostNode host.Node

	parent    *Fiber
	child     *Fiber
	sibling   *Fiber
	alternate *Fiber

	effect EffectTag
	hooks  []*hook
}

// Kind returns the fiber's element kind.
func (f *Fiber) Kind() element.Kind { return f.kind }

// Tag returns the host tag for host fibers.
func (f *Fiber) Tag() string { return f.tag }

// Props returns the fiber's props for the current render.
func (f *Fiber) Props() element.Props { return f.props }

// HostNode returns the fiber's materialized host handle, nil for component
// fibers.
func (f *Fiber) HostNode() host.Node { return f.hostNode }

// Effect returns the fiber's pending effect tag.
func (f *Fiber) Effect() EffectTag { return f.effect }

// Child returns the fiber's first child.
func (f *Fiber) Child() *Fiber { return f.child }

// Sibling returns the fiber's next sibling.
func (f *Fiber) Sibling() *Fiber { return f.sibling }

// Component is a function component. It is invoked with the render context
// for its fiber during reconciliation; hook calls are valid only inside this
// synchronous evaluation, unconditionally and in the same order each render.
type Component func(ctx *Ctx, props element.Props) *element.Element

// NewComponent creates a component element with a checked function type.
func NewComponent(comp Component, props element.Props, children ...any) *element.Element {
	return element.NewComponent(comp, props, children...)
}

// componentFunc extracts the component function from an element's opaque
// Comp value.
func componentFunc(v any) (Component, bool) {
	switch fn := v.(type) {
	case Component:
		return fn, true
	case func(*Ctx, element.Props) *element.Element:
		return fn, true
	default:
		return nil, false
	}
}

// sameComponent compares two component values by function identity.
func sameComponent(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Func || vb.Kind() != reflect.Func {
		return false
	}
	return va.Pointer() == vb.Pointer()
}

// sameType reports whether the old fiber and the new element describe the
// same node type at a position: identical kinds, with host tags compared by
// value and component functions by identity.
func sameType(old *Fiber, el *element.Element) bool {
	if old == nil || el == nil || old.kind != el.Kind {
		return false
	}
	switch el.Kind {
	case element.KindHost:
		return old.tag == el.Tag
	case element.KindComponent:
		return sameComponent(old.comp, el.Comp)
	default: // KindText
		return true
	}
}

// nextUnitAfter returns the next unit of work in depth-first pre-order:
// the fiber's child if present, else the nearest ancestor's sibling.
func nextUnitAfter(f *Fiber) *Fiber {
	if f.child != nil {
		return f.child
	}
	for n := f; n != nil; n = n.parent {
		if n.sibling != nil {
			return n.sibling
		}
	}
	return nil
}
