// Package host defines the contract the fiber engine needs from its
// environment to materialize elements into real nodes. The engine never
// touches host internals beyond this interface, so any target tree (an
// in-memory test tree, a remote browser DOM) can substitute without touching
// the reconciler.
package host

import "github.com/loom-ui/loom/pkg/element"

// Node is an opaque handle to a materialized host-tree node. Adapters choose
// the concrete type; the engine only stores and passes handles back.
type Node any

// Adapter materializes and mutates host-tree nodes on behalf of the engine.
// All methods are called from the engine's cooperative loop, never
// concurrently. Errors abort the in-flight render; the committed tree stays
// the last successful one.
type Adapter interface {
	// CreateNode creates a host node for the given kind with initial props
	// already applied. For KindText the node carries the literal under the
	// reserved "value" prop.
	CreateNode(kind element.Kind, tag string, props element.Props) (Node, error)

	// ApplyProps diffs prev against next and applies the changes to n:
	// plain properties set or reset, event listeners rewired, the nested
	// style map merged per property.
	ApplyProps(n Node, prev, next element.Props) error

	// AppendChild attaches child under parent.
	AppendChild(parent, child Node) error

	// RemoveChild detaches child from parent.
	RemoveChild(parent, child Node) error
}
