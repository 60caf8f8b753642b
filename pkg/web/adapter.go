package web

import (
	"fmt"

	"github.com/loom-ui/loom/pkg/element"
	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/host/memhost"
)

// RootID is the node ID of the client-side mount point.
const RootID uint64 = 0

// Adapter implements host.Adapter for a remote browser tree. Every mutation
// is applied to a server-side in-memory mirror (which keeps listener
// closures and powers HTML snapshots) and recorded as a patch for the
// client. Patches accumulate until the session flushes them after a commit.
type Adapter struct {
	mirror *memhost.Adapter
	nextID uint64
	ids    map[*memhost.Node]uint64
	nodes  map[uint64]*memhost.Node
	queue  []Patch

	// Container is the mirror node aliased to the client mount point.
	Container *memhost.Node
}

// NewAdapter creates a remote adapter with a fresh mirror container.
func NewAdapter() *Adapter {
	a := &Adapter{
		mirror: memhost.New(),
		nextID: RootID + 1,
		ids:    make(map[*memhost.Node]uint64),
		nodes:  make(map[uint64]*memhost.Node),
	}
	a.Container = memhost.NewContainer()
	a.ids[a.Container] = RootID
	a.nodes[RootID] = a.Container
	return a
}

// Drain returns the accumulated patches and resets the queue.
func (a *Adapter) Drain() []Patch {
	out := a.queue
	a.queue = nil
	return out
}

// NodeByID resolves a client node ID to its mirror node.
func (a *Adapter) NodeByID(id uint64) *memhost.Node {
	return a.nodes[id]
}

func (a *Adapter) idOf(hn host.Node) (uint64, *memhost.Node, error) {
	n, ok := hn.(*memhost.Node)
	if !ok {
		return 0, nil, fmt.Errorf("web: foreign node %T", hn)
	}
	id, ok := a.ids[n]
	if !ok {
		return 0, nil, fmt.Errorf("web: unregistered node %q", n.Tag)
	}
	return id, n, nil
}

// CreateNode implements host.Adapter.
func (a *Adapter) CreateNode(kind element.Kind, tag string, props element.Props) (host.Node, error) {
	hn, err := a.mirror.CreateNode(kind, tag, props)
	if err != nil {
		return nil, err
	}
	n := hn.(*memhost.Node)

	id := a.nextID
	a.nextID++
	a.ids[n] = id
	a.nodes[id] = n

	a.queue = append(a.queue, Patch{Op: PatchCreateNode, Node: id, Tag: n.Tag, Value: n.Text})
	// Replay the initial props the mirror already absorbed.
	a.emitPropPatches(id, nil, props)
	return n, nil
}

// ApplyProps implements host.Adapter.
func (a *Adapter) ApplyProps(hn host.Node, prev, next element.Props) error {
	id, n, err := a.idOf(hn)
	if err != nil {
		return err
	}
	if err := a.mirror.ApplyProps(hn, prev, next); err != nil {
		return err
	}
	if n.Tag == "#text" {
		a.queue = append(a.queue, Patch{Op: PatchSetText, Node: id, Value: n.Text})
		return nil
	}
	a.emitPropPatches(id, prev, next)
	return nil
}

// emitPropPatches translates a prop diff into client patches. Listener
// closures stay on the server; the client only learns which event types to
// forward.
func (a *Adapter) emitPropPatches(id uint64, prev, next element.Props) {
	host.DiffProps(prev, next, host.PropVisitor{
		SetAttr: func(key string, value any) {
			a.queue = append(a.queue, Patch{Op: PatchSetAttr, Node: id, Key: key, Value: fmt.Sprintf("%v", value)})
		},
		RemoveAttr: func(key string) {
			a.queue = append(a.queue, Patch{Op: PatchRemoveAttr, Node: id, Key: key})
		},
		AddListener: func(event string, _ any) {
			a.queue = append(a.queue, Patch{Op: PatchListen, Node: id, Key: event})
		},
		RemoveListener: func(event string, _ any) {
			a.queue = append(a.queue, Patch{Op: PatchUnlisten, Node: id, Key: event})
		},
		SetStyle: func(prop, value string) {
			a.queue = append(a.queue, Patch{Op: PatchSetStyle, Node: id, Key: prop, Value: value})
		},
		RemoveStyle: func(prop string) {
			a.queue = append(a.queue, Patch{Op: PatchRemoveStyle, Node: id, Key: prop})
		},
	})
}

// AppendChild implements host.Adapter.
func (a *Adapter) AppendChild(parent, child host.Node) error {
	pid, _, err := a.idOf(parent)
	if err != nil {
		return err
	}
	cid, _, err := a.idOf(child)
	if err != nil {
		return err
	}
	if err := a.mirror.AppendChild(parent, child); err != nil {
		return err
	}
	a.queue = append(a.queue, Patch{Op: PatchAppendChild, Node: cid, Parent: pid})
	return nil
}

// RemoveChild implements host.Adapter.
func (a *Adapter) RemoveChild(parent, child host.Node) error {
	pid, _, err := a.idOf(parent)
	if err != nil {
		return err
	}
	cid, cn, err := a.idOf(child)
	if err != nil {
		return err
	}
	if err := a.mirror.RemoveChild(parent, child); err != nil {
		return err
	}
	a.queue = append(a.queue, Patch{Op: PatchRemoveChild, Node: cid, Parent: pid})
	a.forget(cn)
	return nil
}

// forget drops ID registrations for a detached subtree.
func (a *Adapter) forget(n *memhost.Node) {
	if id, ok := a.ids[n]; ok {
		delete(a.ids, n)
		delete(a.nodes, id)
	}
	for _, c := range n.Children {
		a.forget(c)
	}
}
