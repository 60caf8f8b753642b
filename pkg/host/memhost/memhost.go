// Package memhost provides an in-memory host tree: a minimal DOM-like target
// used by tests and by the snapshot exporter. It implements the full
// host.Adapter contract, including listener wiring and style merging, so
// engine behavior can be asserted without a browser.
package memhost

import (
	"errors"
	"fmt"

	"github.com/loom-ui/loom/pkg/element"
	"github.com/loom-ui/loom/pkg/host"
)

// ErrDetached is returned when removing a child that is not under the given
// parent.
var ErrDetached = errors.New("memhost: node is not a child of parent")

// Listener is an event callback attached to a node.
type Listener func(event Event)

// Event is delivered to listeners fired via Fire.
type Event struct {
	Type   string
	Target *Node
}

// Node is one node of the in-memory tree.
type Node struct {
	Tag       string
	Text      string
	Attrs     map[string]any
	Styles    map[string]string
	Listeners map[string]Listener
	Children  []*Node
	ParentN   *Node
}

// NewContainer returns a detached root container node, the equivalent of the
// DOM element a caller would pass to render().
func NewContainer() *Node {
	return &Node{Tag: "root", Attrs: map[string]any{}, Styles: map[string]string{}, Listeners: map[string]Listener{}}
}

// Fire invokes the node's listener for the given event type, if any.
// Returns false when no listener is attached.
func (n *Node) Fire(eventType string) bool {
	l, ok := n.Listeners[eventType]
	if !ok {
		return false
	}
	l(Event{Type: eventType, Target: n})
	return true
}

// FirstChild returns the node's first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Find returns the first node in the subtree with the given tag, depth-first.
func (n *Node) Find(tag string) *Node {
	if n.Tag == tag {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll collects every node in the subtree with the given tag, depth-first.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	if n.Tag == tag {
		out = append(out, n)
	}
	for _, c := range n.Children {
		out = append(out, c.FindAll(tag)...)
	}
	return out
}

// TextContent concatenates the text of the subtree in document order.
func (n *Node) TextContent() string {
	if n.Tag == "#text" {
		return n.Text
	}
	var out string
	for _, c := range n.Children {
		out += c.TextContent()
	}
	return out
}

// Adapter implements host.Adapter against the in-memory tree. It counts the
// user-visible mutations it performs (attribute and style writes, appends,
// removes) so tests can assert that a no-op commit touches nothing.
type Adapter struct {
	// FailCreate, when set, makes CreateNode fail for the given tag.
	// Used by tests exercising abort-on-host-error behavior.
	FailCreate string

	created    int
	AttrWrites int
	StyleWrites int
	Appends    int
	Removes    int
}

// New returns a fresh adapter.
func New() *Adapter { return &Adapter{} }

// Created reports how many nodes this adapter has materialized.
func (a *Adapter) Created() int { return a.created }

// Mutations reports the total user-visible mutations applied so far.
// Listener rewiring is excluded: handlers are re-bound every update because
// closures capture fresh state each render.
func (a *Adapter) Mutations() int {
	return a.AttrWrites + a.StyleWrites + a.Appends + a.Removes
}

// ResetCounters zeroes the mutation counters.
func (a *Adapter) ResetCounters() {
	a.AttrWrites, a.StyleWrites, a.Appends, a.Removes = 0, 0, 0, 0
}

// CreateNode implements host.Adapter.
func (a *Adapter) CreateNode(kind element.Kind, tag string, props element.Props) (host.Node, error) {
	if kind == element.KindText {
		n := &Node{Tag: "#text"}
		if v, ok := props[element.ValueKey]; ok && v != nil {
			n.Text = fmt.Sprintf("%v", v)
		}
		a.created++
		return n, nil
	}
	if tag == "" {
		return nil, fmt.Errorf("memhost: cannot create node with empty tag")
	}
	if a.FailCreate != "" && tag == a.FailCreate {
		return nil, fmt.Errorf("memhost: create %q failed", tag)
	}
	n := &Node{
		Tag:       tag,
		Attrs:     map[string]any{},
		Styles:    map[string]string{},
		Listeners: map[string]Listener{},
	}
	a.created++
	if err := a.ApplyProps(n, nil, props); err != nil {
		return nil, err
	}
	return n, nil
}

// ApplyProps implements host.Adapter via the shared diff walker.
func (a *Adapter) ApplyProps(hn host.Node, prev, next element.Props) error {
	n, ok := hn.(*Node)
	if !ok {
		return fmt.Errorf("memhost: foreign node %T", hn)
	}
	if n.Tag == "#text" {
		// Text nodes only carry the literal value.
		if v, ok := next[element.ValueKey]; ok && v != nil {
			n.Text = fmt.Sprintf("%v", v)
		} else {
			n.Text = ""
		}
		return nil
	}
	host.DiffProps(prev, next, host.PropVisitor{
		SetAttr: func(key string, value any) {
			n.Attrs[key] = value
			a.AttrWrites++
		},
		RemoveAttr: func(key string) {
			// Previously set properties reset to empty, not deleted.
			n.Attrs[key] = ""
			a.AttrWrites++
		},
		AddListener: func(event string, handler any) {
			switch h := handler.(type) {
			case Listener:
				n.Listeners[event] = h
			case func(Event):
				n.Listeners[event] = h
			case func():
				n.Listeners[event] = func(Event) { h() }
			}
		},
		RemoveListener: func(event string, _ any) {
			delete(n.Listeners, event)
		},
		SetStyle: func(prop, value string) {
			n.Styles[prop] = value
			a.StyleWrites++
		},
		RemoveStyle: func(prop string) {
			delete(n.Styles, prop)
			a.StyleWrites++
		},
	})
	return nil
}

// AppendChild implements host.Adapter.
func (a *Adapter) AppendChild(parent, child host.Node) error {
	p, ok := parent.(*Node)
	if !ok {
		return fmt.Errorf("memhost: foreign parent %T", parent)
	}
	c, ok := child.(*Node)
	if !ok {
		return fmt.Errorf("memhost: foreign child %T", child)
	}
	c.ParentN = p
	p.Children = append(p.Children, c)
	a.Appends++
	return nil
}

// RemoveChild implements host.Adapter.
func (a *Adapter) RemoveChild(parent, child host.Node) error {
	p, ok := parent.(*Node)
	if !ok {
		return fmt.Errorf("memhost: foreign parent %T", parent)
	}
	c, ok := child.(*Node)
	if !ok {
		return fmt.Errorf("memhost: foreign child %T", child)
	}
	for i, existing := range p.Children {
		if existing == c {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			c.ParentN = nil
			a.Removes++
			return nil
		}
	}
	return ErrDetached
}
