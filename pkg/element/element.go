package element

import "fmt"

// Kind is the element type discriminator.
type Kind uint8

const (
	KindHost      Kind = iota // Host-tree element (<div>, <button>, etc.)
	KindText                  // Plain text node
	KindComponent             // Function component
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindHost:
		return "Host"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Reserved prop keys.
const (
	// ChildrenKey is reserved for callers that place children inside Props.
	// The engine keeps children as a struct field; prop diffing skips this key.
	ChildrenKey = "children"

	// ValueKey carries the literal value of a synthetic text element.
	ValueKey = "value"

	// StyleKey holds a nested style map applied via per-property merge.
	StyleKey = "style"

	// KeyKey is accepted but unused: reconciliation is positional.
	KeyKey = "key"
)

// Props holds attributes and event handlers.
type Props map[string]any

// Element is an immutable description of a desired UI node.
// Elements are pure data: they are created fresh every render pass and
// discarded once reconciliation has consumed them.
type Element struct {
	Kind     Kind
	Tag      string     // For KindHost
	Comp     any        // For KindComponent; a fiber.Component function
	Props    Props      // Attributes and event handlers
	Children []*Element // Child elements, already flattened
}

// Component placeholder: the element model stores component functions as an
// opaque value so it carries no engine dependency. The fiber engine defines
// the concrete function type and compares components by function identity
// during reconciliation.

// New creates an Element. Children may be *Element values, nested slices
// ([]*Element or []any, flattened to any depth), or any other value, which
// is wrapped into a synthetic text element carrying the literal under the
// reserved "value" prop. Nil children are dropped so conditional expressions
// compose naturally.
//
// No validation of kind or props happens here; malformed trees surface later,
// at reconciliation or commit.
func New(tag string, props Props, children ...any) *Element {
	if props == nil {
		props = make(Props)
	}
	return &Element{
		Kind:     KindHost,
		Tag:      tag,
		Props:    props,
		Children: flatten(children, nil),
	}
}

// NewComponent creates a component element. The component function is
// compared by identity during reconciliation. Prefer the typed constructor
// in pkg/fiber, which keeps the function signature checked.
func NewComponent(comp any, props Props, children ...any) *Element {
	if props == nil {
		props = make(Props)
	}
	return &Element{
		Kind:     KindComponent,
		Comp:     comp,
		Props:    props,
		Children: flatten(children, nil),
	}
}

// NewText creates a synthetic text element for a literal value.
func NewText(value any) *Element {
	return &Element{
		Kind:  KindText,
		Props: Props{ValueKey: value},
	}
}

// TextValue returns the text element's literal rendered as a string.
func (e *Element) TextValue() string {
	if e == nil || e.Props == nil {
		return ""
	}
	v, ok := e.Props[ValueKey]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// flatten appends children to dst, descending into nested containers and
// wrapping non-Element values as text elements.
func flatten(children []any, dst []*Element) []*Element {
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *Element:
			if v != nil {
				dst = append(dst, v)
			}
		case []*Element:
			for _, el := range v {
				if el != nil {
					dst = append(dst, el)
				}
			}
		case []any:
			dst = flatten(v, dst)
		default:
			dst = append(dst, NewText(v))
		}
	}
	return dst
}
