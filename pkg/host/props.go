package host

import (
	"reflect"
	"strings"

	"github.com/loom-ui/loom/pkg/element"
)

// PropVisitor receives the individual changes produced by DiffProps.
// Adapters implement it once and reuse the classification rules instead of
// re-deriving them per target tree.
type PropVisitor struct {
	// SetAttr is called for a plain property that was added or changed.
	SetAttr func(key string, value any)

	// RemoveAttr is called for a plain property present in prev but absent
	// from next. Adapters reset the property to the empty value rather than
	// deleting it.
	RemoveAttr func(key string)

	// AddListener is called for a new or replaced event handler. The event
	// name is the lower-cased key without the "on" prefix.
	AddListener func(event string, handler any)

	// RemoveListener is called for a handler removed or about to be replaced.
	RemoveListener func(event string, handler any)

	// SetStyle is called per style-map property that was added or changed.
	SetStyle func(prop, value string)

	// RemoveStyle is called per style-map property that disappeared.
	RemoveStyle func(prop string)
}

// DiffProps walks two prop sets and reports changes to the visitor.
// Keys fall into three classes: the reserved children and key props are
// skipped, "on"-prefixed keys are event listeners, the reserved style prop
// is a nested map merged per property, and everything else is a plain
// property assignment.
//
// Listener identity is compared loosely (function values never compare
// equal), so a listener present on both sides is removed and re-added. This
// matches the behavior hosts need when handler closures capture fresh state
// each render.
func DiffProps(prev, next element.Props, v PropVisitor) {
	// Removed or replaced listeners first so re-adds are clean.
	for key, old := range prev {
		if !IsListenerKey(key) {
			continue
		}
		if v.RemoveListener != nil {
			v.RemoveListener(EventName(key), old)
		}
	}
	for key, handler := range next {
		if !IsListenerKey(key) {
			continue
		}
		if v.AddListener != nil {
			v.AddListener(EventName(key), handler)
		}
	}

	// Style map merge.
	prevStyle := styleMap(prev)
	nextStyle := styleMap(next)
	for prop := range prevStyle {
		if _, ok := nextStyle[prop]; !ok && v.RemoveStyle != nil {
			v.RemoveStyle(prop)
		}
	}
	for prop, val := range nextStyle {
		if prevStyle[prop] != val && v.SetStyle != nil {
			v.SetStyle(prop, val)
		}
	}

	// Plain properties.
	for key, old := range prev {
		if skipKey(key) || IsListenerKey(key) {
			continue
		}
		nextVal, ok := next[key]
		if !ok {
			if v.RemoveAttr != nil {
				v.RemoveAttr(key)
			}
		} else if !ValuesEqual(old, nextVal) && v.SetAttr != nil {
			v.SetAttr(key, nextVal)
		}
	}
	for key, val := range next {
		if skipKey(key) || IsListenerKey(key) {
			continue
		}
		if _, ok := prev[key]; !ok && v.SetAttr != nil {
			v.SetAttr(key, val)
		}
	}
}

// IsListenerKey reports whether the prop key names an event listener.
// Case-insensitive on the prefix so onClick and onclick both match.
func IsListenerKey(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// EventName maps a listener prop key to its event name ("onClick" -> "click").
func EventName(key string) string {
	return strings.ToLower(key[2:])
}

func skipKey(key string) bool {
	return key == element.ChildrenKey || key == element.KeyKey || key == element.StyleKey
}

func styleMap(props element.Props) map[string]string {
	if props == nil {
		return nil
	}
	switch m := props[element.StyleKey].(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, v := range m {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return nil
	}
}

// ValuesEqual compares two prop values with fast paths for common types and
// a reflect fallback for the rest.
func ValuesEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}
