package host

import (
	"reflect"
	"sort"
	"testing"

	"github.com/loom-ui/loom/pkg/element"
)

type change struct {
	op    string
	key   string
	value any
}

func collect(prev, next element.Props) []change {
	var out []change
	DiffProps(prev, next, PropVisitor{
		SetAttr:        func(k string, v any) { out = append(out, change{"set", k, v}) },
		RemoveAttr:     func(k string) { out = append(out, change{"remove", k, nil}) },
		AddListener:    func(e string, _ any) { out = append(out, change{"listen", e, nil}) },
		RemoveListener: func(e string, _ any) { out = append(out, change{"unlisten", e, nil}) },
		SetStyle:       func(p, v string) { out = append(out, change{"style", p, v}) },
		RemoveStyle:    func(p string) { out = append(out, change{"unstyle", p, nil}) },
	})
	return out
}

func sorted(cs []change) []change {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].op != cs[j].op {
			return cs[i].op < cs[j].op
		}
		return cs[i].key < cs[j].key
	})
	return cs
}

func TestDiffPropsAddedChangedRemoved(t *testing.T) {
	prev := element.Props{"id": "a", "class": "old", "title": "gone"}
	next := element.Props{"id": "a", "class": "new", "href": "/x"}

	got := sorted(collect(prev, next))
	want := sorted([]change{
		{"set", "class", "new"},
		{"set", "href", "/x"},
		{"remove", "title", nil},
	})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("diff = %v, want %v", got, want)
	}
}

func TestDiffPropsSkipsReservedKeys(t *testing.T) {
	prev := element.Props{element.ChildrenKey: "x", element.KeyKey: "k1"}
	next := element.Props{element.ChildrenKey: "y", element.KeyKey: "k2"}
	if got := collect(prev, next); len(got) != 0 {
		t.Errorf("reserved keys produced changes: %v", got)
	}
}

func TestDiffPropsRebindsListeners(t *testing.T) {
	handler := func() {}
	prev := element.Props{"onClick": handler}
	next := element.Props{"onClick": handler, "onInput": handler}

	got := sorted(collect(prev, next))
	want := sorted([]change{
		{"unlisten", "click", nil},
		{"listen", "click", nil},
		{"listen", "input", nil},
	})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("diff = %v, want %v", got, want)
	}
}

func TestDiffPropsStyleMerge(t *testing.T) {
	prev := element.Props{element.StyleKey: map[string]string{"color": "red", "margin": "4px"}}
	next := element.Props{element.StyleKey: map[string]string{"color": "blue", "padding": "2px"}}

	got := sorted(collect(prev, next))
	want := sorted([]change{
		{"style", "color", "blue"},
		{"style", "padding", "2px"},
		{"unstyle", "margin", nil},
	})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("diff = %v, want %v", got, want)
	}
}

func TestDiffPropsStyleMapOfAny(t *testing.T) {
	next := element.Props{element.StyleKey: map[string]any{"color": "red", "width": 10}}
	got := collect(nil, next)
	// Non-string values are ignored.
	if len(got) != 1 || got[0].op != "style" || got[0].key != "color" {
		t.Errorf("diff = %v", got)
	}
}

func TestDiffPropsIdenticalIsQuiet(t *testing.T) {
	props := element.Props{"id": "a", element.StyleKey: map[string]string{"color": "red"}}
	same := element.Props{"id": "a", element.StyleKey: map[string]string{"color": "red"}}
	if got := collect(props, same); len(got) != 0 {
		t.Errorf("identical props produced changes: %v", got)
	}
}

func TestIsListenerKey(t *testing.T) {
	cases := map[string]bool{
		"onClick": true,
		"onclick": true,
		"ONINPUT": true,
		"on":      false,
		"once":    true, // matches the prefix rule, hosts treat it as event "ce"
		"id":      false,
		"":        false,
	}
	for key, want := range cases {
		if got := IsListenerKey(key); got != want {
			t.Errorf("IsListenerKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestEventName(t *testing.T) {
	if got := EventName("onClick"); got != "click" {
		t.Errorf("EventName(onClick) = %q", got)
	}
	if got := EventName("onMouseDown"); got != "mousedown" {
		t.Errorf("EventName(onMouseDown) = %q", got)
	}
}

func TestValuesEqual(t *testing.T) {
	cases := []struct {
		a, b any
		want bool
	}{
		{"a", "a", true},
		{"a", "b", false},
		{1, 1, true},
		{1, int64(1), false},
		{int64(2), int64(2), true},
		{1.5, 1.5, true},
		{true, true, true},
		{nil, nil, true},
		{nil, "x", false},
		{[]int{1, 2}, []int{1, 2}, true},
		{map[string]int{"a": 1}, map[string]int{"a": 1}, true},
	}
	for _, c := range cases {
		if got := ValuesEqual(c.a, c.b); got != c.want {
			t.Errorf("ValuesEqual(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
