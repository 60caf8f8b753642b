package memhost

import (
	"testing"

	"github.com/loom-ui/loom/pkg/element"
)

func TestCreateNodeElement(t *testing.T) {
	a := New()
	hn, err := a.CreateNode(element.KindHost, "div", element.Props{"id": "x", "onClick": func() {}})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	n := hn.(*Node)
	if n.Tag != "div" {
		t.Errorf("tag = %q", n.Tag)
	}
	if n.Attrs["id"] != "x" {
		t.Errorf("attrs = %v", n.Attrs)
	}
	if _, ok := n.Listeners["click"]; !ok {
		t.Error("click listener not wired")
	}
	if a.Created() != 1 {
		t.Errorf("created = %d", a.Created())
	}
}

func TestCreateNodeText(t *testing.T) {
	a := New()
	hn, err := a.CreateNode(element.KindText, "", element.Props{element.ValueKey: 42})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	n := hn.(*Node)
	if n.Tag != "#text" || n.Text != "42" {
		t.Errorf("node = %+v", n)
	}
}

func TestCreateNodeEmptyTagFails(t *testing.T) {
	a := New()
	if _, err := a.CreateNode(element.KindHost, "", nil); err == nil {
		t.Error("expected error for empty tag")
	}
}

func TestCreateNodeFailureHook(t *testing.T) {
	a := New()
	a.FailCreate = "span"
	if _, err := a.CreateNode(element.KindHost, "span", nil); err == nil {
		t.Error("expected injected failure")
	}
	if _, err := a.CreateNode(element.KindHost, "div", nil); err != nil {
		t.Errorf("div should still create: %v", err)
	}
}

func TestApplyPropsText(t *testing.T) {
	a := New()
	hn, _ := a.CreateNode(element.KindText, "", element.Props{element.ValueKey: "old"})
	if err := a.ApplyProps(hn, nil, element.Props{element.ValueKey: "new"}); err != nil {
		t.Fatalf("ApplyProps: %v", err)
	}
	if got := hn.(*Node).Text; got != "new" {
		t.Errorf("text = %q", got)
	}
}

func TestApplyPropsRemovedAttrResetsToEmpty(t *testing.T) {
	a := New()
	hn, _ := a.CreateNode(element.KindHost, "div", element.Props{"title": "x"})
	if err := a.ApplyProps(hn, element.Props{"title": "x"}, element.Props{}); err != nil {
		t.Fatalf("ApplyProps: %v", err)
	}
	n := hn.(*Node)
	v, ok := n.Attrs["title"]
	if !ok || v != "" {
		t.Errorf("removed attr = %v (present %v), want empty string", v, ok)
	}
}

func TestApplyPropsForeignNode(t *testing.T) {
	a := New()
	if err := a.ApplyProps("not a node", nil, nil); err == nil {
		t.Error("expected foreign node error")
	}
}

func TestAppendAndRemoveChild(t *testing.T) {
	a := New()
	root := NewContainer()
	hn, _ := a.CreateNode(element.KindHost, "div", nil)
	child := hn.(*Node)

	if err := a.AppendChild(root, child); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}
	if root.FirstChild() != child || child.ParentN != root {
		t.Error("child not linked")
	}

	if err := a.RemoveChild(root, child); err != nil {
		t.Fatalf("RemoveChild: %v", err)
	}
	if len(root.Children) != 0 || child.ParentN != nil {
		t.Error("child not unlinked")
	}

	if err := a.RemoveChild(root, child); err != ErrDetached {
		t.Errorf("second remove err = %v, want ErrDetached", err)
	}
}

func TestFireListener(t *testing.T) {
	a := New()
	var fired *Node
	hn, _ := a.CreateNode(element.KindHost, "button", element.Props{
		"onClick": func(e Event) { fired = e.Target },
	})
	n := hn.(*Node)

	if !n.Fire("click") {
		t.Fatal("Fire returned false for wired event")
	}
	if fired != n {
		t.Error("event target mismatch")
	}
	if n.Fire("keydown") {
		t.Error("Fire returned true for unwired event")
	}
}

func TestMutationCountersExcludeListeners(t *testing.T) {
	a := New()
	hn, _ := a.CreateNode(element.KindHost, "div", element.Props{"onClick": func() {}})
	a.ResetCounters()

	prev := element.Props{"onClick": func() {}}
	next := element.Props{"onClick": func() {}}
	if err := a.ApplyProps(hn, prev, next); err != nil {
		t.Fatalf("ApplyProps: %v", err)
	}
	if got := a.Mutations(); got != 0 {
		t.Errorf("listener rebind counted as %d mutations, want 0", got)
	}
}

func TestFindAndTextContent(t *testing.T) {
	a := New()
	root := NewContainer()

	div, _ := a.CreateNode(element.KindHost, "div", nil)
	txt, _ := a.CreateNode(element.KindText, "", element.Props{element.ValueKey: "hello"})
	li1, _ := a.CreateNode(element.KindHost, "li", nil)
	li2, _ := a.CreateNode(element.KindHost, "li", nil)

	_ = a.AppendChild(root, div)
	_ = a.AppendChild(div, txt)
	_ = a.AppendChild(div, li1)
	_ = a.AppendChild(div, li2)

	if root.Find("li") != li1.(*Node) {
		t.Error("Find returned wrong node")
	}
	if got := len(root.FindAll("li")); got != 2 {
		t.Errorf("FindAll found %d, want 2", got)
	}
	if got := root.TextContent(); got != "hello" {
		t.Errorf("TextContent = %q", got)
	}
}
