package export

import (
	"strings"
	"testing"

	"github.com/loom-ui/loom/pkg/element"
	"github.com/loom-ui/loom/pkg/fiber"
	"github.com/loom-ui/loom/pkg/host/memhost"
)

// renderHTML commits an element tree into a fresh mirror and serializes it.
func renderHTML(t *testing.T, el *element.Element) string {
	t.Helper()
	adapter := memhost.New()
	container := memhost.NewContainer()
	e := fiber.New(adapter)
	e.Render(el, container)
	if err := e.Err(); err != nil {
		t.Fatalf("render: %v", err)
	}
	return HTML(container)
}

func TestHTMLBasicTree(t *testing.T) {
	got := renderHTML(t, element.Div(element.Props{"id": "app"},
		element.H1(nil, "Title"),
		element.Ul(nil, element.Li(nil, "one"), element.Li(nil, "two")),
	))
	want := `<div id="app"><h1>Title</h1><ul><li>one</li><li>two</li></ul></div>`
	if got != want {
		t.Errorf("HTML = %q, want %q", got, want)
	}
}

func TestHTMLSortsAttributes(t *testing.T) {
	got := renderHTML(t, element.Div(element.Props{"id": "x", "class": "c", "aria-label": "l"}))
	want := `<div aria-label="l" class="c" id="x"></div>`
	if got != want {
		t.Errorf("HTML = %q, want %q", got, want)
	}
}

func TestHTMLStyleAttribute(t *testing.T) {
	got := renderHTML(t, element.Div(element.Props{
		element.StyleKey: element.Style("margin", "4px", "color", "red"),
	}))
	want := `<div style="color:red;margin:4px"></div>`
	if got != want {
		t.Errorf("HTML = %q, want %q", got, want)
	}
}

func TestHTMLVoidTags(t *testing.T) {
	got := renderHTML(t, element.Div(nil, element.Img(element.Props{"src": "/x.png"}), element.New("br", nil)))
	want := `<div><img src="/x.png"/><br/></div>`
	if got != want {
		t.Errorf("HTML = %q, want %q", got, want)
	}
}

func TestHTMLEscapesTextAndAttrs(t *testing.T) {
	got := renderHTML(t, element.Div(element.Props{"title": `a"b<c`}, "<script>&'"))
	if strings.Contains(got, "<script>") {
		t.Fatalf("unescaped text in %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;&amp;&#39;") {
		t.Errorf("text escaping wrong: %q", got)
	}
	if !strings.Contains(got, `title="a&quot;b&lt;c"`) {
		t.Errorf("attr escaping wrong: %q", got)
	}
}

func TestHTMLAttrEscapesWhitespace(t *testing.T) {
	got := renderHTML(t, element.Div(element.Props{"title": "a\nb\tc"}))
	if !strings.Contains(got, "a&#10;b&#9;c") {
		t.Errorf("whitespace escaping wrong: %q", got)
	}
}

func TestHTMLOmitsResetAttributes(t *testing.T) {
	adapter := memhost.New()
	container := memhost.NewContainer()
	e := fiber.New(adapter)

	e.Render(element.Div(element.Props{"title": "x"}), container)
	e.Render(element.Div(element.Props{}), container)
	if err := e.Err(); err != nil {
		t.Fatalf("render: %v", err)
	}

	got := HTML(container)
	if got != "<div></div>" {
		t.Errorf("HTML = %q, want bare div after attr reset", got)
	}
}

func TestHTMLListenersInvisible(t *testing.T) {
	got := renderHTML(t, element.Button(element.Props{"onClick": func() {}}, "go"))
	if got != "<button>go</button>" {
		t.Errorf("HTML = %q, listeners must not serialize", got)
	}
}
