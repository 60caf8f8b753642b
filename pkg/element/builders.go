package element

// Convenience builders for common host tags. Each accepts props followed by
// any mix of children accepted by New.

func Div(props Props, children ...any) *Element    { return New("div", props, children...) }
func Span(props Props, children ...any) *Element   { return New("span", props, children...) }
func P(props Props, children ...any) *Element      { return New("p", props, children...) }
func H1(props Props, children ...any) *Element     { return New("h1", props, children...) }
func H2(props Props, children ...any) *Element     { return New("h2", props, children...) }
func H3(props Props, children ...any) *Element     { return New("h3", props, children...) }
func Ul(props Props, children ...any) *Element     { return New("ul", props, children...) }
func Ol(props Props, children ...any) *Element     { return New("ol", props, children...) }
func Li(props Props, children ...any) *Element     { return New("li", props, children...) }
func A(props Props, children ...any) *Element      { return New("a", props, children...) }
func Button(props Props, children ...any) *Element { return New("button", props, children...) }
func Input(props Props, children ...any) *Element  { return New("input", props, children...) }
func Form(props Props, children ...any) *Element   { return New("form", props, children...) }
func Img(props Props, children ...any) *Element    { return New("img", props, children...) }
func Pre(props Props, children ...any) *Element    { return New("pre", props, children...) }
func Code(props Props, children ...any) *Element   { return New("code", props, children...) }

// Text creates a text element from a literal value.
func Text(value any) *Element { return NewText(value) }

// Style builds a nested style map prop value.
func Style(pairs ...string) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = pairs[i+1]
	}
	return m
}
