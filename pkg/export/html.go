// Package export renders a committed in-memory host tree to HTML and stores
// snapshots through a pluggable store (in-memory for tests, S3 for real
// deployments). Snapshots are a host-side convenience around the engine, not
// part of the render lifecycle.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/loom-ui/loom/pkg/host/memhost"
)

// voidTags are serialized without a closing tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// HTML serializes the node's subtree as an HTML fragment. The container
// node itself is not emitted, only its children, mirroring what a browser
// container would display. Attributes are written in sorted order for
// stable output.
func HTML(n *memhost.Node) string {
	var b strings.Builder
	for _, c := range n.Children {
		writeNode(&b, c)
	}
	return b.String()
}

func writeNode(b *strings.Builder, n *memhost.Node) {
	if n.Tag == "#text" {
		b.WriteString(escapeHTML(n.Text))
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)

	keys := make([]string, 0, len(n.Attrs))
	for k, v := range n.Attrs {
		if v == nil || v == "" {
			continue // reset properties drop out of the serialized form
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, ` %s="%s"`, k, escapeAttr(fmt.Sprintf("%v", n.Attrs[k])))
	}

	if len(n.Styles) > 0 {
		props := make([]string, 0, len(n.Styles))
		for p := range n.Styles {
			props = append(props, p)
		}
		sort.Strings(props)
		var style strings.Builder
		for _, p := range props {
			if style.Len() > 0 {
				style.WriteByte(';')
			}
			style.WriteString(p)
			style.WriteByte(':')
			style.WriteString(n.Styles[p])
		}
		fmt.Fprintf(b, ` style="%s"`, escapeAttr(style.String()))
	}

	if voidTags[n.Tag] {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	for _, c := range n.Children {
		writeNode(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// escapeAttr escapes text for safe inclusion in attribute values, including
// whitespace characters that could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
