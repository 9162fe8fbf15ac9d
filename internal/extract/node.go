// Package extract pulls structured records out of inconsistent
// public-record HTML. Pages are parsed into a small element tree and
// fields are located by label anchors, so a missing or rearranged block
// costs one field, never the whole record.
package extract

import (
	"html"
	"strings"
)

// Node is one element or text node in a parsed page.
type Node struct {
	Tag      string // empty for text nodes
	Attrs    map[string]string
	Text     string // text nodes only, entities decoded
	Parent   *Node
	Children []*Node
}

// voidElements never carry children and close themselves.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// rawTextElements swallow everything up to their closing tag.
var rawTextElements = map[string]bool{"script": true, "style": true}

// Parse builds an element tree from raw HTML. The parser is deliberately
// forgiving: unknown constructs are skipped, stray closing tags are
// ignored, and unclosed elements are closed implicitly at the end of
// input. That matches the quality of the pages it has to read.
func Parse(markup string) *Node {
	root := &Node{Tag: "#root", Attrs: map[string]string{}}
	current := root

	i := 0
	for i < len(markup) {
		lt := strings.IndexByte(markup[i:], '<')
		if lt < 0 {
			appendText(current, markup[i:])
			break
		}
		if lt > 0 {
			appendText(current, markup[i:i+lt])
		}
		i += lt

		switch {
		case strings.HasPrefix(markup[i:], "<!--"):
			end := strings.Index(markup[i:], "-->")
			if end < 0 {
				return root
			}
			i += end + len("-->")

		case strings.HasPrefix(markup[i:], "<!"), strings.HasPrefix(markup[i:], "<?"):
			end := strings.IndexByte(markup[i:], '>')
			if end < 0 {
				return root
			}
			i += end + 1

		case strings.HasPrefix(markup[i:], "</"):
			end := strings.IndexByte(markup[i:], '>')
			if end < 0 {
				return root
			}
			tag := strings.ToLower(strings.TrimSpace(markup[i+2 : i+end]))
			current = closeTag(current, root, tag)
			i += end + 1

		default:
			end := strings.IndexByte(markup[i:], '>')
			if end < 0 {
				return root
			}
			raw := markup[i+1 : i+end]
			i += end + 1

			selfClosing := strings.HasSuffix(raw, "/")
			raw = strings.TrimSuffix(raw, "/")
			tag, attrs := parseTag(raw)
			if tag == "" {
				continue
			}

			node := &Node{Tag: tag, Attrs: attrs, Parent: current}
			current.Children = append(current.Children, node)

			if rawTextElements[tag] {
				// Swallow raw content up to the closing tag. The scan folds
				// ASCII case only, over the original bytes; lowercasing the
				// remainder first can change byte offsets when the content
				// holds multi-byte case pairs.
				end := indexFoldASCII(markup[i:], "</"+tag)
				if end < 0 {
					return root
				}
				gt := strings.IndexByte(markup[i+end:], '>')
				if gt < 0 {
					return root
				}
				i += end + gt + 1
				continue
			}

			if !selfClosing && !voidElements[tag] {
				current = node
			}
		}
	}
	return root
}

// indexFoldASCII returns the first index of substr in s, comparing
// ASCII letters case-insensitively. Other bytes must match exactly.
func indexFoldASCII(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if equalFoldASCII(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func equalFoldASCII(a, b string) bool {
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func appendText(parent *Node, raw string) {
	text := html.UnescapeString(raw)
	if strings.TrimSpace(text) == "" {
		return
	}
	parent.Children = append(parent.Children, &Node{Text: text, Parent: parent})
}

// closeTag pops the open-element chain up to the nearest matching tag.
// A closing tag with no open counterpart is ignored.
func closeTag(current, root *Node, tag string) *Node {
	for n := current; n != root; n = n.Parent {
		if n.Tag == tag {
			return n.Parent
		}
	}
	return current
}

func parseTag(raw string) (string, map[string]string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	nameEnd := len(raw)
	for idx, r := range raw {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			nameEnd = idx
			break
		}
	}
	tag := strings.ToLower(raw[:nameEnd])
	attrs := map[string]string{}

	rest := raw[nameEnd:]
	for {
		rest = strings.TrimLeft(rest, " \t\n\r")
		if rest == "" {
			break
		}

		eq := -1
		nameLen := len(rest)
		for idx := 0; idx < len(rest); idx++ {
			c := rest[idx]
			if c == '=' {
				eq = idx
				nameLen = idx
				break
			}
			if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
				nameLen = idx
				break
			}
		}

		name := strings.ToLower(rest[:nameLen])
		if eq < 0 {
			if name != "" {
				attrs[name] = ""
			}
			rest = rest[nameLen:]
			continue
		}

		rest = rest[eq+1:]
		var value string
		if len(rest) > 0 && (rest[0] == '"' || rest[0] == '\'') {
			quote := rest[0]
			endQ := strings.IndexByte(rest[1:], quote)
			if endQ < 0 {
				value = rest[1:]
				rest = ""
			} else {
				value = rest[1 : 1+endQ]
				rest = rest[endQ+2:]
			}
		} else {
			sp := strings.IndexAny(rest, " \t\n\r")
			if sp < 0 {
				value = rest
				rest = ""
			} else {
				value = rest[:sp]
				rest = rest[sp:]
			}
		}
		if name != "" {
			attrs[name] = html.UnescapeString(value)
		}
	}
	return tag, attrs
}

// Attr returns an attribute value, or "" when absent.
func (n *Node) Attr(key string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

// HasClass reports whether the class attribute contains the given token.
func (n *Node) HasClass(class string) bool {
	for _, c := range strings.Fields(n.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// InnerText concatenates all descendant text, collapsing runs of
// whitespace to single spaces and trimming the ends.
func (n *Node) InnerText() string {
	var b strings.Builder
	n.collectText(&b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func (n *Node) collectText(b *strings.Builder) {
	if n.Tag == "" {
		b.WriteString(n.Text)
		b.WriteByte(' ')
		return
	}
	for _, c := range n.Children {
		c.collectText(b)
	}
}

// Find returns the first descendant (depth-first, document order)
// matching the predicate, or nil.
func (n *Node) Find(pred func(*Node) bool) *Node {
	for _, c := range n.Children {
		if c.Tag != "" && pred(c) {
			return c
		}
		if found := c.Find(pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant matching the predicate in document
// order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(node *Node) {
		for _, c := range node.Children {
			if c.Tag != "" && pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// NextSibling returns the next element sibling, skipping text nodes.
func (n *Node) NextSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	seen := false
	for _, c := range n.Parent.Children {
		if c == n {
			seen = true
			continue
		}
		if seen && c.Tag != "" {
			return c
		}
	}
	return nil
}

// NextSiblingTag returns the next element sibling with the given tag.
func (n *Node) NextSiblingTag(tag string) *Node {
	if n.Parent == nil {
		return nil
	}
	seen := false
	for _, c := range n.Parent.Children {
		if c == n {
			seen = true
			continue
		}
		if seen && c.Tag == tag {
			return c
		}
	}
	return nil
}

// ByTag matches elements by tag name.
func ByTag(tag string) func(*Node) bool {
	return func(n *Node) bool { return n.Tag == tag }
}

// ByTagClass matches elements carrying a class token.
func ByTagClass(tag, class string) func(*Node) bool {
	return func(n *Node) bool { return n.Tag == tag && n.HasClass(class) }
}

// ByTagText matches elements whose text equals the given string,
// case-insensitively after whitespace normalization.
func ByTagText(tag, text string) func(*Node) bool {
	return func(n *Node) bool {
		return n.Tag == tag && strings.EqualFold(n.InnerText(), text)
	}
}
