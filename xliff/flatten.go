package xliff

import (
	"fmt"
	"strings"

	"github.com/minios-linux/xlfsync/localefile"
)

// NodeKind identifies the variant of a content Node.
type NodeKind int

const (
	// KindText is literal character data.
	KindText NodeKind = iota
	// KindStandalone is a standalone placeholder (<ph/> in 2.0, <x/> in 1.2)
	// standing in for an interpolation, ICU expression or void HTML tag.
	KindStandalone
	// KindSpan is paired markup wrapping nested content (<pc>, <g>, <mrk>).
	KindSpan
	// KindMarker is any other inline code (<sc>, <ec>, <bx>, <ex>, <bpt>,
	// <ept>, <it>, <sm>, <em>).
	KindMarker
)

func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindStandalone:
		return "standalone"
	case KindSpan:
		return "span"
	case KindMarker:
		return "marker"
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// Node is one item of a source or target content sequence.
type Node struct {
	Kind NodeKind

	// Text is the character data (KindText).
	Text string

	// Element is the local name of the inline element (all but KindText).
	Element string
	// ID is the id attribute of the inline element.
	ID string
	// Name is the placeholder name: equiv (2.0) falling back to id (1.2) for
	// KindStandalone, equivStart for KindSpan.
	Name string
	// Display is the disp / equiv-text attribute, i.e. the original markup.
	Display string
	// Children is the nested content of a KindSpan.
	Children Content
}

// Content is an ordered sequence of Nodes.
type Content []Node

// Text returns a Content holding the literal s.
func Text(s string) Content {
	return Content{{Kind: KindText, Text: s}}
}

// appendText appends s, merging it into a trailing text node.
func (c Content) appendText(s string) Content {
	if n := len(c); n > 0 && c[n-1].Kind == KindText {
		c[n-1].Text += s
		return c
	}
	return append(c, Node{Kind: KindText, Text: s})
}

// Placeholder returns the token a standalone placeholder flattens to.
func Placeholder(name string) string {
	return "{$" + name + "}"
}

// Flatten concatenates content into a single display string. Literal text is
// copied verbatim and standalone placeholders become {$NAME}. Paired spans
// and other inline codes contribute nothing, including their nested text.
func Flatten(c Content) string {
	var b strings.Builder
	for _, n := range c {
		switch n.Kind {
		case KindText:
			b.WriteString(n.Text)
		case KindStandalone:
			b.WriteString(Placeholder(n.Name))
		case KindSpan, KindMarker:
			// Nested HTML elements are not rendered.
		default:
			panic(fmt.Sprintf("xliff: unhandled %v", n.Kind))
		}
	}
	return b.String()
}

// Value returns the flattened target when the unit has one, the flattened
// source otherwise.
func (u *Unit) Value() string {
	if u.HasTarget {
		return Flatten(u.Target)
	}
	return Flatten(u.Source)
}

// Extract builds the locale map of the named resource: unit id -> Value, in
// document order.
func Extract(doc *Document, resource string) (*localefile.Map, error) {
	r, err := doc.Resource(resource)
	if err != nil {
		return nil, err
	}
	m := localefile.New()
	for _, u := range r.Units {
		m.Set(u.ID, u.Value())
	}
	return m, nil
}

// ExtractFile parses path and extracts the named resource.
func ExtractFile(path, resource string) (*localefile.Map, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Extract(doc, resource)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
