// Package doctree defines the block tree the translation pipeline operates
// on. A parser adapter (see the markdown package) produces a tree of Nodes;
// the walker mutates node payloads and child lists in place and the adapter
// renders the result back to output markup.
//
// The tree is deliberately small: a node has a kind tag (Context), at most
// one payload shape depending on the kind, a flat attribute map, and an
// ordered child list. Nodes are owned by their tree root for the duration of
// one walk; a fresh tree is parsed for every pass.
package doctree

// Block kinds produced by the parser adapters.
const (
	// KindDocument is the tree root.
	KindDocument = "document"
	// KindSection carries a Title and nested blocks.
	KindSection = "section"
	// KindParagraph carries ordered text Lines.
	KindParagraph = "paragraph"
	// KindList groups list items.
	KindList = "list"
	// KindListItem carries a single Text payload.
	KindListItem = "list_item"
	// KindListing is a verbatim block (fenced code); never translated.
	KindListing = "listing"
	// KindPass is raw passthrough markup (HTML blocks); never translated.
	KindPass = "pass"
)

// Well-known attribute names.
const (
	// AttrLang marks a block as a per-language override of its untagged
	// sibling. Blocks tagged with a non-matching language are dropped.
	AttrLang = "lang"
	// AttrKeep on a section suppresses title translation. The value is
	// either "*" (keep for every language) or a language identifier.
	AttrKeep = "keep"
)

// Node is one block of the parsed document tree.
type Node struct {
	// Context is the block kind tag (one of the Kind constants).
	Context string
	// Title is the section heading text (sections only).
	Title string
	// Lines is the ordered textual payload of a paragraph.
	Lines []string
	// Text is the payload of a list item or a verbatim block.
	Text string
	// Level is the section nesting depth (sections only, 1-based).
	Level int
	// Attrs holds block attributes (lang, keep, ...). May be nil.
	Attrs map[string]string
	// Blocks is the live, ordered child list.
	Blocks []*Node
}

// NewDocument returns an empty tree root.
func NewDocument() *Node {
	return &Node{Context: KindDocument}
}

// NewBlock constructs a block of the given kind, attaches it to parent and
// returns it. A nil attribute map is allowed.
func NewBlock(parent *Node, kind string, attrs map[string]string) *Node {
	n := &Node{Context: kind, Attrs: attrs}
	if parent != nil {
		parent.Blocks = append(parent.Blocks, n)
	}
	return n
}

// Attr returns the value of a block attribute, or "" if unset.
func (n *Node) Attr(name string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// HasAttr reports whether the attribute is set (even to an empty value).
func (n *Node) HasAttr(name string) bool {
	if n.Attrs == nil {
		return false
	}
	_, ok := n.Attrs[name]
	return ok
}

// SetAttr sets a block attribute, allocating the map on first use.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// Lang returns the value of the lang attribute, or "" for untagged blocks.
func (n *Node) Lang() string {
	return n.Attr(AttrLang)
}
