// Package walker implements the two-pass tree transformer at the heart of
// the localized build.
//
// A walk visits every block of a parsed document tree. For translatable
// fragments (section titles, paragraph lines, list item text) it substitutes
// the cached translation when one exists and queues the original text
// otherwise. The same walk also resolves per-language override blocks among
// each node's children. Running the walk once populates the pending queue;
// after the fetcher has filled the cache, a second walk over a freshly
// parsed tree produces the fully localized document.
package walker

import (
	"strings"
	"unicode"

	"github.com/doclocal/doclocal/doctree"
	"github.com/doclocal/doclocal/overrides"
	"github.com/doclocal/doclocal/store"
)

// Walker transforms one document tree for the store's active language.
type Walker struct {
	// Store supplies cached translations and collects pending strings.
	Store *store.Store
	// SourceLang is the language the book is authored in. When it is also
	// the active language, prose is passed through untouched and only
	// override resolution runs.
	SourceLang string
}

// New returns a walker bound to st and the book's source language.
func New(st *store.Store, sourceLang string) *Walker {
	return &Walker{Store: st, SourceLang: sourceLang}
}

// Walk transforms node and its subtree, returning the node. Payloads are
// substituted per kind, then the child list is reduced by override
// resolution, then surviving children are walked recursively.
func (w *Walker) Walk(node *doctree.Node, depth int) *doctree.Node {
	passThrough := w.Store.Language() == w.SourceLang

	switch node.Context {
	case doctree.KindListItem:
		if !passThrough && node.Text != "" {
			if w.Store.Cached(node.Text) {
				node.Text = w.Store.Get(node.Text)
			} else {
				w.Store.EnsureTranslation(node.Text)
			}
		}

	case doctree.KindSection:
		if !passThrough && node.Title != "" && !w.keepTitle(node) {
			if w.Store.Cached(node.Title) {
				node.Title = Heading(w.Store.Get(node.Title))
			} else {
				w.Store.EnsureTranslation(node.Title)
			}
		}

	case doctree.KindParagraph:
		if len(node.Lines) == 0 {
			return node
		}
		if !passThrough {
			lines := make([]string, len(node.Lines))
			for i, line := range node.Lines {
				if w.Store.Cached(line) {
					lines[i] = w.Store.Get(line)
				} else {
					w.Store.EnsureTranslation(line)
					lines[i] = line
				}
			}
			node.Lines = lines
		}
	}

	node.Blocks = overrides.Resolve(node.Blocks, w.Store.Language())
	for i, child := range node.Blocks {
		node.Blocks[i] = w.Walk(child, depth+1)
	}
	return node
}

// keepTitle reports whether the section opted out of title translation via
// the keep attribute: "*" keeps it for every language, a language
// identifier keeps it for that language only.
func (w *Walker) keepTitle(node *doctree.Node) bool {
	keep := node.Attr(doctree.AttrKeep)
	return keep == "*" || (keep != "" && keep == w.Store.Language())
}

// Heading upper-cases the first letter of text and the first letter after
// each run of whitespace. It is applied only to translated section titles;
// untranslated identity fallbacks keep their original casing.
func Heading(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	atWordStart := true
	for _, r := range text {
		if unicode.IsSpace(r) {
			atWordStart = true
			b.WriteRune(r)
			continue
		}
		if atWordStart {
			b.WriteRune(unicode.ToUpper(r))
			atWordStart = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
