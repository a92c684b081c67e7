// Package markdown adapts Markdown content to the doctree block model.
//
// Parse builds a block tree from Markdown source: headings open nested
// section blocks, paragraphs keep their source lines, list items carry
// their text payload, fenced code and raw HTML stay verbatim. Render turns
// a (possibly transformed) tree back into Markdown.
//
// Per-language override blocks and title-keep hints are expressed as HTML
// comment markers on the line before a block:
//
//	<!-- lang: german -->
//	Ein von Hand übersetzter Absatz.
//
//	<!-- keep: * -->
//	## Proper Nouns Stay
//
// A marker attaches the attribute to the immediately following block and is
// re-emitted by Render so the files round-trip.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/doclocal/doclocal/doctree"
)

// Codec parses and renders Markdown documents.
type Codec struct{}

// markerLine matches an attribute marker comment.
var markerLine = regexp.MustCompile(`^<!--\s*(lang|keep):\s*(\S+)\s*-->$`)

// Parse builds a doctree from Markdown source.
func (Codec) Parse(src []byte) (*doctree.Node, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := doctree.NewDocument()

	// Sections nest by heading level; stack[len-1] is the open container.
	stack := []*doctree.Node{doc}
	var pending map[string]string

	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		if name, value, ok := marker(child, src); ok {
			if pending == nil {
				pending = make(map[string]string)
			}
			pending[name] = value
			continue
		}

		if h, ok := child.(*gmast.Heading); ok {
			for len(stack) > 1 && stack[len(stack)-1].Level >= h.Level {
				stack = stack[:len(stack)-1]
			}
			sec := doctree.NewBlock(stack[len(stack)-1], doctree.KindSection, pending)
			sec.Title = textOf(h, src)
			sec.Level = h.Level
			stack = append(stack, sec)
			pending = nil
			continue
		}

		if err := convertBlock(stack[len(stack)-1], child, src, pending); err != nil {
			return nil, err
		}
		pending = nil
	}
	return doc, nil
}

// convertBlock translates one non-heading goldmark block into a doctree
// block attached to parent.
func convertBlock(parent *doctree.Node, n gmast.Node, src []byte, attrs map[string]string) error {
	switch b := n.(type) {
	case *gmast.Paragraph:
		p := doctree.NewBlock(parent, doctree.KindParagraph, attrs)
		p.Lines = blockLines(b, src)

	case *gmast.List:
		list := doctree.NewBlock(parent, doctree.KindList, attrs)
		if b.IsOrdered() {
			list.SetAttr("ordered", "true")
		}
		for item := b.FirstChild(); item != nil; item = item.NextSibling() {
			if err := convertListItem(list, item, src); err != nil {
				return err
			}
		}

	case *gmast.FencedCodeBlock:
		listing := doctree.NewBlock(parent, doctree.KindListing, attrs)
		listing.Text = fencedText(b, src)

	case *gmast.HTMLBlock:
		pass := doctree.NewBlock(parent, doctree.KindPass, attrs)
		pass.Text = strings.TrimRight(rawLines(b, src), "\n")

	case *gmast.ThematicBreak:
		pass := doctree.NewBlock(parent, doctree.KindPass, attrs)
		pass.Text = "---"

	default:
		// Blockquotes and anything else unhandled pass through verbatim.
		raw, ok := sourceSpan(n, src)
		if !ok {
			return fmt.Errorf("unsupported markdown block %s with no source span", n.Kind())
		}
		pass := doctree.NewBlock(parent, doctree.KindPass, attrs)
		pass.Text = strings.TrimRight(raw, "\n")
	}
	return nil
}

// convertListItem extracts one list item's text and any nested list.
func convertListItem(list *doctree.Node, n gmast.Node, src []byte) error {
	item := doctree.NewBlock(list, doctree.KindListItem, nil)
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *gmast.TextBlock, *gmast.Paragraph:
			line := strings.Join(blockLines(c, src), " ")
			if item.Text == "" {
				item.Text = line
			} else {
				item.Text += " " + line
			}
		case *gmast.List:
			if err := convertBlock(item, c, src, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// marker reports whether n is a single-line attribute marker comment.
func marker(n gmast.Node, src []byte) (name, value string, ok bool) {
	h, isHTML := n.(*gmast.HTMLBlock)
	if !isHTML {
		return "", "", false
	}
	raw := strings.TrimSpace(rawLines(h, src))
	m := markerLine.FindStringSubmatch(raw)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// blockLines returns the source lines of a leaf block, newline-stripped.
func blockLines(n gmast.Node, src []byte) []string {
	segs := n.Lines()
	lines := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		lines = append(lines, strings.TrimRight(string(seg.Value(src)), "\n"))
	}
	return lines
}

// rawLines concatenates a block's raw source lines.
func rawLines(n gmast.Node, src []byte) string {
	var b strings.Builder
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(src))
	}
	if h, ok := n.(*gmast.HTMLBlock); ok && h.HasClosure() {
		b.Write(h.ClosureLine.Value(src))
	}
	return b.String()
}

// fencedText rebuilds a fenced code block with canonical backtick fences.
func fencedText(b *gmast.FencedCodeBlock, src []byte) string {
	var out strings.Builder
	out.WriteString("```")
	out.Write(b.Language(src))
	out.WriteByte('\n')
	segs := b.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		out.Write(seg.Value(src))
	}
	out.WriteString("```")
	return out.String()
}

// textOf collects the plain text content of an inline container.
func textOf(n gmast.Node, src []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}

// sourceSpan reconstructs the raw source of an arbitrary block by taking
// the extent of all its text segments, widened to full lines so prefixes
// like "> " survive.
func sourceSpan(n gmast.Node, src []byte) (string, bool) {
	start, stop := -1, -1
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := c.(*gmast.Text); ok {
			grow(&start, &stop, t.Segment.Start, t.Segment.Stop)
		}
		if c.Type() == gmast.TypeBlock {
			segs := c.Lines()
			for i := 0; i < segs.Len(); i++ {
				seg := segs.At(i)
				grow(&start, &stop, seg.Start, seg.Stop)
			}
		}
		return gmast.WalkContinue, nil
	})
	if start < 0 {
		return "", false
	}
	if idx := bytes.LastIndexByte(src[:start], '\n'); idx >= 0 {
		start = idx + 1
	} else {
		start = 0
	}
	for stop < len(src) && src[stop] != '\n' {
		stop++
	}
	return string(src[start:stop]), true
}

func grow(start, stop *int, s, e int) {
	if *start < 0 || s < *start {
		*start = s
	}
	if e > *stop {
		*stop = e
	}
}
