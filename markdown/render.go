package markdown

import (
	"fmt"
	"strings"

	"github.com/doclocal/doclocal/doctree"
)

// Render turns a block tree back into Markdown. Blocks are separated by
// blank lines; lang/keep attributes are re-emitted as marker comments so a
// rendered file parses back to an equivalent tree.
func (Codec) Render(root *doctree.Node) []byte {
	var chunks []string
	collectBlocks(&chunks, root.Blocks)
	out := strings.Join(chunks, "\n\n")
	if out != "" {
		out += "\n"
	}
	return []byte(out)
}

func collectBlocks(chunks *[]string, blocks []*doctree.Node) {
	for _, b := range blocks {
		switch b.Context {
		case doctree.KindSection:
			*chunks = append(*chunks, withMarkers(b,
				strings.Repeat("#", max(b.Level, 1))+" "+b.Title))
			collectBlocks(chunks, b.Blocks)

		case doctree.KindParagraph:
			if len(b.Lines) == 0 {
				continue
			}
			*chunks = append(*chunks, withMarkers(b, strings.Join(b.Lines, "\n")))

		case doctree.KindList:
			*chunks = append(*chunks, withMarkers(b, renderList(b, "")))

		case doctree.KindListing, doctree.KindPass:
			*chunks = append(*chunks, withMarkers(b, b.Text))

		default:
			collectBlocks(chunks, b.Blocks)
		}
	}
}

// renderList renders a list block, recursing into nested lists with
// two-space indentation.
func renderList(list *doctree.Node, indent string) string {
	ordered := list.Attr("ordered") == "true"
	var lines []string
	num := 0
	for _, item := range list.Blocks {
		if item.Context != doctree.KindListItem {
			continue
		}
		num++
		bullet := "- "
		if ordered {
			bullet = fmt.Sprintf("%d. ", num)
		}
		lines = append(lines, indent+bullet+item.Text)
		for _, nested := range item.Blocks {
			if nested.Context == doctree.KindList {
				lines = append(lines, renderList(nested, indent+"  "))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// withMarkers prepends attribute marker comments to a rendered block.
func withMarkers(b *doctree.Node, body string) string {
	var markers []string
	if lang := b.Attr(doctree.AttrLang); lang != "" {
		markers = append(markers, "<!-- lang: "+lang+" -->")
	}
	if keep := b.Attr(doctree.AttrKeep); keep != "" {
		markers = append(markers, "<!-- keep: "+keep+" -->")
	}
	if len(markers) == 0 {
		return body
	}
	return strings.Join(markers, "\n") + "\n" + body
}
