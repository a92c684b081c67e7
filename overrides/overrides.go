// Package overrides resolves per-language content override blocks.
//
// Authors may follow any block with siblings tagged lang=<identifier> that
// hold manually curated translations of it. For a given target language the
// resolver reduces each such group to at most one block: the tagged sibling
// matching the target language, or the untagged original when no sibling
// matches. Tagged blocks for other languages are dropped.
package overrides

import "github.com/doclocal/doclocal/doctree"

// Resolve computes the surviving child list for the given target language.
// It is a pure function over a snapshot of the input order; callers assign
// the result back to the live child list.
//
// Rules, applied in a single forward scan:
//   - a block tagged lang=X survives only when X equals lang;
//   - an untagged block is suppressed when the run of tagged blocks
//     immediately following it contains a match for lang (the matching
//     sibling survives instead when the scan reaches it);
//   - otherwise the untagged block survives as the fallback.
//
// When a run contains several siblings tagged with the same language, the
// first one in source order wins.
func Resolve(blocks []*doctree.Node, lang string) []*doctree.Node {
	if len(blocks) == 0 {
		return nil
	}

	kept := make([]*doctree.Node, 0, len(blocks))
	for i, b := range blocks {
		if tag := b.Lang(); tag != "" {
			if tag == lang && !claimedEarlier(blocks, i, lang) {
				kept = append(kept, b)
			}
			continue
		}
		if hasTaggedMatch(blocks, i+1, lang) {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

// hasTaggedMatch scans the run of consecutively tagged blocks starting at
// from and reports whether any of them is tagged with lang. The run ends at
// the first untagged block.
func hasTaggedMatch(blocks []*doctree.Node, from int, lang string) bool {
	for j := from; j < len(blocks); j++ {
		tag := blocks[j].Lang()
		if tag == "" {
			return false
		}
		if tag == lang {
			return true
		}
	}
	return false
}

// claimedEarlier reports whether a block tagged with lang appears earlier in
// the same tagged run as blocks[i]. Duplicate same-language overrides are a
// source authoring mistake; the first one wins deterministically.
func claimedEarlier(blocks []*doctree.Node, i int, lang string) bool {
	for j := i - 1; j >= 0; j-- {
		tag := blocks[j].Lang()
		if tag == "" {
			return false
		}
		if tag == lang {
			return true
		}
	}
	return false
}
