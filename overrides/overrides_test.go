package overrides

import (
	"testing"

	"github.com/doclocal/doclocal/doctree"
)

func para(lang string) *doctree.Node {
	n := &doctree.Node{Context: doctree.KindParagraph, Lines: []string{"text"}}
	if lang != "" {
		n.SetAttr(doctree.AttrLang, lang)
	}
	return n
}

func langsOf(nodes []*doctree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Lang()
	}
	return out
}

func TestResolveMatchingSiblingReplacesDefault(t *testing.T) {
	def := para("")
	override := para("french")

	got := Resolve([]*doctree.Node{def, override}, "french")

	if len(got) != 1 || got[0] != override {
		t.Fatalf("resolved = %v, want just the french override", langsOf(got))
	}
}

func TestResolveNoMatchingSiblingKeepsDefault(t *testing.T) {
	def := para("")
	override := para("spanish")

	got := Resolve([]*doctree.Node{def, override}, "french")

	if len(got) != 1 || got[0] != def {
		t.Fatalf("resolved = %v, want just the default block", langsOf(got))
	}
}

func TestResolveTaggedOnlyWithoutMatchDropsAll(t *testing.T) {
	got := Resolve([]*doctree.Node{para("german")}, "french")
	if len(got) != 0 {
		t.Fatalf("resolved = %v, want empty", langsOf(got))
	}
}

func TestResolveFirstDuplicateWins(t *testing.T) {
	def := para("")
	first := para("french")
	second := para("french")

	got := Resolve([]*doctree.Node{def, first, second}, "french")

	if len(got) != 1 {
		t.Fatalf("resolved %d blocks, want 1", len(got))
	}
	if got[0] != first {
		t.Fatal("later duplicate override won, want the first in source order")
	}
}

func TestResolvePreservesUnrelatedOrder(t *testing.T) {
	a := para("")
	b := para("")
	c := para("german")
	d := para("")

	got := Resolve([]*doctree.Node{a, b, c, d}, "german")

	want := []*doctree.Node{a, c, d}
	if len(got) != len(want) {
		t.Fatalf("resolved %d blocks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("block %d out of order", i)
		}
	}
}

func TestResolveRunEndsAtUntaggedBlock(t *testing.T) {
	def := para("")
	other := para("")
	late := para("french")

	// The french block belongs to other's run, not def's.
	got := Resolve([]*doctree.Node{def, other, late}, "french")

	want := []*doctree.Node{def, late}
	if len(got) != len(want) || got[0] != def || got[1] != late {
		t.Fatalf("resolved = %v, want default kept and later override honored", langsOf(got))
	}
}

func TestResolveEmpty(t *testing.T) {
	if got := Resolve(nil, "german"); got != nil {
		t.Fatalf("Resolve(nil) = %v, want nil", got)
	}
}
