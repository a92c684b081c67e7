// Package build orchestrates the localized document build.
//
// For each target language the pipeline runs two passes over every content
// file: the first walk extracts untranslated fragments into the pending
// queue, then a single batched fetch fills the cache, then each file is
// parsed afresh and walked again, this time fully cached, and rendered
// into the per-language output directory. Languages are processed strictly
// one after another; the pending queue never spans two languages.
package build

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/doclocal/doclocal/config"
	"github.com/doclocal/doclocal/deepl"
	"github.com/doclocal/doclocal/doctree"
	"github.com/doclocal/doclocal/lockfile"
	"github.com/doclocal/doclocal/store"
	"github.com/doclocal/doclocal/walker"
)

// Codec parses content into a block tree and renders a tree back out.
// The markdown package provides the Markdown implementation.
type Codec interface {
	Parse(src []byte) (*doctree.Node, error)
	Render(root *doctree.Node) []byte
}

// Builder runs the per-language pipeline.
type Builder struct {
	// Config supplies languages and directory layout.
	Config *config.File
	// RootDir is the book root all configured paths are relative to.
	RootDir string
	// Store is the shared translation cache for the whole build.
	Store *store.Store
	// Fetcher performs the batched translation call.
	Fetcher *deepl.Client
	// Codec parses and renders content files.
	Codec Codec

	// OnLog receives progress messages.
	OnLog func(format string, args ...any)
}

func (b *Builder) log(format string, args ...any) {
	if b.OnLog != nil {
		b.OnLog(format, args...)
	}
}

// Run builds every configured target language in order. The run lock held
// for the duration keeps a second build from racing on the cache file.
func (b *Builder) Run(ctx context.Context) error {
	if len(b.Config.Languages) == 0 {
		return fmt.Errorf("no target languages configured")
	}
	lock, err := lockfile.Acquire(b.RootDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	for _, lang := range b.Config.Languages {
		if err := b.BuildLanguage(ctx, lang); err != nil {
			return fmt.Errorf("building %s: %w", lang, err)
		}
	}
	return nil
}

// BuildLanguage runs the full two-pass pipeline for one language.
func (b *Builder) BuildLanguage(ctx context.Context, lang string) error {
	if err := b.Store.SetLanguage(lang); err != nil {
		return err
	}
	// A leftover queue from an aborted earlier step must not leak in.
	b.Store.ClearPending()

	files, err := b.contentFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no content files under %s", b.contentDir())
	}

	b.log("building %s (%d files)", lang, len(files))
	w := walker.New(b.Store, b.Config.SourceLang)

	// Pass 1: extract. The transformed trees are thrown away; only the
	// pending queue matters.
	for _, rel := range files {
		root, err := b.parseFile(rel)
		if err != nil {
			return err
		}
		w.Walk(root, 0)
	}

	if pending := b.Store.Pending(); len(pending) > 0 {
		if err := b.Fetcher.Fetch(ctx, b.Store, b.Config.SourceLang); err != nil {
			return err
		}
	}
	// Anything still pending (offline mode, truncation) renders as the
	// identity fallback in pass 2 and must not leak into the next language.
	b.Store.ClearPending()

	// Pass 2: re-parse and apply.
	outDir := filepath.Join(b.RootDir, b.Config.OutputDir, lang)
	for _, rel := range files {
		root, err := b.parseFile(rel)
		if err != nil {
			return err
		}
		w.Walk(root, 0)

		outPath := filepath.Join(outDir, rel)
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(outPath, b.Codec.Render(root), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
	}
	b.Store.ClearPending()

	b.log("wrote %d files to %s", len(files), outDir)
	return nil
}

func (b *Builder) contentDir() string {
	return filepath.Join(b.RootDir, b.Config.ContentDir)
}

// contentFiles lists Markdown files under the content directory, as sorted
// paths relative to it.
func (b *Builder) contentFiles() ([]string, error) {
	dir := b.contentDir()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (b *Builder) parseFile(rel string) (*doctree.Node, error) {
	path := filepath.Join(b.contentDir(), rel)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	root, err := b.Codec.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return root, nil
}
