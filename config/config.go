// Package config — .doclocal.yaml configuration file support.
//
// A .doclocal.yaml in the book root declares the source language, the
// target languages to build, and the content/output/cache locations. The
// CLI falls back to flag defaults when the file is absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doclocal/doclocal/langcodes"
)

// FileName is the default config file name.
const FileName = ".doclocal.yaml"

// File is the top-level .doclocal.yaml structure.
type File struct {
	// SourceLang is the language the book is authored in (default "english").
	SourceLang string `yaml:"source_lang,omitempty"`
	// Languages are the target languages to build.
	Languages []string `yaml:"languages"`
	// ContentDir holds the Markdown sources, relative to the book root
	// (default "content").
	ContentDir string `yaml:"content_dir,omitempty"`
	// OutputDir receives rendered output, one subdirectory per language
	// (default "build").
	OutputDir string `yaml:"output_dir,omitempty"`
	// CacheFile is the translation cache path relative to the book root
	// (default "translations.json").
	CacheFile string `yaml:"cache_file,omitempty"`
}

// Default returns the configuration used when no .doclocal.yaml exists.
func Default() *File {
	f := &File{}
	f.applyDefaults()
	return f
}

func (f *File) applyDefaults() {
	if f.SourceLang == "" {
		f.SourceLang = "english"
	}
	if f.ContentDir == "" {
		f.ContentDir = "content"
	}
	if f.OutputDir == "" {
		f.OutputDir = "build"
	}
	if f.CacheFile == "" {
		f.CacheFile = "translations.json"
	}
}

// Load reads and validates .doclocal.yaml from the given directory.
// Returns nil (and no error) if the file does not exist.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.applyDefaults()

	if !langcodes.Supported(f.SourceLang) {
		return nil, fmt.Errorf("%s: unsupported source_lang %q", path, f.SourceLang)
	}
	for _, lang := range f.Languages {
		if !langcodes.Supported(lang) {
			return nil, fmt.Errorf("%s: unsupported language %q", path, lang)
		}
	}
	return &f, nil
}
