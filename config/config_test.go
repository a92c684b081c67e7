package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDefault(t *testing.T) {
	f := Default()
	if f.SourceLang != "english" {
		t.Fatalf("SourceLang = %q, want english", f.SourceLang)
	}
	if f.ContentDir != "content" || f.OutputDir != "build" || f.CacheFile != "translations.json" {
		t.Fatalf("defaults = %+v", f)
	}
	if len(f.Languages) != 0 {
		t.Fatalf("default Languages = %v, want none", f.Languages)
	}
}

func TestLoadAbsentFile(t *testing.T) {
	f, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f != nil {
		t.Fatalf("Load = %+v, want nil when no config exists", f)
	}
}

func TestLoadFull(t *testing.T) {
	dir := writeConfig(t, `
source_lang: english
languages: [german, polish]
content_dir: docs
output_dir: out
cache_file: cache.json
`)
	f, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(f.Languages, []string{"german", "polish"}) {
		t.Fatalf("Languages = %v", f.Languages)
	}
	if f.ContentDir != "docs" || f.OutputDir != "out" || f.CacheFile != "cache.json" {
		t.Fatalf("loaded = %+v", f)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, "languages: [german]\n")
	f, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.SourceLang != "english" || f.ContentDir != "content" {
		t.Fatalf("partial config missing defaults: %+v", f)
	}
}

func TestLoadRejectsUnsupportedLanguages(t *testing.T) {
	for _, body := range []string{
		"source_lang: klingon\nlanguages: [german]\n",
		"languages: [klingon]\n",
	} {
		dir := writeConfig(t, body)
		if _, err := Load(dir); err == nil {
			t.Fatalf("Load accepted %q", body)
		}
	}
}

func TestLoadBadYAML(t *testing.T) {
	dir := writeConfig(t, "languages: [unclosed\n")
	if _, err := Load(dir); err == nil {
		t.Fatal("expected a parse error")
	}
}
