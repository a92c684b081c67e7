// Package store implements the persistent translation cache.
//
// The cache is a single JSON file mapping language identifier → source
// text → translated text. Source text keys are the fragments exactly as
// they appear in the document (whitespace-sensitive). The file is loaded
// at most once per process, mutated in memory while translations are
// fetched, and written back whole after every successful batch; there are
// no partial-language files and no append path.
//
// A missing cache file is equivalent to an all-empty structure, so a fresh
// checkout builds fine; every lookup miss falls back to the original text.
//
// The store is not safe for concurrent builds sharing one cache file:
// persistence is a full-file overwrite, so parallel processes would lose
// each other's updates. Run one build at a time against a given cache.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/doclocal/doclocal/langcodes"
)

// Store holds all cached translations plus the pending-extraction queue for
// the active language. Create one per build and pass it to the walker and
// the fetcher; there is no package-level state.
type Store struct {
	// path is the cache file location, fixed for the store's lifetime.
	path string

	// all maps language identifier → source text → translated text.
	all map[string]map[string]string
	// active is the currently selected language identifier.
	active string
	// loaded is set after the one-and-only disk load.
	loaded bool

	// pending holds source strings seen during a walk that have no cached
	// translation yet, in encounter order. Duplicates are allowed; the
	// fetcher deduplicates when it builds the request.
	pending []string
}

// New returns a store backed by the cache file at path. Nothing is read
// from disk until the first SetLanguage call.
func New(path string) *Store {
	return &Store{
		path: path,
		all:  make(map[string]map[string]string),
	}
}

// Path returns the cache file location.
func (s *Store) Path() string { return s.path }

// Language returns the active language identifier ("" before the first
// SetLanguage call).
func (s *Store) Language() string { return s.active }

// SetLanguage selects the language all subsequent Get/EnsureTranslation
// calls operate on. An empty identifier or re-selecting the active language
// is a no-op. The first effective call loads the cache file from disk; the
// load happens once per process lifetime regardless of how many languages a
// build cycles through.
func (s *Store) SetLanguage(lang string) error {
	if lang == "" || lang == s.active {
		return nil
	}
	if !langcodes.Supported(lang) {
		return fmt.Errorf("unsupported language %q (supported: %v)", lang, langcodes.Identifiers())
	}
	if err := s.Load(); err != nil {
		return err
	}
	if s.all[lang] == nil {
		s.all[lang] = make(map[string]string)
	}
	s.active = lang
	return nil
}

// Load reads the cache file if it has not been read yet. SetLanguage calls
// it implicitly; the CLI cache commands call it directly.
func (s *Store) Load() error {
	if s.loaded {
		return nil
	}
	if err := s.load(); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

// load reads the cache file. Absence and emptiness both mean an all-empty
// structure; anything else must parse.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.all); err != nil {
		return fmt.Errorf("parsing cache %s: %w", s.path, err)
	}
	if s.all == nil {
		s.all = make(map[string]map[string]string)
	}
	return nil
}

// Get returns the cached translation for text in the active language. A
// miss returns text unchanged: the identity fallback that keeps builds
// producing output even when translations are missing.
func (s *Store) Get(text string) string {
	if m := s.all[s.active]; m != nil {
		if translated, ok := m[text]; ok {
			return translated
		}
	}
	return text
}

// Cached reports whether text has a translation in the active language.
func (s *Store) Cached(text string) bool {
	m := s.all[s.active]
	if m == nil {
		return false
	}
	_, ok := m[text]
	return ok
}

// EnsureTranslation queues text for fetching unless it is already cached in
// the active language. Re-queueing the same uncached text is allowed; the
// queue is not deduplicated here.
func (s *Store) EnsureTranslation(text string) {
	if s.Cached(text) {
		return
	}
	s.pending = append(s.pending, text)
}

// Pending returns the queued source strings in encounter order.
func (s *Store) Pending() []string { return s.pending }

// ClearPending empties the queue. Called by the fetcher after a batch and
// by the orchestrator between languages.
func (s *Store) ClearPending() { s.pending = nil }

// Put records a fetched translation for the active language.
func (s *Store) Put(source, translated string) {
	if s.all[s.active] == nil {
		s.all[s.active] = make(map[string]string)
	}
	s.all[s.active][source] = translated
}

// Persist writes the whole structure (every language) back to the cache
// file, pretty-printed, replacing the previous contents.
func (s *Store) Persist() error {
	data, err := json.MarshalIndent(s.all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing cache %s: %w", s.path, err)
	}
	return nil
}

// Stats returns per-language entry counts, sorted by language identifier.
func (s *Store) Stats() []LangStat {
	stats := make([]LangStat, 0, len(s.all))
	for lang, m := range s.all {
		stats = append(stats, LangStat{Language: lang, Entries: len(m)})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Language < stats[j].Language })
	return stats
}

// LangStat is one row of Stats output.
type LangStat struct {
	Language string
	Entries  int
}
