package deepl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doclocal/doclocal/store"
)

// germanStore returns a store with german active, backed by a temp cache.
func germanStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "translations.json"))
	if err := st.SetLanguage("german"); err != nil {
		t.Fatal(err)
	}
	return st
}

// fakeService answers /v2/translate by upper-casing every submitted text,
// recording the request for inspection.
func fakeService(t *testing.T, gotTexts *[]string, gotForm *map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/translate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		*gotTexts = r.PostForm["text"]
		if gotForm != nil {
			*gotForm = map[string]string{
				"auth_key":    r.PostForm.Get("auth_key"),
				"source_lang": r.PostForm.Get("source_lang"),
				"target_lang": r.PostForm.Get("target_lang"),
			}
		}
		var parts []string
		for _, text := range *gotTexts {
			parts = append(parts, fmt.Sprintf(`{"text":%q}`, strings.ToUpper(text)))
		}
		fmt.Fprintf(w, `{"translations":[%s]}`, strings.Join(parts, ","))
	}))
}

func TestFetchCorrelatesDuplicates(t *testing.T) {
	var gotTexts []string
	var gotForm map[string]string
	srv := fakeService(t, &gotTexts, &gotForm)
	defer srv.Close()

	st := germanStore(t)
	st.EnsureTranslation("Hello")
	st.EnsureTranslation("World")
	st.EnsureTranslation("Hello") // duplicate must not inflate the request

	c := &Client{AuthKey: "key", BaseURL: srv.URL}
	if err := c.Fetch(context.Background(), st, "english"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(gotTexts) != 2 || gotTexts[0] != "Hello" || gotTexts[1] != "World" {
		t.Fatalf("submitted texts = %v, want [Hello World]", gotTexts)
	}
	if gotForm["source_lang"] != "EN" || gotForm["target_lang"] != "DE" {
		t.Fatalf("language codes = %v", gotForm)
	}
	if gotForm["auth_key"] != "key" {
		t.Fatalf("auth_key = %q", gotForm["auth_key"])
	}
	if got := st.Get("Hello"); got != "HELLO" {
		t.Fatalf("Hello = %q, want HELLO", got)
	}
	if got := st.Get("World"); got != "WORLD" {
		t.Fatalf("World = %q, want WORLD", got)
	}
	if len(st.Pending()) != 0 {
		t.Fatalf("pending after fetch = %v, want empty", st.Pending())
	}
}

func TestFetchPersistsOnSuccess(t *testing.T) {
	var gotTexts []string
	srv := fakeService(t, &gotTexts, nil)
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "translations.json")
	st := store.New(path)
	if err := st.SetLanguage("german"); err != nil {
		t.Fatal(err)
	}
	st.EnsureTranslation("Hello")

	c := &Client{AuthKey: "key", BaseURL: srv.URL}
	if err := c.Fetch(context.Background(), st, "english"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	if !strings.Contains(string(data), `"HELLO"`) {
		t.Fatalf("cache file missing translation: %s", data)
	}
}

func TestFetchTruncatesAtMaxBatch(t *testing.T) {
	var gotTexts []string
	srv := fakeService(t, &gotTexts, nil)
	defer srv.Close()

	st := germanStore(t)
	for i := 0; i < 600; i++ {
		st.EnsureTranslation(fmt.Sprintf("string %03d", i))
	}

	var warned bool
	c := &Client{
		AuthKey: "key",
		BaseURL: srv.URL,
		OnWarn:  func(format string, args ...any) { warned = true },
	}
	if err := c.Fetch(context.Background(), st, "english"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(gotTexts) != MaxBatch {
		t.Fatalf("submitted %d texts, want %d", len(gotTexts), MaxBatch)
	}
	if !warned {
		t.Fatal("truncation should emit a warning")
	}
	if got := st.Get("string 000"); got != "STRING 000" {
		t.Fatalf("first string = %q, want translated", got)
	}
	// The remainder stays untranslated until a later run re-queues it.
	if got := st.Get("string 599"); got != "string 599" {
		t.Fatalf("string 599 = %q, want identity fallback", got)
	}
}

func TestFetchSoftSkips(t *testing.T) {
	st := germanStore(t)

	// Empty queue: nothing to do, no error, no network.
	c := &Client{AuthKey: "key", BaseURL: "http://127.0.0.1:0"}
	if err := c.Fetch(context.Background(), st, "english"); err != nil {
		t.Fatalf("empty queue should be a no-op, got %v", err)
	}

	// No auth key: offline mode, queue preserved for the identity fallback.
	st.EnsureTranslation("Hello")
	offline := &Client{BaseURL: "http://127.0.0.1:0"}
	if err := offline.Fetch(context.Background(), st, "english"); err != nil {
		t.Fatalf("missing auth key should be a no-op, got %v", err)
	}
	if got := st.Get("Hello"); got != "Hello" {
		t.Fatalf("Hello = %q, want untranslated identity", got)
	}
}

func TestFetchServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	st := germanStore(t)
	st.EnsureTranslation("Hello")

	c := &Client{AuthKey: "key", BaseURL: srv.URL}
	err := c.Fetch(context.Background(), st, "english")
	if err == nil {
		t.Fatal("expected a translation service error")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("error should carry status and body, got: %v", err)
	}
}

func TestFetchShortResponseNoPartialWrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"translations":[{"text":"HALLO"}]}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "translations.json")
	st := store.New(path)
	if err := st.SetLanguage("german"); err != nil {
		t.Fatal(err)
	}
	st.EnsureTranslation("Hello")
	st.EnsureTranslation("World")

	c := &Client{AuthKey: "key", BaseURL: srv.URL}
	err := c.Fetch(context.Background(), st, "english")
	if err == nil {
		t.Fatal("expected a missing-translation error")
	}
	if !strings.Contains(err.Error(), "missing translation at index") {
		t.Fatalf("error = %v", err)
	}

	// A corrupted response must not leave partial results, in memory or
	// on disk.
	if got := st.Get("Hello"); got != "Hello" {
		t.Fatalf("Hello = %q, want untouched", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("cache file should not exist after a failed fetch")
	}
}

func TestFetchUnsupportedSourceLang(t *testing.T) {
	st := germanStore(t)
	st.EnsureTranslation("Hello")
	c := &Client{AuthKey: "key"}
	if err := c.Fetch(context.Background(), st, "klingon"); err == nil {
		t.Fatal("expected unsupported language error")
	}
}
