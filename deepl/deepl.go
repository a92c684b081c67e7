// Package deepl fetches machine translations for queued source strings.
//
// The whole pending queue goes out as one form-encoded POST (repeated text
// fields, order-preserving) and the service answers with a translations
// array in the same order, which is correlated back to the submitted
// strings by index. On success the merged cache is persisted before Fetch
// returns, so an aborted later step never loses paid-for translations.
//
// A missing auth key and an empty queue are both soft skips, not errors:
// builds must keep working offline from cached data alone.
package deepl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doclocal/doclocal/langcodes"
	"github.com/doclocal/doclocal/store"
)

// MaxBatch is the largest number of strings submitted in one request.
// A longer queue is truncated; the remainder is simply picked up by the
// next run. Deliberately no auto-chunking: the index correlation scheme
// relies on exactly one ordered request per fetch.
const MaxBatch = 500

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.deepl.com"

// DefaultTimeout bounds one batch request.
const DefaultTimeout = 60 * time.Second

// Client calls the translation service and merges results into a store.
type Client struct {
	// AuthKey authenticates the request. Empty means offline mode: Fetch
	// logs and returns without network I/O.
	AuthKey string
	// BaseURL overrides the API endpoint (tests, api-free tier).
	BaseURL string
	// Timeout is the per-request limit (DefaultTimeout if zero).
	Timeout time.Duration
	// HTTPClient overrides the transport. Built from Timeout if nil.
	HTTPClient *http.Client

	// OnLog and OnWarn receive progress and warning messages.
	OnLog  func(format string, args ...any)
	OnWarn func(format string, args ...any)
}

func (c *Client) log(format string, args ...any) {
	if c.OnLog != nil {
		c.OnLog(format, args...)
	}
}

func (c *Client) warn(format string, args ...any) {
	if c.OnWarn != nil {
		c.OnWarn(format, args...)
	} else if c.OnLog != nil {
		c.OnLog(format, args...)
	}
}

// translationsResponse is the service reply: one element per submitted
// text field, in submission order.
type translationsResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// Fetch translates everything queued in st from sourceLang into the
// store's active language, merges the results and persists the cache.
//
// Preconditions for network I/O: a non-empty queue and a configured auth
// key. Either one missing is a no-op, leaving uncached strings to the
// identity fallback. Transport and correlation failures are fatal to the
// current language's build step and leave the on-disk cache untouched.
func (c *Client) Fetch(ctx context.Context, st *store.Store, sourceLang string) error {
	queue := st.Pending()
	if len(queue) == 0 {
		c.log("no pending translations for %s", st.Language())
		return nil
	}
	if c.AuthKey == "" {
		c.warn("no auth key configured, keeping %d string(s) untranslated", len(queue))
		return nil
	}

	if len(queue) > MaxBatch {
		c.warn("pending queue has %d strings, truncating to %d (rerun to translate the rest)", len(queue), MaxBatch)
		queue = queue[:MaxBatch]
	}

	src, err := langcodes.Resolve(sourceLang)
	if err != nil {
		return err
	}
	target, err := langcodes.Resolve(st.Language())
	if err != nil {
		return err
	}

	// Deduplicate while preserving submission order. The queue may hold the
	// same string twice; the service must see it once, and the index map
	// carries the correlation.
	distinct := make([]string, 0, len(queue))
	indexOf := make(map[string]int, len(queue))
	for _, text := range queue {
		if _, seen := indexOf[text]; seen {
			continue
		}
		indexOf[text] = len(distinct)
		distinct = append(distinct, text)
	}

	form := url.Values{}
	form.Set("auth_key", c.AuthKey)
	form.Set("source_lang", src.Code)
	form.Set("target_lang", target.Code)
	for _, text := range distinct {
		form.Add("text", text)
	}

	c.log("translating %d string(s) %s -> %s", len(distinct), src.Code, target.Code)

	resp, err := c.post(ctx, form)
	if err != nil {
		return err
	}

	// Validate the full correlation before touching the store so a short
	// response can never cause a partial cache write.
	if len(resp.Translations) < len(distinct) {
		return fmt.Errorf("missing translation at index %d: got %d translations for %d texts",
			len(resp.Translations), len(resp.Translations), len(distinct))
	}

	for text, i := range indexOf {
		st.Put(text, resp.Translations[i].Text)
	}
	st.ClearPending()

	if err := st.Persist(); err != nil {
		return fmt.Errorf("persisting fetched translations: %w", err)
	}
	c.log("cached %d translation(s) for %s", len(distinct), st.Language())
	return nil
}

// post sends the form to /v2/translate and decodes the response.
func (c *Client) post(ctx context.Context, form url.Values) (*translationsResponse, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint := strings.TrimRight(base, "/") + "/v2/translate"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := c.HTTPClient
	if client == nil {
		timeout := c.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translation service error: status %d: %s",
			resp.StatusCode, truncate(string(body), 500))
	}

	var parsed translationsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing translation response: %w", err)
	}
	return &parsed, nil
}

// truncate shortens s for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
