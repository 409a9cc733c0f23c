// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/likesync/internal/models"
)

// MutateCall is one PUT or DELETE received by a [FakeLibrary].
type MutateCall struct {
	Method   string
	IDs      []string
	RawQuery string
}

// FakeLibrary serves the saved-tracks endpoints from memory.
//
// Pages are served in order, each page newest-first, as the real API does.
// Mutations append to Saved (PUT) or remove from it (DELETE) in arrival order.
type FakeLibrary struct {
	Server *httptest.Server

	mu        sync.Mutex
	pages     [][]models.Track
	failPage  int // 1-based page that returns 401, 0 for none
	failCall  int // 1-based mutate call that returns 401, 0 for none
	pageHits  []string
	calls     []MutateCall
	saved     []string
	authSeen  []string
	itemNulls map[int]int // page index -> count of null track items appended
}

// NewFakeLibrary starts a server for pages; it is closed when the test ends.
func NewFakeLibrary(t *testing.T, pages ...[]models.Track) *FakeLibrary {
	t.Helper()
	f := &FakeLibrary{pages: pages, itemNulls: map[int]int{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL to hand to the client.
func (f *FakeLibrary) URL() string { return f.Server.URL }

// FailPage makes the n-th listing request (1-based) fail with 401.
func (f *FakeLibrary) FailPage(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPage = n
}

// FailCall makes the n-th mutate request (1-based) fail with 401.
func (f *FakeLibrary) FailCall(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failCall = n
}

// AddNullItems appends n items with a null track to page index i.
func (f *FakeLibrary) AddNullItems(i, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.itemNulls[i] += n
}

// Calls returns the mutate calls received so far.
func (f *FakeLibrary) Calls() []MutateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]MutateCall(nil), f.calls...)
}

// PageHits returns the listing URLs requested so far.
func (f *FakeLibrary) PageHits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.pageHits...)
}

// Saved returns ids added and not removed, in the order they were added.
func (f *FakeLibrary) Saved() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.saved...)
}

// AuthHeaders returns every Authorization header received.
func (f *FakeLibrary) AuthHeaders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authSeen...)
}

func (f *FakeLibrary) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.authSeen = append(f.authSeen, r.Header.Get("Authorization"))

	if r.URL.Path != "/me/tracks" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		f.list(w, r)
	case http.MethodPut, http.MethodDelete:
		f.mutate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *FakeLibrary) list(w http.ResponseWriter, r *http.Request) {
	f.pageHits = append(f.pageHits, r.URL.String())
	if f.failPage > 0 && len(f.pageHits) == f.failPage {
		writeError(w, http.StatusUnauthorized, "The access token expired")
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	index, start := -1, 0
	for i, p := range f.pages {
		if start == offset && index < 0 {
			index = i
		}
		start += len(p)
	}
	total := start

	items := []map[string]any{}
	if index >= 0 {
		for _, tr := range f.pages[index] {
			items = append(items, map[string]any{
				"added_at": "2020-01-01T00:00:00Z",
				"track":    map[string]any{"id": tr.ID, "name": tr.Name},
			})
		}
		for i := 0; i < f.itemNulls[index]; i++ {
			items = append(items, map[string]any{"added_at": "2020-01-01T00:00:00Z", "track": nil})
		}
	}

	var next any
	if index >= 0 && index < len(f.pages)-1 {
		nextOffset := offset + len(f.pages[index])
		next = fmt.Sprintf("%s/me/tracks?offset=%d&limit=%d", f.Server.URL, nextOffset, limit)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"href":   r.URL.String(),
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
		"next":   next,
	})
}

func (f *FakeLibrary) mutate(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("ids"), ",")
	f.calls = append(f.calls, MutateCall{Method: r.Method, IDs: ids, RawQuery: r.URL.RawQuery})

	if f.failCall > 0 && len(f.calls) == f.failCall {
		writeError(w, http.StatusUnauthorized, "The access token expired")
		return
	}

	switch r.Method {
	case http.MethodPut:
		f.saved = append(f.saved, ids...)
	case http.MethodDelete:
		drop := make(map[string]bool, len(ids))
		for _, id := range ids {
			drop[id] = true
		}
		kept := f.saved[:0]
		for _, id := range f.saved {
			if !drop[id] {
				kept = append(kept, id)
			}
		}
		f.saved = kept
	}

	w.WriteHeader(http.StatusOK)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"status": status, "message": msg},
	})
}

// MakeTracks returns n tracks with ids prefix-1..prefix-n.
func MakeTracks(prefix string, n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			ID:   fmt.Sprintf("%s-%d", prefix, i+1),
			Name: fmt.Sprintf("Song %s %d", prefix, i+1),
		}
	}
	return tracks
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
