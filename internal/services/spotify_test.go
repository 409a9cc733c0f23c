package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	tu "github.com/desertthunder/likesync/internal/testing"
)

func TestLibraryClient(t *testing.T) {
	t.Run("NewLibraryClient", func(t *testing.T) {
		t.Run("Missing Token", func(t *testing.T) {
			_, err := NewLibraryClient("", "US", "   ")
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Base URL", func(t *testing.T) {
			srv, err := NewLibraryClient("", "US", "token")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.baseURL != spotifyBaseURL {
				t.Errorf("expected %s, got %s", spotifyBaseURL, srv.baseURL)
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			srv, err := NewLibraryClient("http://example.com/v1/", "", "token")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.baseURL != "http://example.com/v1" {
				t.Errorf("unexpected base URL %s", srv.baseURL)
			}
		})
	})

	t.Run("SavedTracksURL", func(t *testing.T) {
		srv, _ := NewLibraryClient("http://example.com/v1", "US", "token")

		tc := []struct {
			name  string
			limit int
			want  string
		}{
			{name: "max page", limit: 50, want: "http://example.com/v1/me/tracks?limit=50&market=US&offset=0"},
			{name: "clamped above max", limit: 80, want: "http://example.com/v1/me/tracks?limit=50&market=US&offset=0"},
			{name: "default when zero", limit: 0, want: "http://example.com/v1/me/tracks?limit=20&market=US&offset=0"},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := srv.SavedTracksURL(tt.limit, 0); got != tt.want {
					t.Errorf("SavedTracksURL() = %s, want %s", got, tt.want)
				}
			})
		}
	})

	t.Run("ModifyURL joins with encoded comma", func(t *testing.T) {
		srv, _ := NewLibraryClient("http://example.com/v1", "US", "token")
		got := srv.ModifyURL([]string{"a1", "b2", "c3"})
		want := "http://example.com/v1/me/tracks?ids=a1%2Cb2%2Cc3"
		if got != want {
			t.Errorf("ModifyURL() = %s, want %s", got, want)
		}
	})

	t.Run("SavedTracks", func(t *testing.T) {
		lib := tu.NewFakeLibrary(t, tu.MakeTracks("p1", 3), tu.MakeTracks("p2", 2))
		lib.AddNullItems(0, 1)

		srv, err := NewLibraryClient(lib.URL(), "US", "source-token")
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		page, err := srv.SavedTracks(context.Background(), srv.SavedTracksURL(3, 0))
		if err != nil {
			t.Fatalf("SavedTracks() error = %v", err)
		}

		if len(page.Tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(page.Tracks))
		}
		if page.Tracks[0] != (models.Track{ID: "p1-1", Name: "Song p1 1"}) {
			t.Errorf("unexpected first track %+v", page.Tracks[0])
		}
		if page.Skipped != 1 {
			t.Errorf("expected 1 skipped item, got %d", page.Skipped)
		}
		if page.Total != 5 {
			t.Errorf("expected total 5, got %d", page.Total)
		}
		if page.Next == "" {
			t.Fatal("expected next page URL")
		}

		last, err := srv.SavedTracks(context.Background(), page.Next)
		if err != nil {
			t.Fatalf("SavedTracks(next) error = %v", err)
		}
		if len(last.Tracks) != 2 || last.Next != "" {
			t.Errorf("expected final page of 2 without next, got %d %q", len(last.Tracks), last.Next)
		}

		for _, h := range lib.AuthHeaders() {
			if h != "Bearer source-token" {
				t.Errorf("expected bearer header, got %q", h)
			}
		}
	})

	t.Run("SavedTracks non-200", func(t *testing.T) {
		lib := tu.NewFakeLibrary(t, tu.MakeTracks("p1", 1))
		lib.FailPage(1)

		srv, _ := NewLibraryClient(lib.URL(), "US", "expired")
		_, err := srv.SavedTracks(context.Background(), srv.SavedTracksURL(50, 0))

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", apiErr.StatusCode)
		}
		if !strings.Contains(apiErr.Body, "access token expired") {
			t.Errorf("expected body in error, got %q", apiErr.Body)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Error("expected error to match ErrAPIRequest")
		}
	})

	t.Run("SavedTracks malformed JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		srv, _ := NewLibraryClient(server.URL, "US", "token")
		if _, err := srv.SavedTracks(context.Background(), srv.SavedTracksURL(50, 0)); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("Modify", func(t *testing.T) {
		lib := tu.NewFakeLibrary(t)
		srv, _ := NewLibraryClient(lib.URL(), "US", "dest-token")
		ctx := context.Background()

		if err := srv.Modify(ctx, models.OpAdd, []string{"a", "b"}); err != nil {
			t.Fatalf("Modify(add) error = %v", err)
		}
		if err := srv.Modify(ctx, models.OpDelete, []string{"a"}); err != nil {
			t.Fatalf("Modify(delete) error = %v", err)
		}

		calls := lib.Calls()
		if len(calls) != 2 {
			t.Fatalf("expected 2 calls, got %d", len(calls))
		}
		if calls[0].Method != http.MethodPut || calls[0].RawQuery != "ids=a%2Cb" {
			t.Errorf("unexpected first call %+v", calls[0])
		}
		if calls[1].Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", calls[1].Method)
		}
		if saved := lib.Saved(); len(saved) != 1 || saved[0] != "b" {
			t.Errorf("unexpected saved ids %v", saved)
		}
	})

	t.Run("Modify rejects bad input", func(t *testing.T) {
		srv, _ := NewLibraryClient("http://example.invalid", "US", "token")
		ctx := context.Background()

		if err := srv.Modify(ctx, models.OpAdd, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for empty ids, got %v", err)
		}
		if err := srv.Modify(ctx, models.OpDelete, make([]string, 51)); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for oversized batch, got %v", err)
		}
		if err := srv.Modify(ctx, models.Operation("move"), []string{"a"}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for unknown op, got %v", err)
		}
	})

	t.Run("Modify non-200", func(t *testing.T) {
		lib := tu.NewFakeLibrary(t)
		lib.FailCall(1)
		srv, _ := NewLibraryClient(lib.URL(), "US", "token")

		err := srv.SaveTracks(context.Background(), []string{"a"})
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Method != http.MethodPut {
			t.Errorf("expected PUT in error, got %s", apiErr.Method)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		srv, _ := NewLibraryClient(url, "US", "token")
		err := srv.RemoveTracks(context.Background(), []string{"a"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{Method: "DELETE", URL: "http://x/me/tracks?ids=a", StatusCode: 403, Body: "forbidden"}
	msg := err.Error()
	for _, part := range []string{"DELETE", "403", "forbidden", "ids=a"} {
		if !strings.Contains(msg, part) {
			t.Errorf("expected %q in %q", part, msg)
		}
	}
}
