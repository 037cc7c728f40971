package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-formsync/pkg/metadata"
)

func TestClientVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("id") != "abc123" || q.Get("part") != "snippet" || q.Get("key") != "secret" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"abc123","snippet":{"title":"T","description":"D","thumbnails":{"default":{"url":"X","width":120,"height":90}}}}]}`))
	}))
	defer server.Close()

	client, err := New("secret", WithBaseURL(server.URL+"/"), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	resp, err := client.Video(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	meta := metadata.FromResponse(resp)
	if meta == nil || meta.Title != "T" || meta.Description != "D" || meta.ThumbnailURL != "X" {
		t.Fatalf("unexpected metadata %#v", meta)
	}
}

func TestClientVideo_NonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, err := New("secret", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Video(context.Background(), "abc123"); err == nil {
		t.Fatalf("expected error for 403")
	}

	fetcher := metadata.NewFetcher(client)
	if got := fetcher.Fetch(context.Background(), "abc123"); got != nil {
		t.Fatalf("expected fetcher to degrade to nil, got %#v", got)
	}
}

func TestClientVideo_EmptyID(t *testing.T) {
	client, err := New("secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Video(context.Background(), ""); !errors.Is(err, metadata.ErrEmptyIdentifier) {
		t.Fatalf("expected ErrEmptyIdentifier, got %v", err)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error without api key")
	}
}
