package metadata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func videoResponse(title string) *Response {
	return &Response{Items: []Item{{Snippet: Snippet{
		Title:       title,
		Description: title + " description",
		Thumbnails:  Thumbnails{Default: &Thumbnail{URL: "https://img/" + title}},
	}}}}
}

func TestFetcher_SkipsEmptyIdentifier(t *testing.T) {
	var calls atomic.Int32
	fetcher := NewFetcher(ProviderFunc(func(context.Context, string) (*Response, error) {
		calls.Add(1)
		return videoResponse("x"), nil
	}))

	if got := fetcher.Fetch(context.Background(), "  "); got != nil {
		t.Fatalf("expected nil for empty id, got %#v", got)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no provider calls, got %d", calls.Load())
	}
}

func TestFetcher_OneCallPerIdentifier(t *testing.T) {
	var calls atomic.Int32
	fetcher := NewFetcher(ProviderFunc(func(_ context.Context, id string) (*Response, error) {
		calls.Add(1)
		return videoResponse(id), nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := fetcher.Fetch(context.Background(), "abc123"); got == nil || got.Title != "abc123" {
				t.Errorf("unexpected metadata %#v", got)
			}
		}()
	}
	wg.Wait()

	fetcher.Fetch(context.Background(), "abc123")
	fetcher.Fetch(context.Background(), "other")

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 provider calls, got %d", got)
	}
}

func TestFetcher_DegradesErrorsToNil(t *testing.T) {
	var calls atomic.Int32
	fetcher := NewFetcher(ProviderFunc(func(context.Context, string) (*Response, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("quota exceeded")
		}
		return videoResponse("recovered"), nil
	}))

	if got := fetcher.Fetch(context.Background(), "abc"); got != nil {
		t.Fatalf("expected nil on provider error, got %#v", got)
	}
	got := fetcher.Fetch(context.Background(), "abc")
	if got == nil || got.Title != "recovered" {
		t.Fatalf("expected retry after failure, got %#v", got)
	}
}

func TestFetcher_EmptyResultIsRemembered(t *testing.T) {
	var calls atomic.Int32
	fetcher := NewFetcher(ProviderFunc(func(context.Context, string) (*Response, error) {
		calls.Add(1)
		return &Response{}, nil
	}))

	for i := 0; i < 3; i++ {
		if got := fetcher.Fetch(context.Background(), "missing"); got != nil {
			t.Fatalf("expected nil for empty result, got %#v", got)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single provider call, got %d", calls.Load())
	}
}

func TestFetcher_ReturnsCopies(t *testing.T) {
	fetcher := NewFetcher(ProviderFunc(func(_ context.Context, id string) (*Response, error) {
		return videoResponse(id), nil
	}))
	first := fetcher.Fetch(context.Background(), "abc")
	first.Title = "mutated"
	if second := fetcher.Fetch(context.Background(), "abc"); second.Title != "abc" {
		t.Fatalf("cached metadata was mutated: %#v", second)
	}
}
