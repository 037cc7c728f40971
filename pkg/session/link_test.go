package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formsync/pkg/metadata"
	"github.com/goliatone/go-formsync/pkg/reconcile"
	"github.com/goliatone/go-formsync/pkg/records"
	"github.com/goliatone/go-formsync/pkg/submission"
	"github.com/goliatone/go-formsync/pkg/testsupport"
)

func TestLinkSession_AutoFill(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := testsupport.NewGatedFetcher()
	persister := &testsupport.Persister{}
	s := NewLinkSession(context.Background(), Deps{Fetcher: fetcher, Persister: persister})
	defer s.Close()

	s.SetLinkURL("https://youtu.be/abc123")
	if got := s.Snapshot().Identifier; got != "abc123" {
		t.Fatalf("expected identifier abc123, got %q", got)
	}
	if s.IsComplete() {
		t.Fatalf("form should not be complete before metadata arrives")
	}

	fetcher.Release("abc123", &metadata.Metadata{Title: "T", Description: "D", ThumbnailURL: "X"})
	if err := s.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	if got := s.Effective(reconcile.FieldTitle); got != "T" {
		t.Fatalf("expected title T, got %q", got)
	}
	if got := s.Effective(reconcile.FieldDescription); got != "D" {
		t.Fatalf("expected description D, got %q", got)
	}
	if !s.IsComplete() {
		t.Fatalf("expected complete form after metadata")
	}
	if s.CanSubmit() {
		t.Fatalf("cannot submit without a category")
	}

	s.SetCategory(2)
	if !s.CanSubmit() {
		t.Fatalf("expected submittable form")
	}

	payload, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := records.LinkPayload{CategoryID: 2, LinkURL: "https://youtu.be/abc123", Title: "T", Description: "D", ThumbnailURL: "X"}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]records.LinkPayload{want}, persister.CreatedLinks); diff != "" {
		t.Fatalf("persisted mismatch (-want +got):\n%s", diff)
	}
}

func TestLinkSession_UserEditBeforeMetadata(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := testsupport.NewGatedFetcher()
	s := NewLinkSession(context.Background(), Deps{Fetcher: fetcher})
	defer s.Close()

	s.SetLinkURL("https://youtu.be/abc123")
	s.Edit(reconcile.FieldTitle, "My Title")
	fetcher.Release("abc123", &metadata.Metadata{Title: "T", Description: "D", ThumbnailURL: "X"})
	if err := s.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	snap := s.Snapshot()
	if snap.Title != "My Title" || !snap.TitleDirty {
		t.Fatalf("expected dirty typed title, got %q (dirty=%v)", snap.Title, snap.TitleDirty)
	}
	if snap.Description != "D" || snap.DescriptionDirty {
		t.Fatalf("expected clean fetched description, got %q (dirty=%v)", snap.Description, snap.DescriptionDirty)
	}
}

func TestLinkSession_DiscardsStaleMetadata(t *testing.T) {
	for _, newestFirst := range []bool{true, false} {
		t.Run(map[bool]string{true: "newest first", false: "oldest first"}[newestFirst], func(t *testing.T) {
			defer goleak.VerifyNone(t)

			fetcher := testsupport.NewGatedFetcher()
			s := NewLinkSession(context.Background(), Deps{Fetcher: fetcher})
			defer s.Close()

			s.SetLinkURL("https://youtu.be/first")
			s.SetLinkURL("https://youtu.be/second")

			if newestFirst {
				fetcher.Release("second", &metadata.Metadata{Title: "Second"})
				fetcher.Release("first", &metadata.Metadata{Title: "First"})
			} else {
				fetcher.Release("first", &metadata.Metadata{Title: "First"})
				fetcher.Release("second", &metadata.Metadata{Title: "Second"})
			}
			if err := s.Wait(); err != nil {
				t.Fatalf("wait: %v", err)
			}

			if got := s.Effective(reconcile.FieldTitle); got != "Second" {
				t.Fatalf("expected latest metadata to win, got %q", got)
			}
			if diff := cmp.Diff([]string{"first", "second"}, sortedCalls(fetcher.Calls())); diff != "" {
				t.Fatalf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLinkSession_UnresolvableLinkClearsMetadata(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := testsupport.NewGatedFetcher()
	s := NewLinkSession(context.Background(), Deps{Fetcher: fetcher})
	defer s.Close()

	s.SetLinkURL("https://youtu.be/abc123")
	fetcher.Release("abc123", &metadata.Metadata{Title: "T"})
	if err := s.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	s.SetLinkURL("https://example.com/not-a-video")
	snap := s.Snapshot()
	if snap.Identifier != "" || snap.Metadata != nil || snap.Title != "" {
		t.Fatalf("expected metadata to be dropped, got %#v", snap)
	}
	if len(fetcher.Calls()) != 1 {
		t.Fatalf("expected no fetch for an unresolvable link, got %v", fetcher.Calls())
	}
}

func TestLinkSession_SameIdentifierDoesNotRefetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := testsupport.NewGatedFetcher()
	s := NewLinkSession(context.Background(), Deps{Fetcher: fetcher})
	defer s.Close()

	s.SetLinkURL("https://youtu.be/abc123")
	fetcher.Release("abc123", &metadata.Metadata{Title: "T"})
	_ = s.Wait()

	s.SetLinkURL("https://www.youtube.com/watch?v=abc123")
	if got := s.Effective(reconcile.FieldTitle); got != "T" {
		t.Fatalf("expected metadata to be kept for the same identifier, got %q", got)
	}
	if len(fetcher.Calls()) != 1 {
		t.Fatalf("expected a single fetch, got %v", fetcher.Calls())
	}
}

func TestLinkSession_EditModeArrivalOrder(t *testing.T) {
	record := &records.Record{
		ID:          7,
		URL:         "https://youtu.be/saved01",
		Title:       "Saved",
		Description: "Saved description",
		Category:    &records.Category{ID: 5},
	}
	meta := &metadata.Metadata{Title: "Fetched", ThumbnailURL: "thumb"}

	for _, recordFirst := range []bool{true, false} {
		t.Run(map[bool]string{true: "record first", false: "metadata first"}[recordFirst], func(t *testing.T) {
			defer goleak.VerifyNone(t)

			fetcher := testsupport.NewGatedFetcher()
			lookup := testsupport.NewGatedLookup()
			persister := &testsupport.Persister{}
			s := NewLinkSession(context.Background(), Deps{Fetcher: fetcher, Lookup: lookup, Persister: persister})
			defer s.Close()

			if err := s.Open(7); err != nil {
				t.Fatalf("open: %v", err)
			}
			s.SetLinkURL("https://youtu.be/new01")

			if recordFirst {
				lookup.Release(record, nil)
				fetcher.Release("new01", meta)
			} else {
				fetcher.Release("new01", meta)
				lookup.Release(record, nil)
			}
			if err := s.Wait(); err != nil {
				t.Fatalf("wait: %v", err)
			}

			snap := s.Snapshot()
			if snap.Mode != ModeEdit || snap.CategoryID != 5 {
				t.Fatalf("unexpected edit state %#v", snap)
			}
			if snap.Title != "Fetched" || snap.Description != "Saved description" || snap.ThumbnailURL != "thumb" {
				t.Fatalf("unexpected merge: title=%q description=%q thumbnail=%q", snap.Title, snap.Description, snap.ThumbnailURL)
			}

			payload, err := s.Submit(context.Background())
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if persister.UpdatedLinks[7] != payload {
				t.Fatalf("expected update of record 7, got %#v", persister.UpdatedLinks)
			}
		})
	}
}

func TestLinkSession_EditModeFetchesStoredLink(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := testsupport.NewGatedFetcher()
	lookup := testsupport.NewGatedLookup()
	s := NewLinkSession(context.Background(), Deps{Fetcher: fetcher, Lookup: lookup})
	defer s.Close()

	if err := s.Open(7); err != nil {
		t.Fatalf("open: %v", err)
	}
	fetcher.Release("saved01", &metadata.Metadata{Title: "Fetched", ThumbnailURL: "thumb"})
	lookup.Release(&records.Record{ID: 7, URL: "https://youtu.be/saved01", Title: "Saved", Description: "Stored"}, nil)
	if err := s.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	snap := s.Snapshot()
	if snap.Identifier != "saved01" || snap.Title != "Fetched" || snap.Description != "Stored" {
		t.Fatalf("unexpected edit state %#v", snap)
	}
	if snap.LinkURL != "" {
		t.Fatalf("stored link must not be reported as typed, got %q", snap.LinkURL)
	}

	s.SetLinkURL("https://www.youtube.com/watch?v=saved01")
	if diff := cmp.Diff([]string{"saved01"}, fetcher.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestLinkSession_LongStoredDescriptionIsCapped(t *testing.T) {
	defer goleak.VerifyNone(t)

	lookup := testsupport.NewGatedLookup()
	persister := &testsupport.Persister{}
	s := NewLinkSession(context.Background(), Deps{Lookup: lookup, Persister: persister})
	defer s.Close()

	if err := s.Open(8); err != nil {
		t.Fatalf("open: %v", err)
	}
	lookup.Release(&records.Record{
		ID:          8,
		URL:         "https://example.com/article",
		Title:       "Saved",
		Description: strings.Repeat("가", metadata.MaxDescriptionLength+40),
		Category:    &records.Category{ID: 2},
	}, nil)
	if err := s.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	payload, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if n := utf8.RuneCountInString(payload.Description); n != metadata.MaxDescriptionLength {
		t.Fatalf("expected %d runes, got %d", metadata.MaxDescriptionLength, n)
	}
}

func TestLinkSession_ExplicitCategoryBeatsRecord(t *testing.T) {
	defer goleak.VerifyNone(t)

	lookup := testsupport.NewGatedLookup()
	s := NewLinkSession(context.Background(), Deps{Lookup: lookup})
	defer s.Close()

	if err := s.Open(3); err != nil {
		t.Fatalf("open: %v", err)
	}
	s.SetCategory(9)
	lookup.Release(&records.Record{ID: 3, URL: "https://youtu.be/x", Category: &records.Category{ID: 1}}, nil)
	_ = s.Wait()

	if got := s.Snapshot().CategoryID; got != 9 {
		t.Fatalf("expected explicit category, got %d", got)
	}
}

func TestLinkSession_LookupFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	lookup := testsupport.NewGatedLookup()
	s := NewLinkSession(context.Background(), Deps{Lookup: lookup})
	defer s.Close()

	if err := s.Open(4); err != nil {
		t.Fatalf("open: %v", err)
	}
	lookup.Release(nil, records.ErrNotFound)
	if err := s.Wait(); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Wait, got %v", err)
	}
	if snap := s.Snapshot(); snap.Record != nil || snap.Pending != 0 {
		t.Fatalf("unexpected state after failed lookup %#v", snap)
	}
}

func TestLinkSession_SubmitRejected(t *testing.T) {
	defer goleak.VerifyNone(t)

	persister := &testsupport.Persister{}
	s := NewLinkSession(context.Background(), Deps{Persister: persister})
	defer s.Close()

	s.Edit(reconcile.FieldTitle, "Title")
	_, err := s.Submit(context.Background())

	var rejection *submission.Rejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if diff := cmp.Diff([]string{submission.FieldCategory, submission.FieldLinkURL}, rejection.MissingFields); diff != "" {
		t.Fatalf("missing fields mismatch (-want +got):\n%s", diff)
	}
	if persister.Calls() != 0 {
		t.Fatalf("persister must not be called on rejection")
	}
}

func TestLinkSession_PersistError(t *testing.T) {
	defer goleak.VerifyNone(t)

	persister := &testsupport.Persister{Err: errors.New("unavailable")}
	s := NewLinkSession(context.Background(), Deps{Persister: persister})
	defer s.Close()

	s.SetCategory(1)
	s.SetLinkURL("https://example.com/page")
	s.Edit(reconcile.FieldTitle, "Title")
	if _, err := s.Submit(context.Background()); err == nil {
		t.Fatalf("expected persistence error")
	}
}

func TestLinkSession_CloseCancelsFetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := testsupport.NewGatedFetcher()
	s := NewLinkSession(context.Background(), Deps{Fetcher: fetcher})

	s.SetLinkURL("https://youtu.be/never")
	s.Close()

	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if got := fetcher.Calls(); len(got) != 1 {
		t.Fatalf("expected one fetch attempt, got %v", got)
	}
}

func TestLinkSession_CloseConcurrentWithSetLinkURL(t *testing.T) {
	defer goleak.VerifyNone(t)

	for i := 0; i < 50; i++ {
		fetcher := testsupport.NewGatedFetcher()
		lookup := testsupport.NewGatedLookup()
		s := NewLinkSession(context.Background(), Deps{Fetcher: fetcher, Lookup: lookup})
		if err := s.Open(int64(i + 1)); err != nil {
			t.Fatalf("open: %v", err)
		}

		var wg sync.WaitGroup
		start := make(chan struct{})
		wg.Add(3)
		go func() {
			defer wg.Done()
			<-start
			s.SetLinkURL("https://youtu.be/first")
			s.SetLinkURL("https://youtu.be/second")
		}()
		go func() {
			defer wg.Done()
			<-start
			lookup.Release(&records.Record{ID: int64(i + 1), URL: "https://youtu.be/stored"}, nil)
		}()
		go func() {
			defer wg.Done()
			<-start
			s.Close()
		}()
		close(start)
		wg.Wait()
		s.Close()

		if snap := s.Snapshot(); snap.Pending != 0 {
			t.Fatalf("iteration %d: expected no work after close, got %d pending", i, snap.Pending)
		}
	}
}

func TestLinkSession_OnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		mu     sync.Mutex
		titles []string
	)
	fetcher := testsupport.NewGatedFetcher()
	s := NewLinkSession(context.Background(), Deps{Fetcher: fetcher}, WithOnChange(func(snap Snapshot) {
		mu.Lock()
		titles = append(titles, snap.Title)
		mu.Unlock()
	}))
	defer s.Close()

	s.SetLinkURL("https://youtu.be/abc123")
	fetcher.Release("abc123", &metadata.Metadata{Title: "T"})
	_ = s.Wait()
	s.Edit(reconcile.FieldTitle, "Mine")

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"", "T", "Mine"}, titles); diff != "" {
		t.Fatalf("change notifications mismatch (-want +got):\n%s", diff)
	}
}

func sortedCalls(calls []string) []string {
	out := append([]string(nil), calls...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
