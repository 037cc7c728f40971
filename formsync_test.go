package formsync

import (
	"context"
	"testing"

	"github.com/goliatone/go-formsync/pkg/composite"
	"github.com/goliatone/go-formsync/pkg/reconcile"
	"github.com/goliatone/go-formsync/pkg/submission"
)

func TestExtractIdentifier(t *testing.T) {
	if got := ExtractIdentifier("https://youtu.be/abc123"); got != "abc123" {
		t.Fatalf("expected abc123, got %q", got)
	}
}

func TestAssembleThroughFacade(t *testing.T) {
	fields := NewReconciler()
	fields.SetMetadata(&Metadata{Title: "Fetched"})

	payload, rejection := Assemble(submission.Input{
		Fields:     fields,
		CategoryID: 3,
		LinkURL:    "https://youtu.be/abc123",
	})
	if rejection != nil {
		t.Fatalf("unexpected rejection: %v", rejection)
	}
	if payload.Link.Title != "Fetched" || payload.Link.CategoryID != 3 {
		t.Fatalf("unexpected payload %#v", payload.Link)
	}
	if fields.State(reconcile.FieldTitle) != reconcile.Clean {
		t.Fatalf("assembling must not mark fields dirty")
	}
}

func TestValidateThroughFacade(t *testing.T) {
	findings := Validate(Document{Title: "", Items: []Item{{TagName: composite.TagBase, Type: composite.ItemText}}})
	kinds := composite.Kinds(findings)
	if len(kinds) != 2 || kinds[0] != composite.UntitledDocument || kinds[1] != composite.UntitledItem {
		t.Fatalf("unexpected findings %v", kinds)
	}
}

func TestNewYouTubeFetcherRequiresKey(t *testing.T) {
	if _, err := NewYouTubeFetcher("", nil); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestSessionsThroughFacade(t *testing.T) {
	s := NewLinkSession(context.Background(), SessionDeps{})
	s.SetLinkURL("https://example.com")
	if s.Snapshot().Identifier != "" {
		t.Fatalf("expected no identifier for a plain link")
	}
	s.Close()

	ts := NewTemplateSession(SessionDeps{}, 0, Document{Title: "문진"})
	if len(ts.Validate()) != 0 {
		t.Fatalf("expected empty template to be valid")
	}
	ts.Close()
}
