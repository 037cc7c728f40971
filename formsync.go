// Package formsync exposes the link and template form engine from the module
// root: identifier extraction, metadata lookup, field reconciliation,
// template validation and submission assembly.
package formsync

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/composite"
	"github.com/goliatone/go-formsync/pkg/linkid"
	"github.com/goliatone/go-formsync/pkg/metadata"
	"github.com/goliatone/go-formsync/pkg/metadata/youtube"
	"github.com/goliatone/go-formsync/pkg/reconcile"
	"github.com/goliatone/go-formsync/pkg/records"
	"github.com/goliatone/go-formsync/pkg/session"
	"github.com/goliatone/go-formsync/pkg/submission"
)

// Metadata aliases metadata.Metadata for callers that only import the root.
type Metadata = metadata.Metadata

// Document aliases composite.Document.
type Document = composite.Document

// Item aliases composite.Item.
type Item = composite.Item

// Finding aliases composite.Finding.
type Finding = composite.Finding

// Rejection aliases submission.Rejection.
type Rejection = submission.Rejection

// LinkPayload aliases records.LinkPayload.
type LinkPayload = records.LinkPayload

// SessionDeps aliases session.Deps.
type SessionDeps = session.Deps

// ExtractIdentifier returns the video identifier in raw, or "".
func ExtractIdentifier(raw string) string {
	return linkid.Extract(raw)
}

// NewReconciler returns a reconciler for the title, description and
// thumbnail fields.
func NewReconciler(opts ...reconcile.Option) *reconcile.Reconciler {
	return reconcile.New(opts...)
}

// Validate runs the composite validator over doc.
func Validate(doc Document) []Finding {
	return composite.Validate(doc)
}

// Assemble builds a link payload or explains why it cannot.
func Assemble(in submission.Input) (submission.Payload, *Rejection) {
	return submission.Assemble(in)
}

// NewYouTubeFetcher builds a deduplicating metadata fetcher backed by the
// YouTube Data API.
func NewYouTubeFetcher(apiKey string, logger *zap.Logger, opts ...youtube.Option) (*metadata.Fetcher, error) {
	client, err := youtube.New(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return metadata.NewFetcher(client, metadata.WithLogger(logger)), nil
}

// NewLinkSession opens a link form session in create mode.
func NewLinkSession(ctx context.Context, deps SessionDeps, opts ...session.Option) *session.LinkSession {
	return session.NewLinkSession(ctx, deps, opts...)
}

// NewTemplateSession opens a template form session.
func NewTemplateSession(deps SessionDeps, templateID int64, seed Document) *session.TemplateSession {
	return session.NewTemplateSession(deps, templateID, seed)
}
