package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/composite"
	"github.com/goliatone/go-formsync/pkg/logging"
	"github.com/goliatone/go-formsync/pkg/records"
	"github.com/goliatone/go-formsync/pkg/submission"
)

// ErrItemIndex is returned for item operations outside the item list.
var ErrItemIndex = errors.New("session: item index out of range")

// TemplateSession is one open record template form.
type TemplateSession struct {
	id        string
	persister records.Persister
	logger    *zap.Logger

	mu         sync.Mutex
	closed     bool
	templateID int64
	doc        composite.Document
}

// NewTemplateSession opens a template form. A templateID of 0 creates a new
// template; otherwise seed is the stored template being edited.
func NewTemplateSession(deps Deps, templateID int64, seed composite.Document) *TemplateSession {
	id := uuid.NewString()
	return &TemplateSession{
		id:         id,
		persister:  deps.Persister,
		logger:     logging.OrNop(deps.Logger).With(zap.String("session", id)),
		templateID: templateID,
		doc:        seed.Clone(),
	}
}

// ID returns the session identifier used in logs.
func (s *TemplateSession) ID() string {
	return s.id
}

// SetTitle updates the template title.
func (s *TemplateSession) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Title = title
}

// SetDescription updates the template description.
func (s *TemplateSession) SetDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Description = description
}

// SetCategory updates the template category.
func (s *TemplateSession) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Category = category
}

// AddItem appends an item and returns its index.
func (s *TemplateSession) AddItem(item composite.Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.Options = append([]string(nil), item.Options...)
	s.doc.Items = append(s.doc.Items, item)
	return len(s.doc.Items) - 1
}

// UpdateItem replaces the item at idx.
func (s *TemplateSession) UpdateItem(idx int, item composite.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.doc.Items) {
		return fmt.Errorf("%w: %d", ErrItemIndex, idx)
	}
	item.Options = append([]string(nil), item.Options...)
	s.doc.Items[idx] = item
	return nil
}

// RemoveItem deletes the item at idx, preserving the order of the rest.
func (s *TemplateSession) RemoveItem(idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.doc.Items) {
		return fmt.Errorf("%w: %d", ErrItemIndex, idx)
	}
	s.doc.Items = append(s.doc.Items[:idx], s.doc.Items[idx+1:]...)
	return nil
}

// Document returns a copy of the current document.
func (s *TemplateSession) Document() composite.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Validate returns the current findings.
func (s *TemplateSession) Validate() []composite.Finding {
	return composite.Validate(s.Document())
}

// Submit validates and persists the template. Findings are returned as a
// *submission.Rejection without calling the persister.
func (s *TemplateSession) Submit(ctx context.Context) (records.TemplatePayload, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return records.TemplatePayload{}, ErrClosed
	}
	doc := s.doc.Clone()
	templateID := s.templateID
	s.mu.Unlock()

	payload, rejection := submission.AssembleTemplate(doc)
	if rejection != nil {
		s.logger.Info("template rejected", zap.Int("findings", len(rejection.Findings)))
		return records.TemplatePayload{}, rejection
	}
	if s.persister == nil {
		return records.TemplatePayload{}, errors.New("session: persister is not configured")
	}

	var err error
	if templateID > 0 {
		err = s.persister.UpdateTemplate(ctx, templateID, payload)
	} else {
		err = s.persister.CreateTemplate(ctx, payload)
	}
	if err != nil {
		return records.TemplatePayload{}, fmt.Errorf("session: persist template: %w", err)
	}
	s.logger.Info("template submitted", zap.Int64("template", templateID), zap.Int("questions", len(payload.Questions)))
	return payload, nil
}

// Close discards the session.
func (s *TemplateSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
