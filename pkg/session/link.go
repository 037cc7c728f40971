package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formsync/pkg/linkid"
	"github.com/goliatone/go-formsync/pkg/logging"
	"github.com/goliatone/go-formsync/pkg/metadata"
	"github.com/goliatone/go-formsync/pkg/reconcile"
	"github.com/goliatone/go-formsync/pkg/records"
	"github.com/goliatone/go-formsync/pkg/submission"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session: closed")

// MetadataFetcher resolves identifiers into metadata. Implementations return
// nil instead of failing; *metadata.Fetcher is the standard one.
type MetadataFetcher interface {
	Fetch(ctx context.Context, id string) *metadata.Metadata
}

// Deps are the collaborators a session calls into.
type Deps struct {
	Fetcher   MetadataFetcher
	Lookup    records.Lookup
	Persister records.Persister
	Logger    *zap.Logger
}

// Mode distinguishes create and edit sessions.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Snapshot is a consistent view of a link session.
type Snapshot struct {
	ID               string
	Mode             Mode
	RecordID         int64
	LinkURL          string
	Identifier       string
	CategoryID       int64
	Title            string
	Description      string
	ThumbnailURL     string
	TitleDirty       bool
	DescriptionDirty bool
	Metadata         *metadata.Metadata
	Record           *records.Record
	Complete         bool
	Pending          int
}

// Option configures a session.
type Option func(*options)

type options struct {
	onChange func(Snapshot)
}

// WithOnChange registers a callback invoked after every state change. It runs
// outside the session lock and may be called from background goroutines.
func WithOnChange(fn func(Snapshot)) Option {
	return func(o *options) {
		o.onChange = fn
	}
}

// LinkSession is one open link form.
type LinkSession struct {
	id       string
	deps     Deps
	logger   *zap.Logger
	onChange func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu          sync.Mutex
	closed      bool
	mode        Mode
	recordID    int64
	record      *records.Record
	fields      *reconcile.Reconciler
	meta        *metadata.Metadata
	linkURL     string
	latestID    string
	categoryID  int64
	categorySet bool
	pending     int
}

// NewLinkSession creates a session in create mode. Call Open to switch it to
// edit mode for an existing record.
func NewLinkSession(ctx context.Context, deps Deps, opts ...Option) *LinkSession {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	sessionCtx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()

	return &LinkSession{
		id:       id,
		deps:     deps,
		logger:   logging.OrNop(deps.Logger).With(zap.String("session", id)),
		onChange: cfg.onChange,
		ctx:      sessionCtx,
		cancel:   cancel,
		mode:     ModeCreate,
		fields:   reconcile.New(),
	}
}

// ID returns the session identifier used in logs.
func (s *LinkSession) ID() string {
	return s.id
}

// Open switches the session to edit mode and starts loading the record in the
// background. The record seeds clean fields once it arrives; unless a link was
// already entered, metadata for the stored link is then fetched as well.
func (s *LinkSession) Open(recordID int64) error {
	if recordID <= 0 {
		return fmt.Errorf("session: invalid record id %d", recordID)
	}
	if s.deps.Lookup == nil {
		return errors.New("session: record lookup is not configured")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mode = ModeEdit
	s.recordID = recordID
	s.pending++
	s.group.Go(func() error {
		record, err := s.deps.Lookup.Link(s.ctx, recordID)
		s.applyRecord(recordID, record, err)
		if err != nil {
			return fmt.Errorf("session: load record %d: %w", recordID, err)
		}
		return nil
	})
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *LinkSession) applyRecord(recordID int64, record *records.Record, err error) {
	s.mu.Lock()
	s.pending--
	if s.closed || s.recordID != recordID {
		s.mu.Unlock()
		return
	}
	if err != nil || record == nil {
		s.mu.Unlock()
		s.logger.Warn("record lookup failed", zap.Int64("record", recordID), zap.Error(err))
		s.notify()
		return
	}

	s.record = record
	s.fields.SetRecord(map[string]string{
		reconcile.FieldTitle:       record.Title,
		reconcile.FieldDescription: record.Description,
		reconcile.FieldThumbnail:   linkid.Info(record.URL).ThumbnailURL,
	})
	if !s.categorySet {
		s.categoryID = record.CategoryID()
	}
	storedID := ""
	if s.linkURL == "" && s.latestID == "" {
		storedID = linkid.Extract(record.URL)
	}
	if storedID != "" {
		s.latestID = storedID
		s.startFetchLocked(storedID)
	}
	s.mu.Unlock()

	s.logger.Debug("record loaded", zap.Int64("record", recordID))
	s.notify()
}

// SetLinkURL records the link as typed and, when it names a new identifier,
// fetches its metadata in the background. Metadata for the previous
// identifier is dropped immediately; results for superseded identifiers are
// ignored when they arrive.
func (s *LinkSession) SetLinkURL(raw string) {
	id := linkid.Extract(raw)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.linkURL = raw
	if id == s.latestID {
		s.mu.Unlock()
		s.notify()
		return
	}
	s.latestID = id
	s.meta = nil
	s.fields.SetMetadata(nil)
	if id != "" {
		s.startFetchLocked(id)
	}
	s.mu.Unlock()

	s.notify()
}

// startFetchLocked launches a metadata fetch. Callers hold s.mu and have
// checked that the session is open, so Close never waits on a group that is
// still growing.
func (s *LinkSession) startFetchLocked(id string) {
	s.pending++
	s.group.Go(func() error {
		meta := s.fetcher().Fetch(s.ctx, id)
		s.applyMetadata(id, meta)
		return nil
	})
}

func (s *LinkSession) fetcher() MetadataFetcher {
	if s.deps.Fetcher == nil {
		return noopFetcher{}
	}
	return s.deps.Fetcher
}

func (s *LinkSession) applyMetadata(id string, meta *metadata.Metadata) {
	s.mu.Lock()
	s.pending--
	if s.closed || s.latestID != id {
		s.mu.Unlock()
		s.logger.Debug("discarding stale metadata", zap.String("id", id))
		return
	}
	s.meta = meta
	s.fields.SetMetadata(meta)
	s.mu.Unlock()

	s.logger.Debug("metadata applied", zap.String("id", id), zap.Bool("found", meta != nil))
	s.notify()
}

// Edit applies a direct user edit to a reconciled field.
func (s *LinkSession) Edit(field, value string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.fields.Edit(field, value)
	s.mu.Unlock()
	s.notify()
}

// SetCategory selects the category. An explicit selection wins over the
// record's category regardless of arrival order.
func (s *LinkSession) SetCategory(id int64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.categoryID = id
	s.categorySet = true
	s.mu.Unlock()
	s.notify()
}

// Effective returns the effective value of a reconciled field.
func (s *LinkSession) Effective(field string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.Effective(field)
}

// IsComplete reports the form-readiness predicate.
func (s *LinkSession) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.IsComplete(s.meta)
}

// CanSubmit reports whether Submit would reach the persister, short of a
// persistence failure.
func (s *LinkSession) CanSubmit() bool {
	s.mu.Lock()
	complete := s.fields.IsComplete(s.meta)
	in := s.inputLocked()
	s.mu.Unlock()

	if !complete {
		return false
	}
	_, rejection := submission.Assemble(in)
	return rejection == nil
}

// Snapshot returns the current state.
func (s *LinkSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *LinkSession) snapshotLocked() Snapshot {
	var meta *metadata.Metadata
	if s.meta != nil {
		copied := *s.meta
		meta = &copied
	}
	var record *records.Record
	if s.record != nil {
		copied := *s.record
		record = &copied
	}
	return Snapshot{
		ID:               s.id,
		Mode:             s.mode,
		RecordID:         s.recordID,
		LinkURL:          s.linkURL,
		Identifier:       s.latestID,
		CategoryID:       s.categoryID,
		Title:            s.fields.Effective(reconcile.FieldTitle),
		Description:      s.fields.Effective(reconcile.FieldDescription),
		ThumbnailURL:     s.fields.Effective(reconcile.FieldThumbnail),
		TitleDirty:       s.fields.State(reconcile.FieldTitle) == reconcile.Dirty,
		DescriptionDirty: s.fields.State(reconcile.FieldDescription) == reconcile.Dirty,
		Metadata:         meta,
		Record:           record,
		Complete:         s.fields.IsComplete(s.meta),
		Pending:          s.pending,
	}
}

func (s *LinkSession) inputLocked() submission.Input {
	var meta *metadata.Metadata
	if s.meta != nil {
		copied := *s.meta
		meta = &copied
	}
	var record *records.Record
	if s.record != nil {
		copied := *s.record
		record = &copied
	}
	return submission.Input{
		Fields:     s.fields.Clone(),
		CategoryID: s.categoryID,
		LinkURL:    s.linkURL,
		Metadata:   meta,
		Record:     record,
	}
}

// Submit assembles the payload and persists it. A *submission.Rejection is
// returned, without calling the persister, when the form is not submittable.
func (s *LinkSession) Submit(ctx context.Context) (records.LinkPayload, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return records.LinkPayload{}, ErrClosed
	}
	mode, recordID := s.mode, s.recordID
	in := s.inputLocked()
	s.mu.Unlock()

	payload, rejection := submission.Assemble(in)
	if rejection != nil {
		s.logger.Info("submission rejected", zap.Strings("missing", rejection.MissingFields), zap.Int("findings", len(rejection.Findings)))
		return records.LinkPayload{}, rejection
	}
	if s.deps.Persister == nil {
		return records.LinkPayload{}, errors.New("session: persister is not configured")
	}

	var err error
	if mode == ModeEdit {
		err = s.deps.Persister.UpdateLink(ctx, recordID, payload.Link)
	} else {
		err = s.deps.Persister.CreateLink(ctx, payload.Link)
	}
	if err != nil {
		return records.LinkPayload{}, fmt.Errorf("session: persist link: %w", err)
	}
	s.logger.Info("link submitted", zap.String("mode", string(mode)), zap.Int64("record", recordID))
	return payload.Link, nil
}

// Wait blocks until every background load and fetch has settled and returns
// the record lookup error, if any. Call it from the goroutine that drives the
// session; Close is the safe way to stop work from another goroutine.
func (s *LinkSession) Wait() error {
	return s.group.Wait()
}

// Close discards the session, cancelling in-flight work and waiting for it to
// stop. Later results are ignored.
func (s *LinkSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	_ = s.group.Wait()
}

func (s *LinkSession) notify() {
	if s.onChange == nil {
		return
	}
	s.onChange(s.Snapshot())
}

type noopFetcher struct{}

func (noopFetcher) Fetch(context.Context, string) *metadata.Metadata { return nil }
