package metadata

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-formsync/pkg/logging"
)

// Fetcher resolves identifiers into Metadata, issuing at most one provider
// call per distinct identifier. Failed calls are not remembered, so a later
// request for the same identifier may try again.
type Fetcher struct {
	provider Provider
	logger   *zap.Logger

	group singleflight.Group

	mu       sync.Mutex
	resolved map[string]*Metadata
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLogger attaches a logger used to report degraded fetches.
func WithLogger(logger *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher wraps provider.
func NewFetcher(provider Provider, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		provider: provider,
		logger:   logging.OrNop(nil),
		resolved: make(map[string]*Metadata),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fetch returns the metadata for id, or nil when id is empty, the provider
// fails, or the provider has no result for it.
func (f *Fetcher) Fetch(ctx context.Context, id string) *Metadata {
	id = strings.TrimSpace(id)
	if f == nil || f.provider == nil || id == "" {
		return nil
	}

	if meta, ok := f.cached(id); ok {
		return meta.clone()
	}

	value, err, _ := f.group.Do(id, func() (any, error) {
		if meta, ok := f.cached(id); ok {
			return meta, nil
		}
		resp, err := f.provider.Video(ctx, id)
		if err != nil {
			return nil, err
		}
		meta := FromResponse(resp)
		f.mu.Lock()
		f.resolved[id] = meta
		f.mu.Unlock()
		return meta, nil
	})
	if err != nil {
		f.logger.Warn("metadata fetch failed", zap.String("id", id), zap.Error(err))
		return nil
	}

	meta, _ := value.(*Metadata)
	if meta == nil {
		f.logger.Debug("metadata provider returned no items", zap.String("id", id))
		return nil
	}
	return meta.clone()
}

func (f *Fetcher) cached(id string) (*Metadata, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta, ok := f.resolved[id]
	return meta, ok
}

func (m *Metadata) clone() *Metadata {
	if m == nil {
		return nil
	}
	copied := *m
	return &copied
}
