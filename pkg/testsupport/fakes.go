package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-formsync/pkg/metadata"
	"github.com/goliatone/go-formsync/pkg/records"
)

// GatedFetcher blocks each Fetch until the test releases a result for the
// requested identifier, letting tests choose completion order.
type GatedFetcher struct {
	mu    sync.Mutex
	gates map[string]chan *metadata.Metadata
	calls []string
}

// NewGatedFetcher returns an empty GatedFetcher.
func NewGatedFetcher() *GatedFetcher {
	return &GatedFetcher{gates: make(map[string]chan *metadata.Metadata)}
}

// Fetch waits for Release(id, ...) or ctx cancellation.
func (g *GatedFetcher) Fetch(ctx context.Context, id string) *metadata.Metadata {
	g.mu.Lock()
	g.calls = append(g.calls, id)
	g.mu.Unlock()

	select {
	case meta := <-g.gate(id):
		return meta
	case <-ctx.Done():
		return nil
	}
}

// Release delivers meta to the pending (or next) Fetch of id.
func (g *GatedFetcher) Release(id string, meta *metadata.Metadata) {
	g.gate(id) <- meta
}

// Calls returns the identifiers fetched so far, in order.
func (g *GatedFetcher) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *GatedFetcher) gate(id string) chan *metadata.Metadata {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[id]
	if !ok {
		ch = make(chan *metadata.Metadata, 1)
		g.gates[id] = ch
	}
	return ch
}

// GatedLookup blocks each Link call until the test releases it.
type GatedLookup struct {
	results chan lookupResult
}

type lookupResult struct {
	record *records.Record
	err    error
}

// NewGatedLookup returns a GatedLookup.
func NewGatedLookup() *GatedLookup {
	return &GatedLookup{results: make(chan lookupResult, 1)}
}

// Link waits for Release or ctx cancellation.
func (g *GatedLookup) Link(ctx context.Context, _ int64) (*records.Record, error) {
	select {
	case res := <-g.results:
		return res.record, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release delivers the lookup outcome.
func (g *GatedLookup) Release(record *records.Record, err error) {
	g.results <- lookupResult{record: record, err: err}
}

// Persister records every call and returns Err when set.
type Persister struct {
	mu sync.Mutex

	Err             error
	CreatedLinks    []records.LinkPayload
	UpdatedLinks    map[int64]records.LinkPayload
	CreatedTemplate []records.TemplatePayload
	UpdatedTemplate map[int64]records.TemplatePayload
}

var _ records.Persister = (*Persister)(nil)

// CreateLink implements records.Persister.
func (p *Persister) CreateLink(_ context.Context, payload records.LinkPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.CreatedLinks = append(p.CreatedLinks, payload)
	return nil
}

// UpdateLink implements records.Persister.
func (p *Persister) UpdateLink(_ context.Context, id int64, payload records.LinkPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	if p.UpdatedLinks == nil {
		p.UpdatedLinks = make(map[int64]records.LinkPayload)
	}
	p.UpdatedLinks[id] = payload
	return nil
}

// CreateTemplate implements records.Persister.
func (p *Persister) CreateTemplate(_ context.Context, payload records.TemplatePayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.CreatedTemplate = append(p.CreatedTemplate, payload)
	return nil
}

// UpdateTemplate implements records.Persister.
func (p *Persister) UpdateTemplate(_ context.Context, id int64, payload records.TemplatePayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	if p.UpdatedTemplate == nil {
		p.UpdatedTemplate = make(map[int64]records.TemplatePayload)
	}
	p.UpdatedTemplate[id] = payload
	return nil
}

// Calls returns the total number of successful persistence calls.
func (p *Persister) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.CreatedLinks) + len(p.UpdatedLinks) + len(p.CreatedTemplate) + len(p.UpdatedTemplate)
}
