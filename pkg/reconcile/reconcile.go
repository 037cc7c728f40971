// Package reconcile merges user edits with values derived from external
// sources without ever overwriting what the user typed.
//
// Every field is either Clean or Dirty. A Clean field's effective value is
// recomputed from the candidate sources on every read, so the result does not
// depend on the order in which candidates arrived. The first direct edit marks
// the field Dirty for the rest of the session; from then on its effective value
// is exactly what the user last typed.
//
// A Reconciler is not safe for concurrent use; sessions serialise access.
package reconcile

import (
	"strings"

	"github.com/goliatone/go-formsync/pkg/metadata"
)

// Well-known field names shared by link forms.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldThumbnail   = "thumbnail"
)

// Source identifies a candidate provider. Lower values win.
type Source int

const (
	SourceUser Source = iota
	SourceMetadata
	SourceRecord
)

func (s Source) String() string {
	switch s {
	case SourceUser:
		return "user"
	case SourceMetadata:
		return "metadata"
	case SourceRecord:
		return "record"
	default:
		return "unknown"
	}
}

// derivedSources lists the non-user sources in precedence order.
var derivedSources = []Source{SourceMetadata, SourceRecord}

// State is the per-field edit state.
type State int

const (
	Clean State = iota
	Dirty
)

func (s State) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// Field is the user-held portion of a logical field.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Dirty bool   `json:"dirty"`
}

// Reconciler tracks fields and their candidate values.
type Reconciler struct {
	order      []string
	fields     map[string]*Field
	candidates map[Source]map[string]string
	limits     map[string]int
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithFields registers additional field names up front so Snapshot and
// Fields report them even before any value arrives.
func WithFields(names ...string) Option {
	return func(r *Reconciler) {
		for _, name := range names {
			r.field(name)
		}
	}
}

// WithLimit caps user edits and candidate values of name to limit runes. A negative limit removes
// the cap.
func WithLimit(name string, limit int) Option {
	return func(r *Reconciler) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if limit < 0 {
			delete(r.limits, name)
			return
		}
		r.limits[name] = limit
	}
}

// New returns a Reconciler seeded with the link form fields. Descriptions
// are capped at metadata.MaxDescriptionLength runes.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		fields:     make(map[string]*Field),
		candidates: make(map[Source]map[string]string),
		limits:     map[string]int{FieldDescription: metadata.MaxDescriptionLength},
	}
	WithFields(FieldTitle, FieldDescription, FieldThumbnail)(r)
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Edit records a direct user edit. The field becomes Dirty and stays Dirty.
func (r *Reconciler) Edit(name, value string) {
	field := r.field(name)
	if field == nil {
		return
	}
	if limit, ok := r.limits[field.Name]; ok {
		value = metadata.Truncate(value, limit)
	}
	field.Value = value
	field.Dirty = true
}

// SetCandidate sets the value offered by src for name. Setting a SourceUser
// candidate is equivalent to Edit. Field limits apply to candidates too.
func (r *Reconciler) SetCandidate(src Source, name, value string) {
	if src == SourceUser {
		r.Edit(name, value)
		return
	}
	field := r.field(name)
	if field == nil {
		return
	}
	values := r.candidates[src]
	if values == nil {
		values = make(map[string]string)
		r.candidates[src] = values
	}
	if limit, ok := r.limits[field.Name]; ok {
		value = metadata.Truncate(value, limit)
	}
	values[field.Name] = value
}

// ClearCandidates drops every value offered by src.
func (r *Reconciler) ClearCandidates(src Source) {
	delete(r.candidates, src)
}

// SetMetadata replaces the metadata candidates. A nil meta clears them.
func (r *Reconciler) SetMetadata(meta *metadata.Metadata) {
	r.ClearCandidates(SourceMetadata)
	if meta == nil {
		return
	}
	r.SetCandidate(SourceMetadata, FieldTitle, meta.Title)
	r.SetCandidate(SourceMetadata, FieldDescription, meta.Description)
	r.SetCandidate(SourceMetadata, FieldThumbnail, meta.ThumbnailURL)
}

// SetRecord replaces the existing-record candidates with values keyed by
// field name.
func (r *Reconciler) SetRecord(values map[string]string) {
	r.ClearCandidates(SourceRecord)
	for name, value := range values {
		r.SetCandidate(SourceRecord, name, value)
	}
}

// Clone returns an independent copy of r.
func (r *Reconciler) Clone() *Reconciler {
	out := &Reconciler{
		order:      append([]string(nil), r.order...),
		fields:     make(map[string]*Field, len(r.fields)),
		candidates: make(map[Source]map[string]string, len(r.candidates)),
		limits:     make(map[string]int, len(r.limits)),
	}
	for name, field := range r.fields {
		copied := *field
		out.fields[name] = &copied
	}
	for src, values := range r.candidates {
		copied := make(map[string]string, len(values))
		for name, value := range values {
			copied[name] = value
		}
		out.candidates[src] = copied
	}
	for name, limit := range r.limits {
		out.limits[name] = limit
	}
	return out
}

// Effective returns the value used for display and submission.
func (r *Reconciler) Effective(name string) string {
	name = strings.TrimSpace(name)
	if field, ok := r.fields[name]; ok && field.Dirty {
		return field.Value
	}
	for _, src := range derivedSources {
		if value := r.candidates[src][name]; value != "" {
			return value
		}
	}
	return ""
}

// State reports whether name has been edited.
func (r *Reconciler) State(name string) State {
	if field, ok := r.fields[strings.TrimSpace(name)]; ok && field.Dirty {
		return Dirty
	}
	return Clean
}

// Field returns a copy of the user-held state for name.
func (r *Reconciler) Field(name string) Field {
	name = strings.TrimSpace(name)
	if field, ok := r.fields[name]; ok {
		return *field
	}
	return Field{Name: name}
}

// Fields returns copies of every registered field in registration order.
func (r *Reconciler) Fields() []Field {
	out := make([]Field, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.fields[name])
	}
	return out
}

// Snapshot returns the effective value of every registered field.
func (r *Reconciler) Snapshot() map[string]string {
	out := make(map[string]string, len(r.order))
	for _, name := range r.order {
		out[name] = r.Effective(name)
	}
	return out
}

// IsComplete reports whether the form may be submitted as far as the title is
// concerned. Metadata with a title counts even while the title field is not
// yet showing it, so the submit control does not flicker during a fetch.
func (r *Reconciler) IsComplete(meta *metadata.Metadata) bool {
	if strings.TrimSpace(r.Effective(FieldTitle)) != "" {
		return true
	}
	return meta != nil && strings.TrimSpace(meta.Title) != ""
}

func (r *Reconciler) field(name string) *Field {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if field, ok := r.fields[name]; ok {
		return field
	}
	field := &Field{Name: name}
	r.fields[name] = field
	r.order = append(r.order, name)
	return field
}
