package records

import (
	"context"
	"errors"

	"github.com/goliatone/go-formsync/pkg/composite"
)

// ErrNotFound is returned when the API has no record for the requested id.
var ErrNotFound = errors.New("records: not found")

// Category is a link category.
type Category struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Record is a previously saved link.
type Record struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    *Category `json:"category,omitempty"`
}

// CategoryID returns the record's category id, or 0 when unset.
func (r *Record) CategoryID() int64 {
	if r == nil || r.Category == nil {
		return 0
	}
	return r.Category.ID
}

// LinkPayload is the body of link create/update calls.
type LinkPayload struct {
	CategoryID   int64  `json:"category"`
	LinkURL      string `json:"linkUrl"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// TemplatePayload is the body of record template create/update calls.
type TemplatePayload struct {
	Category    string           `json:"category"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []composite.Item `json:"questions"`
}

// Lookup loads existing records for edit sessions.
type Lookup interface {
	Link(ctx context.Context, id int64) (*Record, error)
}

// Persister stores submissions.
type Persister interface {
	CreateLink(ctx context.Context, payload LinkPayload) error
	UpdateLink(ctx context.Context, id int64, payload LinkPayload) error
	CreateTemplate(ctx context.Context, payload TemplatePayload) error
	UpdateTemplate(ctx context.Context, id int64, payload TemplatePayload) error
}

// CategoryLister lists the categories a link may be filed under.
type CategoryLister interface {
	Categories(ctx context.Context) ([]Category, error)
}
