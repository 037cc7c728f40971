package metadata

import (
	"context"
	"errors"
)

// MaxDescriptionLength bounds Metadata.Description, counted in runes.
const MaxDescriptionLength = 500

// ErrEmptyIdentifier is returned by providers asked to resolve "".
var ErrEmptyIdentifier = errors.New("metadata: identifier is empty")

// Metadata is the derived record built from a provider response.
type Metadata struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Response mirrors the provider payload: items[0].snippet carries the data.
type Response struct {
	Items []Item `json:"items"`
}

// Item is a single provider result.
type Item struct {
	ID      string  `json:"id,omitempty"`
	Snippet Snippet `json:"snippet"`
}

// Snippet holds the descriptive fields of a result.
type Snippet struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Thumbnails  Thumbnails `json:"thumbnails"`
}

// Thumbnails lists the available preview images. Only the default size is
// consumed; the others are decoded for completeness.
type Thumbnails struct {
	Default *Thumbnail `json:"default,omitempty"`
	Medium  *Thumbnail `json:"medium,omitempty"`
	High    *Thumbnail `json:"high,omitempty"`
}

// Thumbnail is a single preview image.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Provider retrieves raw metadata for an identifier.
type Provider interface {
	Video(ctx context.Context, id string) (*Response, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, id string) (*Response, error)

// Video implements Provider.
func (f ProviderFunc) Video(ctx context.Context, id string) (*Response, error) {
	return f(ctx, id)
}
