package metadata

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FromResponse builds Metadata from a provider response. It returns nil when
// the response carries no first item. A missing default thumbnail degrades to
// an empty ThumbnailURL.
//
// Snippet text is plain text and is kept verbatim apart from NFC
// normalisation; only the description is truncated.
func FromResponse(resp *Response) *Metadata {
	if resp == nil || len(resp.Items) == 0 {
		return nil
	}
	snippet := resp.Items[0].Snippet

	thumbnail := ""
	if snippet.Thumbnails.Default != nil {
		thumbnail = strings.TrimSpace(snippet.Thumbnails.Default.URL)
	}

	return &Metadata{
		Title:        norm.NFC.String(snippet.Title),
		Description:  Truncate(norm.NFC.String(snippet.Description), MaxDescriptionLength),
		ThumbnailURL: thumbnail,
	}
}

// Truncate returns the first limit runes of value.
func Truncate(value string, limit int) string {
	if limit < 0 {
		return value
	}
	count := 0
	for idx := range value {
		if count == limit {
			return value[:idx]
		}
		count++
	}
	return value
}
