// Package metadata turns provider responses into the derived candidates used
// to auto-fill link forms.
//
// A Fetcher wraps a Provider and never surfaces provider failures: errors and
// empty results both resolve to nil, which callers read as "no additional
// data". Descriptions are truncated to MaxDescriptionLength runes when the
// Metadata value is built, so every consumer sees the same bounded text.
package metadata
