// Package session owns the state of one open form.
//
// A LinkSession collects the asynchronous inputs of a link form (existing
// record lookup, metadata fetches triggered by link edits) and direct user
// edits, and feeds them into a reconcile.Reconciler. Fetch results arrive on
// background goroutines; each one is tagged with the identifier it was
// requested for and dropped when the user has since moved to another link.
// Submit assembles the payload and hands it to the configured persister.
//
// A TemplateSession does the same for record templates, which have no
// derived fields and validate synchronously.
//
// Sessions are discarded after Submit or Close; nothing is persisted locally.
package session
