// Package records defines the management API collaborators used by form
// sessions: looking up an existing link record and persisting link and
// template submissions.
//
// Client is the HTTP implementation. Every request body is checked against the
// embedded OpenAPI contract before it leaves the process, so a payload the API
// would reject is reported locally with the offending field.
package records
