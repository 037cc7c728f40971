// Package submission turns reconciled form state into API payloads.
//
// Assembly is a pure decision: no I/O happens here, so the same state always
// produces the same payload or the same rejection. Required link fields are
// checked first and short-circuit before the composite validator runs.
package submission

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formsync/pkg/composite"
	"github.com/goliatone/go-formsync/pkg/linkid"
	"github.com/goliatone/go-formsync/pkg/metadata"
	"github.com/goliatone/go-formsync/pkg/reconcile"
	"github.com/goliatone/go-formsync/pkg/records"
)

// Required link field names reported in Rejection.MissingFields.
const (
	FieldCategory = "category"
	FieldLinkURL  = "linkUrl"
	FieldTitle    = reconcile.FieldTitle
)

// Rejection explains why a submission was not assembled. It carries either
// missing required fields or validator findings, never both.
type Rejection struct {
	MissingFields []string
	Findings      []composite.Finding
}

func (r *Rejection) Error() string {
	if r == nil {
		return ""
	}
	if len(r.MissingFields) > 0 {
		return fmt.Sprintf("submission: missing required fields: %s", strings.Join(r.MissingFields, ", "))
	}
	kinds := make([]string, 0, len(r.Findings))
	for _, finding := range r.Findings {
		kinds = append(kinds, string(finding.Kind))
	}
	return fmt.Sprintf("submission: validation failed: %s", strings.Join(kinds, ", "))
}

// Messages renders the rejection as user-facing notices using the default
// finding catalog.
func (r *Rejection) Messages() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.MissingFields)+len(r.Findings))
	for _, field := range r.MissingFields {
		out = append(out, missingFieldMessages[field])
	}
	for _, finding := range r.Findings {
		out = append(out, finding.Message())
	}
	return out
}

var missingFieldMessages = map[string]string{
	FieldCategory: "카테고리를 선택해 주세요.",
	FieldLinkURL:  "URL을 입력해 주세요.",
	FieldTitle:    "링크 제목을 입력해 주세요.",
}

// Input is the state a link form hands to Assemble.
type Input struct {
	// Fields holds the reconciled title/description/thumbnail.
	Fields *reconcile.Reconciler
	// CategoryID is the selected category; 0 means none. When 0 the record's
	// category is used.
	CategoryID int64
	// LinkURL is the link as typed. When empty the record's stored link is used.
	LinkURL string
	// Document carries any nested items submitted with the link.
	Document composite.Document
	// Metadata is the latest resolved metadata, if any.
	Metadata *metadata.Metadata
	// Record is the existing record in edit mode.
	Record *records.Record
}

// Payload is an assembled submission.
type Payload struct {
	Link  records.LinkPayload
	Items []composite.Item
}

// Assemble computes the effective values and either returns a payload or a
// rejection.
func Assemble(in Input) (Payload, *Rejection) {
	fields := in.Fields
	if fields == nil {
		fields = reconcile.New()
	}

	stored := linkid.Info("")
	if in.Record != nil {
		stored = linkid.Info(in.Record.URL)
	}

	category := in.CategoryID
	if category == 0 {
		category = in.Record.CategoryID()
	}
	link := firstNonEmpty(strings.TrimSpace(in.LinkURL), stored.LinkURL)
	title := fields.Effective(reconcile.FieldTitle)
	description := fields.Effective(reconcile.FieldDescription)

	var missing []string
	if category <= 0 {
		missing = append(missing, FieldCategory)
	}
	if link == "" {
		missing = append(missing, FieldLinkURL)
	}
	if strings.TrimSpace(title) == "" {
		missing = append(missing, FieldTitle)
	}
	if len(missing) > 0 {
		return Payload{}, &Rejection{MissingFields: missing}
	}

	thumbnail := stored.ThumbnailURL
	if in.Metadata != nil && in.Metadata.ThumbnailURL != "" {
		thumbnail = in.Metadata.ThumbnailURL
	}
	if fields.State(reconcile.FieldThumbnail) == reconcile.Dirty {
		thumbnail = fields.Effective(reconcile.FieldThumbnail)
	}

	doc := in.Document.Clone()
	doc.Title = title
	doc.Description = description
	if doc.Category == "" {
		doc.Category = fmt.Sprint(category)
	}
	if findings := composite.Validate(doc); len(findings) > 0 {
		return Payload{}, &Rejection{Findings: findings}
	}

	return Payload{
		Link: records.LinkPayload{
			CategoryID:   category,
			LinkURL:      link,
			Title:        title,
			Description:  description,
			ThumbnailURL: thumbnail,
		},
		Items: doc.Items,
	}, nil
}

// AssembleTemplate validates a template document and builds its payload.
func AssembleTemplate(doc composite.Document) (records.TemplatePayload, *Rejection) {
	if findings := composite.Validate(doc); len(findings) > 0 {
		return records.TemplatePayload{}, &Rejection{Findings: findings}
	}
	clone := doc.Clone()
	questions := clone.Items
	if questions == nil {
		questions = []composite.Item{}
	}
	return records.TemplatePayload{
		Category:    clone.Category,
		Title:       clone.Title,
		Description: clone.Description,
		Questions:   questions,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
