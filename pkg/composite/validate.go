// Package composite validates template documents before submission.
//
// Validate runs every rule regardless of earlier failures and returns the
// findings in rule order: the document title first, then untitled base items,
// then option problems on select items. A document is submittable only when
// no findings are produced.
package composite

import "strings"

// FindingKind is a stable code for a validation failure.
type FindingKind string

const (
	UntitledDocument FindingKind = "untitled_document"
	UntitledItem     FindingKind = "untitled_item"
	NoOptions        FindingKind = "no_options"
	DuplicateOptions FindingKind = "duplicate_options"
)

// DocumentIndex is the Finding.Index used for document-level findings.
const DocumentIndex = -1

// Finding is one discrete, user-correctable validation failure.
type Finding struct {
	Kind     FindingKind `json:"kind"`
	Index    int         `json:"index"`
	ItemType ItemType    `json:"itemType,omitempty"`
	Label    string      `json:"label,omitempty"`
}

// Message renders the finding with the default catalog.
func (f Finding) Message() string {
	return Localize("", nil, f)
}

// Validate evaluates the rule set against doc.
func Validate(doc Document) []Finding {
	var findings []Finding

	if doc.Title == "" {
		findings = append(findings, Finding{Kind: UntitledDocument, Index: DocumentIndex})
	}

	for idx, item := range doc.Items {
		if item.IsBase() && item.Title == "" {
			findings = append(findings, itemFinding(UntitledItem, idx, item))
		}
	}

	for idx, item := range doc.Items {
		if item.Type != ItemSelect {
			continue
		}
		switch {
		case len(item.Options) == 0:
			findings = append(findings, itemFinding(NoOptions, idx, item))
		case hasDuplicates(item.Options):
			findings = append(findings, itemFinding(DuplicateOptions, idx, item))
		}
	}

	return findings
}

// Valid reports whether doc produces no findings.
func Valid(doc Document) bool {
	return len(Validate(doc)) == 0
}

// Kinds returns the finding kinds in order.
func Kinds(findings []Finding) []FindingKind {
	if len(findings) == 0 {
		return nil
	}
	out := make([]FindingKind, len(findings))
	for idx, finding := range findings {
		out[idx] = finding.Kind
	}
	return out
}

func itemFinding(kind FindingKind, idx int, item Item) Finding {
	return Finding{
		Kind:     kind,
		Index:    idx,
		ItemType: item.Type,
		Label:    Label(item.Type),
	}
}

func hasDuplicates(options []string) bool {
	seen := make(map[string]struct{}, len(options))
	for _, option := range options {
		if _, ok := seen[option]; ok {
			return true
		}
		seen[option] = struct{}{}
	}
	return false
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, " ")
}
