package composite

import (
	"errors"
	"strings"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// Translator is configured.
var ErrMissingTranslator = errors.New("composite: translator is not configured")

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what to show when a key cannot be
// translated. fallback is the default catalog text.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

const messageKeyPrefix = "composite.findings."

var defaultMessages = map[FindingKind]string{
	UntitledDocument: "템플릿 제목을 입력해 주세요.",
	UntitledItem:     "질문의 제목을 입력해 주세요.",
	NoOptions:        "선택형 질문에 옵션을 추가해 주세요.",
	DuplicateOptions: "선택형 질문에 중복된 옵션이 있습니다.",
}

// MessageKey returns the translation key for kind.
func MessageKey(kind FindingKind) string {
	return messageKeyPrefix + string(kind)
}

// Localize renders a finding using t, falling back to the default catalog.
// The item label is passed to the translator as its only argument and is
// prefixed to the default text for untitled items.
func Localize(locale string, t Translator, f Finding) string {
	return LocalizeWith(locale, t, nil, f)
}

// LocalizeWith is Localize with a custom missing-translation handler.
func LocalizeWith(locale string, t Translator, onMissing MissingTranslationHandler, f Finding) string {
	fallback := defaultMessages[f.Kind]
	if fallback == "" {
		fallback = string(f.Kind)
	}
	if f.Kind == UntitledItem {
		fallback = joinNonEmpty(f.Label, fallback)
	}

	key := MessageKey(f.Kind)
	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, fallback, ErrMissingTranslator)
		}
		return fallback
	}

	result, err := t.Translate(locale, key, f.Label)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if onMissing != nil {
		return onMissing(locale, key, fallback, err)
	}
	return fallback
}

// Messages renders every finding in order.
func Messages(locale string, t Translator, findings []Finding) []string {
	if len(findings) == 0 {
		return nil
	}
	out := make([]string, 0, len(findings))
	for _, finding := range findings {
		out = append(out, Localize(locale, t, finding))
	}
	return out
}
