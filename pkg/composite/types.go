package composite

// ItemType enumerates the question kinds a template may contain. Values match
// the wire format of the management API.
type ItemType string

const (
	ItemPainHistory   ItemType = "PAIN_HSTRY"
	ItemCondition     ItemType = "CONDITION"
	ItemPainInterview ItemType = "PAIN_INTV"
	ItemText          ItemType = "TEXT"
	ItemSelect        ItemType = "SELECT"
	ItemMedia         ItemType = "MEDIA"
)

// TagBase marks a required (base) item. Any other tag is custom.
const TagBase = "기본"

// Item is a single question within a template.
type Item struct {
	TagName string   `json:"tagName" yaml:"tagName"`
	Type    ItemType `json:"type" yaml:"type"`
	Title   string   `json:"title" yaml:"title"`
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// IsBase reports whether the item is a required base item.
func (i Item) IsBase() bool {
	return i.TagName == TagBase
}

// Document is a template header plus its ordered items.
type Document struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string `json:"category" yaml:"category"`
	Items       []Item `json:"questions" yaml:"questions"`
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := d
	if d.Items != nil {
		out.Items = make([]Item, len(d.Items))
		for idx, item := range d.Items {
			item.Options = append([]string(nil), item.Options...)
			out.Items[idx] = item
		}
	}
	return out
}

var itemLabels = map[ItemType]string{
	ItemPainHistory:   "통증 정도",
	ItemCondition:     "오늘의 컨디션",
	ItemPainInterview: "통증 문진",
	ItemText:          "텍스트",
	ItemSelect:        "선택형",
	ItemMedia:         "미디어",
}

// Label returns the display label for an item type. Unknown types fall back
// to their raw value.
func Label(t ItemType) string {
	if label, ok := itemLabels[t]; ok {
		return label
	}
	return string(t)
}

// KnownType reports whether t is one of the supported item types.
func KnownType(t ItemType) bool {
	_, ok := itemLabels[t]
	return ok
}
