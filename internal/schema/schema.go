// Package schema holds the catalog of page-layout block types and validates block
// payloads against it. The catalog is immutable once loaded and safe for concurrent use.
package schema

import "strings"

// BlockType tags a layout block.
type BlockType string

const (
	BlockIntro       BlockType = "intro"
	BlockDefinition  BlockType = "definition"
	BlockPricing     BlockType = "pricing"
	BlockTaskTab     BlockType = "task-tab"
	BlockProcess     BlockType = "process"
	BlockBookingForm BlockType = "booking-form"
)

// Spellings written by older versions of the page builder.
var blockAliases = map[string]BlockType{
	"task_tab": BlockTaskTab,
	"booking":  BlockBookingForm,
}

// ParseBlockType normalizes a stored block type tag.
func ParseBlockType(raw string) BlockType {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := blockAliases[tag]; ok {
		return alias
	}

	return BlockType(tag)
}

// FieldKind is the editor widget a block field renders as.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindRichText FieldKind = "richtext"
	KindNumber   FieldKind = "number"
	KindSelect   FieldKind = "select"
	KindImage    FieldKind = "image"
	KindIcon     FieldKind = "icon"
	KindBoolean  FieldKind = "boolean"
	KindArray    FieldKind = "array"
)

type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field declares one key of a block payload. Items describes array elements and is
// only consulted one level deep.
type Field struct {
	Name        string    `json:"name"                  yaml:"name"`
	Kind        FieldKind `json:"type"                  yaml:"type"`
	Label       string    `json:"label"                 yaml:"label"`
	Required    bool      `json:"required"              yaml:"required"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder"`
	Default     any       `json:"default,omitempty"     yaml:"default"`
	Options     []Option  `json:"options,omitempty"     yaml:"options"`
	Min         *float64  `json:"min,omitempty"         yaml:"min"`
	MinItems    int       `json:"min_items,omitempty"   yaml:"min_items"`
	MaxItems    int       `json:"max_items,omitempty"   yaml:"max_items"`
	Items       []Field   `json:"item_schema,omitempty" yaml:"item_schema"`
}

// BlockSchema is the field schema of one block type.
type BlockSchema struct {
	Type        BlockType      `json:"type"         yaml:"type"`
	Name        string         `json:"name"         yaml:"name"`
	Description string         `json:"description"  yaml:"description"`
	Fields      []Field        `json:"fields"       yaml:"fields"`
	DefaultData map[string]any `json:"default_data" yaml:"default_data"`
}

// Result reports every problem found in a payload.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
