package blocks

import "slices"

// DefaultMaxLength bounds single line text fields such as headings and
// captions.
const DefaultMaxLength = 255

// Rule is an extra validation rule attached to a block definition. It runs
// after the built-in checks of the definition's value type.
type Rule func(Value) FieldErrors

// BlockDefinition declares one block type of a schema: its tag, its value
// shape and the rules its values must satisfy. Definitions are values;
// the With* methods return modified copies.
type BlockDefinition struct {
	tag       string
	label     string
	typ       ValueType
	maxLength int
	choices   []string
	inner     *Schema
	columns   ColumnOptions
	rule      Rule
}

// Tag is the block type name, unique within a schema.
func (d BlockDefinition) Tag() string { return d.tag }

// Label is the editor facing name of the block.
func (d BlockDefinition) Label() string { return d.label }

// Type is the value type accepted by the block.
func (d BlockDefinition) Type() ValueType { return d.typ }

// Kind reports whether the block is a leaf or a container.
func (d BlockDefinition) Kind() Kind { return d.typ.Kind() }

// Inner returns the schema of a container block, nil for leaves.
func (d BlockDefinition) Inner() *Schema { return d.inner }

// ColumnOptions returns the column options of a container block.
func (d BlockDefinition) ColumnOptions() ColumnOptions {
	return ColumnOptions{
		AllowedColumnCounts: slices.Clone(d.columns.AllowedColumnCounts),
		DefaultColumnCount:  d.columns.DefaultColumnCount,
	}
}

// Choices returns the selectable values of an event list block.
func (d BlockDefinition) Choices() []string { return slices.Clone(d.choices) }

// WithLabel returns a copy of d with the given label.
func (d BlockDefinition) WithLabel(label string) BlockDefinition {
	d.label = label
	return d
}

// WithRule returns a copy of d that additionally runs rule. Rules compose:
// the rule already attached to d keeps running.
func (d BlockDefinition) WithRule(rule Rule) BlockDefinition {
	if rule == nil {
		return d
	}
	prev := d.rule
	d.rule = func(v Value) FieldErrors {
		errs := FieldErrors{}
		if prev != nil {
			errs.Merge(prev(v))
		}
		errs.Merge(rule(v))
		return errs
	}
	return d
}

// NewHeading declares a single line heading block.
func NewHeading(tag, label string) BlockDefinition {
	return BlockDefinition{tag: tag, label: label, typ: TypeText, maxLength: DefaultMaxLength}
}

// NewRichText declares a rich text paragraph block.
func NewRichText(tag, label string) BlockDefinition {
	return BlockDefinition{tag: tag, label: label, typ: TypeRichText}
}

// NewImage declares an image chooser block.
func NewImage(tag, label string) BlockDefinition {
	return BlockDefinition{tag: tag, label: label, typ: TypeImage}
}

// NewImageWithCaption declares an image block with caption, caption
// position and optional external link.
func NewImageWithCaption(tag, label string) BlockDefinition {
	return BlockDefinition{tag: tag, label: label, typ: TypeImageWithCaption, maxLength: DefaultMaxLength}
}

// NewLink declares a link block with an internal or external target.
func NewLink(tag, label string) BlockDefinition {
	return BlockDefinition{tag: tag, label: label, typ: TypeLink, maxLength: DefaultMaxLength}
}

// NewEventList declares a block listing upcoming events filtered by the
// selected event types. choices are the selectable event types.
func NewEventList(tag, label string, choices []string) BlockDefinition {
	return BlockDefinition{tag: tag, label: label, typ: TypeEventList, choices: slices.Clone(choices)}
}
