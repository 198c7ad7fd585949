package blocks

import (
	"fmt"
	"slices"
)

// Schema is the ordered, closed set of block definitions legal at one
// nesting level. Declaration order is display order in the editor.
//
// A Schema is immutable once constructed. Extend never touches the receiver:
// it copies the declarations into a new schema, so a derived schema and its
// base can evolve independently.
type Schema struct {
	defs  []BlockDefinition
	index map[string]int
}

// NewSchema builds a schema from defs. Tags must be unique and non-empty.
func NewSchema(defs ...BlockDefinition) (*Schema, error) {
	s := &Schema{
		defs:  make([]BlockDefinition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		if err := s.add(def); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. It is meant for
// package level schema declarations.
func MustSchema(defs ...BlockDefinition) *Schema {
	s, err := NewSchema(defs...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) add(def BlockDefinition) error {
	if def.tag == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalidDefinition)
	}
	if def.typ < TypeText || def.typ > TypeColumns {
		return fmt.Errorf("%w: block %q has no value type", ErrInvalidDefinition, def.tag)
	}
	if _, exists := s.index[def.tag]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTag, def.tag)
	}
	s.index[def.tag] = len(s.defs)
	s.defs = append(s.defs, def)
	return nil
}

func (s *Schema) clone() *Schema {
	c := &Schema{
		defs:  slices.Clone(s.defs),
		index: make(map[string]int, len(s.index)),
	}
	for tag, i := range s.index {
		c.index[tag] = i
	}
	return c
}

// Extend returns a new schema holding the declarations of s followed by defs.
// s itself is left unchanged.
func (s *Schema) Extend(defs ...BlockDefinition) (*Schema, error) {
	c := s.clone()
	for _, def := range defs {
		if err := c.add(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Lookup returns the definition declared for tag.
func (s *Schema) Lookup(tag string) (BlockDefinition, bool) {
	i, ok := s.index[tag]
	if !ok {
		return BlockDefinition{}, false
	}
	return s.defs[i], true
}

// Tags returns the declared tags in declaration order.
func (s *Schema) Tags() []string {
	tags := make([]string, len(s.defs))
	for i, def := range s.defs {
		tags[i] = def.tag
	}
	return tags
}

// Definitions returns a copy of the declarations in declaration order.
func (s *Schema) Definitions() []BlockDefinition {
	return slices.Clone(s.defs)
}

// Len returns the number of declared block types.
func (s *Schema) Len() int {
	return len(s.defs)
}
