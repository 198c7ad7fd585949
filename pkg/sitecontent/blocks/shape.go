package blocks

import "fmt"

// ValidateShape checks that every node of doc, at every nesting level, uses
// a tag declared by the schema of its level and carries a value of the
// declared type. It returns nil or ShapeErrors listing every offending node.
// Field level rules are not checked; see Validate.
func (s *Schema) ValidateShape(doc Document) error {
	var errs ShapeErrors
	s.walkShape(doc, "", &errs)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (s *Schema) walkShape(doc Document, prefix string, errs *ShapeErrors) {
	for i, n := range doc {
		path := nodePath(prefix, i)
		def, serr := s.checkShape(n, path)
		if serr != nil {
			*errs = append(*errs, serr)
			continue
		}
		if cols, ok := n.Value.(Columns); ok {
			def.inner.walkShape(cols.Content, contentPath(path), errs)
		}
	}
}

// checkShape resolves the definition of n and verifies the value type.
func (s *Schema) checkShape(n Node, path string) (BlockDefinition, *ShapeError) {
	def, ok := s.Lookup(n.Tag)
	if !ok {
		return def, &ShapeError{Path: path, Tag: n.Tag, Reason: "block type is not declared by the schema"}
	}
	if n.Value == nil {
		return def, &ShapeError{Path: path, Tag: n.Tag, Reason: "block has no value"}
	}

	got := n.Value.Type()
	if got == def.typ {
		return def, nil
	}
	if got.Kind() != def.Kind() {
		return def, &ShapeError{
			Path:   path,
			Tag:    n.Tag,
			Reason: fmt.Sprintf("expects a %s value, got a %s value", def.Kind(), got.Kind()),
		}
	}
	return def, &ShapeError{
		Path:   path,
		Tag:    n.Tag,
		Reason: fmt.Sprintf("expects a %s value, got %s", def.typ, got),
	}
}

func nodePath(prefix string, i int) string {
	return fmt.Sprintf("%s/%d", prefix, i)
}

func contentPath(nodePath string) string {
	return nodePath + "/value/content"
}
