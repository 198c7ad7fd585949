package blocks

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidDocument is wrapped by every DocumentError
	ErrInvalidDocument = errors.New("invalid document")

	// ErrDuplicateTag indicates a schema declares the same tag twice
	ErrDuplicateTag = errors.New("duplicate block tag")

	// ErrInvalidDefinition indicates a block definition cannot be built
	ErrInvalidDefinition = errors.New("invalid block definition")
)

// ShapeError reports a node whose tag is not declared by the governing
// schema, or whose value does not have the shape its definition declares.
// Path is a JSON pointer into the persisted document, e.g. "/2/value/content/0".
type ShapeError struct {
	Path   string
	Tag    string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("block %q at %s: %s", e.Tag, e.Path, e.Reason)
}

// ShapeErrors collects every shape error found in a document.
type ShapeErrors []*ShapeError

func (e ShapeErrors) Error() string {
	msgs := make([]string, len(e))
	for i, se := range e {
		msgs[i] = se.Error()
	}
	return strings.Join(msgs, "; ")
}

// FieldErrors maps a sub-field name of a block value to a human readable
// message. Validation is not fail-fast: every failing field is reported.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (e FieldErrors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Merge copies all messages of other that are not already present.
func (e FieldErrors) Merge(other FieldErrors) {
	for field, msg := range other {
		e.Add(field, msg)
	}
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, len(fields))
	for i, field := range fields {
		msgs[i] = field + ": " + e[field]
	}
	return strings.Join(msgs, "; ")
}

// DocumentError aggregates the outcome of validating a whole document.
// Shape holds structural problems; Fields holds field errors keyed by the
// JSON pointer of the node they belong to.
type DocumentError struct {
	Shape  ShapeErrors
	Fields map[string]FieldErrors
}

func (e *DocumentError) Error() string {
	var parts []string
	if len(e.Shape) > 0 {
		parts = append(parts, e.Shape.Error())
	}

	paths := make([]string, 0, len(e.Fields))
	for path := range e.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		parts = append(parts, fmt.Sprintf("%s: %s", path, e.Fields[path].Error()))
	}

	return fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(parts, "; "))
}

func (e *DocumentError) Unwrap() error {
	return ErrInvalidDocument
}
