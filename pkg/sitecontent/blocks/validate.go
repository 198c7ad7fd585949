package blocks

import (
	"fmt"
	"net/url"
	"slices"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Validate checks v against the rules of d and returns every failing field,
// or nil. It performs no I/O: references are checked for their kind only.
func (d BlockDefinition) Validate(v Value) FieldErrors {
	errs := FieldErrors{}

	if v == nil {
		errs.Add("value", "a value is required")
		return errs
	}
	if v.Type() != d.typ {
		errs.Add("value", fmt.Sprintf("expected a %s value, got %s", d.typ, v.Type()))
		return errs
	}

	switch val := v.(type) {
	case Text:
		d.validateText("value", string(val), errs)
	case RichText:
		// rich text is sanitized by the rendering collaborator
	case Image:
		validateRef("image", val.Image, RefImage, errs)
	case ImageWithCaption:
		d.validateImageWithCaption(val, errs)
	case Link:
		d.validateLink(val, errs)
	case EventList:
		d.validateEventList(val, errs)
	case Columns:
		d.validateColumns(val, errs)
	}

	if d.rule != nil {
		errs.Merge(d.rule(v))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (d BlockDefinition) validateText(field, s string, errs FieldErrors) {
	if d.maxLength > 0 && utf8.RuneCountInString(s) > d.maxLength {
		errs.Add(field, fmt.Sprintf("must be at most %d characters", d.maxLength))
	}
}

func validateRef(field string, ref *Ref, kind RefKind, errs FieldErrors) {
	if ref == nil || ref.ID == uuid.Nil {
		errs.Add(field, "this field is required")
		return
	}
	if ref.Kind != kind {
		errs.Add(field, fmt.Sprintf("must reference a %s, got %q", kind, ref.Kind))
	}
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (d BlockDefinition) validateImageWithCaption(v ImageWithCaption, errs FieldErrors) {
	validateRef("image", v.Image, RefImage, errs)
	d.validateText("caption", v.Caption, errs)

	switch v.CaptionPosition {
	case "", CaptionTop, CaptionBottom, CaptionLeft, CaptionRight:
	default:
		errs.Add("caption_position", fmt.Sprintf("unknown caption position %q", v.CaptionPosition))
	}

	if v.Link != "" && !validHTTPURL(v.Link) {
		errs.Add("link", "enter a valid http or https URL")
	}
}

// validateLink enforces the conditional-required rule of links: the target
// matching the link type must be present and the other one absent.
func (d BlockDefinition) validateLink(v Link, errs FieldErrors) {
	hasInternal := v.InternalTarget != nil && v.InternalTarget.ID != uuid.Nil
	hasExternal := v.ExternalURL != ""

	switch v.LinkType {
	case LinkInternal:
		if !hasInternal {
			errs.Add("internalTarget", "an internal link needs a target page")
		} else if v.InternalTarget.Kind != RefPage {
			errs.Add("internalTarget", fmt.Sprintf("must reference a page, got %q", v.InternalTarget.Kind))
		}
		if hasExternal {
			errs.Add("externalUrl", "must be empty for an internal link")
		}
	case LinkExternal:
		if !hasExternal {
			errs.Add("externalUrl", "an external link needs a URL")
		} else if !validHTTPURL(v.ExternalURL) {
			errs.Add("externalUrl", "enter a valid http or https URL")
		}
		if hasInternal {
			errs.Add("internalTarget", "must be empty for an external link")
		}
	case LinkNone, "":
		if hasInternal || hasExternal {
			errs.Add("linkType", "choose a link type for the given target")
		}
	default:
		errs.Add("linkType", fmt.Sprintf("unknown link type %q", v.LinkType))
	}

	d.validateText("text", v.Text, errs)
}

func (d BlockDefinition) validateEventList(v EventList, errs FieldErrors) {
	seen := make(map[string]bool, len(v.EventTypes))
	for _, et := range v.EventTypes {
		if !slices.Contains(d.choices, et) {
			errs.Add("event_types", fmt.Sprintf("%q is not a valid choice", et))
			return
		}
		if seen[et] {
			errs.Add("event_types", fmt.Sprintf("%q is selected twice", et))
			return
		}
		seen[et] = true
	}
}

func (d BlockDefinition) validateColumns(v Columns, errs FieldErrors) {
	if !slices.Contains(d.columns.AllowedColumnCounts, v.ColumnCount) {
		errs.Add("columns", fmt.Sprintf("column count must be one of %v", d.columns.AllowedColumnCounts))
	}
}

// ValidateNode checks a single top level node: its shape against s and the
// field rules of its definition. Children of a container are not visited;
// use Validate for a whole tree.
func (s *Schema) ValidateNode(n Node) error {
	def, serr := s.checkShape(n, nodePath("", 0))
	if serr != nil {
		return serr
	}
	if errs := def.Validate(n.Value); errs != nil {
		return errs
	}
	return nil
}

// Validate checks the shape of every node of doc and runs the field rules of
// every well-shaped node, recursing into containers. A failing node never
// hides problems of its siblings. It returns nil or a *DocumentError.
func (s *Schema) Validate(doc Document) error {
	derr := &DocumentError{Fields: map[string]FieldErrors{}}
	s.validateLevel(doc, "", derr)
	if len(derr.Shape) == 0 && len(derr.Fields) == 0 {
		return nil
	}
	return derr
}

func (s *Schema) validateLevel(doc Document, prefix string, derr *DocumentError) {
	for i, n := range doc {
		path := nodePath(prefix, i)
		def, serr := s.checkShape(n, path)
		if serr != nil {
			derr.Shape = append(derr.Shape, serr)
			continue
		}
		if errs := def.Validate(n.Value); errs != nil {
			derr.Fields[path] = errs
		}
		if cols, ok := n.Value.(Columns); ok {
			def.inner.validateLevel(cols.Content, contentPath(path), derr)
		}
	}
}
