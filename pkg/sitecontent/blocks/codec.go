package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Persisted documents are JSON arrays of tagged nodes:
//
//	[{"type": "h1", "value": "Welcome", "id": "…"},
//	 {"type": "columns", "value": {"columns": 2, "content": [ … ]}}]
//
// The value encoding of each tag is fixed by its definition's value type.

type wireNode struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
	ID    string          `json:"id,omitempty"`
}

type wireColumns struct {
	Columns *int       `json:"columns"`
	Content []wireNode `json:"content"`
}

type wireEventList struct {
	EventTypes json.RawMessage `json:"event_types"`
	EventType  json.RawMessage `json:"event_type"`
}

// MarshalJSON encodes a node in the persisted document format.
func (n Node) MarshalJSON() ([]byte, error) {
	w := struct {
		Type  string `json:"type"`
		Value Value  `json:"value"`
		ID    string `json:"id,omitempty"`
	}{Type: n.Tag, Value: n.Value}
	if n.ID != uuid.Nil {
		w.ID = n.ID.String()
	}
	return json.Marshal(w)
}

// MarshalJSON encodes an image block as its bare reference.
func (v Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Image)
}

// MarshalJSON encodes an empty type filter as an empty list.
func (v EventList) MarshalJSON() ([]byte, error) {
	types := v.EventTypes
	if types == nil {
		types = []string{}
	}
	return json.Marshal(struct {
		EventTypes []string `json:"event_types"`
	}{types})
}

// EncodeDocument encodes doc in the persisted document format. A nil
// document encodes as an empty array.
func EncodeDocument(doc Document) ([]byte, error) {
	if doc == nil {
		doc = Document{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a persisted document against s. Malformed JSON is
// reported as a plain error; unknown tags, malformed values and invalid block
// ids are reported together as ShapeErrors. An empty input or JSON null
// decodes to an empty document.
func (s *Schema) DecodeDocument(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Document{}, nil
	}

	var nodes []wireNode
	if err := json.Unmarshal(trimmed, &nodes); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	var errs ShapeErrors
	doc := s.decodeLevel(nodes, "", &errs)
	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}

func (s *Schema) decodeLevel(nodes []wireNode, prefix string, errs *ShapeErrors) Document {
	doc := make(Document, 0, len(nodes))
	for i, wn := range nodes {
		path := nodePath(prefix, i)

		def, ok := s.Lookup(wn.Type)
		if !ok {
			*errs = append(*errs, &ShapeError{Path: path, Tag: wn.Type, Reason: "block type is not declared by the schema"})
			continue
		}

		var id uuid.UUID
		if wn.ID != "" {
			parsed, err := uuid.Parse(wn.ID)
			if err != nil {
				*errs = append(*errs, &ShapeError{Path: path, Tag: wn.Type, Reason: fmt.Sprintf("invalid block id %q", wn.ID)})
				continue
			}
			id = parsed
		}

		value, err := s.decodeValue(def, wn.Value, path, errs)
		if err != nil {
			*errs = append(*errs, &ShapeError{
				Path:   path,
				Tag:    wn.Type,
				Reason: fmt.Sprintf("value does not match %s: %v", def.typ, err),
			})
			continue
		}
		doc = append(doc, Node{ID: id, Tag: wn.Type, Value: value})
	}
	return doc
}

func (s *Schema) decodeValue(def BlockDefinition, raw json.RawMessage, path string, errs *ShapeErrors) (Value, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}

	switch def.typ {
	case TypeText:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return Text(v), nil
	case TypeRichText:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return RichText(v), nil
	case TypeImage:
		var ref *Ref
		if err := json.Unmarshal(raw, &ref); err != nil {
			return nil, err
		}
		return Image{Image: ref}, nil
	case TypeImageWithCaption:
		var v ImageWithCaption
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		if v.CaptionPosition == "" {
			v.CaptionPosition = CaptionBottom
		}
		return v, nil
	case TypeLink:
		var v Link
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		if v.LinkType == "" {
			v.LinkType = LinkNone
		}
		return v, nil
	case TypeEventList:
		return decodeEventList(raw)
	case TypeColumns:
		var w wireColumns
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		count := def.columns.DefaultColumnCount
		if w.Columns != nil {
			count = *w.Columns
		}
		content := def.inner.decodeLevel(w.Content, contentPath(path), errs)
		return Columns{ColumnCount: count, Content: content}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", def.typ)
	}
}

// decodeEventList reads the type filter from event_types, or from the
// event_type key of documents written by the previous site, which held a
// single string or a list.
func decodeEventList(raw json.RawMessage) (Value, error) {
	var w wireEventList
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	types := w.EventTypes
	if isAbsent(types) {
		types = w.EventType
	}
	if isAbsent(types) {
		return EventList{}, nil
	}

	var single string
	if err := json.Unmarshal(types, &single); err == nil {
		if single == "" {
			return EventList{}, nil
		}
		return EventList{EventTypes: []string{single}}, nil
	}

	var list []string
	if err := json.Unmarshal(types, &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return EventList{}, nil
	}
	return EventList{EventTypes: list}, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
