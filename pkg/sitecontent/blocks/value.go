package blocks

import (
	"github.com/google/uuid"
)

// Kind tells whether a block holds data or nested blocks.
type Kind int

const (
	KindLeaf Kind = iota + 1
	KindContainer
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

// ValueType identifies the value shape a block definition accepts.
type ValueType int

const (
	TypeText ValueType = iota + 1
	TypeRichText
	TypeImage
	TypeImageWithCaption
	TypeLink
	TypeEventList
	TypeColumns
)

func (t ValueType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeRichText:
		return "rich_text"
	case TypeImage:
		return "image"
	case TypeImageWithCaption:
		return "image_with_caption"
	case TypeLink:
		return "link"
	case TypeEventList:
		return "event_list"
	case TypeColumns:
		return "columns"
	default:
		return "unknown"
	}
}

// Kind reports whether values of this type are leaves or containers.
func (t ValueType) Kind() Kind {
	if t == TypeColumns {
		return KindContainer
	}
	return KindLeaf
}

// Value is the closed union of block values. Only the types in this file
// implement it.
type Value interface {
	Type() ValueType
	isValue()
}

// RefKind is the kind of entity a Ref points at.
type RefKind string

const (
	RefPage  RefKind = "page"
	RefImage RefKind = "image"
)

// Ref references an entity owned by an external collaborator (a page of the
// page tree or an image of the media library). The engine checks the kind
// of a reference, never whether it resolves.
type Ref struct {
	Kind RefKind   `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// PageRef returns a reference to the page with the given id.
func PageRef(id uuid.UUID) *Ref {
	return &Ref{Kind: RefPage, ID: id}
}

// ImageRef returns a reference to the image with the given id.
func ImageRef(id uuid.UUID) *Ref {
	return &Ref{Kind: RefImage, ID: id}
}

// Text is a single line of plain text, used by headings.
type Text string

// RichText is an HTML fragment produced by the rich text editor.
type RichText string

// Image is a reference to an image of the media library.
type Image struct {
	Image *Ref `json:"image"`
}

// Caption positions accepted by ImageWithCaption.
const (
	CaptionTop    = "top"
	CaptionBottom = "bottom"
	CaptionLeft   = "left"
	CaptionRight  = "right"
)

// ImageWithCaption is an image with an optional caption and an optional
// external link.
type ImageWithCaption struct {
	Image           *Ref   `json:"image"`
	Caption         string `json:"caption,omitempty"`
	CaptionPosition string `json:"caption_position,omitempty"`
	Link            string `json:"link,omitempty"`
}

// LinkType selects which target of a Link is used.
type LinkType string

const (
	LinkNone     LinkType = "none"
	LinkInternal LinkType = "internal"
	LinkExternal LinkType = "external"
)

// Link points at a page of the site or at an external URL.
// Which target must be present depends on LinkType; the validator enforces
// the combination, the type does not.
type Link struct {
	LinkType       LinkType `json:"linkType"`
	InternalTarget *Ref     `json:"internalTarget,omitempty"`
	ExternalURL    string   `json:"externalUrl,omitempty"`
	Text           string   `json:"text,omitempty"`
}

// EventList lists the upcoming events below the page, restricted to the
// given event types. An empty list means every type.
type EventList struct {
	EventTypes []string `json:"event_types"`
}

// Columns is the value of a multi-column container block.
type Columns struct {
	ColumnCount int      `json:"columns"`
	Content     Document `json:"content"`
}

func (Text) Type() ValueType             { return TypeText }
func (RichText) Type() ValueType         { return TypeRichText }
func (Image) Type() ValueType            { return TypeImage }
func (ImageWithCaption) Type() ValueType { return TypeImageWithCaption }
func (Link) Type() ValueType             { return TypeLink }
func (EventList) Type() ValueType        { return TypeEventList }
func (Columns) Type() ValueType          { return TypeColumns }

func (Text) isValue()             {}
func (RichText) isValue()         {}
func (Image) isValue()            {}
func (ImageWithCaption) isValue() {}
func (Link) isValue()             {}
func (EventList) isValue()        {}
func (Columns) isValue()          {}

// Node is one block instance of a document.
// ID is the optional stable block id assigned by the editor.
type Node struct {
	ID    uuid.UUID
	Tag   string
	Value Value
}

// Document is an ordered sequence of nodes. Order is display order.
type Document []Node
