package sitecontent

import (
	"fmt"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/blocks"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
)

// Block tags of the site vocabulary.
const (
	TagHeading1         = blocks.HeadingTag1
	TagHeading2         = blocks.HeadingTag2
	TagHeading3         = blocks.HeadingTag3
	TagParagraph        = "paragraph"
	TagImage            = "image"
	TagImageWithCaption = "image_with_caption"
	TagLink             = "link"
	TagColumns          = "columns"
	TagEventList        = "event_list"
)

// ColumnOptions of the columns block.
var columnOptions = blocks.ColumnOptions{
	AllowedColumnCounts: []int{2, 3, 4},
	DefaultColumnCount:  2,
}

// Schemas holds the block schemas of the site. Build it once with
// NewSchemas; it is read-only afterwards.
type Schemas struct {
	// General is the body schema of home pages. Its columns block nests
	// the whole general schema, itself included.
	General *blocks.Schema

	// Event is General plus the event list block.
	Event *blocks.Schema
}

// NewSchemas builds the site schemas.
func NewSchemas() (*Schemas, error) {
	base, err := blocks.NewSchema(
		blocks.NewHeading(TagHeading1, "Kopfzeile 1"),
		blocks.NewHeading(TagHeading2, "Kopfzeile 2"),
		blocks.NewHeading(TagHeading3, "Kopfzeile 3"),
		blocks.NewRichText(TagParagraph, "Absatz"),
		blocks.NewImage(TagImage, "Bild"),
		blocks.NewImageWithCaption(TagImageWithCaption, "Bild mit Bildunterschrift"),
		blocks.NewLink(TagLink, "Link"),
	)
	if err != nil {
		return nil, fmt.Errorf("general schema: %w", err)
	}

	columns, err := blocks.MakeRecursiveContainerType(TagColumns, "Spalten", base, columnOptions)
	if err != nil {
		return nil, fmt.Errorf("columns block: %w", err)
	}
	general, err := base.Extend(columns)
	if err != nil {
		return nil, fmt.Errorf("general schema: %w", err)
	}

	event, err := general.Extend(blocks.NewEventList(TagEventList, "Art der Veranstaltung", events.TypeChoices()))
	if err != nil {
		return nil, fmt.Errorf("event schema: %w", err)
	}

	return &Schemas{General: general, Event: event}, nil
}

// For returns the body schema of pages of kind k.
func (s *Schemas) For(k PageKind) (*blocks.Schema, error) {
	switch k {
	case KindHome:
		return s.General, nil
	case KindEventIndex:
		return s.Event, nil
	}
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPageKind, k)
	}
	return nil, fmt.Errorf("%w: %s pages have no body", ErrInvalidDocument, k)
}
