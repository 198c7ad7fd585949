package blocks

import (
	"slices"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/slug"
)

// AnchorPrefix is prepended to the slug of a heading to form its anchor id.
const AnchorPrefix = "block-"

// Heading tags. Only top level blocks with these tags produce anchors.
const (
	HeadingTag1 = "h1"
	HeadingTag2 = "h2"
	HeadingTag3 = "h3"
)

var headingTags = []string{HeadingTag1, HeadingTag2, HeadingTag3}

// IsHeadingTag reports whether blocks with tag produce anchors.
func IsHeadingTag(tag string) bool {
	return slices.Contains(headingTags, tag)
}

// Anchor is an in-page jump target derived from a heading block.
type Anchor struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// AnchorID returns the anchor id for a heading text. An empty text yields
// "block-".
func AnchorID(text string) string {
	return AnchorPrefix + slug.Slugify(text)
}

// ExtractAnchors returns one anchor per top level heading of doc, in document
// order. Containers are not descended into. Identical heading texts yield
// identical anchor ids; no suffix is added to tell them apart, so the
// rendered ids always match the ids computed here. Nodes whose value is not
// heading text are skipped. The result is never nil.
func ExtractAnchors(doc Document) []Anchor {
	anchors := make([]Anchor, 0)
	for _, n := range doc {
		if !IsHeadingTag(n.Tag) {
			continue
		}
		text, ok := n.Value.(Text)
		if !ok {
			continue
		}
		anchors = append(anchors, Anchor{ID: AnchorID(string(text)), Label: string(text)})
	}
	return anchors
}
