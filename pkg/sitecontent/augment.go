package sitecontent

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/blocks"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	"github.com/google/uuid"
)

// Augmentation rules, as reported in PageContext.Degraded and in metrics.
const (
	RuleUpcomingEvents = "upcoming_events"
	RuleEventLists     = "event_lists"
	RuleGalleries      = "galleries"
	RulePhotos         = "photos"
	RuleSiblings       = "siblings"
	RuleImages         = "images"
	RuleBody           = "body"
)

// DefaultUpcomingLimit is the length of the upcoming events summary.
const DefaultUpcomingLimit = 2

// UpcomingEvents returns the live events of the whole site starting at or
// after now, earliest first, at most limit of them (zero means unbounded).
// An empty types slice means every type. It makes exactly one store call.
func UpcomingEvents(ctx context.Context, store EventStore, now time.Time, types []events.Type, limit int) ([]*events.Event, error) {
	return store.QueryEvents(ctx, EventQuery{
		LiveOnly:  true,
		Types:     types,
		StartFrom: now,
		Limit:     limit,
	})
}

// eventListBlock is a top level event list node of a document.
type eventListBlock struct {
	path  string
	id    *uuid.UUID
	types []string
}

func findEventLists(doc blocks.Document) []eventListBlock {
	var found []eventListBlock
	for i, n := range doc {
		list, ok := n.Value.(blocks.EventList)
		if !ok {
			continue
		}
		b := eventListBlock{path: "/" + strconv.Itoa(i), types: list.EventTypes}
		if n.ID != uuid.Nil {
			id := n.ID
			b.id = &id
		}
		found = append(found, b)
	}
	return found
}

// ResolvedEventList is an event list block with the events it lists.
type ResolvedEventList struct {
	Path       string
	BlockID    *uuid.UUID
	EventTypes []string
	Events     []*events.Event
}

// ResolveEventLists resolves every top level event list block of doc. All
// blocks share one store call for the upcoming live children of scope; each
// block then keeps the events of its selected types. A document without
// event list blocks makes no store call.
func ResolveEventLists(ctx context.Context, store EventStore, scope uuid.UUID, now time.Time, doc blocks.Document) ([]ResolvedEventList, error) {
	lists := findEventLists(doc)
	if len(lists) == 0 {
		return nil, nil
	}

	all, err := store.QueryEvents(ctx, EventQuery{
		Scope:     &scope,
		LiveOnly:  true,
		StartFrom: now,
	})
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedEventList, len(lists))
	for i, l := range lists {
		resolved[i] = ResolvedEventList{
			Path:       l.path,
			BlockID:    l.id,
			EventTypes: l.types,
			Events:     filterByType(all, l.types),
		}
	}
	return resolved, nil
}

func filterByType(all []*events.Event, types []string) []*events.Event {
	if len(types) == 0 {
		return slices.Clone(all)
	}
	out := make([]*events.Event, 0, len(all))
	for _, e := range all {
		if slices.Contains(types, string(e.Type)) {
			out = append(out, e)
		}
	}
	return out
}

// SiblingNavigation returns the items before and after the current item in
// siblings, wrapping around at both ends. ok is false when the current item
// is not among siblings or has no other sibling.
func SiblingNavigation[T any](siblings []T, isCurrent func(T) bool) (prev, next T, ok bool) {
	i := slices.IndexFunc(siblings, isCurrent)
	if i < 0 || len(siblings) < 2 {
		return prev, next, false
	}
	n := len(siblings)
	return siblings[(i-1+n)%n], siblings[(i+1)%n], true
}

// imageSet collects image ids in first-seen order without duplicates.
type imageSet struct {
	seen map[uuid.UUID]bool
	ids  []uuid.UUID
}

func (s *imageSet) add(id *uuid.UUID) {
	if id == nil || *id == uuid.Nil || s.seen[*id] {
		return
	}
	if s.seen == nil {
		s.seen = make(map[uuid.UUID]bool)
	}
	s.seen[*id] = true
	s.ids = append(s.ids, *id)
}

// addDocument adds every image reference of doc, descending into
// containers.
func (s *imageSet) addDocument(doc blocks.Document) {
	for _, n := range doc {
		switch v := n.Value.(type) {
		case blocks.Image:
			s.addRef(v.Image)
		case blocks.ImageWithCaption:
			s.addRef(v.Image)
		case blocks.Columns:
			s.addDocument(v.Content)
		}
	}
}

func (s *imageSet) addRef(ref *blocks.Ref) {
	if ref == nil || ref.Kind != blocks.RefImage {
		return
	}
	id := ref.ID
	s.add(&id)
}
