package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/beobgrp/sitecontent/pkg/sitecontent"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	"github.com/google/uuid"
)

// Repository implements sitecontent.Repository using in-memory storage.
// Pages and events remember their insertion order, which breaks ties in
// ordered queries.
type Repository struct {
	mu         sync.RWMutex
	pages      map[uuid.UUID]*sitecontent.Page
	pageOrder  []uuid.UUID
	events     map[uuid.UUID]*events.Event
	eventOrder []uuid.UUID
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		pages:  make(map[uuid.UUID]*sitecontent.Page),
		events: make(map[uuid.UUID]*events.Event),
	}
}

func copyPage(p *sitecontent.Page) *sitecontent.Page {
	c := *p
	c.Body = slices.Clone(p.Body)
	return &c
}

func copyEvent(e *events.Event) *events.Event {
	c := *e
	return &c
}

// Page operations

func (r *Repository) CreatePage(ctx context.Context, page *sitecontent.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[page.ID]; !exists {
		r.pageOrder = append(r.pageOrder, page.ID)
	}
	r.pages[page.ID] = copyPage(page)
	return nil
}

func (r *Repository) GetPage(ctx context.Context, id uuid.UUID) (*sitecontent.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, exists := r.pages[id]
	if !exists {
		return nil, sitecontent.ErrPageNotFound
	}
	return copyPage(page), nil
}

func (r *Repository) UpdatePage(ctx context.Context, page *sitecontent.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[page.ID]; !exists {
		return sitecontent.ErrPageNotFound
	}
	r.pages[page.ID] = copyPage(page)
	return nil
}

func (r *Repository) ListChildren(ctx context.Context, q sitecontent.ChildQuery) ([]*sitecontent.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*sitecontent.Page{}
	for _, id := range r.pageOrder {
		p := r.pages[id]
		if p.ParentID == nil || *p.ParentID != q.ParentID {
			continue
		}
		if q.Kind != "" && p.Kind != q.Kind {
			continue
		}
		if q.LiveOnly && !p.Live {
			continue
		}
		result = append(result, copyPage(p))
	}

	if q.OrderBy == sitecontent.OrderDateDesc {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Date.After(result[j].Date)
		})
	}
	return result, nil
}

// Event operations

func (r *Repository) CreateEvent(ctx context.Context, event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[event.ID]; !exists {
		r.eventOrder = append(r.eventOrder, event.ID)
	}
	r.events[event.ID] = copyEvent(event)
	return nil
}

func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, exists := r.events[id]
	if !exists {
		return nil, sitecontent.ErrEventNotFound
	}
	return copyEvent(event), nil
}

func (r *Repository) QueryEvents(ctx context.Context, q sitecontent.EventQuery) ([]*events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*events.Event{}
	for _, id := range r.eventOrder {
		e := r.events[id]
		if q.Scope != nil && e.ParentID != *q.Scope {
			continue
		}
		if q.LiveOnly && !e.Live {
			continue
		}
		if len(q.Types) > 0 && !slices.Contains(q.Types, e.Type) {
			continue
		}
		if e.StartTime.Before(q.StartFrom) {
			continue
		}
		result = append(result, copyEvent(e))
	}

	// stable, so equal start times keep insertion order
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}
