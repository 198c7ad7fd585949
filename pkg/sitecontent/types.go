package sitecontent

import (
	"encoding/json"
	"time"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/blocks"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	"github.com/google/uuid"
)

// PageKind is the domain type for the kinds of pages in the page tree.
type PageKind string

// Page kind constants (typed).
const (
	KindHome         PageKind = "home"
	KindEventIndex   PageKind = "event_index"
	KindGalleryIndex PageKind = "gallery_index"
	KindGallery      PageKind = "gallery"
	KindPhoto        PageKind = "photo"
)

// Valid reports whether k is a known page kind.
func (k PageKind) Valid() bool {
	switch k {
	case KindHome, KindEventIndex, KindGalleryIndex, KindGallery, KindPhoto:
		return true
	}
	return false
}

// HasBody reports whether pages of kind k carry a block document.
func (k PageKind) HasBody() bool {
	return k == KindHome || k == KindEventIndex
}

// AllowsChild reports whether a page of kind k may be the parent of a page
// of kind child. Events are not pages of the tree; they hang below event
// index pages, which may also hold nested programs and galleries.
func (k PageKind) AllowsChild(child PageKind) bool {
	switch k {
	case KindHome:
		return child == KindHome || child == KindEventIndex || child == KindGalleryIndex
	case KindEventIndex:
		return child == KindEventIndex || child == KindGallery
	case KindGalleryIndex:
		return child == KindGallery
	case KindGallery:
		return child == KindPhoto
	}
	return false
}

// Page is a node of the page tree. Body holds the encoded block document of
// home and event index pages. Date orders photos and galleries; ImageID is
// the photo of a photo page or the cover of a gallery.
type Page struct {
	ID          uuid.UUID       `json:"id"`
	ParentID    *uuid.UUID      `json:"parentId,omitempty"`
	Kind        PageKind        `json:"kind"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Live        bool            `json:"live"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
	Author      string          `json:"author,omitempty"`
	Location    string          `json:"location,omitempty"`
	ImageID     *uuid.UUID      `json:"imageId,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Reservation holds the values derived from an event for display and for
// the reservation request.
type Reservation struct {
	PageTitle            string        `json:"pageTitle"`
	Slug                 string        `json:"slug"`
	WebID                string        `json:"webId"`
	Status               events.Status `json:"status"`
	StatusLabel          string        `json:"statusLabel"`
	WarningClass         string        `json:"warningClass"`
	FirstReservationDate time.Time     `json:"firstReservationDate"`
	Reservable           bool          `json:"reservable"`
	MailtoLink           string        `json:"mailtoLink"`
}

// EventView is an event together with its derived reservation values.
type EventView struct {
	events.Event
	Reservation
}

// EventListing is the resolved content of one event list block.
type EventListing struct {
	Path       string      `json:"path"`
	BlockID    *uuid.UUID  `json:"blockId,omitempty"`
	EventTypes []string    `json:"eventTypes"`
	Events     []EventView `json:"events"`
}

// PageContext is the render context of a page: the page, its decoded body
// and every collection attached by augmentation. Degraded names the
// augmentation rules whose collaborator failed; their collections are empty.
type PageContext struct {
	Page           *Page                `json:"page"`
	Body           blocks.Document      `json:"body,omitempty"`
	Anchors        []blocks.Anchor      `json:"anchors,omitempty"`
	UpcomingEvents []EventView          `json:"upcomingEvents"`
	EventLists     []EventListing       `json:"eventLists,omitempty"`
	Galleries      []*Page              `json:"galleries,omitempty"`
	Photos         []*Page              `json:"photos,omitempty"`
	Previous       *Page                `json:"previous,omitempty"`
	Next           *Page                `json:"next,omitempty"`
	ImageURLs      map[uuid.UUID]string `json:"imageUrls,omitempty"`
	Degraded       []string             `json:"degraded,omitempty"`
}
