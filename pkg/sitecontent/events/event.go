// Package events holds the event record of the site program and the pure
// functions computed from it: reservation window, display status and the
// reservation request link.
package events

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Type is the kind of a program event.
type Type string

const (
	TypeTalk        Type = "Vortrag"
	TypeHybridTalk  Type = "Hybride Vortrag"
	TypeOnlineTalk  Type = "Online Vortrag"
	TypeObservation Type = "Beobachtungsabend"
	TypeExcursion   Type = "Ausflug"
)

// Types returns every event type in display order.
func Types() []Type {
	return []Type{TypeTalk, TypeHybridTalk, TypeOnlineTalk, TypeObservation, TypeExcursion}
}

// TypeChoices returns the event types as plain strings, for use as block
// choices.
func TypeChoices() []string {
	types := Types()
	choices := make([]string, len(types))
	for i, t := range types {
		choices[i] = string(t)
	}
	return choices
}

// Valid reports whether t is a known event type.
func (t Type) Valid() bool {
	return slices.Contains(Types(), t)
}

// DefaultLocation is used for events created without a location.
const DefaultLocation = "Deutsches Museum"

// Event is a single program entry. Events are pages below an event index
// page; ParentID references that page.
type Event struct {
	ID               uuid.UUID  `json:"id"`
	ParentID         uuid.UUID  `json:"parentId"`
	StartTime        time.Time  `json:"startTime"`
	Type             Type       `json:"eventType"`
	Title            string     `json:"title"`
	Location         string     `json:"location"`
	Speaker          string     `json:"speaker"`
	Abstract         string     `json:"abstract"`
	ImageID          *uuid.UUID `json:"imageId,omitempty"`
	Cancelled        bool       `json:"cancelled"`
	BookedOut        bool       `json:"bookedOut"`
	NeedsReservation bool       `json:"needsReservation"`
	Live             bool       `json:"live"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Status is the display status of an event.
type Status string

const (
	StatusNone      Status = "none"
	StatusCancelled Status = "cancelled"
	StatusBookedOut Status = "booked_out"
)

// Label returns the German label shown next to the event, empty for
// StatusNone.
func (s Status) Label() string {
	switch s {
	case StatusCancelled:
		return "abgesagt"
	case StatusBookedOut:
		return "ausgebucht"
	default:
		return ""
	}
}

// ReservationWindowDays is how many calendar days before the event day
// reservations open.
const ReservationWindowDays = 28

// dateIn returns midnight of the calendar day t falls on in loc.
func dateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// FirstReservationDate returns the day reservations for e open: the day of
// its start time in loc minus 28 days. A nil loc means UTC.
func FirstReservationDate(e Event, loc *time.Location) time.Time {
	return dateIn(e.StartTime, loc).AddDate(0, 0, -ReservationWindowDays)
}

// IsReservable reports whether e accepts reservations on the day of today:
// the reservation window has opened and the event is neither cancelled nor
// booked out.
func IsReservable(e Event, today time.Time, loc *time.Location) bool {
	if e.Cancelled || e.BookedOut {
		return false
	}
	return !dateIn(today, loc).Before(FirstReservationDate(e, loc))
}

// StatusOf returns the display status of e. Cancelled takes precedence over
// booked out.
func StatusOf(e Event) Status {
	switch {
	case e.Cancelled:
		return StatusCancelled
	case e.BookedOut:
		return StatusBookedOut
	default:
		return StatusNone
	}
}

// WarningClass returns the CSS class marking an unavailable event, or "".
func WarningClass(e Event) string {
	if e.Cancelled || e.BookedOut {
		return "not-available"
	}
	return ""
}
