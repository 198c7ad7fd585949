package events

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/slug"
)

// DefaultReservationAddress receives reservation requests.
const DefaultReservationAddress = "reservierung@beobachtergruppe.de"

// FallbackTitle is the page title of an event without start time or title.
const FallbackTitle = "Default Title"

var germanWeekdays = [...]string{
	time.Sunday:    "Sonntag",
	time.Monday:    "Montag",
	time.Tuesday:   "Dienstag",
	time.Wednesday: "Mittwoch",
	time.Thursday:  "Donnerstag",
	time.Friday:    "Freitag",
	time.Saturday:  "Samstag",
}

// GermanWeekday returns the German name of d.
func GermanWeekday(d time.Weekday) string {
	return germanWeekdays[d]
}

// DefaultTitle returns the page title of an event, "2006-01-02 15:04 - title"
// with the start time in loc, or FallbackTitle if the start time or the
// title is missing.
func DefaultTitle(start time.Time, title string, loc *time.Location) string {
	if start.IsZero() || title == "" {
		return FallbackTitle
	}
	if loc == nil {
		loc = time.UTC
	}
	return start.In(loc).Format("2006-01-02 15:04") + " - " + title
}

// PageTitle returns the page title of e.
func PageTitle(e Event, loc *time.Location) string {
	return DefaultTitle(e.StartTime, e.Title, loc)
}

// Slug returns the URL slug of e, derived from its page title.
func Slug(e Event, loc *time.Location) string {
	return slug.Slugify(PageTitle(e, loc))
}

// WebID returns a short stable id of e for in-page references: the first
// eight hex digits of the SHA-256 of its page title.
func WebID(e Event, loc *time.Location) string {
	sum := sha256.Sum256([]byte(PageTitle(e, loc)))
	return hex.EncodeToString(sum[:])[:8]
}

// reservationBody is dedented after interpolation, so empty fields leave
// blank lines rather than stray indentation.
const reservationBody = `
      Liebe Beobachtergruppe,

      bitte um Anmeldung zum folgenden Vortrag:

        %s
        %s

        am %s, den %s um %s Uhr

      Name, Vorname: ...
      Anzahl Personen: ...

      Mit freundlichen Grüßen
      ...
`

// ReservationSubject returns the subject line of a reservation request.
func ReservationSubject(e Event, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("Anmeldung für den Vortrag am %s (%s)", e.StartTime.In(loc).Format("02.01.06"), e.Title)
}

// ReservationBody returns the dedented German request text for e.
func ReservationBody(e Event, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	start := e.StartTime.In(loc)
	return Dedent(fmt.Sprintf(reservationBody,
		e.Title,
		e.Speaker,
		GermanWeekday(start.Weekday()),
		start.Format("02.01.06"),
		start.Format("15:04"),
	))
}

// ReservationMailto returns the mailto link an attendee uses to reserve a
// seat for e. An empty address means DefaultReservationAddress.
func ReservationMailto(e Event, address string, loc *time.Location) string {
	if address == "" {
		address = DefaultReservationAddress
	}
	return BuildContactLink(address, ReservationSubject(e, loc), ReservationBody(e, loc))
}
