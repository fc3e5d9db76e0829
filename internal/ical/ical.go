// Package ical renders calendars as iCalendar (RFC 5545) documents.
package ical

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	goical "github.com/emersion/go-ical"

	"github.com/dukerupert/homebase/internal/model"
)

const (
	ContentType = "text/calendar; charset=utf-8"
	productID   = "-//homebase//Family Calendar//EN"
)

// Calendar builds a VCALENDAR holding one VEVENT per event.
func Calendar(cal *model.Calendar, events []model.Event, stamp time.Time) *goical.Calendar {
	out := goical.NewCalendar()
	out.Props.SetText(goical.PropProductID, productID)
	out.Props.SetText(goical.PropVersion, "2.0")
	out.Props.SetText(goical.PropName, cal.Name)
	if cal.Color != nil {
		out.Props.SetText(goical.PropColor, *cal.Color)
	}

	for i := range events {
		out.Children = append(out.Children, event(&events[i], stamp).Component)
	}
	return out
}

func event(e *model.Event, stamp time.Time) *goical.Event {
	ev := goical.NewEvent()
	ev.Props.SetText(goical.PropUID, e.ID)
	ev.Props.SetDateTime(goical.PropDateTimeStamp, stamp.UTC())
	ev.Props.SetDateTime(goical.PropDateTimeStart, e.StartTime.UTC())
	ev.Props.SetDateTime(goical.PropDateTimeEnd, e.EndTime.UTC())
	ev.Props.SetDateTime(goical.PropLastModified, e.UpdatedAt.UTC())
	ev.Props.SetText(goical.PropSummary, e.Title)
	if e.Description != nil {
		ev.Props.SetText(goical.PropDescription, *e.Description)
	}
	if e.Address != nil {
		ev.Props.SetText(goical.PropLocation, *e.Address)
	}
	if e.Completed {
		ev.Props.SetText(goical.PropStatus, "COMPLETED")
	}
	return ev
}

// Write encodes the calendar to w. A calendar without events is written
// directly because the encoder rejects a VCALENDAR with no components.
func Write(w io.Writer, cal *model.Calendar, events []model.Event, stamp time.Time) error {
	if len(events) == 0 {
		return writeEmpty(w, cal)
	}
	var buf bytes.Buffer
	if err := goical.NewEncoder(&buf).Encode(Calendar(cal, events, stamp)); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func writeEmpty(w io.Writer, cal *model.Calendar) error {
	var b strings.Builder
	line := func(name, value string) {
		b.WriteString(fold(name + ":" + value))
		b.WriteString("\r\n")
	}
	line("BEGIN", goical.CompCalendar)
	line(goical.PropProductID, escapeText(productID))
	line(goical.PropVersion, "2.0")
	line(goical.PropName, escapeText(cal.Name))
	if cal.Color != nil {
		line(goical.PropColor, escapeText(*cal.Color))
	}
	line("END", goical.CompCalendar)
	_, err := io.WriteString(w, b.String())
	return err
}

var textEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// fold splits content lines longer than 75 octets without breaking a
// UTF-8 sequence. Continuation lines start with a space.
func fold(s string) string {
	const limit = 75
	if len(s) <= limit {
		return s
	}
	var b strings.Builder
	width := limit
	for len(s) > width {
		cut := width
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString("\r\n ")
		s = s[cut:]
		width = limit - 1
	}
	b.WriteString(s)
	return b.String()
}
