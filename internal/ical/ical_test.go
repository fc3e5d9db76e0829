package ical

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	goical "github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/homebase/internal/model"
)

func sampleEvents() []model.Event {
	desc := "Bring the forms"
	addr := "12 Main St"
	start := time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC)
	return []model.Event{
		{ID: "ev-1", Title: "Dentist", StartTime: start, EndTime: start.Add(time.Hour), Description: &desc, Address: &addr},
		{ID: "ev-2", Title: "Soccer", StartTime: start.Add(24 * time.Hour), EndTime: start.Add(26 * time.Hour), Completed: true},
		{ID: "ev-3", Title: "Piano; lesson, with commas", StartTime: start.Add(48 * time.Hour), EndTime: start.Add(49 * time.Hour)},
	}
}

func TestWriteOneEventPerRow(t *testing.T) {
	color := "#3B82F6"
	cal := &model.Calendar{ID: "cal-1", Name: "School", Color: &color}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cal, sampleEvents(), time.Now()))
	assert.Equal(t, 3, strings.Count(buf.String(), "BEGIN:VEVENT"))

	decoded, err := goical.NewDecoder(&buf).Decode()
	require.NoError(t, err)

	name, err := decoded.Props.Text(goical.PropName)
	require.NoError(t, err)
	assert.Equal(t, "School", name)

	events := decoded.Events()
	require.Len(t, events, 3)

	summary, err := events[2].Props.Text(goical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Piano; lesson, with commas", summary)

	start, err := events[0].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, start.Equal(sampleEvents()[0].StartTime))

	loc, err := events[0].Props.Text(goical.PropLocation)
	require.NoError(t, err)
	assert.Equal(t, "12 Main St", loc)

	status, err := events[1].Props.Text(goical.PropStatus)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", status)
	assert.Nil(t, events[0].Props.Get(goical.PropStatus))
}

func TestWriteEmptyCalendar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &model.Calendar{ID: "c1", Name: "Empty"}, []model.Event{}, time.Now()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Contains(t, out, "PRODID:"+productID+"\r\n")
	assert.Contains(t, out, "VERSION:2.0\r\n")
	assert.Contains(t, out, "NAME:Empty\r\n")
	assert.NotContains(t, out, "VEVENT")
	assert.NotContains(t, out, "COLOR")
}

func TestWriteEmptyCalendarEscapesText(t *testing.T) {
	color := "#ff0000"
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &model.Calendar{Name: "Soccer, Swim; Co\\op", Color: &color}, nil, time.Now()))
	assert.Contains(t, buf.String(), `NAME:Soccer\, Swim\; Co\\op`+"\r\n")
	assert.Contains(t, buf.String(), "COLOR:#ff0000\r\n")
}

func TestFold(t *testing.T) {
	short := "NAME:Family"
	assert.Equal(t, short, fold(short))

	long := "NAME:" + strings.Repeat("é", 60)
	folded := fold(long)
	lines := strings.Split(folded, "\r\n")
	require.Greater(t, len(lines), 1)
	for i, l := range lines {
		assert.LessOrEqual(t, len(l), 75, "line %d", i)
		assert.True(t, utf8.ValidString(l), "line %d splits a rune", i)
		if i > 0 {
			assert.True(t, strings.HasPrefix(l, " "), "line %d", i)
		}
	}
	assert.Equal(t, long, strings.ReplaceAll(folded, "\r\n ", ""))
}
