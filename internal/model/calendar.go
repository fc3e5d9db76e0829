package model

import "time"

type Calendar struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color"`
	FamilyID  string    `json:"familyId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CalendarRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// EventsCount is the _count object of calendars and locations.
type EventsCount struct {
	Events int `json:"events"`
}

type CalendarSummary struct {
	Calendar
	Count EventsCount `json:"_count"`
}

type CalendarDetail struct {
	Calendar
	Family FamilyRef   `json:"family"`
	Events []Event     `json:"events"`
	Count  EventsCount `json:"_count"`
}
