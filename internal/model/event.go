package model

import "time"

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Address     *string   `json:"address"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Completed   bool      `json:"completed"`
	FamilyID    string    `json:"familyId"`
	CalendarID  string    `json:"calendarId"`
	LocationID  *string   `json:"locationId"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type EventCount struct {
	Reminders     int `json:"reminders"`
	Notifications int `json:"notifications"`
}

// EventView is an event with its family, calendar and location
// projections, as returned by list, create and update.
type EventView struct {
	Event
	Family   FamilyRef    `json:"family"`
	Calendar CalendarRef  `json:"calendar"`
	Location *LocationRef `json:"location"`
	Count    EventCount   `json:"_count"`
}

type EventDetail struct {
	EventView
	Reminders     []Reminder     `json:"reminders"`
	Notifications []Notification `json:"notifications"`
}

// EventFilter narrows the event list. Range applies only when both bounds are set.
type EventFilter struct {
	FamilyID  string
	StartDate *time.Time
	EndDate   *time.Time
	Completed *bool
}
