package model

import "time"

type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FamilyRef is the {id, name} projection embedded in child resources.
type FamilyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FamilyCount struct {
	Tasks     int `json:"tasks"`
	Events    int `json:"events"`
	Calendars int `json:"calendars"`
	Locations int `json:"locations"`
}

// FamilySummary is a family as it appears in the list endpoint.
type FamilySummary struct {
	Family
	Members []FamilyMember `json:"members"`
	Count   FamilyCount    `json:"_count"`
}

// FamilyDetail is a family with its newest tasks, earliest events,
// calendars and locations.
type FamilyDetail struct {
	Family
	Members   []FamilyMember `json:"members"`
	Tasks     []Task         `json:"tasks"`
	Events    []Event        `json:"events"`
	Calendars []Calendar     `json:"calendars"`
	Locations []Location     `json:"locations"`
	Count     FamilyCount    `json:"_count"`
}
