package model

import "time"

type Location struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Address   *string   `json:"address"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	Notes     *string   `json:"notes"`
	FamilyID  string    `json:"familyId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LocationRef struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Address *string `json:"address"`
}

type LocationSummary struct {
	Location
	Count EventsCount `json:"_count"`
}

type LocationDetail struct {
	Location
	Family FamilyRef   `json:"family"`
	Events []Event     `json:"events"`
	Count  EventsCount `json:"_count"`
}
