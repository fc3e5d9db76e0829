package model

import "time"

type FamilyMember struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FamilyID  string    `json:"familyId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
