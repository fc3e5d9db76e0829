package model

import "time"

type ExportStatus string

const (
	ExportStatusPending  ExportStatus = "pending"
	ExportStatusUploaded ExportStatus = "uploaded"
	ExportStatusFailed   ExportStatus = "failed"
)

// FamilyExport records one encrypted snapshot of a family uploaded to
// object storage.
type FamilyExport struct {
	ID           string       `json:"id"`
	FamilyID     string       `json:"familyId"`
	ObjectKey    string       `json:"objectKey"`
	SizeBytes    int64        `json:"sizeBytes"`
	Status       ExportStatus `json:"status"`
	ErrorMessage *string      `json:"error"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// FamilySnapshot is the full content of a family as written to an export.
type FamilySnapshot struct {
	Family     Family          `json:"family"`
	Members    []FamilyMember  `json:"members"`
	Calendars  []Calendar      `json:"calendars"`
	Locations  []Location      `json:"locations"`
	Events     []Event         `json:"events"`
	Tasks      []Task          `json:"tasks"`
	Checklist  []ChecklistItem `json:"checklist"`
	Comments   []Comment       `json:"comments"`
	ExportedAt time.Time       `json:"exportedAt"`
}
