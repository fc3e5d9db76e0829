package model

import "time"

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Completed   bool       `json:"completed"`
	FamilyID    string     `json:"familyId"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type TaskCount struct {
	Checklist     int `json:"checklist"`
	Comments      int `json:"comments"`
	Reminders     int `json:"reminders"`
	Notifications int `json:"notifications"`
}

// TaskView is a task with its family, checklist and recent comments.
type TaskView struct {
	Task
	Family    FamilyRef       `json:"family"`
	Checklist []ChecklistItem `json:"checklist"`
	Comments  []Comment       `json:"comments"`
	Count     TaskCount       `json:"_count"`
}

type TaskDetail struct {
	TaskView
	Reminders     []Reminder     `json:"reminders"`
	Notifications []Notification `json:"notifications"`
}

type TaskFilter struct {
	FamilyID  string
	Completed *bool
	// DeadlineBefore keeps tasks whose deadline is at or before the instant.
	DeadlineBefore *time.Time
}

type ChecklistItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	Completed bool      `json:"completed"`
	TaskID    string    `json:"taskId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	TaskID    string    `json:"taskId"`
	AuthorID  string    `json:"authorId"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type CommentPage struct {
	Comments   []Comment  `json:"comments"`
	Pagination Pagination `json:"pagination"`
}
