package model

import "time"

const (
	ChannelPush  = "PUSH"
	ChannelEmail = "EMAIL"
	ChannelSMS   = "SMS"
)

// Channels lists the accepted reminder delivery channels.
var Channels = []string{ChannelPush, ChannelEmail, ChannelSMS}

type Reminder struct {
	ID        string     `json:"id"`
	RemindAt  time.Time  `json:"remindAt"`
	Channel   string     `json:"channel"`
	SentAt    *time.Time `json:"sentAt"`
	UserID    string     `json:"userId"`
	TaskID    *string    `json:"taskId"`
	EventID   *string    `json:"eventId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type TaskRef struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type EventRef struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	Completed bool      `json:"completed"`
}

type ReminderView struct {
	Reminder
	Task  *TaskRef  `json:"task"`
	Event *EventRef `json:"event"`
}

type ReminderFilter struct {
	TaskID  string
	EventID string
	// Upcoming keeps reminders due at or after Now.
	Upcoming bool
	Now      time.Time
	// Sent selects sent (true) or unsent (false) reminders when set.
	Sent *bool
}

type Notification struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	Channel    string     `json:"channel"`
	ReadAt     *time.Time `json:"readAt"`
	UserID     string     `json:"userId"`
	TaskID     *string    `json:"taskId"`
	EventID    *string    `json:"eventId"`
	ReminderID *string    `json:"reminderId"`
	CreatedAt  time.Time  `json:"createdAt"`
}
