// Package service enforces ownership and validation for every resource.
// Each method takes the caller's user id explicitly and returns
// *access.Error values the transport layer maps to statuses.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/store"
	"github.com/samber/mo"
)

// Live feed entity names.
const (
	EntityFamily       = "family"
	EntityMember       = "family_member"
	EntityCalendar     = "calendar"
	EntityLocation     = "location"
	EntityEvent        = "event"
	EntityTask         = "task"
	EntityChecklist    = "checklist_item"
	EntityComment      = "task_comment"
	EntityReminder     = "reminder"
	EntityNotification = "notification"
	EntityExport       = "family_export"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Publisher receives change notices for the owning user's live feed.
type Publisher interface {
	Publish(userID, entity, action, id string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, string, string) {}

// Archiver stores an encrypted family snapshot and returns the number of
// bytes written.
type Archiver interface {
	Archive(ctx context.Context, key string, snapshot *model.FamilySnapshot, passphrase string) (int64, error)
}

type Service struct {
	families      *store.FamilyStore
	members       *store.FamilyMemberStore
	calendars     *store.CalendarStore
	locations     *store.LocationStore
	events        *store.EventStore
	tasks         *store.TaskStore
	checklist     *store.ChecklistStore
	comments      *store.CommentStore
	reminders     *store.ReminderStore
	notifications *store.NotificationStore
	push          *store.PushStore
	exports       *store.FamilyExportStore

	pub      Publisher
	archiver Archiver
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithArchiver enables family exports.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(db *database.DB, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		families:      store.NewFamilyStore(db),
		members:       store.NewFamilyMemberStore(db),
		calendars:     store.NewCalendarStore(db),
		locations:     store.NewLocationStore(db),
		events:        store.NewEventStore(db),
		tasks:         store.NewTaskStore(db),
		checklist:     store.NewChecklistStore(db),
		comments:      store.NewCommentStore(db),
		reminders:     store.NewReminderStore(db),
		notifications: store.NewNotificationStore(db),
		push:          store.NewPushStore(db),
		exports:       store.NewFamilyExportStore(db),
		pub:           nopPublisher{},
		logger:        logger.With("component", "service"),
		now:           database.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(userID, entity, action, id string) {
	s.pub.Publish(userID, entity, action, id)
}

// ownedFamily resolves familyID for userID, or fails with "Family not found".
func (s *Service) ownedFamily(ctx context.Context, userID, familyID string) (*model.Family, error) {
	f, err := s.families.Owned(ctx, userID, familyID)
	if err != nil {
		return nil, access.Internal("Failed to fetch family", err)
	}
	if f == nil {
		return nil, access.NotFound("Family not found")
	}
	return f, nil
}

// ownedTask resolves taskID for userID, or fails with "Task not found".
func (s *Service) ownedTask(ctx context.Context, userID, taskID string) (*model.Task, error) {
	t, err := s.tasks.GetOwned(ctx, userID, taskID)
	if err != nil {
		return nil, access.Internal("Failed to fetch task", err)
	}
	if t == nil {
		return nil, access.NotFound("Task not found")
	}
	return t, nil
}

func deleted(msg string) map[string]string {
	return map[string]string{"message": msg}
}

// requiredTime reads a timestamp update for a non-nullable column: absent
// leaves it unchanged, null is rejected.
func requiredTime(f access.Fields, name string) (mo.Option[time.Time], error) {
	opt, err := f.Time(name)
	if err != nil {
		return mo.None[time.Time](), err
	}
	v, ok := opt.Get()
	if !ok {
		return mo.None[time.Time](), nil
	}
	if v == nil {
		return mo.None[time.Time](), access.Invalidf("Invalid %s", name)
	}
	return mo.Some(*v), nil
}
