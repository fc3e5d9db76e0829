// Package reminder delivers due reminders over their channel and records
// an in-app notification for each one.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/email"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/push"
	"github.com/dukerupert/homebase/internal/store"
)

const (
	defaultInterval = 30 * time.Second
	batchSize       = 100
)

type PushSender interface {
	Send(ctx context.Context, sub *model.PushSubscription, payload push.Payload) error
}

type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// Publisher matches the live feed hub.
type Publisher interface {
	Publish(userID, entity, action, id string)
}

// Dispatcher periodically sends due reminders.
type Dispatcher struct {
	mu       sync.RWMutex
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration
	now      func() time.Time

	reminders     *store.ReminderStore
	notifications *store.NotificationStore
	subs          *store.PushStore
	users         *store.UserStore

	push  PushSender
	email email.Sender
	sms   SMSSender
	pub   Publisher

	logger *slog.Logger
}

type Option func(*Dispatcher)

func WithPush(p PushSender) Option {
	return func(d *Dispatcher) { d.push = p }
}

func WithEmail(s email.Sender) Option {
	return func(d *Dispatcher) { d.email = s }
}

func WithSMS(s SMSSender) Option {
	return func(d *Dispatcher) { d.sms = s }
}

func WithPublisher(p Publisher) Option {
	return func(d *Dispatcher) { d.pub = p }
}

func WithInterval(i time.Duration) Option {
	return func(d *Dispatcher) {
		if i > 0 {
			d.interval = i
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(db *database.DB, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		interval:      defaultInterval,
		now:           database.Now,
		reminders:     store.NewReminderStore(db),
		notifications: store.NewNotificationStore(db),
		subs:          store.NewPushStore(db),
		users:         store.NewUserStore(db),
		logger:        logger.With("component", "reminder"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start begins the dispatch loop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	d.mu.Unlock()

	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := d.Tick(ctx); err != nil {
					d.logger.Error("dispatch due reminders", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the dispatcher.
func (d *Dispatcher) Stop() {
	d.mu.RLock()
	cancel := d.cancel
	done := d.done
	d.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Tick sends one batch of due reminders and returns how many it claimed.
func (d *Dispatcher) Tick(ctx context.Context) (int, error) {
	now := d.now()
	due, err := d.reminders.ListDue(ctx, now, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list due reminders: %w", err)
	}

	claimed := 0
	for i := range due {
		r := &due[i]
		ok, err := d.reminders.MarkSent(ctx, r.ID, now)
		if err != nil {
			d.logger.Error("claim reminder", "reminder_id", r.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		claimed++
		d.dispatch(ctx, r)
	}
	return claimed, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, r *model.ReminderView) {
	title, body := compose(r)
	log := d.logger.With("reminder_id", r.ID, "channel", r.Channel, "user_id", r.UserID)

	if err := d.deliver(ctx, r, title, body); err != nil {
		log.Warn("deliver reminder", "error", err)
	}

	n, err := d.notifications.Create(ctx, model.Notification{
		Title:      title,
		Body:       body,
		Channel:    r.Channel,
		UserID:     r.UserID,
		TaskID:     r.TaskID,
		EventID:    r.EventID,
		ReminderID: &r.ID,
	})
	if err != nil {
		log.Error("record notification", "error", err)
		return
	}
	if d.pub != nil {
		d.pub.Publish(r.UserID, "notification", "created", n.ID)
	}
}

func compose(r *model.ReminderView) (title, body string) {
	switch {
	case r.Task != nil:
		title = "Reminder: " + r.Task.Title
		body = "Task reminder"
		if r.Task.Completed {
			body = "Task already completed"
		}
	case r.Event != nil:
		title = "Reminder: " + r.Event.Title
		body = "Starts " + r.Event.StartTime.UTC().Format("Mon Jan 2 15:04 MST")
	default:
		title = "Reminder"
	}
	return title, body
}

var errSkipped = errors.New("channel not configured")

func (d *Dispatcher) deliver(ctx context.Context, r *model.ReminderView, title, body string) error {
	switch r.Channel {
	case model.ChannelPush:
		return d.deliverPush(ctx, r, title, body)
	case model.ChannelEmail:
		if d.email == nil {
			return errSkipped
		}
		u, err := d.users.GetByID(ctx, r.UserID)
		if err != nil {
			return err
		}
		if u == nil || u.Email == "" {
			return errors.New("user has no email address")
		}
		return d.email.Send(ctx, email.Message{To: u.Email, Subject: title, Text: body})
	case model.ChannelSMS:
		if d.sms == nil {
			return errSkipped
		}
		u, err := d.users.GetByID(ctx, r.UserID)
		if err != nil {
			return err
		}
		if u == nil || u.PhoneNumber == nil || *u.PhoneNumber == "" {
			return errors.New("user has no phone number")
		}
		return d.sms.Send(ctx, *u.PhoneNumber, title+"\n"+body)
	default:
		return fmt.Errorf("unknown channel %q", r.Channel)
	}
}

func (d *Dispatcher) deliverPush(ctx context.Context, r *model.ReminderView, title, body string) error {
	if d.push == nil {
		return errSkipped
	}
	subs, err := d.subs.ListByUser(ctx, r.UserID)
	if err != nil {
		return err
	}

	payload := push.Payload{Title: title, Body: body, Tag: "reminder-" + r.ID}
	switch {
	case r.TaskID != nil:
		payload.URL = "/tasks/" + *r.TaskID
	case r.EventID != nil:
		payload.URL = "/events/" + *r.EventID
	}

	var errs []error
	for i := range subs {
		sub := &subs[i]
		if err := d.push.Send(ctx, sub, payload); err != nil {
			if errors.Is(err, push.ErrExpired) {
				if err := d.subs.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
					errs = append(errs, err)
				}
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
