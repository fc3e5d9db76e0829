package reminder

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/email"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/push"
	"github.com/dukerupert/homebase/internal/store"
)

type fakePush struct {
	mu       sync.Mutex
	sent     []string
	expireOn string
}

func (f *fakePush) Send(_ context.Context, sub *model.PushSubscription, p push.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub.Endpoint == f.expireOn {
		return push.ErrExpired
	}
	f.sent = append(f.sent, sub.Endpoint+"|"+p.Title)
	return nil
}

type fakeEmail struct{ msgs []email.Message }

func (f *fakeEmail) Send(_ context.Context, m email.Message) error {
	f.msgs = append(f.msgs, m)
	return nil
}

type fakeSMS struct{ to []string }

func (f *fakeSMS) Send(_ context.Context, to, _ string) error {
	f.to = append(f.to, to)
	return nil
}

type fakePub struct{ ids []string }

func (f *fakePub) Publish(userID, entity, action, id string) {
	f.ids = append(f.ids, userID+":"+entity+"_"+action)
}

type env struct {
	db     *database.DB
	userID string
	taskID string
	now    time.Time
}

func setup(t *testing.T) *env {
	t.Helper()
	db, err := database.Open(database.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	u, err := store.NewUserStore(db).Create(ctx, "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	f, err := store.NewFamilyStore(db).Create(ctx, u.ID, "Smiths")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	task, err := store.NewTaskStore(db).Create(ctx, u.ID, store.TaskInput{Title: "Taxes", FamilyID: f.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return &env{db: db, userID: u.ID, taskID: task.ID, now: time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)}
}

func (e *env) reminder(t *testing.T, at time.Time, channel string) string {
	t.Helper()
	r, err := store.NewReminderStore(e.db).Create(context.Background(), e.userID, store.ReminderInput{
		RemindAt: at,
		Channel:  channel,
		TaskID:   &e.taskID,
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	return r.ID
}

func (e *env) dispatcher(opts ...Option) *Dispatcher {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append(opts, WithClock(func() time.Time { return e.now }))
	return NewDispatcher(e.db, logger, opts...)
}

func TestTickSendsDueReminderOnce(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	due := e.reminder(t, e.now.Add(-time.Minute), model.ChannelPush)
	future := e.reminder(t, e.now.Add(time.Hour), model.ChannelPush)

	subs := store.NewPushStore(e.db)
	if _, err := subs.Subscribe(ctx, e.userID, "https://push.example/phone", "k", "a", "phone"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	p := &fakePush{}
	pub := &fakePub{}
	d := e.dispatcher(WithPush(p), WithPublisher(pub))

	n, err := d.Tick(ctx)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if n != 1 {
		t.Fatalf("claimed = %d, want 1", n)
	}
	if len(p.sent) != 1 || p.sent[0] != "https://push.example/phone|Reminder: Taxes" {
		t.Errorf("push sent = %v", p.sent)
	}
	if len(pub.ids) != 1 || pub.ids[0] != e.userID+":notification_created" {
		t.Errorf("published = %v", pub.ids)
	}

	// Second tick finds nothing new.
	n, err = d.Tick(ctx)
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if n != 0 {
		t.Errorf("second tick claimed = %d, want 0", n)
	}

	reminders := store.NewReminderStore(e.db)
	got, err := reminders.Get(ctx, e.userID, due)
	if err != nil || got == nil {
		t.Fatalf("get due reminder: %v", err)
	}
	if got.SentAt == nil {
		t.Error("due reminder should be marked sent")
	}
	later, err := reminders.Get(ctx, e.userID, future)
	if err != nil || later == nil {
		t.Fatalf("get future reminder: %v", err)
	}
	if later.SentAt != nil {
		t.Error("future reminder should be untouched")
	}

	notes, err := store.NewNotificationStore(e.db).ListByUser(ctx, e.userID, false, 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes))
	}
	if notes[0].ReminderID == nil || *notes[0].ReminderID != due {
		t.Errorf("notification reminder id = %v, want %s", notes[0].ReminderID, due)
	}
	if notes[0].TaskID == nil || *notes[0].TaskID != e.taskID {
		t.Errorf("notification task id = %v", notes[0].TaskID)
	}
}

func TestTickDropsExpiredSubscriptions(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.reminder(t, e.now, model.ChannelPush)

	subs := store.NewPushStore(e.db)
	subs.Subscribe(ctx, e.userID, "https://push.example/old", "k", "a", "old")
	subs.Subscribe(ctx, e.userID, "https://push.example/new", "k", "a", "new")

	p := &fakePush{expireOn: "https://push.example/old"}
	if _, err := e.dispatcher(WithPush(p)).Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	left, err := subs.ListByUser(ctx, e.userID)
	if err != nil {
		t.Fatalf("list subs: %v", err)
	}
	if len(left) != 1 || left[0].Endpoint != "https://push.example/new" {
		t.Errorf("remaining subs = %+v", left)
	}
}

func TestTickEmailAndSMS(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.reminder(t, e.now, model.ChannelEmail)
	e.reminder(t, e.now, model.ChannelSMS)

	phone := "+15551234567"
	users := store.NewUserStore(e.db)
	u, err := users.GetByID(ctx, e.userID)
	if err != nil || u == nil {
		t.Fatalf("get user: %v", err)
	}
	u.PhoneNumber = &phone
	if _, err := users.Upsert(ctx, *u); err != nil {
		t.Fatalf("set phone: %v", err)
	}

	mail := &fakeEmail{}
	text := &fakeSMS{}
	n, err := e.dispatcher(WithEmail(mail), WithSMS(text)).Tick(ctx)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if n != 2 {
		t.Fatalf("claimed = %d, want 2", n)
	}
	if len(mail.msgs) != 1 || mail.msgs[0].To != "alice@example.com" || mail.msgs[0].Subject != "Reminder: Taxes" {
		t.Errorf("emails = %+v", mail.msgs)
	}
	if len(text.to) != 1 || text.to[0] != phone {
		t.Errorf("sms to = %v", text.to)
	}
}

func TestTickUnconfiguredChannelStillRecords(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.reminder(t, e.now, model.ChannelSMS)

	n, err := e.dispatcher().Tick(ctx)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if n != 1 {
		t.Fatalf("claimed = %d, want 1", n)
	}
	notes, _ := store.NewNotificationStore(e.db).ListByUser(ctx, e.userID, true, 10)
	if len(notes) != 1 {
		t.Errorf("notifications = %d, want 1", len(notes))
	}
}

func TestStartStop(t *testing.T) {
	e := setup(t)
	d := e.dispatcher(WithInterval(5 * time.Millisecond))
	d.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	d.Stop()
	// Stop on a stopped dispatcher returns immediately.
	d.Stop()
}

func TestLogsTagComponentOnce(t *testing.T) {
	e := setup(t)
	e.reminder(t, e.now, model.ChannelSMS)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	d := NewDispatcher(e.db, logger, WithClock(func() time.Time { return e.now }))
	if _, err := d.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatal("expected a warning for the unconfigured channel")
	}
	for _, line := range lines {
		if n := strings.Count(line, `"component":"reminder"`); n != 1 {
			t.Errorf("component appears %d times in %s", n, line)
		}
	}
}
