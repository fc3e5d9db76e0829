package store

import (
	"context"
	"testing"
)

func TestPushSubscribeUpsertsByEndpoint(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := NewPushStore(db)
	alice := seedUser(t, db, "a@example.com")
	bob := seedUser(t, db, "b@example.com")

	first, err := s.Subscribe(ctx, alice.ID, "https://push.example.com/1", "p1", "a1", "Phone")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	second, err := s.Subscribe(ctx, bob.ID, "https://push.example.com/1", "p2", "a2", "Laptop")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("id changed on resubscribe: %s != %s", second.ID, first.ID)
	}
	if second.UserID != bob.ID || second.P256dhKey != "p2" {
		t.Errorf("subscription = %+v, want moved to bob with new keys", second)
	}

	subs, err := s.ListByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("alice has %d subscriptions, want 0", len(subs))
	}

	ok, err := s.Delete(ctx, alice.ID, first.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok {
		t.Error("alice must not delete bob's subscription")
	}

	if err := s.DeleteByEndpoint(ctx, "https://push.example.com/1"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}
	subs, err = s.ListByUser(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("bob has %d subscriptions, want 0", len(subs))
	}
}
