package service

import (
	"context"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
)

func (s *Service) Subscribe(ctx context.Context, userID string, f access.Fields) (*model.PushSubscription, error) {
	const msg = "endpoint, p256dh and auth are required"
	endpoint, err := f.RequiredText("endpoint", msg)
	if err != nil {
		return nil, err
	}
	p256dh, err := f.RequiredText("p256dh", msg)
	if err != nil {
		return nil, err
	}
	auth, err := f.RequiredText("auth", msg)
	if err != nil {
		return nil, err
	}
	device, err := f.OptionalText("deviceName")
	if err != nil {
		return nil, err
	}
	var name string
	if d := device.OrElse(nil); d != nil {
		name = *d
	}

	sub, err := s.push.Subscribe(ctx, userID, endpoint, p256dh, auth, name)
	if err != nil {
		return nil, access.Internal("Failed to save subscription", err)
	}
	return sub, nil
}

func (s *Service) ListSubscriptions(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	subs, err := s.push.ListByUser(ctx, userID)
	if err != nil {
		return nil, access.Internal("Failed to fetch subscriptions", err)
	}
	return subs, nil
}

func (s *Service) Unsubscribe(ctx context.Context, userID, id string) (map[string]string, error) {
	ok, err := s.push.Delete(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to delete subscription", err)
	}
	if !ok {
		return nil, access.NotFound("Subscription not found")
	}
	return deleted("Subscription deleted successfully"), nil
}
