package rabbitmq

import (
	"context"
	"errors"
	"testing"

	"github.com/GoArmGo/Foodgram/internal/logger"
	"github.com/GoArmGo/Foodgram/internal/messaging/payloads"
)

type recordingAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *recordingAck) Ack(bool) error {
	a.acked = true
	return nil
}

func (a *recordingAck) Nack(_ bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func TestProcessDelivery(t *testing.T) {
	log := logger.Discard()
	body := []byte(`{"object_key":"recipes/images/a.png","recipe_id":"42","requested_at":"2024-01-02T03:04:05Z"}`)

	t.Run("ack on success", func(t *testing.T) {
		ack := &recordingAck{}
		var got payloads.ImageCleanupPayload
		processDelivery(context.Background(), body, ack, func(_ context.Context, p payloads.ImageCleanupPayload) error {
			got = p
			return nil
		}, log)
		if !ack.acked || ack.nacked {
			t.Fatalf("expected ack, got %+v", ack)
		}
		if got.ObjectKey != "recipes/images/a.png" || got.RecipeID != "42" {
			t.Errorf("unexpected payload %+v", got)
		}
	})

	t.Run("requeue on handler error", func(t *testing.T) {
		ack := &recordingAck{}
		processDelivery(context.Background(), body, ack, func(context.Context, payloads.ImageCleanupPayload) error {
			return errors.New("storage down")
		}, log)
		if !ack.nacked || !ack.requeue {
			t.Fatalf("expected nack with requeue, got %+v", ack)
		}
	})

	t.Run("drop malformed", func(t *testing.T) {
		for _, raw := range []string{`not json`, `{"recipe_id":"42"}`} {
			ack := &recordingAck{}
			called := false
			processDelivery(context.Background(), []byte(raw), ack, func(context.Context, payloads.ImageCleanupPayload) error {
				called = true
				return nil
			}, log)
			if called || !ack.nacked || ack.requeue {
				t.Errorf("%s: expected drop, got %+v called=%v", raw, ack, called)
			}
		}
	})
}
