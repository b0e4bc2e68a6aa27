package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
)

func TestPublishOrderEventNotInitialised(t *testing.T) {
	var p *PubSubOrderEventPublisher
	if _, err := p.PublishOrderEvent(context.Background(), OrderEvent{Type: EventOrderPlaced}); err == nil {
		t.Fatal("expected error for nil publisher")
	}

	if _, err := NewPubSubOrderEventPublisher(nil); err == nil {
		t.Fatal("expected error for nil topic")
	}
}

func TestPublishOrderEventRequiresType(t *testing.T) {
	p := &PubSubOrderEventPublisher{topic: &pubsub.Topic{}, marshal: func(any) ([]byte, error) {
		t.Fatal("marshal should not be called")
		return nil, nil
	}}
	if _, err := p.PublishOrderEvent(context.Background(), OrderEvent{OrderID: "ord_1"}); err == nil {
		t.Fatal("expected error for missing event type")
	}
}

func TestPublishOrderEventMarshalError(t *testing.T) {
	p := &PubSubOrderEventPublisher{topic: &pubsub.Topic{}, marshal: func(any) ([]byte, error) {
		return nil, errors.New("encode failed")
	}}
	_, err := p.PublishOrderEvent(context.Background(), OrderEvent{
		Type:       EventOrderPlaced,
		OrderID:    "ord_1",
		OccurredAt: time.Now(),
	})
	if err == nil {
		t.Fatal("expected marshal error to surface")
	}
}

func TestNopPublisher(t *testing.T) {
	var p NopOrderEventPublisher
	id, err := p.PublishOrderEvent(context.Background(), OrderEvent{Type: EventOrderPaid})
	if err != nil {
		t.Fatalf("nop publisher returned error: %v", err)
	}
	if id != "" {
		t.Fatalf("nop publisher returned id %q", id)
	}
}
