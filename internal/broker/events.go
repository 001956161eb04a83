package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"classifieds-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing ad lifecycle events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishAdSubmitted publishes AdSubmitted event
func (ep *EventPublisher) PublishAdSubmitted(ctx context.Context, event *models.AdSubmittedEvent) error {
	key := fmt.Sprintf("ad-%d", event.AdID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishAdPaymentConfirmed publishes AdPaymentConfirmed event
func (ep *EventPublisher) PublishAdPaymentConfirmed(ctx context.Context, event *models.AdPaymentConfirmedEvent) error {
	key := fmt.Sprintf("ad-%d", event.AdID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishAdApproved publishes AdApproved event
func (ep *EventPublisher) PublishAdApproved(ctx context.Context, event *models.AdApprovedEvent) error {
	key := fmt.Sprintf("ad-%d", event.AdID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishAdRejected publishes AdRejected event
func (ep *EventPublisher) PublishAdRejected(ctx context.Context, event *models.AdRejectedEvent) error {
	key := fmt.Sprintf("ad-%d", event.AdID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes consumed lifecycle events to registered callbacks.
type EventHandler struct {
	onAdApproved func(context.Context, *models.AdApprovedEvent) error
	onAdRejected func(context.Context, *models.AdRejectedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnAdApproved registers a handler for AdApproved events
func (eh *EventHandler) OnAdApproved(handler func(context.Context, *models.AdApprovedEvent) error) {
	eh.onAdApproved = handler
}

// OnAdRejected registers a handler for AdRejected events
func (eh *EventHandler) OnAdRejected(handler func(context.Context, *models.AdRejectedEvent) error) {
	eh.onAdRejected = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeAdApproved:
		if eh.onAdApproved != nil {
			var event models.AdApprovedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal AdApproved event: %w", err)
			}
			return eh.onAdApproved(ctx, &event)
		}

	case models.EventTypeAdRejected:
		if eh.onAdRejected != nil {
			var event models.AdRejectedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal AdRejected event: %w", err)
			}
			return eh.onAdRejected(ctx, &event)
		}
	}

	return nil
}
