package worker

import (
	"context"
	"log"

	"classifieds-service/internal/broker"
	"classifieds-service/internal/models"
	"classifieds-service/internal/redisclient"
)

// CacheWorker keeps the per-location listing cache honest: whenever an ad
// is approved or rejected its target locations' cached listings are
// dropped, so the next public read rebuilds them from the store.
type CacheWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	redis        *redisclient.Client
}

// NewCacheWorker creates a new cache worker
func NewCacheWorker(consumer *broker.Consumer, redis *redisclient.Client) *CacheWorker {
	w := &CacheWorker{
		consumer: consumer,
		redis:    redis,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnAdApproved(w.handleApproved)
	eventHandler.OnAdRejected(w.handleRejected)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *CacheWorker) Start(ctx context.Context) error {
	log.Println("Starting listing cache worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CacheWorker) Stop() error {
	log.Println("Stopping listing cache worker...")
	return w.consumer.Close()
}

func (w *CacheWorker) handleApproved(ctx context.Context, event *models.AdApprovedEvent) error {
	return w.redis.InvalidateListings(ctx, event.Locations)
}

func (w *CacheWorker) handleRejected(ctx context.Context, event *models.AdRejectedEvent) error {
	return w.redis.InvalidateListings(ctx, event.Locations)
}
