package services

import (
	"context"
	"log"
	"sync"
	"time"

	"cliptAPI/internal/notification"
	"cliptAPI/internal/store"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error
}

// NotificationDispatcher pushes stored notifications to the user's devices
// through a small in-process worker pool. Callers never block on delivery.
type NotificationDispatcher struct {
	store        store.Store
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *notification.Notification
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

func NewNotificationDispatcher(s store.Store) *NotificationDispatcher {
	dispatcher := &NotificationDispatcher{
		store:    s,
		workers:  5,
		jobQueue: make(chan *notification.Notification, 100),
		stopChan: make(chan struct{}),
	}
	dispatcher.startWorkers()
	return dispatcher
}

func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case n := <-d.jobQueue:
			d.processJob(n)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(n *notification.Notification) {
	if d.pushProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokens, err := d.store.ListDeviceTokens(ctx, n.UserID)
	if err != nil {
		log.Printf("Dispatcher: failed to load device tokens for %s: %v", n.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	data := map[string]string{
		"type":           string(n.Kind),
		"reference_id":   n.ReferenceID,
		"reference_type": string(n.ReferenceType),
	}
	if err := d.pushProvider.SendPush(ctx, tokens, n.Title, n.Message, data); err != nil {
		log.Printf("Dispatcher: push failed for user %s: %v", n.UserID, err)
	}
}

// Dispatch queues a notification for delivery; drops with a log line when
// the queue stays full, since the stored row is already the source of truth.
func (d *NotificationDispatcher) Dispatch(n *notification.Notification) {
	select {
	case d.jobQueue <- n:
	case <-d.stopChan:
	case <-time.After(5 * time.Second):
		log.Printf("Dispatcher: queue full, dropping push for notification %s", n.ID)
	}
}

func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
	})
	d.wg.Wait()
}
