package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"venue-pulse-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans venue live-state change jobs out to a fixed number of
// push-delivery workers. Delivery is strictly fire-and-forget: nothing
// upstream ever waits on or fails because of it.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size*4),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case venueID := <-wp.jobs:
			wp.sendForVenue(ctx, venueID)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a job for a venue. Jobs are dropped, not blocked on,
// when the queue is full: a missed push is preferable to a stalled tick.
func (wp *WorkerPool) Dispatch(venueID int64) {
	select {
	case wp.jobs <- venueID:
	default:
		log.Printf("Notification queue full, dropping job for venue %d", venueID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

// sendForVenue fetches the venue's subscribers and pushes the current
// live state to each of them.
func (wp *WorkerPool) sendForVenue(ctx context.Context, venueID int64) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_venue_mapping svm ON svm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("svm.venue_id = ?", venueID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for venue %d: %v", venueID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	var venue model.Venue
	if err := wp.db.WithContext(ctx).Preload("LiveState").First(&venue, venueID).Error; err != nil {
		log.Printf("Error fetching venue %d: %v", venueID, err)
		return
	}

	message := fmt.Sprintf("%s has a new vibe!", venue.Name)
	if venue.LiveState != nil {
		message = fmt.Sprintf("%s is now %s · %s", venue.Name, venue.LiveState.Busyness, venue.LiveState.Vibe)
	}

	log.Printf("Sending %d notifications for venue %d", len(subscriptions), venueID)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, []byte(message))
	}
}

// send pushes a single notification, pruning expired subscriptions.
func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
