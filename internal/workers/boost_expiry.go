package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// BoostFinalizer settles boosts whose window has closed and reports how many
// it settled.
type BoostFinalizer interface {
	FinalizeExpiredBoosts(ctx context.Context) (int, error)
}

// BoostExpiryWorker polls for expired boosts on a fixed interval. Runs never
// overlap: if a pass is still going when the next tick fires, the tick is
// rescheduled instead of stacking.
type BoostExpiryWorker struct {
	finalizer BoostFinalizer
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewBoostExpiryWorker(finalizer BoostFinalizer, interval time.Duration) (*BoostExpiryWorker, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	w := &BoostExpiryWorker{
		finalizer: finalizer,
		interval:  interval,
		scheduler: scheduler,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(w.run),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule boost expiry job: %w", err)
	}

	return w, nil
}

func (w *BoostExpiryWorker) Start() {
	log.Printf("Boost expiry worker started, polling every %s", w.interval)
	w.scheduler.Start()
}

func (w *BoostExpiryWorker) Stop() {
	if err := w.scheduler.Shutdown(); err != nil {
		log.Printf("Failed to shut down boost expiry scheduler: %v", err)
	}
}

func (w *BoostExpiryWorker) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	finalized, err := w.finalizer.FinalizeExpiredBoosts(ctx)
	if err != nil {
		log.Printf("Boost expiry pass failed: %v", err)
		return
	}
	if finalized > 0 {
		log.Printf("Boost expiry pass finalized %d boost(s)", finalized)
	}
}
