package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"cliptAPI/internal/apperr"
	"cliptAPI/internal/boost"
	"cliptAPI/internal/notification"
	"cliptAPI/internal/store"
	"cliptAPI/middleware"
)

// finalizeBatchSize caps how many expired boosts one poller pass settles.
const finalizeBatchSize = 50

type BoostService struct {
	store         store.Store
	simulator     *BoostSimulator
	notifications *NotificationService
}

func NewBoostService(s store.Store, sim *BoostSimulator, notifications *NotificationService) *BoostService {
	return &BoostService{store: s, simulator: sim, notifications: notifications}
}

// ApplyBoost charges the user and activates a boost on their content. The
// debit and the boost insert happen atomically, so a failed insert never
// costs tokens.
func (s *BoostService) ApplyBoost(ctx context.Context, userID uuid.UUID, req *boost.ApplyBoostRequest) (*boost.BoostResponse, error) {
	if !req.BoostType.Valid() {
		return nil, &apperr.ValidationError{Field: "boostType", Reason: fmt.Sprintf("unknown boost type %q", req.BoostType)}
	}
	if !req.ContentType.Valid() {
		return nil, &apperr.ValidationError{Field: "contentType", Reason: fmt.Sprintf("unknown content type %q", req.ContentType)}
	}
	if req.ContentID == uuid.Nil {
		return nil, &apperr.ValidationError{Field: "contentId", Reason: "content id is required"}
	}

	spec, ok := boost.SpecFor(req.BoostType)
	if !ok {
		return nil, &apperr.ValidationError{Field: "boostType", Reason: fmt.Sprintf("unknown boost type %q", req.BoostType)}
	}
	if spec.StreamOnly && req.ContentType != boost.ContentStream {
		return nil, &apperr.ValidationError{
			Field:  "boostType",
			Reason: fmt.Sprintf("%s boosts can only be applied to streams", req.BoostType),
		}
	}

	now := time.Now()
	b := &boost.Boost{
		ID:          uuid.New(),
		UserID:      userID,
		ContentID:   req.ContentID,
		ContentType: req.ContentType,
		BoostType:   req.BoostType,
		Cost:        spec.Cost,
		Status:      boost.StatusActive,
		CreatedAt:   now,
		ExpiresAt:   now.Add(spec.Duration),
	}

	m := s.simulator.Baseline(ctx, b)

	if err := s.store.CreateBoostCharged(ctx, b, m); err != nil {
		return nil, fmt.Errorf("failed to create boost: %w", err)
	}

	log.Printf("Boost %s (%s) activated for user %s, expires %s", b.ID, b.BoostType, userID, b.ExpiresAt.Format(time.RFC3339))

	if n, err := notification.NewBoostActivated(userID, b.ID, string(b.BoostType), b.ExpiresAt); err == nil {
		if err := s.notifications.Notify(ctx, n); err != nil {
			log.Printf("Failed to send boost activation notification: %v", err)
		}
	}

	return &boost.BoostResponse{Boost: b, Metrics: m}, nil
}

// ExtendBoost adds another full window of the boost's type to an active
// boost, charging the type's cost again.
func (s *BoostService) ExtendBoost(ctx context.Context, userID, boostID uuid.UUID) (*boost.Boost, error) {
	b, err := s.store.GetBoost(ctx, boostID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, &apperr.NotFoundError{Resource: "boost", Identifier: boostID.String()}
	}
	if b.Status != boost.StatusActive || b.Expired(time.Now()) {
		return nil, &apperr.ConflictError{Resource: "boost", Reason: "only active boosts can be extended"}
	}

	spec, ok := boost.SpecFor(b.BoostType)
	if !ok {
		return nil, &apperr.ConflictError{Resource: "boost", Reason: fmt.Sprintf("boost has retired type %q", b.BoostType)}
	}
	extended, err := s.store.ExtendBoostCharged(ctx, boostID, userID, spec.Duration, spec.Cost)
	if err != nil {
		return nil, fmt.Errorf("failed to extend boost: %w", err)
	}
	return extended, nil
}

// CancelBoost marks an active boost cancelled. Tokens are not refunded.
func (s *BoostService) CancelBoost(ctx context.Context, userID, boostID uuid.UUID) (*boost.Boost, error) {
	return s.store.CancelBoost(ctx, boostID, userID)
}

func (s *BoostService) GetBoost(ctx context.Context, userID, boostID uuid.UUID) (*boost.BoostResponse, error) {
	b, err := s.store.GetBoost(ctx, boostID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, &apperr.NotFoundError{Resource: "boost", Identifier: boostID.String()}
	}
	m, err := s.store.GetBoostMetrics(ctx, boostID)
	if err != nil {
		return nil, err
	}
	return &boost.BoostResponse{Boost: b, Metrics: m}, nil
}

func (s *BoostService) ListActiveBoosts(ctx context.Context, userID uuid.UUID) ([]*boost.Boost, error) {
	return s.store.ListActiveBoosts(ctx, userID)
}

// RefreshMetrics advances an active boost's metrics to now and persists the
// new snapshot.
func (s *BoostService) RefreshMetrics(ctx context.Context, userID, boostID uuid.UUID) (*boost.BoostResponse, error) {
	b, err := s.store.GetBoost(ctx, boostID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, &apperr.NotFoundError{Resource: "boost", Identifier: boostID.String()}
	}
	m, err := s.store.GetBoostMetrics(ctx, boostID)
	if err != nil {
		return nil, err
	}

	if b.Status == boost.StatusActive {
		m = s.simulator.Snapshot(b, m, time.Now())
		if err := s.store.SaveBoostMetrics(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to save boost metrics: %w", err)
		}
	}
	return &boost.BoostResponse{Boost: b, Metrics: m}, nil
}

// FinalizeExpiredBoosts settles every active boost whose window has closed:
// flips it to expired, takes a final metrics snapshot, and notifies the
// owner with a result summary. The status flip is a conditional claim, so
// overlapping runs settle each boost at most once. Returns how many boosts
// this call settled.
func (s *BoostService) FinalizeExpiredBoosts(ctx context.Context) (int, error) {
	now := time.Now()
	expired, err := s.store.ListExpiredActiveBoosts(ctx, now, finalizeBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired boosts: %w", err)
	}

	finalized := 0
	for _, b := range expired {
		claimed, err := s.store.FinalizeBoost(ctx, b.ID)
		if err != nil {
			log.Printf("Failed to finalize boost %s: %v", b.ID, err)
			continue
		}
		if !claimed {
			// Another poller run got here first.
			continue
		}
		finalized++
		middleware.BoostsFinalized.Inc()

		m, err := s.store.GetBoostMetrics(ctx, b.ID)
		if err != nil {
			log.Printf("Failed to load metrics for boost %s: %v", b.ID, err)
			continue
		}
		m = s.simulator.Snapshot(b, m, b.ExpiresAt)
		if err := s.store.SaveBoostMetrics(ctx, m); err != nil {
			log.Printf("Failed to save final metrics for boost %s: %v", b.ID, err)
		}

		summary := s.simulator.Summary(b, m)
		log.Printf("Boost %s (%s) expired for user %s: %s", b.ID, b.BoostType, b.UserID, summary)

		if n, err := notification.NewBoostResult(b.UserID, b.ID, summary); err == nil {
			if err := s.notifications.Notify(ctx, n); err != nil {
				log.Printf("Failed to send boost result notification: %v", err)
			}
		}
	}
	return finalized, nil
}
