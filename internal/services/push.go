package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"crewplanner/internal/domain"
)

// pushMaxInFlight bounds concurrent deliveries to push endpoints.
const pushMaxInFlight = 8

type pushService struct {
	subs      domain.PushSubscriptionRepository
	transport domain.PushTransport
	logger    *slog.Logger
}

// NewPushService returns a PushSender that fans payloads out to every
// registered endpoint of the recipients. Failures are isolated per endpoint;
// endpoints reported gone are reaped in one batch after all sends settle.
func NewPushService(subs domain.PushSubscriptionRepository, transport domain.PushTransport, logger *slog.Logger) domain.PushSender {
	return &pushService{subs: subs, transport: transport, logger: logger}
}

func (s *pushService) SendToUsers(ctx context.Context, userIDs []string, payload domain.PushPayload) error {
	if !s.transport.Enabled() {
		return nil
	}
	if len(userIDs) == 0 {
		return nil
	}

	subscriptions, err := s.subs.ListByUserIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("list push subscriptions: %w", err)
	}
	if len(subscriptions) == 0 {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	var mu sync.Mutex
	var goneIDs []string

	// Workers always return nil: one endpoint's failure must not cancel the
	// others. Outcomes are recorded under the mutex instead.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pushMaxInFlight)
	for _, sub := range subscriptions {
		g.Go(func() error {
			sendErr := s.transport.Send(gctx, sub, body)
			switch {
			case sendErr == nil:
			case errors.Is(sendErr, domain.ErrEndpointGone):
				mu.Lock()
				goneIDs = append(goneIDs, sub.ID)
				mu.Unlock()
			default:
				s.logger.Warn("push delivery failed",
					"user_id", sub.UserID,
					"endpoint", sub.Endpoint,
					"error", sendErr,
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(goneIDs) > 0 {
		if err := s.subs.DeleteByIDs(ctx, goneIDs); err != nil {
			return fmt.Errorf("delete gone subscriptions: %w", err)
		}
		s.logger.Info("reaped gone push subscriptions", "count", len(goneIDs))
	}
	return nil
}
