package service

import (
	"context"
	"fmt"
	"time"

	"jobportal-be/internal/pkg/logger"
	"jobportal-be/internal/websocket"
	"jobportal-be/pkg/events"
	pktNats "jobportal-be/pkg/nats" // Renamed to avoid collision
	"jobportal-be/pkg/treestore"

	"github.com/google/uuid"
)

// RealtimeDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type RealtimeDelivery interface {
	Send(userID uuid.UUID, push websocket.Push)
	Broadcast(push websocket.Push)
}

// RealtimeService fans domain events and tree mutations out to connected
// clients. It owns no state of its own, it only translates and forwards.
type RealtimeService struct {
	subscriber *pktNats.Subscriber
	tree       treestore.TreeStore
	delivery   RealtimeDelivery
	logger     logger.ILogger
}

func NewRealtimeService(sub *pktNats.Subscriber, tree treestore.TreeStore, delivery RealtimeDelivery, log logger.ILogger) *RealtimeService {
	return &RealtimeService{
		subscriber: sub,
		tree:       tree,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus and the realtime tree.
func (s *RealtimeService) Start() {
	if s.subscriber != nil {
		err := s.subscriber.Subscribe("events.>", "realtime-fanout-worker", s.handleEvent)
		if err != nil {
			s.logger.Error("RealtimeService", "Failed to start event subscriber", map[string]interface{}{"error": err})
		} else {
			s.logger.Info("RealtimeService", "Realtime service started, listening to events.>", nil)
		}
	}

	if s.tree != nil {
		go s.watchTree("candidates", "candidates.changed")
		go s.watchTree("jobApplications", "applications.changed")
	}
}

func (s *RealtimeService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("RealtimeService", fmt.Sprintf("Processing event: %s", event.EventType()), map[string]interface{}{"type": event.EventType()})

	push := websocket.Push{
		Type:      event.EventType(),
		Data:      event.Payload(),
		CreatedAt: time.Now(),
	}

	switch event.EventType() {
	case events.TypeCandidateRemoved:
		// Directory changes concern every connected admin view.
		if s.delivery != nil {
			s.delivery.Broadcast(push)
		}
		return nil
	}

	// Everything else targets the principal named in the payload.
	uidStr, ok := event.Payload()["user_id"].(string)
	if !ok {
		s.logger.Warn("RealtimeService", fmt.Sprintf("No user_id in payload for event %s, dropping", event.EventType()), nil)
		return nil
	}
	uid, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("RealtimeService", "Invalid user_id in event payload", map[string]interface{}{"error": err.Error()})
		return nil
	}

	if s.delivery != nil {
		s.delivery.Send(uid, push)
	}
	return nil
}

// watchTree forwards every mutation under path as a broadcast push. It
// reconnects with a backoff when the subscription drops.
func (s *RealtimeService) watchTree(path, pushType string) {
	for {
		changes, cancel, err := s.tree.SubscribeToNode(context.Background(), path)
		if err != nil {
			s.logger.Error("RealtimeService", fmt.Sprintf("Failed to watch tree path %s", path), map[string]interface{}{"error": err.Error()})
			time.Sleep(5 * time.Second)
			continue
		}

		for change := range changes {
			if s.delivery == nil {
				continue
			}
			s.delivery.Broadcast(websocket.Push{
				Type:      pushType,
				Data:      change,
				CreatedAt: time.Now(),
			})
		}
		cancel()

		s.logger.Warn("RealtimeService", fmt.Sprintf("Tree watch on %s ended, resubscribing", path), nil)
		time.Sleep(time.Second)
	}
}
