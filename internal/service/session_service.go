// FILE: internal/service/session_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"jobportal-be/internal/config"
	"jobportal-be/internal/dto"
	"jobportal-be/internal/repository/memory"
	"jobportal-be/internal/session"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// ISessionService consumes identity change messages and keeps a live
// session projection per signed-in principal.
type ISessionService interface {
	Consume(ctx context.Context) error
}

type sessionService struct {
	pubSub             *gochannel.GoChannel
	topicName          string
	registry           *memory.SessionRegistry
	applicationService IApplicationService
	sessionConfig      config.SessionConfig
}

func NewSessionService(
	pubSub *gochannel.GoChannel,
	topicName string,
	registry *memory.SessionRegistry,
	applicationService IApplicationService,
	sessionConfig config.SessionConfig,
) ISessionService {
	return &sessionService{
		pubSub:             pubSub,
		topicName:          topicName,
		registry:           registry,
		applicationService: applicationService,
		sessionConfig:      sessionConfig,
	}
}

func (ss *sessionService) Consume(ctx context.Context) error {
	messages, err := ss.pubSub.Subscribe(ctx, ss.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ss.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ss *sessionService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IdentityChangedMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal identity message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	userID, err := uuid.Parse(payload.UserId)
	if err != nil {
		log.Printf("[ERROR] Invalid user id in identity message: %v", err)
		msg.Ack()
		return
	}

	if !payload.SignedIn {
		// Sign-out tears down the projection. The guard denies the
		// principal from this point on, no grace period.
		ss.registry.Remove(payload.UserId)
		msg.Ack()
		return
	}

	sync, found := ss.registry.Get(payload.UserId)
	if !found {
		sync = session.NewSynchronizer(ss.lookupDisplayName, ss.sessionConfig.FirstEventTimeout)
		ss.registry.Save(payload.UserId, sync)
	}

	sync.Notify(&session.Identity{
		ID:          userID,
		Email:       payload.Email,
		DisplayName: payload.DisplayName,
		AvatarRef:   payload.AvatarRef,
	})
	msg.Ack()
}

func (ss *sessionService) lookupDisplayName(ctx context.Context, email string) (string, error) {
	return ss.applicationService.LookupDisplayName(ctx, email)
}
