// FILE: internal/service/user_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"jobportal-be/internal/dto"
	"jobportal-be/internal/repository/specification"
	"jobportal-be/internal/repository/unitofwork"
	"jobportal-be/pkg/blobstore"
	"jobportal-be/pkg/events"
	pktNats "jobportal-be/pkg/nats"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (*dto.UploadAvatarResponse, error)
}

type userService struct {
	uowFactory        unitofwork.RepositoryFactory
	blobStore         blobstore.BlobStore
	eventPublisher    *pktNats.Publisher
	identityPublisher IPublisherService
	profileService    IProfileService
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	blobStore blobstore.BlobStore,
	eventPublisher *pktNats.Publisher,
	identityPublisher IPublisherService,
	profileService IProfileService,
) IUserService {
	return &userService{
		uowFactory:        uowFactory,
		blobStore:         blobStore,
		eventPublisher:    eventPublisher,
		identityPublisher: identityPublisher,
		profileService:    profileService,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	avatar := ""
	if user.AvatarURL != nil {
		avatar = *user.AvatarURL
	}

	return &dto.UserProfileResponse{
		Id:        user.Id,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		Status:    string(user.Status),
		AvatarURL: avatar,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if err := uow.UserRepository().UpdateFullName(ctx, userID, req.FullName); err != nil {
		return nil, err
	}
	user.FullName = req.FullName

	// Keep the candidate directory copy in step. Best effort.
	if s.profileService != nil {
		if err := s.profileService.MirrorCandidate(ctx, userID.String(), user.FullName, user.Email); err != nil {
			fmt.Printf("[WARN] Failed to sync candidate record for %s: %v\n", user.Email, err)
		}
	}

	avatar := ""
	if user.AvatarURL != nil {
		avatar = *user.AvatarURL
	}
	s.publishProfileUpdated(ctx, user.Id.String(), user.Email, user.FullName, avatar)

	return s.GetProfile(ctx, userID)
}

func (s *userService) UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (*dto.UploadAvatarResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	// One object per user; re-uploading replaces the previous image.
	key := fmt.Sprintf("profileImages/%s.png", userID.String())
	ref, err := s.blobStore.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := uow.UserRepository().UpdateAvatar(ctx, userID, ref); err != nil {
		return nil, err
	}

	s.publishProfileUpdated(ctx, user.Id.String(), user.Email, user.FullName, ref)

	return &dto.UploadAvatarResponse{AvatarURL: ref}, nil
}

// publishProfileUpdated refreshes the live session projection (so the
// synchronizer re-enriches with the new name/avatar) and notifies
// cross-instance observers.
func (s *userService) publishProfileUpdated(ctx context.Context, userID, email, fullName, avatarRef string) {
	if s.identityPublisher != nil {
		msg := &dto.IdentityChangedMessage{
			UserId:      userID,
			Email:       email,
			DisplayName: fullName,
			AvatarRef:   avatarRef,
			SignedIn:    true,
		}
		if payload, err := json.Marshal(msg); err == nil {
			if err := s.identityPublisher.Publish(ctx, payload); err != nil {
				fmt.Printf("[WARN] Failed to publish identity change: %v\n", err)
			}
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewProfileUpdated(userID, fullName, avatarRef)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish PROFILE_UPDATED event: %v\n", err)
		}
	}
}
