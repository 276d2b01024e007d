// FILE: internal/service/oauth_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"jobportal-be/internal/config"
	"jobportal-be/internal/dto"
	"jobportal-be/internal/entity"
	"jobportal-be/internal/repository/specification"
	"jobportal-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type IOAuthService interface {
	GetLoginConfig(provider string) (*dto.OAuthConfigResponse, error)
	HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error)
}

type oauthService struct {
	uowFactory        unitofwork.RepositoryFactory
	googleConf        *oauth2.Config
	flowMode          string
	identityPublisher IPublisherService
	profileService    IProfileService
}

func NewOAuthService(
	uowFactory unitofwork.RepositoryFactory,
	cfg config.OAuthConfig,
	identityPublisher IPublisherService,
	profileService IProfileService,
) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	// Flow mode is fixed at startup; clients never pick popup vs redirect
	// from their own layout state.
	flowMode := cfg.FlowMode
	if flowMode != "popup" && flowMode != "redirect" {
		flowMode = "redirect"
	}

	return &oauthService{
		uowFactory:        uowFactory,
		googleConf:        conf,
		flowMode:          flowMode,
		identityPublisher: identityPublisher,
		profileService:    profileService,
	}
}

func (s *oauthService) GetLoginConfig(provider string) (*dto.OAuthConfigResponse, error) {
	if provider != "google" {
		return nil, errors.New("unsupported provider")
	}

	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)

	return &dto.OAuthConfigResponse{
		Provider: "google",
		FlowMode: s.flowMode,
		AuthURL:  s.googleConf.AuthCodeURL(state),
	}, nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error) {
	if provider != "google" {
		return nil, errors.New("unsupported provider")
	}

	// Exchange code for token
	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %v", err)
	}

	// Get user info from Google
	userInfoURL := "https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken
	resp, err := http.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %v", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading response: %v", err)
	}

	var googleUser struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}

	if err := json.Unmarshal(content, &googleUser); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: googleUser.Email})
	if err != nil {
		return nil, err
	}

	if user != nil && user.PasswordHash != nil {
		// A credential account with the same email that was never linked to
		// this provider stays a credential account.
		linked, err := uow.UserRepository().FindUserProvider(ctx, specification.ByProvider{
			Name:           "google",
			ProviderUserId: googleUser.ID,
		})
		if err != nil {
			return nil, err
		}
		if linked == nil {
			return nil, ErrAccountConflict
		}
	}

	if user == nil {
		newUser := &entity.User{
			Id:           uuid.New(),
			Email:        googleUser.Email,
			FullName:     googleUser.Name,
			PasswordHash: nil,
			Role:         entity.UserRoleUser,
			Status:       entity.UserStatusActive,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}

		if err := uow.UserRepository().Create(ctx, newUser); err != nil {
			uow.Rollback()
			return nil, err
		}

		if err := uow.Commit(); err != nil {
			return nil, err
		}

		user = newUser

		if s.profileService != nil {
			if err := s.profileService.MirrorCandidate(ctx, user.Id.String(), user.FullName, user.Email); err != nil {
				log.Printf("[WARN] Failed to mirror candidate record for %s: %v", user.Email, err)
			}
		}
	}

	if user.Status == entity.UserStatusBlocked {
		return nil, ErrAccountBlocked
	}

	// Sync Provider Info & Avatar
	userProvider := &entity.UserProvider{
		Id:             uuid.New(),
		UserId:         user.Id,
		ProviderName:   "google",
		ProviderUserId: googleUser.ID,
		AvatarURL:      googleUser.Picture,
		CreatedAt:      time.Now(),
	}

	if err := uow.UserRepository().SaveUserProvider(ctx, userProvider); err != nil {
		return nil, fmt.Errorf("failed to save provider info: %v", err)
	}

	signedToken, err := generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	if s.identityPublisher != nil {
		msg := &dto.IdentityChangedMessage{
			UserId:      user.Id.String(),
			Email:       user.Email,
			DisplayName: user.FullName,
			AvatarRef:   googleUser.Picture,
			SignedIn:    true,
		}
		if payload, err := json.Marshal(msg); err == nil {
			if err := s.identityPublisher.Publish(ctx, payload); err != nil {
				log.Printf("[WARN] Failed to publish identity change: %v", err)
			}
		}
	}

	return &dto.LoginResponse{
		AccessToken: signedToken,
		User: dto.UserDTO{
			Id:        user.Id,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      string(user.Role),
			AvatarURL: googleUser.Picture,
		},
	}, nil
}
