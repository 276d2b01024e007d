// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"jobportal-be/internal/dto"
	"jobportal-be/internal/entity"
	"jobportal-be/internal/pkg/mailer"
	"jobportal-be/internal/repository/specification"
	"jobportal-be/internal/repository/unitofwork"

	"jobportal-be/pkg/events"
	pktNats "jobportal-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, userID string, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error)
}

type authService struct {
	uowFactory        unitofwork.RepositoryFactory
	emailService      mailer.IEmailService
	identityPublisher IPublisherService
	eventPublisher    *pktNats.Publisher
	profileService    IProfileService
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	identityPublisher IPublisherService,
	eventPublisher *pktNats.Publisher,
	profileService IProfileService,
) IAuthService {
	return &authService{
		uowFactory:        uowFactory,
		emailService:      emailService,
		identityPublisher: identityPublisher,
		eventPublisher:    eventPublisher,
		profileService:    profileService,
	}
}

func generateAccessToken(user *entity.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	return token.SignedString([]byte(secret))
}

func hashRefreshToken(raw string) string {
	hasher := sha256.New()
	hasher.Write([]byte(raw))
	return hex.EncodeToString(hasher.Sum(nil))
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	// 1. Check for existing user
	existing, _ := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if existing != nil {
		return nil, ErrDuplicateAccount
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	// 3. Create User Entity
	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: &hashStr,
		Role:         entity.UserRoleUser,
		Status:       entity.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	// 4. Mirror into the candidate directory. Best effort; the account is
	// authoritative, the directory copy is not.
	if s.profileService != nil {
		if err := s.profileService.MirrorCandidate(ctx, user.Id.String(), user.FullName, user.Email); err != nil {
			fmt.Printf("[WARN] Failed to mirror candidate record for %s: %v\n", user.Email, err)
		}
	}

	// 5. Registration signs the principal in
	s.publishIdentity(ctx, &dto.IdentityChangedMessage{
		UserId:      user.Id.String(),
		Email:       user.Email,
		DisplayName: user.FullName,
		SignedIn:    true,
	})

	// SEND REAL EMAIL
	go func() {
		emailErr := s.emailService.SendWelcome(user.Email, user.FullName)
		if emailErr != nil {
			fmt.Printf("Error sending welcome email: %v\n", emailErr)
		}
	}()

	return &dto.RegisterResponse{Id: user.Id, Email: user.Email}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	// 1. Check if user exists
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, ErrWrongCredential
	}
	if user == nil {
		return nil, ErrWrongCredential
	}

	// 2. Check if user has a password (might be OAuth only)
	if user.PasswordHash == nil {
		return nil, ErrOAuthOnlyAccount
	}

	// 3. Compare passwords
	err = bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password))
	if err != nil {
		return nil, ErrWrongCredential
	}

	// 4. Check if user is blocked
	if user.Status == entity.UserStatusBlocked {
		return nil, ErrAccountBlocked
	}

	// 5. Generate JWT
	signedToken, err := generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	var rawRefreshToken string

	if req.RememberMe {
		rawRefreshToken = uuid.New().String()

		refreshTokenEntity := &entity.UserRefreshToken{
			Id:        uuid.New(),
			UserId:    user.Id,
			TokenHash: hashRefreshToken(rawRefreshToken),
			ExpiresAt: time.Now().Add(time.Hour * 24 * 30),
			Revoked:   false,
			CreatedAt: time.Now(),
			IpAddress: ipAddress,
			UserAgent: userAgent,
		}

		err = uow.UserRepository().CreateRefreshToken(ctx, refreshTokenEntity)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %v", err)
		}
	}

	avatarRef := ""
	if user.AvatarURL != nil {
		avatarRef = *user.AvatarURL
	}

	s.publishIdentity(ctx, &dto.IdentityChangedMessage{
		UserId:      user.Id.String(),
		Email:       user.Email,
		DisplayName: user.FullName,
		AvatarRef:   avatarRef,
		SignedIn:    true,
	})

	return &dto.LoginResponse{
		AccessToken:  signedToken,
		RefreshToken: rawRefreshToken,
		User: dto.UserDTO{
			Id:        user.Id,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      string(user.Role),
			AvatarURL: avatarRef,
		},
	}, nil
}

// Logout always reports success. A stale or missing refresh token still
// tears the session projection down.
func (s *authService) Logout(ctx context.Context, userID string, refreshToken string) error {
	if refreshToken != "" {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.UserRepository().RevokeRefreshToken(ctx, hashRefreshToken(refreshToken)); err != nil {
			fmt.Printf("[WARN] Failed to revoke refresh token: %v\n", err)
		}
	}

	s.publishIdentity(ctx, &dto.IdentityChangedMessage{
		UserId:   userID,
		SignedIn: false,
	})

	return nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	tokenEntity, err := uow.UserRepository().FindRefreshToken(ctx,
		specification.ByTokenHash{Hash: hashRefreshToken(refreshToken)},
		specification.UnrevokedTokens{},
	)
	if err != nil || tokenEntity == nil {
		return nil, ErrInvalidRefresh
	}
	if time.Now().After(tokenEntity.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: tokenEntity.UserId})
	if err != nil || user == nil {
		return nil, ErrInvalidRefresh
	}
	if user.Status == entity.UserStatusBlocked {
		return nil, ErrAccountBlocked
	}

	signedToken, err := generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshResponse{AccessToken: signedToken}, nil
}

// publishIdentity feeds the in-process projection stream and mirrors the
// transition to NATS for other instances.
func (s *authService) publishIdentity(ctx context.Context, msg *dto.IdentityChangedMessage) {
	if s.identityPublisher != nil {
		payload, err := json.Marshal(msg)
		if err == nil {
			if err := s.identityPublisher.Publish(ctx, payload); err != nil {
				fmt.Printf("[WARN] Failed to publish identity change: %v\n", err)
			}
		}
	}

	if s.eventPublisher != nil {
		var event events.Event
		if msg.SignedIn {
			event = events.NewIdentitySignedIn(msg.UserId, msg.Email, msg.DisplayName, msg.AvatarRef)
		} else {
			event = events.NewIdentitySignedOut(msg.UserId)
		}
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("[WARN] Failed to publish %s event: %v\n", event.EventType(), err)
		}
	}
}
