package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"jobportal-be/internal/dto"
	"jobportal-be/internal/entity"
	"jobportal-be/internal/pkg/validation"
	"jobportal-be/internal/repository/specification"
	"jobportal-be/internal/repository/unitofwork"
	"jobportal-be/pkg/events"
	pktNats "jobportal-be/pkg/nats"
	"jobportal-be/pkg/treestore"

	"github.com/google/uuid"
)

const applicationsPath = "jobApplications"

// ValidationError carries per-field failures to the controller layer.
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Code
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

type IApplicationService interface {
	Submit(ctx context.Context, userID uuid.UUID, req *dto.SubmitApplicationRequest) (*dto.SubmitApplicationResponse, error)
	ListByEmail(ctx context.Context, email string) ([]dto.ApplicationResponse, error)
	LookupDisplayName(ctx context.Context, email string) (string, error)
	Dashboard(ctx context.Context, userID uuid.UUID) (*dto.DashboardResponse, error)
}

type applicationService struct {
	uowFactory     unitofwork.RepositoryFactory
	tree           treestore.TreeStore
	eventPublisher *pktNats.Publisher
}

func NewApplicationService(
	uowFactory unitofwork.RepositoryFactory,
	tree treestore.TreeStore,
	eventPublisher *pktNats.Publisher,
) IApplicationService {
	return &applicationService{
		uowFactory:     uowFactory,
		tree:           tree,
		eventPublisher: eventPublisher,
	}
}

// newSubmissionID builds the wire-format record key: unix millis plus a
// three-digit random suffix. Best-effort unique, matches the stored
// record format consumers already parse.
func newSubmissionID() string {
	return fmt.Sprintf("%d%03d", time.Now().UnixMilli(), rand.Intn(1000))
}

// Submit runs the dual write: the document store insert is authoritative,
// the tree store append feeds realtime consumers. The two writes are
// sequential and not atomic; a tree failure leaves the document record in
// place and reports the error to the caller.
func (s *applicationService) Submit(ctx context.Context, userID uuid.UUID, req *dto.SubmitApplicationRequest) (*dto.SubmitApplicationResponse, error) {
	if fieldErrs := validation.Validate(req); fieldErrs != nil {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	id := newSubmissionID()
	now := time.Now()

	app := &entity.JobApplication{
		Id:         id,
		UserId:     userID,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   entity.Position(req.Position),
		Experience: *req.Experience,
		Expertise:  req.Expertise,
		CreatedAt:  now,
	}

	rawPayload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ApplicationRepository().Create(ctx, app, rawPayload); err != nil {
		return nil, fmt.Errorf("failed to store application: %w", err)
	}

	feedEntry := map[string]interface{}{
		"submissionId": id,
		"fullName":     req.FullName,
		"email":        req.Email,
		"phone":        req.Phone,
		"position":     req.Position,
		"experience":   *req.Experience,
		"expertise":    req.Expertise,
		"createdAt":    now.Format(time.RFC3339),
	}

	feedKey, err := s.tree.AppendToList(ctx, applicationsPath, feedEntry)
	if err != nil {
		// The document record stays; the feed copy is gone. Surfacing the
		// error lets the caller retry, which produces a second record.
		return nil, fmt.Errorf("application stored but feed write failed: %w", err)
	}

	if err := uow.ApplicationRepository().UpdateFeedKey(ctx, id, feedKey); err != nil {
		fmt.Printf("[WARN] Failed to record feed key for submission %s: %v\n", id, err)
	}

	if s.eventPublisher != nil {
		event := events.NewApplicationSubmitted(id, userID.String(), req.Email, req.Position)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("[WARN] Failed to publish APPLICATION_SUBMITTED event: %v\n", err)
		}
	}

	return &dto.SubmitApplicationResponse{Id: id, FeedKey: feedKey}, nil
}

func (s *applicationService) ListByEmail(ctx context.Context, email string) ([]dto.ApplicationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	apps, err := uow.ApplicationRepository().FindAll(ctx, specification.ByApplicantEmail{Email: email})
	if err != nil {
		return nil, err
	}

	out := make([]dto.ApplicationResponse, len(apps))
	for i, a := range apps {
		out[i] = dto.ApplicationResponse{
			Id:         a.Id,
			FullName:   a.FullName,
			Email:      a.Email,
			Phone:      a.Phone,
			Position:   string(a.Position),
			Experience: a.Experience,
			Expertise:  a.Expertise,
			CreatedAt:  a.CreatedAt,
		}
	}
	return out, nil
}

// LookupDisplayName resolves the name on the newest application for the
// email. Empty string when the principal never applied; the caller owns
// the fallback chain.
func (s *applicationService) LookupDisplayName(ctx context.Context, email string) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	app, err := uow.ApplicationRepository().FindOne(ctx,
		specification.ByApplicantEmail{Email: email},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return "", err
	}
	if app == nil {
		return "", nil
	}
	return app.FullName, nil
}

func (s *applicationService) Dashboard(ctx context.Context, userID uuid.UUID) (*dto.DashboardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	displayName, err := s.LookupDisplayName(ctx, user.Email)
	if err != nil {
		fmt.Printf("[WARN] Display name lookup failed for %s: %v\n", user.Email, err)
		displayName = ""
	}
	if displayName == "" {
		displayName = user.FullName
	}
	if displayName == "" {
		displayName = "User"
	}

	apps, err := s.ListByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	avatar := ""
	if user.AvatarURL != nil {
		avatar = *user.AvatarURL
	}

	return &dto.DashboardResponse{
		DisplayName:  displayName,
		Email:        user.Email,
		AvatarURL:    avatar,
		Applications: apps,
		Total:        len(apps),
	}, nil
}
