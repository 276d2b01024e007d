package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobportal-be/internal/dto"
	"jobportal-be/pkg/events"
	pktNats "jobportal-be/pkg/nats"
	"jobportal-be/pkg/treestore"
)

const candidatesPath = "candidates"

// IProfileService manages the candidate directory in the realtime tree.
// Records are sanitized projections of accounts: name, email, created-at.
// Credentials never enter the tree.
type IProfileService interface {
	MirrorCandidate(ctx context.Context, id, name, email string) error
	ListCandidates(ctx context.Context, search string) (*dto.CandidateListResponse, error)
	DeleteCandidate(ctx context.Context, id string) error
}

type profileService struct {
	tree           treestore.TreeStore
	eventPublisher *pktNats.Publisher
}

func NewProfileService(tree treestore.TreeStore, eventPublisher *pktNats.Publisher) IProfileService {
	return &profileService{
		tree:           tree,
		eventPublisher: eventPublisher,
	}
}

func (s *profileService) MirrorCandidate(ctx context.Context, id, name, email string) error {
	record := dto.CandidateRecord{
		Id:        id,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
	return s.tree.WriteChild(ctx, candidatesPath, id, record)
}

func (s *profileService) ListCandidates(ctx context.Context, search string) (*dto.CandidateListResponse, error) {
	children, err := s.tree.ListChildren(ctx, candidatesPath)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	candidates := make([]dto.CandidateRecord, 0, len(children))
	for key, raw := range children {
		var rec dto.CandidateRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if rec.Id == "" {
			rec.Id = key
		}
		if needle != "" && !matchesCandidate(rec, needle) {
			continue
		}
		candidates = append(candidates, rec)
	}

	return &dto.CandidateListResponse{
		Candidates: candidates,
		Total:      len(candidates),
	}, nil
}

func (s *profileService) DeleteCandidate(ctx context.Context, id string) error {
	if err := s.tree.DeleteNode(ctx, candidatesPath+"/"+id); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewCandidateRemoved(id)); err != nil {
			fmt.Printf("[WARN] Failed to publish CANDIDATE_REMOVED event: %v\n", err)
		}
	}
	return nil
}

func matchesCandidate(rec dto.CandidateRecord, needle string) bool {
	return strings.Contains(strings.ToLower(rec.Name), needle) ||
		strings.Contains(strings.ToLower(rec.Email), needle) ||
		strings.Contains(strings.ToLower(rec.Id), needle)
}
