package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"jobportal-be/internal/dto"
	"jobportal-be/internal/entity"
	"jobportal-be/internal/repository/contract"
	"jobportal-be/internal/repository/specification"
	"jobportal-be/internal/repository/unitofwork"
	"jobportal-be/pkg/treestore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeAppRepo struct {
	contract.ApplicationRepository
	apps     []*entity.JobApplication
	payloads map[string][]byte
	feedKeys map[string]string
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{
		payloads: make(map[string][]byte),
		feedKeys: make(map[string]string),
	}
}

func (f *fakeAppRepo) Create(ctx context.Context, app *entity.JobApplication, rawPayload []byte) error {
	copied := *app
	f.apps = append(f.apps, &copied)
	f.payloads[app.Id] = rawPayload
	return nil
}

func (f *fakeAppRepo) UpdateFeedKey(ctx context.Context, id string, feedKey string) error {
	f.feedKeys[id] = feedKey
	return nil
}

func (f *fakeAppRepo) matches(app *entity.JobApplication, specs []specification.Specification) bool {
	for _, spec := range specs {
		if byEmail, ok := spec.(specification.ByApplicantEmail); ok {
			if app.Email != byEmail.Email {
				return false
			}
		}
	}
	return true
}

func (f *fakeAppRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JobApplication, error) {
	var out []*entity.JobApplication
	for _, app := range f.apps {
		if f.matches(app, specs) {
			out = append(out, app)
		}
	}
	return out, nil
}

func (f *fakeAppRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.JobApplication, error) {
	matched, _ := f.FindAll(ctx, specs...)
	if len(matched) == 0 {
		return nil, nil
	}

	newestFirst := false
	for _, spec := range specs {
		if order, ok := spec.(specification.OrderBy); ok && order.Field == "created_at" && order.Desc {
			newestFirst = true
		}
	}
	if newestFirst {
		best := matched[0]
		for _, app := range matched[1:] {
			if app.CreatedAt.After(best.CreatedAt) {
				best = app
			}
		}
		return best, nil
	}
	return matched[0], nil
}

type fakeUserRepo struct {
	contract.UserRepository
	users map[uuid.UUID]*entity.User
}

func (f *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			return f.users[byID.ID], nil
		}
	}
	return nil, nil
}

type fakeUow struct {
	unitofwork.UnitOfWork
	appRepo  *fakeAppRepo
	userRepo *fakeUserRepo
}

func (f *fakeUow) ApplicationRepository() contract.ApplicationRepository { return f.appRepo }
func (f *fakeUow) UserRepository() contract.UserRepository               { return f.userRepo }

type fakeFactory struct {
	uow *fakeUow
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

// fakeTree records list appends and can be told to fail them.
type fakeTree struct {
	treestore.TreeStore
	appends   map[string][]interface{}
	nextKey   int
	appendErr error
}

func newFakeTree() *fakeTree {
	return &fakeTree{appends: make(map[string][]interface{})}
}

func (f *fakeTree) AppendToList(ctx context.Context, path string, value interface{}) (string, error) {
	if f.appendErr != nil {
		return "", f.appendErr
	}
	f.nextKey++
	f.appends[path] = append(f.appends[path], value)
	return fmt.Sprintf("key-%03d", f.nextKey), nil
}

func newTestApplicationService() (IApplicationService, *fakeAppRepo, *fakeUserRepo, *fakeTree) {
	appRepo := newFakeAppRepo()
	userRepo := &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
	tree := newFakeTree()
	factory := &fakeFactory{uow: &fakeUow{appRepo: appRepo, userRepo: userRepo}}
	svc := NewApplicationService(factory, tree, nil)
	return svc, appRepo, userRepo, tree
}

func submission() *dto.SubmitApplicationRequest {
	exp := 4
	return &dto.SubmitApplicationRequest{
		FullName:   "Jane Applicant",
		Email:      "jane@example.com",
		Phone:      "08123456789",
		Position:   "backend",
		Experience: &exp,
		Expertise:  "Go, Postgres",
	}
}

// --- tests ---

func TestSubmitStoresRecordAndFeedEntry(t *testing.T) {
	svc, appRepo, _, tree := newTestApplicationService()
	userID := uuid.New()

	res, err := svc.Submit(context.Background(), userID, submission())
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, appRepo.apps, 1)
	stored := appRepo.apps[0]
	assert.Equal(t, res.Id, stored.Id)
	assert.Equal(t, userID, stored.UserId)
	assert.Equal(t, entity.PositionBackend, stored.Position)

	// Raw form payload travels with the record.
	var raw dto.SubmitApplicationRequest
	require.NoError(t, json.Unmarshal(appRepo.payloads[res.Id], &raw))
	assert.Equal(t, "jane@example.com", raw.Email)

	require.Len(t, tree.appends["jobApplications"], 1)
	assert.Equal(t, res.FeedKey, appRepo.feedKeys[res.Id])
}

func TestSubmitValidationFailureWritesNothing(t *testing.T) {
	svc, appRepo, _, tree := newTestApplicationService()

	req := submission()
	req.Phone = "123"

	res, err := svc.Submit(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.Nil(t, res)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.NotEmpty(t, vErr.Fields)
	assert.Equal(t, "phone", vErr.Fields[0].Field)

	assert.Empty(t, appRepo.apps)
	assert.Empty(t, tree.appends)
}

func TestSubmitIsNotIdempotent(t *testing.T) {
	svc, appRepo, _, tree := newTestApplicationService()
	userID := uuid.New()

	first, err := svc.Submit(context.Background(), userID, submission())
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), userID, submission())
	require.NoError(t, err)

	// Same payload twice means two records and two feed entries.
	assert.Len(t, appRepo.apps, 2)
	assert.Len(t, tree.appends["jobApplications"], 2)
	assert.NotEqual(t, first.FeedKey, second.FeedKey)
}

func TestSubmitPartialWriteKeepsRecord(t *testing.T) {
	svc, appRepo, _, tree := newTestApplicationService()
	tree.appendErr = errors.New("connection reset")

	res, err := svc.Submit(context.Background(), uuid.New(), submission())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "feed write failed")

	// The document write is not rolled back.
	require.Len(t, appRepo.apps, 1)
	assert.Empty(t, appRepo.feedKeys)
	assert.Empty(t, tree.appends)
}

func TestSubmissionIDFormat(t *testing.T) {
	svc, _, _, _ := newTestApplicationService()

	res, err := svc.Submit(context.Background(), uuid.New(), submission())
	require.NoError(t, err)

	// Unix millis plus three random digits.
	assert.Regexp(t, regexp.MustCompile(`^\d{16}$`), res.Id)
}

func TestLookupDisplayNamePrefersNewestApplication(t *testing.T) {
	svc, appRepo, _, _ := newTestApplicationService()
	now := time.Now()

	appRepo.apps = []*entity.JobApplication{
		{Id: "1", Email: "jane@example.com", FullName: "Old Name", CreatedAt: now.Add(-time.Hour)},
		{Id: "2", Email: "jane@example.com", FullName: "New Name", CreatedAt: now},
		{Id: "3", Email: "other@example.com", FullName: "Someone Else", CreatedAt: now.Add(time.Hour)},
	}

	name, err := svc.LookupDisplayName(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "New Name", name)
}

func TestLookupDisplayNameEmptyWhenNeverApplied(t *testing.T) {
	svc, _, _, _ := newTestApplicationService()

	name, err := svc.LookupDisplayName(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestDashboardFallsBackToAccountName(t *testing.T) {
	svc, _, userRepo, _ := newTestApplicationService()
	userID := uuid.New()
	userRepo.users[userID] = &entity.User{
		Id:       userID,
		Email:    "jane@example.com",
		FullName: "Account Jane",
	}

	res, err := svc.Dashboard(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Account Jane", res.DisplayName)
	assert.Empty(t, res.Applications)
	assert.Equal(t, 0, res.Total)
}

func TestDashboardPrefersApplicationName(t *testing.T) {
	svc, appRepo, userRepo, _ := newTestApplicationService()
	userID := uuid.New()
	userRepo.users[userID] = &entity.User{
		Id:       userID,
		Email:    "jane@example.com",
		FullName: "Account Jane",
	}
	appRepo.apps = []*entity.JobApplication{
		{Id: "1", Email: "jane@example.com", FullName: "Applicant Jane", CreatedAt: time.Now()},
	}

	res, err := svc.Dashboard(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Applicant Jane", res.DisplayName)
	assert.Len(t, res.Applications, 1)
	assert.Equal(t, 1, res.Total)
}

func TestDashboardUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestApplicationService()

	_, err := svc.Dashboard(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
