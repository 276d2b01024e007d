// FILE: internal/controller/application_controller_test.go
package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobportal-be/internal/dto"
	"jobportal-be/internal/pkg/validation"
	"jobportal-be/internal/repository/memory"
	"jobportal-be/internal/service"
	"jobportal-be/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApplicationService struct {
	service.IApplicationService

	submitRes *dto.SubmitApplicationResponse
	submitErr error
}

func (f *fakeApplicationService) Submit(ctx context.Context, userID uuid.UUID, req *dto.SubmitApplicationRequest) (*dto.SubmitApplicationResponse, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitRes, nil
}

func (f *fakeApplicationService) Dashboard(ctx context.Context, userID uuid.UUID) (*dto.DashboardResponse, error) {
	return nil, service.ErrNotFound
}

func signedInApp(t *testing.T, svc service.IApplicationService) (*fiber.App, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test_secret")

	userID := uuid.New()
	registry := memory.NewSessionRegistry(time.Minute)
	sync := session.NewSynchronizer(nil, 0)
	sync.Notify(&session.Identity{ID: userID, Email: "a@b.com", DisplayName: "A"})
	registry.Save(userID.String(), sync)

	claims := jwt.MapClaims{"user_id": userID.String(), "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test_secret"))
	require.NoError(t, err)

	app := fiber.New()
	NewApplicationController(svc, registry).RegisterRoutes(app)
	return app, token
}

func postJSON(t *testing.T, app *fiber.App, path, token, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func TestSubmitSuccessEnvelope(t *testing.T) {
	svc := &fakeApplicationService{
		submitRes: &dto.SubmitApplicationResponse{Id: "1756400000000001", FeedKey: "k1"},
	}
	app, token := signedInApp(t, svc)

	resp, envelope := postJSON(t, app, "/applications/", token, `{"full_name":"Jane Doe"}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, "Application submitted", envelope["message"])

	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "1756400000000001", data["id"])
}

func TestSubmitValidationEnvelope(t *testing.T) {
	svc := &fakeApplicationService{
		submitErr: &service.ValidationError{Fields: []validation.FieldError{
			{Field: "phone", Code: "INVALID_PHONE"},
		}},
	}
	app, token := signedInApp(t, svc)

	resp, envelope := postJSON(t, app, "/applications/", token, `{}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "Validation failed", envelope["message"])
	assert.NotEmpty(t, envelope["errors"])
}
