// FILE: internal/controller/auth_controller_test.go
package controller

import (
	"context"
	"net/http"
	"testing"
	"time"

	"jobportal-be/internal/dto"
	"jobportal-be/internal/repository/memory"
	"jobportal-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	service.IAuthService

	registered []*dto.RegisterRequest
	loggedIn   []*dto.LoginRequest
}

func (f *fakeAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	f.registered = append(f.registered, req)
	return &dto.RegisterResponse{Id: uuid.New(), Email: req.Email}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error) {
	f.loggedIn = append(f.loggedIn, req)
	return &dto.LoginResponse{AccessToken: "tok"}, nil
}

func authApp(svc service.IAuthService) *fiber.App {
	app := fiber.New()
	NewAuthController(svc, memory.NewSessionRegistry(time.Minute)).RegisterRoutes(app)
	return app
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty email", `{"full_name":"Jane Doe","email":"","password":"longenough"}`},
		{"malformed email", `{"full_name":"Jane Doe","email":"not-an-email","password":"longenough"}`},
		{"short password", `{"full_name":"Jane Doe","email":"jane@example.com","password":"x"}`},
		{"short name", `{"full_name":"J","email":"jane@example.com","password":"longenough"}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := &fakeAuthService{}
			resp, envelope := postJSON(t, authApp(svc), "/auth/register", "", c.body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, false, envelope["success"])
			assert.Equal(t, "Validation failed", envelope["message"])
			assert.NotEmpty(t, envelope["errors"])
			assert.Empty(t, svc.registered, "invalid request must not reach the service")
		})
	}
}

func TestRegisterAcceptsValidBody(t *testing.T) {
	svc := &fakeAuthService{}
	resp, envelope := postJSON(t, authApp(svc), "/auth/register",
		"", `{"full_name":"Jane Doe","email":"jane@example.com","password":"longenough"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, envelope["success"])
	require.Len(t, svc.registered, 1)
}

func TestLoginRejectsMissingCredentials(t *testing.T) {
	svc := &fakeAuthService{}
	resp, envelope := postJSON(t, authApp(svc), "/auth/login", "", `{"email":"jane@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, envelope["success"])
	assert.Empty(t, svc.loggedIn)
}
