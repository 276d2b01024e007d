package validation

import (
	"testing"

	"jobportal-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func validSubmission() dto.SubmitApplicationRequest {
	return dto.SubmitApplicationRequest{
		FullName:   "Jane Applicant",
		Email:      "jane@example.com",
		Phone:      "08123456789",
		Position:   "frontend",
		Experience: intPtr(3),
		Expertise:  "React, state machines",
	}
}

func fieldCodes(errs []FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Code
	}
	return out
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.SubmitApplicationRequest)
		field  string
		code   string
	}{
		{
			name:   "missing full name",
			mutate: func(r *dto.SubmitApplicationRequest) { r.FullName = "" },
			field:  "full_name",
			code:   "REQUIRED",
		},
		{
			name:   "full name too short",
			mutate: func(r *dto.SubmitApplicationRequest) { r.FullName = "Jo" },
			field:  "full_name",
			code:   "OUT_OF_RANGE",
		},
		{
			name:   "malformed email",
			mutate: func(r *dto.SubmitApplicationRequest) { r.Email = "not-an-email" },
			field:  "email",
			code:   "INVALID_EMAIL",
		},
		{
			name:   "phone too short",
			mutate: func(r *dto.SubmitApplicationRequest) { r.Phone = "0812345678" },
			field:  "phone",
			code:   "INVALID_PHONE",
		},
		{
			name:   "phone too long",
			mutate: func(r *dto.SubmitApplicationRequest) { r.Phone = "081234567890" },
			field:  "phone",
			code:   "INVALID_PHONE",
		},
		{
			name:   "phone with letters",
			mutate: func(r *dto.SubmitApplicationRequest) { r.Phone = "08123abc789" },
			field:  "phone",
			code:   "INVALID_PHONE",
		},
		{
			name:   "unknown position",
			mutate: func(r *dto.SubmitApplicationRequest) { r.Position = "devops" },
			field:  "position",
			code:   "INVALID_CHOICE",
		},
		{
			name:   "experience below zero",
			mutate: func(r *dto.SubmitApplicationRequest) { r.Experience = intPtr(-1) },
			field:  "experience",
			code:   "OUT_OF_RANGE",
		},
		{
			name:   "experience above cap",
			mutate: func(r *dto.SubmitApplicationRequest) { r.Experience = intPtr(21) },
			field:  "experience",
			code:   "OUT_OF_RANGE",
		},
		{
			name:   "experience missing",
			mutate: func(r *dto.SubmitApplicationRequest) { r.Experience = nil },
			field:  "experience",
			code:   "REQUIRED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSubmission()
			tt.mutate(&req)

			errs := Validate(req)
			require.NotEmpty(t, errs)

			codes := fieldCodes(errs)
			assert.Equal(t, tt.code, codes[tt.field])
		})
	}
}

func TestValidateSubmissionBoundaries(t *testing.T) {
	// Inclusive bounds pass.
	for _, exp := range []int{0, 20} {
		req := validSubmission()
		req.Experience = intPtr(exp)
		assert.Empty(t, Validate(req), "experience %d should be valid", exp)
	}

	for _, pos := range []string{"frontend", "backend", "fullstack", "uiux"} {
		req := validSubmission()
		req.Position = pos
		assert.Empty(t, Validate(req), "position %s should be valid", pos)
	}

	// Expertise is optional.
	req := validSubmission()
	req.Expertise = ""
	assert.Empty(t, Validate(req))
}

func TestValidateCollectsAllFailures(t *testing.T) {
	req := dto.SubmitApplicationRequest{}
	errs := Validate(req)

	codes := fieldCodes(errs)
	assert.Equal(t, "REQUIRED", codes["full_name"])
	assert.Equal(t, "REQUIRED", codes["email"])
	assert.Equal(t, "REQUIRED", codes["phone"])
	assert.Equal(t, "REQUIRED", codes["position"])
	assert.Equal(t, "REQUIRED", codes["experience"])
}
