package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
)

type stubVerificationService struct {
	requestErr error
	verifyErr  error
	isStudent  bool
	statusErr  error
}

func (s *stubVerificationService) RequestVerification(_ context.Context, userID, email string) (string, error) {
	if s.requestErr != nil {
		return "", s.requestErr
	}
	return "https://everycourse.app/verify-student?token=abc&userId=" + userID, nil
}

func (s *stubVerificationService) VerifyEmail(_ context.Context, _, _ string) error {
	return s.verifyErr
}

func (s *stubVerificationService) IsVerifiedStudent(_ context.Context, _ string) (bool, error) {
	return s.isStudent, s.statusErr
}

func newVerificationServer(svc service.VerificationService) *http.ServeMux {
	mux := http.NewServeMux()
	h := NewVerificationHandler(svc, validator.New(validator.WithRequiredStructEnabled()))
	h.RegisterRoutes(mux)
	return mux
}

func TestRequestVerificationEndpoint(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		svc         *stubVerificationService
		wantStatus  int
		wantSuccess bool
	}{
		{
			name:        "happy path",
			body:        `{"userId":"u1","universityEmail":"a@korea.ac.kr"}`,
			svc:         &stubVerificationService{},
			wantStatus:  http.StatusOK,
			wantSuccess: true,
		},
		{
			name:       "rejected domain",
			body:       `{"userId":"u1","universityEmail":"a@gmail.com"}`,
			svc:        &stubVerificationService{requestErr: service.ErrInvalidDomain},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown user",
			body:       `{"userId":"ghost","universityEmail":"a@korea.ac.kr"}`,
			svc:        &stubVerificationService{requestErr: service.ErrUserNotFound},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing email fails validation",
			body:       `{"userId":"u1"}`,
			svc:        &stubVerificationService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed email fails validation",
			body:       `{"userId":"u1","universityEmail":"not-an-email"}`,
			svc:        &stubVerificationService{},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newVerificationServer(tt.svc)
			req := httptest.NewRequest(http.MethodPost, "/verification/request", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantSuccess {
				var resp dto.APIResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("invalid JSON response: %v", err)
				}
				if !resp.Success {
					t.Fatalf("expected success response, got %+v", resp)
				}
			}
		})
	}
}

func TestVerifyEmailEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		svc        *stubVerificationService
		wantStatus int
	}{
		{"happy path", &stubVerificationService{}, http.StatusOK},
		{"no pending request", &stubVerificationService{verifyErr: service.ErrVerificationNotFound}, http.StatusNotFound},
		{"wrong token", &stubVerificationService{verifyErr: service.ErrInvalidToken}, http.StatusBadRequest},
		{"expired token", &stubVerificationService{verifyErr: service.ErrVerificationExpired}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newVerificationServer(tt.svc)
			body := `{"userId":"u1","token":"deadbeef"}`
			req := httptest.NewRequest(http.MethodPost, "/verification/verify", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestVerificationStatusEndpoint(t *testing.T) {
	mux := newVerificationServer(&stubVerificationService{isStudent: true})

	req := httptest.NewRequest(http.MethodGet, "/verification/status?userId=u1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.VerificationStatusDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !resp.Success || !resp.IsStudent {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Missing userId is a client error.
	req = httptest.NewRequest(http.MethodGet, "/verification/status", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status without userId = %d, want 400", rec.Code)
	}
}
