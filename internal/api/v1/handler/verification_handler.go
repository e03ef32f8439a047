package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
)

type VerificationHandler struct {
	verificationService service.VerificationService
	validate            *validator.Validate
}

func NewVerificationHandler(verificationService service.VerificationService, v *validator.Validate) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService, validate: v}
}

// RegisterRoutes mounts v1 verification routes
func (h *VerificationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/verification/request", http.HandlerFunc(h.requestVerification))
	mux.Handle("/verification/verify", http.HandlerFunc(h.verifyEmail))
	mux.Handle("/verification/status", http.HandlerFunc(h.getStatus))
}

func (h *VerificationHandler) requestVerification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// 1. Decode request body into DTO
	var req dto.VerificationRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	// 2. Validate DTO
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	// 3. Issue the token and send the email
	if _, err := h.verificationService.RequestVerification(r.Context(), req.UserID, req.UniversityEmail); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDomain):
			writeJSON(w, http.StatusBadRequest, dto.APIResponse{Success: false, Message: "not a university email address"})
		case errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, dto.APIResponse{Success: false, Message: "user not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.APIResponse{Success: false, Message: "failed to request verification"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.APIResponse{Success: true, Message: "verification email sent"})
}

func (h *VerificationHandler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.VerificationConfirmDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.verificationService.VerifyEmail(r.Context(), req.UserID, req.Token); err != nil {
		switch {
		case errors.Is(err, service.ErrVerificationNotFound), errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, dto.APIResponse{Success: false, Message: "verification request not found"})
		case errors.Is(err, service.ErrInvalidToken):
			writeJSON(w, http.StatusBadRequest, dto.APIResponse{Success: false, Message: "invalid verification token"})
		case errors.Is(err, service.ErrVerificationExpired):
			writeJSON(w, http.StatusBadRequest, dto.APIResponse{Success: false, Message: "verification token expired"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.APIResponse{Success: false, Message: "failed to verify email"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.APIResponse{Success: true, Message: "student verification complete"})
}

func (h *VerificationHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId query parameter is required", http.StatusBadRequest)
		return
	}

	isStudent, err := h.verificationService.IsVerifiedStudent(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.APIResponse{Success: false, Message: "failed to check status"})
		return
	}

	writeJSON(w, http.StatusOK, dto.VerificationStatusDTO{Success: true, IsStudent: isStudent})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
