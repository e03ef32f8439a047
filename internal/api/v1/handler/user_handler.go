package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/event"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	userService service.UserService
	dispatcher  *event.Dispatcher
	validate    *validator.Validate
}

func NewUserHandler(userService service.UserService, dispatcher *event.Dispatcher, v *validator.Validate) *UserHandler {
	return &UserHandler{userService: userService, dispatcher: dispatcher, validate: v}
}

// RegisterRoutes mounts v1 user routes
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/users", http.HandlerFunc(h.createUser))
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// 1. Decode request body into DTO
	var req dto.UserCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	// 2. Validate DTO
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	// 3. Create the profile row
	userModel := &model.User{
		UserID:      req.UserID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}
	createdUser, err := h.userService.Create(r.Context(), userModel)
	if err != nil {
		http.Error(w, "Failed to create user: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// 4. Run the registration event through the same path Pub/Sub uses, so
	// the profile is initialized identically either way.
	payload, _ := json.Marshal(event.UserPayload{UserID: createdUser.UserID, Email: createdUser.Email})
	if err := h.dispatcher.Handle(r.Context(), string(event.UserCreated), payload); err != nil {
		http.Error(w, "Failed to initialize user profile: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// 5. Map domain model to response DTO
	resp := dto.UserResponseDTO{
		UserID:                    createdUser.UserID,
		Email:                     createdUser.Email,
		DisplayName:               createdUser.DisplayName,
		IsStudent:                 createdUser.IsStudent,
		StudentVerificationStatus: createdUser.StudentVerificationStatus,
		CreatedAt:                 createdUser.CreatedAt,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}
