package dto

// VerificationRequestDTO is used for incoming verification requests
type VerificationRequestDTO struct {
	UserID          string `json:"userId" validate:"required"`
	UniversityEmail string `json:"universityEmail" validate:"required,email"`
}

// VerificationConfirmDTO is used to consume a verification token
type VerificationConfirmDTO struct {
	UserID string `json:"userId" validate:"required"`
	Token  string `json:"token" validate:"required"`
}

// APIResponse is the generic success/failure envelope
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// VerificationStatusDTO is returned for status checks
type VerificationStatusDTO struct {
	Success   bool `json:"success"`
	IsStudent bool `json:"isStudent"`
}
