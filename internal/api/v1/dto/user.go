package dto

import "time"

// UserCreateDTO is used for incoming create requests
type UserCreateDTO struct {
	UserID      string `json:"userId" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required"`
}

// UserResponseDTO is returned in API responses
type UserResponseDTO struct {
	UserID                    string    `json:"userId"`
	Email                     string    `json:"email"`
	DisplayName               string    `json:"displayName"`
	IsStudent                 bool      `json:"isStudent"`
	StudentVerificationStatus string    `json:"studentVerificationStatus"`
	CreatedAt                 time.Time `json:"createdAt"`
}
