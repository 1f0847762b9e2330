package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/todos/services/user/domain/models"
)

// CredentialsRequest is the request body for POST /auth/register and POST /auth/login.
type CredentialsRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=6,max=72"  example:"hunter22"`
} // @name CredentialsRequest

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        uuid.UUID `json:"id"         example:"550e8400-e29b-41d4-a716-446655440000"`
	Email     string    `json:"email"      example:"alice@example.com"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
} // @name UserResponse

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message" example:"Logged out"`
} // @name AuthMessageResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid email or password"`
} // @name AuthErrorResponse

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt.UTC()}
}
