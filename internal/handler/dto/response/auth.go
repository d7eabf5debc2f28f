package response

import (
	"aurelia-commerce/internal/usecase/commands"

	"github.com/google/uuid"
)

type AuthUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// AuthResponse omits the tokens themselves; both travel as HttpOnly cookies.
type AuthResponse struct {
	User AuthUser `json:"user"`
}

func FromAuthResult(r *commands.AuthResult) AuthResponse {
	return AuthResponse{
		User: AuthUser{
			ID:    r.UserID,
			Email: r.Email,
			Role:  r.Role.String(),
		},
	}
}
