package usecase

import (
	"aurelia-commerce/internal/domain/user"
	"aurelia-commerce/internal/pkg/jwt"

	"github.com/google/uuid"
)

// TokenValidator is the auth middleware's view of access-token validation.
type TokenValidator interface {
	ValidateToken(raw string) (uuid.UUID, user.Role, error)
}

type jwtTokenValidator struct {
	svc *jwt.Service
}

func NewTokenValidator(svc *jwt.Service) TokenValidator {
	return &jwtTokenValidator{svc: svc}
}

func (v *jwtTokenValidator) ValidateToken(raw string) (uuid.UUID, user.Role, error) {
	claims, err := v.svc.ValidateToken(raw)
	if err != nil {
		return uuid.Nil, "", err
	}
	role, err := user.NewRole(claims.Role)
	if err != nil {
		return uuid.Nil, "", err
	}
	return claims.UserID, role, nil
}
