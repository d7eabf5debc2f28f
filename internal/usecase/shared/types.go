package shared

import (
	"github.com/google/uuid"
)

// CartOwner identifies a cart by user id (permanent) XOR session id (guest).
type CartOwner struct {
	UserID    *uuid.UUID
	SessionID *string
}

func OwnerForUser(userID uuid.UUID) CartOwner {
	return CartOwner{UserID: &userID}
}

func OwnerForSession(sessionID string) CartOwner {
	return CartOwner{SessionID: &sessionID}
}

func (o CartOwner) Valid() bool {
	return (o.UserID != nil) != (o.SessionID != nil)
}

// UserSnapshot is the write-side read of an account, enough to re-validate
// token ownership without depending on query-layer view types.
type UserSnapshot struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
}

type NewUser struct {
	Email        string
	PasswordHash string
	Role         string
}

// StockLevels is the counter pair before or after a ledger mutation.
type StockLevels struct {
	Quantity         int
	ReservedQuantity int
}
