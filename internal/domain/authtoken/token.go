// Package authtoken models refresh-token records and the rotation state
// machine. Tokens form a linear chain per family via ReplacedBy; presenting
// a token that is no longer the chain head is treated as theft and revokes the
// whole family.
package authtoken

import (
	"time"

	"github.com/google/uuid"
)

// Token is persisted hashed; the raw value never reaches storage. Records
// are kept after revocation for audit and reuse detection, never deleted.
type Token struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	TokenHash  string
	FamilyID   uuid.UUID
	DeviceID   *string
	Role       string
	Revoked    bool
	ReplacedBy *uuid.UUID
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt time.Time
}

func New(userID uuid.UUID, tokenHash string, familyID uuid.UUID, deviceID *string, role string, now time.Time, ttl time.Duration) *Token {
	return &Token{
		ID:         uuid.New(),
		UserID:     userID,
		TokenHash:  tokenHash,
		FamilyID:   familyID,
		DeviceID:   deviceID,
		Role:       role,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		LastUsedAt: now,
	}
}

type Outcome int

const (
	// OutcomeRotate: all checks passed, proceed with rotation.
	OutcomeRotate Outcome = iota
	// OutcomeReuse: the token was already revoked or rotated away. Theft
	// signal; the caller must revoke the entire family.
	OutcomeReuse
	// OutcomeExpired: past absolute expiry. Revoke this token only.
	OutcomeExpired
	// OutcomeIdle: unused longer than the idle timeout. Revoke this token only.
	OutcomeIdle
)

// Evaluate decides what a presented token means. The reuse check runs before
// the expiry check: an expired-but-already-replaced token that comes back is
// theft evidence and must cascade, not report staleness.
func Evaluate(t *Token, now time.Time, idleTimeout time.Duration) Outcome {
	if t.Revoked {
		return OutcomeReuse
	}
	if t.ReplacedBy != nil {
		return OutcomeReuse
	}
	if now.After(t.ExpiresAt) {
		return OutcomeExpired
	}
	if idleTimeout > 0 && now.Sub(t.LastUsedAt) > idleTimeout {
		return OutcomeIdle
	}
	return OutcomeRotate
}

// Rotate issues the successor token. The family id always carries over;
// every descendant of one login stays in the same lineage.
func Rotate(old *Token, newHash string, now time.Time, ttl time.Duration) *Token {
	return New(old.UserID, newHash, old.FamilyID, old.DeviceID, old.Role, now, ttl)
}
