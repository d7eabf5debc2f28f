// Package token generates and hashes opaque refresh token values.
// Raw values leave the process only inside the refresh cookie; storage
// keeps the SHA-256 digest so a database leak never exposes usable tokens.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"aurelia-commerce/internal/pkg/errs"
)

const valueBytes = 32

func NewValue() (string, error) {
	buf := make([]byte, valueBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errs.Wrap(err, "failed to generate refresh token value")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
