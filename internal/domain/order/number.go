package order

import (
	"crypto/rand"
	"fmt"
	"time"
)

const numberAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// NewNumber builds a human-readable order number, e.g. ORD-20260901-K4T7QX.
// Uniqueness is enforced by the orders table; callers retry with a fresh
// number on collision rather than failing the order.
func NewNumber(now time.Time) string {
	suffix := make([]byte, 6)
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// Timestamp fallback keeps numbers unique enough for the retry loop.
		return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), now.UnixNano()%1000000)
	}
	for i, b := range buf {
		suffix[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
