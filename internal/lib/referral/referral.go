// Package referral generates the short human-facing invite codes handed to
// every account at signup.
package referral

import (
	"crypto/rand"
	"fmt"
)

const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewCode returns a code of the form REF followed by six characters from a
// confusion-free alphabet (no 0/O, no 1/I).
func NewCode() (string, error) {
	const op = "referral.NewCode"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return "REF" + string(buf), nil
}
