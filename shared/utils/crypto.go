package utils

import (
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// NewToken returns an opaque random identifier (uuid v4, crypto/rand backed).
// Used for session tokens and stored file names.
func NewToken() string {
	return uuid.NewString()
}

// DecodeBase64 accepts standard and url-safe alphabets, padded or not.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}
