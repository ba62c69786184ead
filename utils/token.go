package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// sessionTokenBytes gives 256 bits of entropy per table session token.
const sessionTokenBytes = 32

// NewSessionToken returns an opaque, URL-safe token for a table session.
func NewSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
