package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// DefaultLength is the length of the random part of generated resource ids.
const DefaultLength = 24

var suffixPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// GenerateSecureID returns prefix_<length url-safe random characters>.
func GenerateSecureID(prefix string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("id length must be positive, got %d", length)
	}
	raw := make([]byte, base64.RawURLEncoding.DecodedLen(length)+1)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	suffix := base64.RawURLEncoding.EncodeToString(raw)[:length]
	return prefix + "_" + suffix, nil
}

// ValidateIDFormat reports whether id is prefix_ followed by url-safe characters.
func ValidateIDFormat(id, expectedPrefix string) bool {
	suffix, ok := strings.CutPrefix(id, expectedPrefix+"_")
	return ok && suffixPattern.MatchString(suffix)
}
