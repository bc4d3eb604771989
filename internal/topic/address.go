package topic

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Address returns the cache key for a prompt: the hex SHA-256 digest of the
// prompt with leading and trailing whitespace removed. Trimming is the only
// normalisation applied; case or wording differences produce distinct
// addresses.
func Address(promptText string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(promptText)))
	return hex.EncodeToString(sum[:])
}
