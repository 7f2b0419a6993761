// Package docid maps caller-supplied document keys onto the canonical
// UUID form the backend requires for every object key.
package docid

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"github.com/google/uuid"
)

var canonicalPattern = regexp.MustCompile(`^(?i)[\da-f]{8}-([\da-f]{4}-){3}[\da-f]{12}$`)

// IsCanonical reports whether id already matches the canonical hyphenated
// 8-4-4-4-12 UUID grammar (case-insensitive).
func IsCanonical(id string) bool {
	return canonicalPattern.MatchString(id)
}

// Normalize returns id unchanged when it is already canonical. Otherwise it
// derives a UUID from sha256(id+class), taking every second hex digit of the
// digest. The same (id, class) pair always yields the same UUID, so rewrites
// of the same key upsert the same object; the same id in two classes maps to
// two different UUIDs.
func Normalize(id, class string) string {
	if IsCanonical(id) {
		return id
	}

	sum := sha256.Sum256([]byte(id + class))
	digest := hex.EncodeToString(sum[:])

	compact := make([]byte, 0, 32)
	for i := 0; i < len(digest); i += 2 {
		compact = append(compact, digest[i])
	}

	u, err := uuid.Parse(string(compact))
	if err != nil {
		// 32 hex digits always parse; unreachable.
		return string(compact)
	}
	return u.String()
}
