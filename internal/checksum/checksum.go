// Package checksum computes content digests used as schema ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag quotes a checksum for use in an ETag header.
func ETag(sum string) string {
	return `"` + sum + `"`
}

// Matches reports whether an If-Match header value accepts the current
// checksum. An empty header or "*" matches anything; otherwise any of the
// comma-separated tags, quoted or not, must equal current.
func Matches(ifMatch, current string) bool {
	ifMatch = strings.TrimSpace(ifMatch)
	if ifMatch == "" || ifMatch == "*" {
		return true
	}
	for _, tag := range strings.Split(ifMatch, ",") {
		tag = strings.TrimSpace(tag)
		tag = strings.TrimPrefix(tag, "W/")
		if strings.Trim(tag, `"`) == current {
			return true
		}
	}
	return false
}
