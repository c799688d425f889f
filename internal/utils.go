package internal

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// HashKey returns a short, filesystem-safe md5 digest of the given parts.
// Parts are joined with a NUL byte so ("ab", "c") and ("a", "bc") differ.
func HashKey(parts ...string) string {
	hash := md5.Sum([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(hash[:])
}
