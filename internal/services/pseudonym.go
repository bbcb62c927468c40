package services

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Pseudonym derives a stable, salted identifier for an email address so that
// logs and exports never carry the address itself.
func Pseudonym(salt, email string) string {
	key := []byte(salt)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	// New256 only fails for keys longer than blake2b.Size.
	h, _ := blake2b.New256(key)
	h.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(h.Sum(nil)[:8])
}
