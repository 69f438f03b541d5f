package account

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestSecret computes the one-way digest stored for a tenant secret.
// The digest must be deterministic: the transfer credential is derived
// from it at authorization-table build time, so salted schemes cannot be
// used for this column.
func DigestSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
