package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// fingerprintLength is the number of hex characters kept by Fingerprint.
const fingerprintLength = 16

// Fingerprint returns a short blake3 digest of a fetched document.
// It identifies upstream revisions in fetch records; it is not a security primitive.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
