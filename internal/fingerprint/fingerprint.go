// Package fingerprint produces a short, content-addressed digest for
// diagnostic log lines — never for the wire protocol, which always
// carries full bytes. The daemon logs it for every stored value, so
// its logs distinguish "the same value as before" from "a new value"
// without ever writing clipboard bytes to a log.
package fingerprint

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Length is the number of hex characters in a fingerprint (8 bytes of
// digest, 16 hex characters) — enough to distinguish values in a log
// stream without pretending to be a security-grade identifier.
const Length = 16

// Of returns a short hex BLAKE3 digest of data.
func Of(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])[:Length]
}
