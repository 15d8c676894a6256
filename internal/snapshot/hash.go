package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainSnapshot separates snapshot hashes from any other content hash.
// The version suffix allows a future algorithm change.
const DomainSnapshot = "logicgraph/snapshot/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the content hash of encoded snapshot bytes. Callers pass
// the output of Encode; equal graphs hash equal.
func Hash(encoded []byte) string {
	return hashWithDomain(DomainSnapshot, encoded)
}
