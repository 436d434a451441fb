package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room to
// change the algorithm without colliding with old journals.
const (
	DomainSnapshot = "solaris/snapshot/v1"
	DomainCatalog  = "solaris/catalog/v1"
	DomainPolicy   = "solaris/policy/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash marshals v canonically and hashes it under domain.
func Hash(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// HashBytes hashes already-canonical bytes under domain.
func HashBytes(domain string, data []byte) string {
	return hashWithDomain(domain, data)
}
