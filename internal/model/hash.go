package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainCharacter prefixes character state hashes. The version suffix
// leaves room for a future change of the canonical form.
const DomainCharacter = "nomadpath/character/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash returns a content hash of the character. Equal characters hash
// equally regardless of map iteration order.
func StateHash(c *Character) (string, error) {
	if c == nil {
		return "", fmt.Errorf("state hash: nil character")
	}
	data, err := MarshalCanonical(c)
	if err != nil {
		return "", fmt.Errorf("state hash: %w", err)
	}
	return hashWithDomain(DomainCharacter, data), nil
}
