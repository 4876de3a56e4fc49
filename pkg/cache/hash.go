package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 digest of data. Used to fingerprint graph
// descriptions and option sets.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds a "prefix:digest" key from arbitrary material.
func hashKey(prefix, material string) string {
	return prefix + ":" + Hash([]byte(material))
}
