package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ConfigHash fingerprints the scenario configuration a run was produced
// under, so stored projections can be traced back to the exact multiplier
// table that shaped them.
type ConfigHash Hash

func NewConfigHash(data []byte) ConfigHash { return ConfigHash(NewHash(data)) }

func (h ConfigHash) String() string { return Hash(h).String() }

// ComputeConfigHash builds a deterministic fingerprint from key/value pairs.
// Keys are sorted so map iteration order never leaks into the hash.
func ComputeConfigHash(fields map[string]interface{}) ConfigHash {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%v", fields[key]))
	}

	return NewConfigHash([]byte(data.String()))
}
