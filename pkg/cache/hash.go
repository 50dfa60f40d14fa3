package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns the hex SHA-256 of data. Closure keys hash the raw Newick input
// with it, and [FileCache] uses it to turn keys into file names.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "prefix:" followed by the hash of parts encoded as JSON.
// Key options are plain structs, so an encoding failure is a bug.
func hashKey(prefix string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		panic(fmt.Sprintf("cache: encode %s key: %v", prefix, err))
	}
	return prefix + ":" + Hash(data)
}
