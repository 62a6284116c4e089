// Package randsuffix generates short random hex suffixes for temporary file
// names, adapted from mutagen's pkg/random/random.go (crypto/rand-backed
// New), kept verbatim in spirit: atomicfile uses it exactly the way
// mutagen's own temporary-file helpers use their random package, rather than
// relying solely on os.CreateTemp's own randomization.
package randsuffix

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// New returns a random hex string decoding to length random bytes.
func New(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("unable to read random data: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}
