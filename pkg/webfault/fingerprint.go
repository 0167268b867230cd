// fingerprint.go generates stable hashes for grouping similar reports.

package webfault

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ChainFingerprint generates a hash for grouping similar errors.
// The fingerprint is based on:
//   - every type name in the chain, outermost first
//   - the first 3 frames of the innermost captured stack (declaring names only)
//
// It ignores variable data like messages, timestamps, report IDs, line
// numbers, and offsets, so the same failure site hashes identically across
// builds and requests.
func ChainFingerprint(chain ExceptionChain) string {
	var parts []string
	for _, info := range chain {
		parts = append(parts, info.TypeName)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		frames := chain[i].Frames
		if len(frames) == 0 {
			continue
		}
		for j, f := range frames {
			if j >= 3 {
				break
			}
			name := f.Module + "." + f.TypeName + "." + f.Method
			parts = append(parts, name)
		}
		break
	}

	input := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(input))

	// Hex-encoded first 16 bytes (32 hex chars)
	return hex.EncodeToString(hash[:16])
}
