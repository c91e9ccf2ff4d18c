package lexorder

import (
	"bytes"

	"github.com/dr0pdb/icecanelex/pkg/common"
)

// scanBlock is the stride used to skip equal prefixes with bytes.Equal.
const scanBlock = 64

// LocalResult is the outcome of a single worker's scan over its Range.
// Offset is relative to the start of the range and only meaningful when Found is set.
type LocalResult struct {
	Found  bool
	Offset int

	// Sign is -1 if a's byte at the mismatch is less than b's, +1 otherwise.
	Sign int
}

// Scan returns the first index in r at which a and b differ.
// It stops at the first mismatch and never looks outside r.
// Both a and b must be at least r.End long.
func Scan(a, b []byte, r Range) LocalResult {
	for i := r.Start; i < r.End; i += scanBlock {
		end := i + scanBlock
		if end > r.End {
			end = r.End
		}
		if bytes.Equal(a[i:end], b[i:end]) {
			continue
		}

		for j := i; j < end; j++ {
			if s := common.ByteSign(a[j], b[j]); s != 0 {
				return LocalResult{Found: true, Offset: j - r.Start, Sign: s}
			}
		}
	}
	return LocalResult{}
}
