package lexorder

import (
	"fmt"

	"github.com/dr0pdb/icecanelex/pkg/common"
	log "github.com/sirupsen/logrus"
)

// Comparator defines the lexicographic ordering between two equal-length byte sequences.
// Bytes are compared as unsigned values; no locale or multi-byte ordering is applied.
type Comparator interface {
	// Compare returns -1, 0, 1 if a is less than, equal to or greater than b respectively.
	// n is the declared length of both sequences; a mismatch with len(a) or len(b)
	// is reported as an InvalidArgumentError.
	Compare(a, b []byte, n int) (int, error)

	// Name returns the name of the comparator
	Name() string
}

// DefaultComparator compares with one worker per CPU and no subdivision.
var DefaultComparator Comparator = &LocalComparator{}

// Compare compares a and b using the DefaultComparator.
func Compare(a, b []byte, n int) (int, error) {
	return DefaultComparator.Compare(a, b, n)
}

// CheckSequences validates the declared length against both sequences.
func CheckSequences(a, b []byte, n int) error {
	if n < 0 {
		log.WithFields(log.Fields{"n": n}).Error("lexorder::comparator::CheckSequences; negative length")
		return common.NewInvalidArgumentError(fmt.Sprintf("negative length %d", n))
	}
	if len(a) != n || len(b) != n {
		log.WithFields(log.Fields{"n": n, "lenA": len(a), "lenB": len(b)}).Error("lexorder::comparator::CheckSequences; length mismatch")
		return common.NewInvalidArgumentError(fmt.Sprintf("sequence lengths %d and %d don't match the declared length %d", len(a), len(b), n))
	}
	return nil
}
