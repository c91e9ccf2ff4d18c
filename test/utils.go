package test

import (
	"math/rand"
	"os"
	"path"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var (
	// TestDirectory is the scratch directory used by tests that need files.
	TestDirectory = path.Join(os.TempDir(), "icecanelextest")
)

// RandomSequence returns a sequence of n printable bytes drawn from rng.
func RandomSequence(rng *rand.Rand, n int) []byte {
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return seq
}

// RandomLength returns a length in [min, max].
func RandomLength(rng *rand.Rand, min, max int) int {
	return min + rng.Intn(max-min+1)
}

// CloneWithMismatch returns two copies of src that differ only at idx, holding a and b there.
func CloneWithMismatch(src []byte, idx int, a, b byte) ([]byte, []byte) {
	s1 := append([]byte(nil), src...)
	s2 := append([]byte(nil), src...)
	s1[idx] = a
	s2[idx] = b
	return s1, s2
}

// CreateTestDirectory creates a test directory for running tests.
func CreateTestDirectory(testDirectory string) {
	os.MkdirAll(testDirectory, os.ModePerm)
}

// CleanupTestDirectory cleans up the test directory.
func CleanupTestDirectory(testDirectory string) error {
	dir, err := os.ReadDir(testDirectory)
	if err != nil {
		return err
	}
	for _, d := range dir {
		os.RemoveAll(path.Join([]string{testDirectory, d.Name()}...))
	}
	return nil
}
