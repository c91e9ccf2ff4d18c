package common

const (
	// KB - Kilobytes
	KB uint64 = 1024

	// MB - Megabytes
	MB uint64 = 1024 * 1024
)

// ByteSign returns -1, 0, 1 if a is less than, equal to or greater than b respectively.
// bytes are compared as unsigned values.
func ByteSign(a, b byte) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
