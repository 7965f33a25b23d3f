package fs

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Checksum returns the hex encoded XXHash of data.
func Checksum(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
