package hashutil

import (
	"encoding/binary"
	"encoding/hex"

	"lukechampine.com/blake3"
)

// HashBytes returns the hex-encoded 256-bit BLAKE3 digest of data.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// DigestStrings hashes the parts with BLAKE3, separating them with a NUL byte
// so ("ab", "c") and ("a", "bc") never collide.
func DigestStrings(parts ...string) string {
	h := blake3.New(32, nil)
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Sum64 folds the BLAKE3 digest of data into a uint64, suitable for shard selection.
func Sum64(data []byte) uint64 {
	hash := blake3.Sum256(data)
	return binary.LittleEndian.Uint64(hash[:8])
}
