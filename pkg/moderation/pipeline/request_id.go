package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// newRequestID returns a 16 character hex identifier. Entropy comes from
// crypto/rand; if that ever fails the id falls back to the current
// nanosecond clock so a decision is never left without a correlation key.
func newRequestID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		binary.BigEndian.PutUint64(buf[:], uint64(time.Now().UnixNano()))
	}
	return hex.EncodeToString(buf[:])
}
