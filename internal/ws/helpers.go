package ws

import (
	"crypto/rand"
	"encoding/hex"
)

// newConnID labels a party subscription for the lifecycle events published
// around connect and disconnect.
func newConnID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(buf[:])
}
