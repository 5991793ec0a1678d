package camera

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// A Fingerprint is a content digest of a raw frame. Two fingerprints are
// equal exactly when the frames are byte-identical; the page-turn
// verification relies on nothing stronger than that.
type Fingerprint uint64

// FingerprintFrame digests a frame's JPEG bytes.
func FingerprintFrame(frame []byte) Fingerprint {
	return Fingerprint(xxhash.Sum64(frame))
}

// String renders the fingerprint for logs.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}
