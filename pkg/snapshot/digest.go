package snapshot

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is the 32-byte BLAKE3 keyed hash of a snapshot payload.
type Digest [32]byte

// String returns the digest in hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// digestKey separates snapshot digests from other uses of BLAKE3 over
// the same bytes. It is the ASCII domain name zero-padded to 32 bytes;
// changing it invalidates every existing snapshot.
var digestKey = [32]byte{
	'v', 'a', 'n', 'g', 'o', '.', 's', 'i', 'g', 'n', 'a', 'l', 's', '.',
	's', 'n', 'a', 'p', 's', 'h', 'o', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// digestOf computes the keyed digest of an uncompressed payload.
func digestOf(payload []byte) Digest {
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		// NewKeyed only fails for keys that are not 32 bytes.
		panic("snapshot: blake3 keyed hasher: " + err.Error())
	}
	_, _ = hasher.Write(payload)

	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d
}
