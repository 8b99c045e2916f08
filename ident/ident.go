package ident

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/multiformats/go-multihash"
)

// Identifiable is anything that can serialize itself into a canonical byte
// sequence. Implementations must produce identical bytes for identical
// content, independent of the insertion order of internal data structures.
type Identifiable interface {
	Identity() []byte
}

func Hash(thing Identifiable) string {
	h := sha256.New()
	h.Write(thing.Identity())
	hashBytes := h.Sum(nil)
	encoded, _ := multihash.Encode(hashBytes, multihash.SHA2_256)
	return hex.EncodeToString(encoded)
}

func HashMulti(things []Identifiable) string {
	h := sha256.New()
	for _, thing := range things {
		h.Write(thing.Identity())
	}
	hashBytes := h.Sum(nil)
	encoded, _ := multihash.Encode(hashBytes, multihash.SHA2_256)
	return hex.EncodeToString(encoded)
}
