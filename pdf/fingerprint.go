package pdf

import (
	"errors"
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
)

// Fingerprint is a 64-bit perceptual hash. Equal fingerprints mean the same visual content.
type Fingerprint uint64

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// Hasher computes a Fingerprint for a decoded image.
type Hasher interface {
	Hash(img image.Image) (Fingerprint, error)
}

// PerceptionHasher is the DCT based pHash: 64x64 grayscale, 8x8 low frequencies, median threshold.
type PerceptionHasher struct{}

// Hash returns the pHash of img.
func (PerceptionHasher) Hash(img image.Image) (Fingerprint, error) {
	if img == nil {
		return 0, errors.New("cannot fingerprint a nil image")
	}
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, fmt.Errorf("perception hash failed: %w", err)
	}
	return Fingerprint(h.GetHash()), nil
}
