package pdf

import (
	"testing"
)

func TestFingerprintString(t *testing.T) {
	if got := Fingerprint(0xab).String(); got != "00000000000000ab" {
		t.Errorf("String() = %q", got)
	}
	if got := Fingerprint(^uint64(0)).String(); got != "ffffffffffffffff" {
		t.Errorf("String() = %q", got)
	}
}

func TestPerceptionHasherDeterministic(t *testing.T) {
	img := noiseImage(1, 64, 64)
	h := PerceptionHasher{}

	a, err := h.Hash(img)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash(img)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a != b {
		t.Errorf("same image hashed to %s and %s", a, b)
	}
}

func TestPerceptionHasherSurvivesReencoding(t *testing.T) {
	img := noiseImage(7, 48, 48)
	decoded, _, err := DecodeImage(pngBytes(t, img))
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}

	h := PerceptionHasher{}
	want, _ := h.Hash(img)
	got, err := h.Hash(decoded)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if got != want {
		t.Errorf("lossless round trip changed fingerprint: %s != %s", got, want)
	}
}

func TestPerceptionHasherDistinguishesImages(t *testing.T) {
	h := PerceptionHasher{}
	a, _ := h.Hash(noiseImage(1, 64, 64))
	b, _ := h.Hash(noiseImage(2, 64, 64))
	if a == b {
		t.Errorf("different images share fingerprint %s", a)
	}
}

func TestPerceptionHasherNil(t *testing.T) {
	if _, err := (PerceptionHasher{}).Hash(nil); err == nil {
		t.Error("expected error for nil image")
	}
}
