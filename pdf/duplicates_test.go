package pdf

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestDetectDuplicates(t *testing.T) {
	tests := []struct {
		name      string
		fps       []Fingerprint
		threshold int
		want      []Fingerprint
	}{
		{name: "empty", fps: nil, threshold: 2, want: []Fingerprint{}},
		{name: "no repeats", fps: []Fingerprint{1, 2, 3}, threshold: 2, want: []Fingerprint{}},
		{name: "one logo", fps: []Fingerprint{1, 2, 1}, threshold: 2, want: []Fingerprint{1}},
		{name: "two logos", fps: []Fingerprint{5, 1, 5, 1, 9}, threshold: 2, want: []Fingerprint{1, 5}},
		{name: "below threshold", fps: []Fingerprint{1, 2, 1}, threshold: 3, want: []Fingerprint{}},
		{name: "exactly threshold", fps: []Fingerprint{4, 4, 4, 2}, threshold: 3, want: []Fingerprint{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectDuplicates(tt.fps, tt.threshold).Sorted()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectDuplicates(%v, %d) = %v, want %v", tt.fps, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestDetectDuplicatesIgnoresOrder(t *testing.T) {
	fps := []Fingerprint{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	want := DetectDuplicates(fps, 2).Sorted()

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Fingerprint(nil), fps...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := DetectDuplicates(shuffled, 2).Sorted(); !reflect.DeepEqual(got, want) {
			t.Fatalf("permutation %v gave %v, want %v", shuffled, got, want)
		}
	}
}

func TestLogoSetContains(t *testing.T) {
	set := DetectDuplicates([]Fingerprint{7, 7, 8}, 2)
	if !set.Contains(7) || set.Contains(8) {
		t.Errorf("unexpected set %v", set.Sorted())
	}
	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1", set.Len())
	}
}
