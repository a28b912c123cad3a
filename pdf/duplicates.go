package pdf

import "sort"

// LogoSet is the set of fingerprints that repeat often enough to be treated as logos.
type LogoSet map[Fingerprint]struct{}

// Contains reports whether fp is a logo.
func (s LogoSet) Contains(fp Fingerprint) bool {
	_, ok := s[fp]
	return ok
}

// Len returns the number of distinct logo fingerprints.
func (s LogoSet) Len() int { return len(s) }

// Sorted returns the fingerprints in ascending order.
func (s LogoSet) Sorted() []Fingerprint {
	out := make([]Fingerprint, 0, len(s))
	for fp := range s {
		out = append(out, fp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DetectDuplicates returns every fingerprint occurring at least threshold times.
// threshold must be >= 2; callers validate it.
func DetectDuplicates(fps []Fingerprint, threshold int) LogoSet {
	counts := countFingerprints(fps)
	logos := LogoSet{}
	for fp, n := range counts {
		if n >= threshold {
			logos[fp] = struct{}{}
		}
	}
	return logos
}

func countFingerprints(fps []Fingerprint) map[Fingerprint]int {
	counts := make(map[Fingerprint]int, len(fps))
	for _, fp := range fps {
		counts[fp]++
	}
	return counts
}
