package pdf

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// LogoCandidate is a fingerprint that occurs more than once in a document
type LogoCandidate struct {
	Fingerprint  string  `json:"fingerprint"`
	Occurrences  int     `json:"occurrences"`
	Pages        []int   `json:"pages"` // 1-based, ascending, distinct
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	PageCoverage float64 `json:"page_coverage"` // share of pages the image appears on
	Confidence   float64 `json:"confidence"`    // 0-1, how logo-like the placement pattern is
	IsLogo       bool    `json:"is_logo"`       // occurrences reach the threshold
}

// LogoAnalysis is the dry-run result of logo detection
type LogoAnalysis struct {
	TotalPages      int             `json:"total_pages"`
	TotalImages     int             `json:"total_images"`
	Threshold       int             `json:"threshold"`
	LogosDetected   int             `json:"logos_detected"`
	Candidates      []LogoCandidate `json:"candidates"`
	SkippedImages   int             `json:"skipped_images"`
	Recommendations []string        `json:"recommendations"`
}

// AnalyzeLogos reports repeated images without modifying doc
func AnalyzeLogos(doc Document, opts StripOptions) (*LogoAnalysis, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	scanned, skipped := scanImages(doc, opts.Hasher)
	analysis := &LogoAnalysis{
		TotalPages:      doc.PageCount(),
		TotalImages:     len(scanned),
		Threshold:       opts.Threshold,
		SkippedImages:   len(skipped),
		Candidates:      []LogoCandidate{},
		Recommendations: []string{},
	}

	groups := groupByFingerprint(scanned)
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		c := newLogoCandidate(g, analysis.TotalPages, opts.Threshold)
		if c.IsLogo {
			analysis.LogosDetected++
		}
		analysis.Candidates = append(analysis.Candidates, c)
	}

	// Most frequent first, fingerprint breaks ties
	sort.SliceStable(analysis.Candidates, func(i, j int) bool {
		a, b := analysis.Candidates[i], analysis.Candidates[j]
		if a.Occurrences != b.Occurrences {
			return a.Occurrences > b.Occurrences
		}
		return a.Fingerprint < b.Fingerprint
	})

	analysis.Recommendations = recommendations(analysis)

	logger.WithFields(logrus.Fields{
		"pages":      analysis.TotalPages,
		"images":     analysis.TotalImages,
		"candidates": len(analysis.Candidates),
		"logos":      analysis.LogosDetected,
	}).Info("logo analysis finished")
	return analysis, nil
}

// groupByFingerprint groups scanned images in first-seen order
func groupByFingerprint(scanned []scannedImage) [][]scannedImage {
	index := map[Fingerprint]int{}
	var groups [][]scannedImage
	for _, s := range scanned {
		i, ok := index[s.Fingerprint]
		if !ok {
			i = len(groups)
			index[s.Fingerprint] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], s)
	}
	return groups
}

func newLogoCandidate(group []scannedImage, totalPages, threshold int) LogoCandidate {
	seen := map[int]bool{}
	var pages []int
	for _, s := range group {
		p := s.Ref.Page + 1
		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)

	first := group[0]
	c := LogoCandidate{
		Fingerprint: first.Fingerprint.String(),
		Occurrences: len(group),
		Pages:       pages,
		Width:       first.Width,
		Height:      first.Height,
		IsLogo:      len(group) >= threshold,
	}
	if totalPages > 0 {
		c.PageCoverage = float64(len(pages)) / float64(totalPages)
	}
	c.Confidence = logoConfidence(c, totalPages)
	return c
}

// logoConfidence scores how much a repeated image looks like a logo or watermark
func logoConfidence(c LogoCandidate, totalPages int) float64 {
	confidence := RepeatBaseConfidence

	// The more pages it appears on, the more confident
	confidence += c.PageCoverage * CoverageConfidenceWeight

	// Logos are usually small
	if c.Width < SmallImageSize || c.Height < SmallImageSize {
		confidence += SizeConfidenceBonus
	}

	// Runs of consecutive pages suggest a header or footer
	if hasContinuousRange(c.Pages, MinContinuousPages) {
		confidence += RunConfidenceBonus
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// hasContinuousRange checks if sorted pages contain a run of consecutive pages of at least minLength
func hasContinuousRange(pages []int, minLength int) bool {
	if len(pages) < minLength {
		return false
	}

	longest, current := 1, 1
	for i := 1; i < len(pages); i++ {
		if pages[i] == pages[i-1]+1 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest >= minLength
}

func recommendations(a *LogoAnalysis) []string {
	var recs []string
	if a.LogosDetected > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d repeated image(s) reach the threshold of %d and will be removed by logo stripping", a.LogosDetected, a.Threshold))
	}
	if len(a.Candidates) > a.LogosDetected {
		recs = append(recs,
			"Some images repeat below the threshold - lower it to remove them as well")
	}
	if a.SkippedImages > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d image(s) could not be decoded and are ignored by detection", a.SkippedImages))
	}
	if len(a.Candidates) == 0 {
		recs = append(recs,
			"No repeated images found - the PDF does not appear to carry logos or watermarks")
	}
	return recs
}

// For JSON marshaling
func (a LogoAnalysis) String() string {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling analysis: %v", err)
	}
	return string(data)
}
