package pdf

import "time"

const (
	// DefaultRepeatThreshold is the minimum number of occurrences for an image to be treated as a logo
	DefaultRepeatThreshold = 2

	// DefaultMaxImageWidth is the widest an image may be placed in a generated document, in points
	DefaultMaxImageWidth = 400

	// DefaultImageSpacing is the vertical gap after each placed image, in points
	DefaultImageSpacing = 10

	// HeaderSpacing follows a section header
	HeaderSpacing = 6

	// ParagraphSpacing follows a description paragraph
	ParagraphSpacing = 12

	// PageMargin matches a one inch margin on every side
	PageMargin = 72

	// HeaderFontSize is the size of piece headers
	HeaderFontSize = 18

	// HeaderLineHeight is the line height used for piece headers
	HeaderLineHeight = 22

	// BodyFontSize is the size of description text
	BodyFontSize = 10

	// BodyLineHeight is the leading used for description text
	BodyLineHeight = 12
)

// Logo analysis scoring
const (
	// RepeatBaseConfidence is the starting score of any repeated image
	RepeatBaseConfidence = 0.4

	// CoverageConfidenceWeight scales page coverage, up to +0.4 for an image on every page
	CoverageConfidenceWeight = 0.4

	// SmallImageSize is the edge length in pixels below which an image counts as small
	SmallImageSize = 200

	// SizeConfidenceBonus is added for small images
	SizeConfidenceBonus = 0.1

	// MinContinuousPages is the shortest run of consecutive pages that earns RunConfidenceBonus
	MinContinuousPages = 3

	// RunConfidenceBonus is added when an image appears on consecutive pages
	RunConfidenceBonus = 0.1
)

// documentDate is stamped on every generated document so output bytes only depend on input.
var documentDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
