package api

import "time"

const (
	// MaxErrorMessageLength truncates error messages returned to clients
	MaxErrorMessageLength = 200

	// MultipartOverhead is allowed on top of the file size limit for form fields and boundaries
	MultipartOverhead = 1 << 20

	// JanitorInterval is how often expired outputs are swept
	JanitorInterval = 10 * time.Minute

	// StaticRoute is where stored outputs are served
	StaticRoute = "/static"
)

// Output name prefixes
const (
	prefixReport    = "report"
	prefixCleaned   = "cleaned"
	prefixImages    = "images"
	prefixExtracted = "extracted"
)
