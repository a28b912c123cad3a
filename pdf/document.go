package pdf

// ImageRef is a handle to one embedded image on one page.
// It is only valid while its Document is open and the image has not been deleted.
type ImageRef struct {
	Page     int    // 0-based page index
	Index    int    // 0-based position among the page's images
	Name     string // resource name, e.g. "Im0"
	ObjNr    int
	FileType string // encoding of Data, e.g. "jpg", "png", "tif"
	Data     []byte
}

// Document is an open PDF exclusively owned by one pipeline invocation.
// Bytes is terminal: once called, the document rejects further mutation.
type Document interface {
	PageCount() int

	// PageImages lists the images drawn on a 0-based page, in document order.
	PageImages(page int) ([]ImageRef, error)

	// DeleteImage removes ref from its page. Remaining refs keep their relative order.
	DeleteImage(ref ImageRef) error

	Bytes() ([]byte, error)
}
