package pdf

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
)

// ExtractedImage is a decoded embedded image. Image is nil when decoding failed.
type ExtractedImage struct {
	Page   int // 0-based
	Index  int // 0-based position on the page
	Name   string
	Image  image.Image
	Width  int
	Height int
}

// decodePageImages decodes refs in order. Failed images keep their slot with a nil Image.
func decodePageImages(refs []ImageRef) ([]ExtractedImage, []DecodeError) {
	var (
		out     = make([]ExtractedImage, 0, len(refs))
		skipped []DecodeError
	)
	for _, ref := range refs {
		ei := ExtractedImage{Page: ref.Page, Index: ref.Index, Name: ref.Name}
		img, _, err := DecodeImage(ref.Data)
		if err != nil {
			logger.WithFields(logrus.Fields{"page": ref.Page + 1, "image": ref.Name, "error": err}).Debug("cannot decode image")
			skipped = append(skipped, DecodeError{Page: ref.Page, Index: ref.Index, Name: ref.Name, Err: err})
		} else {
			b := img.Bounds()
			ei.Image, ei.Width, ei.Height = img, b.Dx(), b.Dy()
		}
		out = append(out, ei)
	}
	return out, skipped
}

// Collation is the ordered image sequence of a document.
type Collation struct {
	Images  []ExtractedImage
	Skipped []DecodeError
}

// CollateImages returns the decodable images of doc in page order, then image order.
// pages optionally restricts the walk to 1-based page numbers.
func CollateImages(doc Document, pages []int) (*Collation, error) {
	selected, err := selectPages(doc.PageCount(), pages)
	if err != nil {
		return nil, err
	}

	c := &Collation{}
	for _, page := range selected {
		refs, err := doc.PageImages(page)
		if err != nil {
			logger.WithFields(logrus.Fields{"page": page + 1, "error": err}).Warn("skipping page: cannot list images")
			continue
		}
		decoded, skipped := decodePageImages(refs)
		c.Skipped = append(c.Skipped, skipped...)
		for _, ei := range decoded {
			if ei.Image != nil {
				c.Images = append(c.Images, ei)
			}
		}
	}
	return c, nil
}

// selectPages converts 1-based page numbers to sorted 0-based indices. nil selects every page.
func selectPages(pageCount int, pages []int) ([]int, error) {
	if pages == nil {
		all := make([]int, pageCount)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	if err := ValidatePageNumbers(pages, pageCount); err != nil {
		return nil, err
	}
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = p - 1
	}
	return out, nil
}

// Inventory holds the decoded images of each page, indexed by 0-based page.
type Inventory struct {
	pages   [][]ExtractedImage
	Skipped []DecodeError
}

// NewInventory wraps already decoded pages.
func NewInventory(pages [][]ExtractedImage) *Inventory {
	return &Inventory{pages: pages}
}

// PageCount is the page count of the source document.
func (inv *Inventory) PageCount() int { return len(inv.pages) }

// Page returns the images of a 0-based page, or nil when page is out of range.
func (inv *Inventory) Page(page int) []ExtractedImage {
	if page < 0 || page >= len(inv.pages) {
		return nil
	}
	return inv.pages[page]
}

// BuildInventory decodes the images of the given 0-based pages, or of every page when pages is nil.
// Pages not requested stay empty.
func BuildInventory(doc Document, pages []int) (*Inventory, error) {
	inv := &Inventory{pages: make([][]ExtractedImage, doc.PageCount())}
	if pages == nil {
		pages = make([]int, doc.PageCount())
		for i := range pages {
			pages[i] = i
		}
	}
	for _, page := range pages {
		if page < 0 || page >= doc.PageCount() || inv.pages[page] != nil {
			continue
		}
		refs, err := doc.PageImages(page)
		if err != nil {
			logger.WithFields(logrus.Fields{"page": page + 1, "error": err}).Warn("skipping page: cannot list images")
			inv.pages[page] = []ExtractedImage{}
			continue
		}
		decoded, skipped := decodePageImages(refs)
		inv.pages[page] = decoded
		inv.Skipped = append(inv.Skipped, skipped...)
	}
	return inv, nil
}

// RenderImagesDocument lays out one image per page, scaled to fit, and returns the document and image count.
func RenderImagesDocument(images []ExtractedImage, layout Layout) ([]byte, int, error) {
	layout = layout.withDefaults()
	pdf := newPDF()
	usableW, usableH := usableArea(pdf)
	maxW := layout.MaxImageWidth
	if maxW > usableW {
		maxW = usableW
	}
	maxH := usableH
	if layout.MaxImageHeight > 0 && layout.MaxImageHeight < maxH {
		maxH = layout.MaxImageHeight
	}

	placed := 0
	for _, ei := range images {
		if ei.Image == nil {
			continue
		}
		pdf.AddPage()
		w, h := scaleToFit(ei.Width, ei.Height, maxW, maxH)
		name := fmt.Sprintf("p%d-i%d", ei.Page+1, ei.Index+1)
		if err := placeImage(pdf, name, ei.Image, w, h); err != nil {
			return nil, 0, err
		}
		placed++
	}

	out, err := outputPDF(pdf, layout.Optimize)
	if err != nil {
		return nil, 0, err
	}
	return out, placed, nil
}

// ExtractImages builds the images-only document for a PDF buffer.
func ExtractImages(data []byte, pages []int, layout Layout) ([]byte, int, error) {
	doc, err := OpenDocument(data)
	if err != nil {
		return nil, 0, err
	}
	c, err := CollateImages(doc, pages)
	if err != nil {
		return nil, 0, err
	}
	out, n, err := RenderImagesDocument(c.Images, layout)
	if err != nil {
		return nil, 0, err
	}
	logger.WithFields(logrus.Fields{"images": n, "skipped": len(c.Skipped)}).Info("images document built")
	return out, n, nil
}

// ExtractImagePNG returns image index of page, both 1-based, encoded as PNG.
func ExtractImagePNG(doc Document, page, index int) ([]byte, error) {
	if page < 1 || page > doc.PageCount() {
		return nil, ReferenceError{Page: page, Index: index, Reason: "page out of range"}
	}
	refs, err := doc.PageImages(page - 1)
	if err != nil {
		return nil, err
	}
	if index < 1 || index > len(refs) {
		return nil, ReferenceError{Page: page, Index: index, Reason: "image index out of range"}
	}
	img, _, err := DecodeImage(refs[index-1].Data)
	if err != nil {
		return nil, DecodeError{Page: page - 1, Index: index - 1, Name: refs[index-1].Name, Err: err}
	}
	return EncodePNG(img)
}
