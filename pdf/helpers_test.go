package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/go-pdf/fpdf"
)

// noiseImage returns a deterministic random image. Flat images hash poorly, noise does not.
func noiseImage(seed int64, w, h int) *image.RGBA {
	r := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256)), 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

// fakeDoc is an in-memory Document. Each page holds encoded image buffers.
type fakeDoc struct {
	pages   [][]ImageRef
	deleted []ImageRef
	closed  bool
	failOn  map[string]bool
}

func newFakeDoc(pages ...[][]byte) *fakeDoc {
	d := &fakeDoc{failOn: map[string]bool{}}
	for p, imgs := range pages {
		var refs []ImageRef
		for i, data := range imgs {
			refs = append(refs, ImageRef{Page: p, Index: i, Name: fmt.Sprintf("Im%d", i), ObjNr: 10*p + i, FileType: "png", Data: data})
		}
		d.pages = append(d.pages, refs)
	}
	return d
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) PageImages(page int) ([]ImageRef, error) {
	if page < 0 || page >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", page+1)
	}
	out := make([]ImageRef, len(d.pages[page]))
	for i, ref := range d.pages[page] {
		ref.Index = i
		out[i] = ref
	}
	return out, nil
}

func (d *fakeDoc) DeleteImage(ref ImageRef) error {
	if d.closed {
		return ErrDocumentClosed
	}
	if d.failOn[ref.Name] {
		return fmt.Errorf("cannot delete %s", ref.Name)
	}
	refs := d.pages[ref.Page]
	for i, r := range refs {
		if r.Name == ref.Name {
			d.pages[ref.Page] = append(refs[:i:i], refs[i+1:]...)
			d.deleted = append(d.deleted, ref)
			return nil
		}
	}
	return fmt.Errorf("image %s not found on page %d", ref.Name, ref.Page+1)
}

func (d *fakeDoc) Bytes() ([]byte, error) {
	if d.closed {
		return nil, ErrDocumentClosed
	}
	d.closed = true
	return []byte("%PDF-fake"), nil
}

func (d *fakeDoc) names(page int) []string {
	var out []string
	for _, r := range d.pages[page] {
		out = append(out, r.Name)
	}
	return out
}

// fixturePage lists the images drawn on one page of a generated PDF, by registered name.
type fixturePage []string

// buildPDF renders a PDF with fpdf where each page draws the named JPEG images top to bottom.
// Images sharing a name are embedded once and reused.
func buildPDF(t *testing.T, images map[string]image.Image, pages ...fixturePage) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	for name, img := range images {
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(jpegBytes(t, img)))
	}
	for _, page := range pages {
		pdf.AddPage()
		y := 40.0
		for _, name := range page {
			pdf.ImageOptions(name, 40, y, 64, 64, false, opts, 0, "")
			y += 80
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build fixture PDF: %v", err)
	}
	return buf.Bytes()
}

func mustOpen(t *testing.T, data []byte) *CPUDocument {
	t.Helper()
	doc, err := OpenDocument(data)
	if err != nil {
		t.Fatalf("OpenDocument: %v", err)
	}
	return doc
}

func pageImageCounts(t *testing.T, doc Document) []int {
	t.Helper()
	counts := make([]int, doc.PageCount())
	for p := range counts {
		refs, err := doc.PageImages(p)
		if err != nil {
			t.Fatalf("PageImages(%d): %v", p, err)
		}
		counts[p] = len(refs)
	}
	return counts
}
