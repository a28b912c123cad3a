package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/go-pdf/fpdf"
)

// Layout controls how images are placed in generated documents. Units are points.
type Layout struct {
	MaxImageWidth float64
	// MaxImageHeight additionally bounds placed images when positive.
	MaxImageHeight float64
	ImageSpacing   float64
	// Optimize runs generated output through pdfcpu before returning it.
	Optimize bool
}

// DefaultLayout returns the layout used when nothing is configured.
func DefaultLayout() Layout {
	return Layout{
		MaxImageWidth: DefaultMaxImageWidth,
		ImageSpacing:  DefaultImageSpacing,
	}
}

func (l Layout) withDefaults() Layout {
	if l.MaxImageWidth <= 0 {
		l.MaxImageWidth = DefaultMaxImageWidth
	}
	if l.ImageSpacing < 0 {
		l.ImageSpacing = 0
	}
	if l.MaxImageHeight < 0 {
		l.MaxImageHeight = 0
	}
	return l
}

// scaleToFit returns the placed size of a w x h image. The ratio is min(maxW/w, 1), further
// bounded by maxH when positive, so images are never enlarged and keep their aspect ratio.
func scaleToFit(w, h int, maxW, maxH float64) (int, int) {
	ratio := math.Min(maxW/float64(w), 1)
	if maxH > 0 {
		ratio = math.Min(ratio, maxH/float64(h))
	}
	sw := int(float64(w) * ratio)
	sh := int(float64(h) * ratio)
	if sw < 1 {
		sw = 1
	}
	if sh < 1 {
		sh = 1
	}
	return sw, sh
}

// newPDF creates an A4 document whose bytes depend only on what is drawn into it.
func newPDF() *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(PageMargin, PageMargin, PageMargin)
	pdf.SetAutoPageBreak(true, PageMargin)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetCreator("pdf_imagetools", false)
	return pdf
}

// usableArea returns the width and height inside the page margins.
func usableArea(pdf *fpdf.Fpdf) (float64, float64) {
	pw, ph := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	return pw - left - right, ph - top - bottom
}

// placeImage draws img at w x h, horizontally centred, at the current position.
// Images registered under the same name are encoded once.
func placeImage(pdf *fpdf.Fpdf, name string, img image.Image, w, h int) error {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	if pdf.GetImageInfo(name) == nil {
		data, err := EncodePNG(normalizeForPDF(ResizeImage(img, w, h)))
		if err != nil {
			return err
		}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if pdf.Err() {
			return fmt.Errorf("failed to register image %s: %w", name, pdf.Error())
		}
	}
	pw, _ := pdf.GetPageSize()
	x := (pw - float64(w)) / 2
	pdf.ImageOptions(name, x, 0, float64(w), float64(h), true, opts, 0, "")
	if pdf.Err() {
		return fmt.Errorf("failed to place image %s: %w", name, pdf.Error())
	}
	return nil
}

// normalizeForPDF converts img to an 8-bit model the PDF writer accepts.
func normalizeForPDF(img image.Image) image.Image {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.Gray:
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// outputPDF serializes pdf and optionally optimizes it.
func outputPDF(pdf *fpdf.Fpdf, optimize bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	if !optimize {
		return buf.Bytes(), nil
	}
	return Optimize(buf.Bytes())
}
