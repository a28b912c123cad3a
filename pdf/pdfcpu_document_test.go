package pdf

import (
	"bytes"
	"errors"
	"image"
	"reflect"
	"testing"

	"github.com/go-pdf/fpdf"
)

func scenarioImages() map[string]image.Image {
	return map[string]image.Image{
		"logo":  noiseImage(1, 64, 64),
		"photo": noiseImage(2, 64, 64),
		"chart": noiseImage(3, 64, 64),
	}
}

func TestOpenDocumentRejectsNonPDF(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("plain text"), []byte("%PDF-1.4 truncated")} {
		_, err := OpenDocument(data)
		if !IsInputError(err) {
			t.Errorf("OpenDocument(%q) = %v, want InputError", data, err)
		}
		if !errors.Is(err, ErrInvalidDocument) {
			t.Errorf("OpenDocument(%q) does not wrap ErrInvalidDocument", data)
		}
	}
}

func TestCPUDocumentPageImages(t *testing.T) {
	data := buildPDF(t, scenarioImages(),
		fixturePage{"logo", "photo"},
		fixturePage{},
		fixturePage{"chart", "logo"},
	)
	doc := mustOpen(t, data)

	if doc.PageCount() != 3 {
		t.Fatalf("PageCount() = %d, want 3", doc.PageCount())
	}
	// Shared resources list every image, but only drawn images belong to a page
	if got := pageImageCounts(t, doc); !reflect.DeepEqual(got, []int{2, 0, 2}) {
		t.Errorf("page image counts = %v, want [2 0 2]", got)
	}

	refs, err := doc.PageImages(0)
	if err != nil {
		t.Fatalf("PageImages: %v", err)
	}
	for i, ref := range refs {
		if ref.Index != i || ref.Page != 0 {
			t.Errorf("ref %d has page %d index %d", i, ref.Page, ref.Index)
		}
		img, _, err := DecodeImage(ref.Data)
		if err != nil {
			t.Fatalf("image %d does not decode: %v", i, err)
		}
		if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
			t.Errorf("image %d is %dx%d, want 64x64", i, b.Dx(), b.Dy())
		}
	}

	if _, err := doc.PageImages(3); err == nil {
		t.Error("expected error for page out of range")
	}
}

func TestRemoveLogosScenario(t *testing.T) {
	data := buildPDF(t, scenarioImages(),
		fixturePage{"logo"},
		fixturePage{"photo"},
		fixturePage{"logo"},
	)

	out, result, err := RemoveLogos(data, StripOptions{Threshold: 2})
	if err != nil {
		t.Fatalf("RemoveLogos: %v", err)
	}
	if result.LogosDetected != 1 || result.ImagesRemoved != 2 {
		t.Errorf("result = %+v, want 1 logo and 2 removed", result)
	}

	cleaned := mustOpen(t, out)
	if got := pageImageCounts(t, cleaned); !reflect.DeepEqual(got, []int{0, 1, 0}) {
		t.Errorf("page image counts = %v, want [0 1 0]", got)
	}
}

func TestRemoveLogosUnchangedWithoutRepeats(t *testing.T) {
	data := buildPDF(t, scenarioImages(), fixturePage{"logo"}, fixturePage{"photo"})

	out, result, err := RemoveLogos(data, StripOptions{})
	if err != nil {
		t.Fatalf("RemoveLogos: %v", err)
	}
	if result.ImagesRemoved != 0 || !bytes.Equal(out, data) {
		t.Errorf("document changed although nothing repeats: %+v", result)
	}
}

func TestCPUDocumentClosedAfterBytes(t *testing.T) {
	doc := mustOpen(t, buildPDF(t, scenarioImages(), fixturePage{"logo"}))
	if _, err := doc.Bytes(); err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if _, err := doc.Bytes(); !errors.Is(err, ErrDocumentClosed) {
		t.Errorf("second Bytes: got %v, want ErrDocumentClosed", err)
	}
	if err := doc.DeleteImage(ImageRef{Page: 0, Name: "x"}); !errors.Is(err, ErrDocumentClosed) {
		t.Errorf("DeleteImage after Bytes: got %v, want ErrDocumentClosed", err)
	}
}

func TestCleanDocument(t *testing.T) {
	data := buildPDF(t, scenarioImages(),
		fixturePage{"logo", "photo"},
		fixturePage{"logo", "chart"},
	)

	result, err := CleanDocument(data, StripOptions{}, DefaultLayout())
	if err != nil {
		t.Fatalf("CleanDocument: %v", err)
	}
	if result.LogosDetected != 1 || result.ImagesRemoved != 2 || result.ImagesExtracted != 2 {
		t.Errorf("result = %d logos, %d removed, %d extracted", result.LogosDetected, result.ImagesRemoved, result.ImagesExtracted)
	}

	images := mustOpen(t, result.Images)
	if got := pageImageCounts(t, images); !reflect.DeepEqual(got, []int{1, 1}) {
		t.Errorf("images document page counts = %v, want [1 1]", got)
	}
}

func TestGenerateReport(t *testing.T) {
	data := buildPDF(t, scenarioImages(),
		fixturePage{"photo", "chart", "logo"},
	)
	spec, err := ParseReportSpec([]byte(`{"pieceA": {"description": "d", "pages": {"1": [1, 2, 5]}}}`))
	if err != nil {
		t.Fatalf("ParseReportSpec: %v", err)
	}

	out, result, err := GenerateReport(data, spec, DefaultLayout())
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if result.ImagesTotal != 2 || len(result.Skipped) != 1 {
		t.Errorf("result = %+v, want 2 placed and 1 skipped", result)
	}

	report := mustOpen(t, out)
	if got := pageImageCounts(t, report); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("report page image counts = %v, want [2]", got)
	}
}

// corruptPNG returns a PNG whose image data no longer inflates. fpdf embeds PNG data
// without decompressing it, so the damage only surfaces when the PDF is read back.
func corruptPNG(t *testing.T) []byte {
	t.Helper()
	data := pngBytes(t, noiseImage(9, 17, 13))
	i := bytes.Index(data, []byte("IDAT"))
	if i < 0 {
		t.Fatal("encoded PNG has no IDAT chunk")
	}
	data[i+4], data[i+5] = 0, 0
	return data
}

// buildPDFWithBrokenImage draws a logo and an undecodable image on page 1 and the logo alone on page 2.
func buildPDFWithBrokenImage(t *testing.T) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	jpg := fpdf.ImageOptions{ImageType: "JPG"}
	png := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("logo", jpg, bytes.NewReader(jpegBytes(t, noiseImage(1, 64, 64))))
	pdf.RegisterImageOptionsReader("broken", png, bytes.NewReader(corruptPNG(t)))

	pdf.AddPage()
	pdf.ImageOptions("logo", 40, 40, 64, 64, false, jpg, 0, "")
	pdf.ImageOptions("broken", 40, 120, 17, 13, false, png, 0, "")
	pdf.AddPage()
	pdf.ImageOptions("logo", 40, 40, 64, 64, false, jpg, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build fixture PDF: %v", err)
	}
	return buf.Bytes()
}

func TestPageImagesIsolatesBrokenImage(t *testing.T) {
	doc := mustOpen(t, buildPDFWithBrokenImage(t))

	refs, err := doc.PageImages(0)
	if err != nil {
		t.Fatalf("PageImages: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("page 1 lists %d images, want 2", len(refs))
	}
	if _, _, err := DecodeImage(refs[0].Data); err != nil {
		t.Errorf("logo next to a broken image does not decode: %v", err)
	}
	if _, _, err := DecodeImage(refs[1].Data); err == nil {
		t.Error("broken image decoded")
	}
}

func TestRemoveLogosWithBrokenImage(t *testing.T) {
	out, result, err := RemoveLogos(buildPDFWithBrokenImage(t), StripOptions{Threshold: 2})
	if err != nil {
		t.Fatalf("RemoveLogos: %v", err)
	}
	if result.LogosDetected != 1 || result.ImagesRemoved != 2 {
		t.Errorf("result = %+v, want 1 logo and 2 removed", result)
	}
	if got := pageImageCounts(t, mustOpen(t, out)); !reflect.DeepEqual(got, []int{1, 0}) {
		t.Errorf("page image counts = %v, want [1 0]", got)
	}
}
