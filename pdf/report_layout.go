package pdf

import (
	"fmt"
	"image"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
)

// Placement is one image positioned in a report section.
type Placement struct {
	Page         int // 0-based source page
	Index        int // 0-based position on the source page
	Image        image.Image
	SourceWidth  int
	SourceHeight int
	Width        int
	Height       int
}

// Section is the laid out content of one piece.
type Section struct {
	Title       string
	Description string
	Placements  []Placement
}

// ReportPlan is the resolved report, ready to render.
type ReportPlan struct {
	Sections    []Section
	ImagesTotal int
}

// ReportResult summarizes an assembled report.
type ReportResult struct {
	ImagesTotal int              `json:"images_total"`
	Skipped     []ReferenceError `json:"-"`
}

// reportBounds returns the effective width and height caps for placed images.
func reportBounds(layout Layout) (float64, float64) {
	usableW, usableH := usableArea(newPDF())
	maxW := layout.MaxImageWidth
	if maxW > usableW {
		maxW = usableW
	}
	maxH := usableH
	if layout.MaxImageHeight > 0 && layout.MaxImageHeight < maxH {
		maxH = layout.MaxImageHeight
	}
	return maxW, maxH
}

// PlanReport resolves every reference of spec against inv in declared order.
// References that are out of range or point at undecodable images are returned, not fatal.
func PlanReport(spec *ReportSpec, inv *Inventory, layout Layout) (*ReportPlan, []ReferenceError) {
	layout = layout.withDefaults()
	maxW, maxH := reportBounds(layout)

	var (
		plan    = &ReportPlan{}
		skipped []ReferenceError
	)
	for _, piece := range spec.Pieces {
		section := Section{Title: DisplayName(piece.Name), Description: piece.Description}
		for _, ref := range piece.Pages {
			images := inv.Page(ref.Page - 1)
			for _, idx := range ref.Images {
				switch {
				case ref.Page < 1 || ref.Page > inv.PageCount():
					skipped = append(skipped, ReferenceError{Piece: piece.Name, Page: ref.Page, Index: idx, Reason: "page out of range"})
					continue
				case idx < 1 || idx > len(images):
					skipped = append(skipped, ReferenceError{Piece: piece.Name, Page: ref.Page, Index: idx, Reason: "image index out of range"})
					continue
				}
				ei := images[idx-1]
				if ei.Image == nil {
					skipped = append(skipped, ReferenceError{Piece: piece.Name, Page: ref.Page, Index: idx, Reason: "image could not be decoded"})
					continue
				}
				w, h := scaleToFit(ei.Width, ei.Height, maxW, maxH)
				section.Placements = append(section.Placements, Placement{
					Page:         ei.Page,
					Index:        ei.Index,
					Image:        ei.Image,
					SourceWidth:  ei.Width,
					SourceHeight: ei.Height,
					Width:        w,
					Height:       h,
				})
				plan.ImagesTotal++
			}
		}
		plan.Sections = append(plan.Sections, section)
	}
	return plan, skipped
}

// renderPlan draws plan into a new document, one page per section.
func renderPlan(plan *ReportPlan, layout Layout) ([]byte, error) {
	pdf := newPDF()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, section := range plan.Sections {
		pdf.AddPage()
		writeSectionText(pdf, tr, section)
		for _, p := range section.Placements {
			name := fmt.Sprintf("p%d-i%d", p.Page+1, p.Index+1)
			if err := placeImage(pdf, name, p.Image, p.Width, p.Height); err != nil {
				return nil, err
			}
			pdf.Ln(layout.ImageSpacing)
		}
	}
	if pdf.Err() {
		return nil, fmt.Errorf("failed to lay out report: %w", pdf.Error())
	}
	return outputPDF(pdf, layout.Optimize)
}

func writeSectionText(pdf *fpdf.Fpdf, tr func(string) string, section Section) {
	pdf.SetFont("Helvetica", "B", HeaderFontSize)
	pdf.CellFormat(0, HeaderLineHeight, tr(section.Title), "", 1, "C", false, 0, "")
	pdf.Ln(HeaderSpacing)
	if section.Description == "" {
		return
	}
	pdf.SetFont("Helvetica", "", BodyFontSize)
	pdf.MultiCell(0, BodyLineHeight, tr(section.Description), "", "L", false)
	pdf.Ln(ParagraphSpacing)
}

// AssembleReport renders the report described by spec from the images in inv.
func AssembleReport(spec *ReportSpec, inv *Inventory, layout Layout) ([]byte, *ReportResult, error) {
	if spec == nil || len(spec.Pieces) == 0 {
		return nil, nil, inputErrorf("report description has no pieces")
	}
	layout = layout.withDefaults()
	plan, skipped := PlanReport(spec, inv, layout)
	for _, s := range skipped {
		logger.WithFields(logrus.Fields{
			"piece":  s.Piece,
			"page":   s.Page,
			"image":  s.Index,
			"reason": s.Reason,
		}).Debug("skipping report reference")
	}

	out, err := renderPlan(plan, layout)
	if err != nil {
		return nil, nil, err
	}
	logger.WithFields(logrus.Fields{
		"pieces":  len(plan.Sections),
		"images":  plan.ImagesTotal,
		"skipped": len(skipped),
	}).Info("report assembled")
	return out, &ReportResult{ImagesTotal: plan.ImagesTotal, Skipped: skipped}, nil
}

// GenerateReport opens data, decodes only the referenced pages and assembles the report.
func GenerateReport(data []byte, spec *ReportSpec, layout Layout) ([]byte, *ReportResult, error) {
	if spec == nil || len(spec.Pieces) == 0 {
		return nil, nil, inputErrorf("report description has no pieces")
	}
	doc, err := OpenDocument(data)
	if err != nil {
		return nil, nil, err
	}
	inv, err := BuildInventory(doc, spec.ReferencedPages())
	if err != nil {
		return nil, nil, err
	}
	return AssembleReport(spec, inv, layout)
}
