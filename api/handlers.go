package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"pdf_imagetools/pdf"
)

// HandleGenerateReport builds a report from {"url": ..., "pieces": {...}}.
// A multipart request with a "pdf" file (or "url" field) and a "pieces" field is accepted as well.
func (h *Handlers) HandleGenerateReport(c *gin.Context) {
	var (
		data []byte
		spec *pdf.ReportSpec
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		data, spec, err = h.readReportForm(c)
	} else {
		data, spec, err = h.readReportJSON(c)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	out, result, err := pdf.GenerateReport(data, spec, h.cfg.Pipeline.Layout())
	if err != nil {
		respondError(c, err)
		return
	}
	name, err := h.store.Save(prefixReport, out)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "success",
		"pdf_url":            h.publicURL(c, name),
		"images_total":       result.ImagesTotal,
		"skipped_references": len(result.Skipped),
	})
}

// readReportJSON parses the JSON body. pieces is parsed from its raw text so key order survives.
// The description is validated before the source document is downloaded.
func (h *Handlers) readReportJSON(c *gin.Context) ([]byte, *pdf.ReportSpec, error) {
	limitBody(c, MultipartOverhead)
	body, err := c.GetRawData()
	if err != nil {
		return nil, nil, badRequest("failed to read request body")
	}
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil, nil, badRequest("request body is empty or not valid JSON")
	}

	url := gjson.GetBytes(body, "url")
	pieces := gjson.GetBytes(body, "pieces")
	if url.String() == "" || !pieces.Exists() || pieces.Type == gjson.Null {
		return nil, nil, badRequest("field 'url' or 'pieces' is missing")
	}
	spec, err := pdf.ParseReportSpec([]byte(pieces.Raw))
	if err != nil {
		return nil, nil, err
	}

	data, err := h.fetchSource(c, url.String())
	if err != nil {
		return nil, nil, err
	}
	return data, spec, nil
}

func (h *Handlers) readReportForm(c *gin.Context) ([]byte, *pdf.ReportSpec, error) {
	data, err := h.loadSource(c)
	if err != nil {
		return nil, nil, err
	}
	pieces := c.PostForm("pieces")
	if pieces == "" {
		return nil, nil, badRequest("field 'pieces' is missing")
	}
	spec, err := pdf.ParseReportSpec([]byte(pieces))
	if err != nil {
		return nil, nil, err
	}
	return data, spec, nil
}

// HandleRemoveLogos strips repeated images and stores the cleaned document and an images-only document.
func (h *Handlers) HandleRemoveLogos(c *gin.Context) {
	data, err := h.loadSource(c)
	if err != nil {
		respondError(c, err)
		return
	}
	opts, err := h.stripOptions(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := pdf.CleanDocument(data, opts, h.cfg.Pipeline.Layout())
	if err != nil {
		respondError(c, err)
		return
	}

	cleanedName, err := h.store.Save(prefixCleaned, result.Cleaned)
	if err != nil {
		respondError(c, err)
		return
	}
	imagesName, err := h.store.Save(prefixImages, result.Images)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"pdf_url":          h.publicURL(c, cleanedName),
		"images_pdf_url":   h.publicURL(c, imagesName),
		"logos_detected":   result.LogosDetected,
		"images_removed":   result.ImagesRemoved,
		"images_extracted": result.ImagesExtracted,
	})
}

// HandleExtractImages stores a document holding only the images of the source, optionally of selected pages.
func (h *Handlers) HandleExtractImages(c *gin.Context) {
	data, err := h.loadSource(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var pages []int
	if spec := c.PostForm("pages"); spec != "" {
		if pages, err = pdf.ParsePageSpecifier(spec); err != nil {
			respondError(c, err)
			return
		}
	}

	out, n, err := pdf.ExtractImages(data, pages, h.cfg.Pipeline.Layout())
	if err != nil {
		respondError(c, err)
		return
	}
	name, err := h.store.Save(prefixExtracted, out)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"pdf_url":          h.publicURL(c, name),
		"images_extracted": n,
	})
}

// HandleAnalyzeLogos reports repeated images without changing the document.
func (h *Handlers) HandleAnalyzeLogos(c *gin.Context) {
	data, err := h.loadSource(c)
	if err != nil {
		respondError(c, err)
		return
	}
	opts, err := h.stripOptions(c)
	if err != nil {
		respondError(c, err)
		return
	}

	doc, err := pdf.OpenDocument(data)
	if err != nil {
		respondError(c, err)
		return
	}
	analysis, err := pdf.AnalyzeLogos(doc, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"pages":      analysis.TotalPages,
		"candidates": len(analysis.Candidates),
	}).Debug("logo analysis served")
	c.JSON(http.StatusOK, analysis)
}

// HandlePreviewImage returns one embedded image as PNG. page and index are 1-based.
func (h *Handlers) HandlePreviewImage(c *gin.Context) {
	data, err := h.loadSource(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := strconv.Atoi(c.PostForm("page"))
	if err != nil {
		respondError(c, badRequest("field 'page' must be an integer"))
		return
	}
	index, err := strconv.Atoi(c.PostForm("index"))
	if err != nil {
		respondError(c, badRequest("field 'index' must be an integer"))
		return
	}

	doc, err := pdf.OpenDocument(data)
	if err != nil {
		respondError(c, err)
		return
	}
	png, err := pdf.ExtractImagePNG(doc, page, index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", png)
}

// HandleStatic serves a stored output.
func (h *Handlers) HandleStatic(c *gin.Context) {
	path, err := h.store.Path(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.File(path)
}

// stripOptions reads the optional "threshold" form field.
func (h *Handlers) stripOptions(c *gin.Context) (pdf.StripOptions, error) {
	opts := h.cfg.Pipeline.StripOptions()
	if v := c.PostForm("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, badRequest("field 'threshold' must be an integer")
		}
		// Zero would fall back to the configured default.
		if n < 2 {
			return opts, badRequest(fmt.Sprintf("field 'threshold' must be at least 2, got %d", n))
		}
		opts.Threshold = n
	}
	return opts, nil
}

// publicURL returns the absolute URL of a stored output.
func (h *Handlers) publicURL(c *gin.Context, name string) string {
	base := strings.TrimRight(h.cfg.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + StaticRoute + "/" + name
}
