package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// errNoSource is returned when a request carries neither an uploaded file nor a URL.
var errNoSource = errors.New("no PDF provided: upload a 'pdf' file or set 'url'")

// loadSource reads the source PDF from the multipart "pdf" field, or downloads the "url" form field.
func (h *Handlers) loadSource(c *gin.Context) ([]byte, error) {
	limitBody(c, h.cfg.MaxFileSize+MultipartOverhead)

	file, header, err := c.Request.FormFile("pdf")
	switch {
	case err == nil:
		defer file.Close()
		return readUpload(file, header, h.cfg.MaxFileSize)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return nil, badRequest(fmt.Sprintf("failed to read upload: %v", err))
	}

	url := strings.TrimSpace(c.PostForm("url"))
	if url == "" {
		return nil, badRequest(errNoSource.Error())
	}
	return h.fetchSource(c, url)
}

func (h *Handlers) fetchSource(c *gin.Context, url string) ([]byte, error) {
	data, err := h.fetcher.Fetch(c.Request.Context(), url)
	if err != nil {
		return nil, &fetchError{err: err}
	}
	return data, nil
}

// limitBody caps how much of the request body handlers may read.
func limitBody(c *gin.Context, n int64) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
}

// readUpload validates and reads an uploaded PDF.
func readUpload(file multipart.File, header *multipart.FileHeader, maxSize int64) ([]byte, error) {
	if err := validatePDFFile(file, header, maxSize); err != nil {
		return nil, badRequest(err.Error())
	}
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, badRequest(fmt.Sprintf("file exceeds maximum allowed %d bytes", maxSize))
	}
	return data, nil
}

// validatePDFFile checks if the file is a valid PDF by reading the header
func validatePDFFile(file multipart.File, header *multipart.FileHeader, maxSize int64) error {
	if header.Size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed %d bytes", header.Size, maxSize)
	}
	if ext := strings.ToLower(filepath.Ext(sanitizeFilename(header.Filename))); ext != "" && ext != ".pdf" {
		return fmt.Errorf("unsupported file type %q", ext)
	}

	// Read first 4 bytes to check PDF header
	buffer := make([]byte, 4)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("failed to read file header: %v", err)
	}
	if n < 4 || string(buffer) != "%PDF" {
		return fmt.Errorf("invalid PDF file: header does not match")
	}

	// Seek back to beginning for subsequent reads
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset file position: %v", err)
	}
	return nil
}

// sanitizeFilename removes path traversal attempts and dangerous characters
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.TrimSpace(filepath.Base(filename))
	if filename == "" || filename == "." {
		filename = "document.pdf"
	}
	return filename
}
