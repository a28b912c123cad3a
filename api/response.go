package api

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pdf_imagetools/fetch"
	"pdf_imagetools/pdf"
)

// httpError carries a status chosen by the handler.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &httpError{status: http.StatusBadRequest, msg: msg}
}

// fetchError marks a failed download of the source document.
type fetchError struct {
	err error
}

func (e *fetchError) Error() string { return e.err.Error() }

func (e *fetchError) Unwrap() error { return e.err }

// statusFor maps pipeline and transport errors to HTTP status codes.
func statusFor(err error) int {
	var (
		he  *httpError
		fe  *fetchError
		ref pdf.ReferenceError
		dec pdf.DecodeError
		mbe *http.MaxBytesError
	)
	switch {
	case errors.As(err, &he):
		return he.status
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &fe):
		if errors.Is(err, fetch.ErrInvalidURL) {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case pdf.IsInputError(err):
		return http.StatusBadRequest
	case errors.As(err, &ref):
		return http.StatusNotFound
	case errors.As(err, &dec):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes {"status":"error","message":...} with a truncated message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	entry := logrus.WithFields(logrus.Fields{"path": c.FullPath(), "status": status, "error": err})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}

	c.JSON(status, gin.H{"status": "error", "message": truncateMessage(err.Error(), MaxErrorMessageLength)})
}

// truncateMessage cuts msg to at most n bytes on a rune boundary.
func truncateMessage(msg string, n int) string {
	if len(msg) <= n {
		return msg
	}
	for n > 0 && !utf8.RuneStart(msg[n]) {
		n--
	}
	return msg[:n] + "..."
}
