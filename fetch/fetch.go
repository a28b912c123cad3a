// Package fetch downloads source documents by URL.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
)

// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
var ErrInvalidURL = errors.New("invalid document URL")

// ErrTooLarge is returned when a response body exceeds the size limit.
var ErrTooLarge = errors.New("remote document exceeds size limit")

// ErrNotPDF is returned when the downloaded body does not start with a PDF header.
var ErrNotPDF = errors.New("remote document is not a PDF")

// StatusError is a non-2xx response from the remote server.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Fetcher downloads PDFs over HTTP with retries.
type Fetcher struct {
	Client   *http.Client
	MaxSize  int64
	Attempts uint
	Delay    time.Duration
}

// New returns a Fetcher with a per-attempt timeout.
func New(timeout time.Duration, maxSize int64, attempts uint, delay time.Duration) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: timeout},
		MaxSize:  maxSize,
		Attempts: attempts,
		Delay:    delay,
	}
}

// Fetch downloads rawURL. Network errors and 5xx responses are retried; 4xx responses,
// oversized bodies and non-PDF bodies are not.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w %q", ErrInvalidURL, rawURL)
	}

	attempt := 0
	data, err := retry.DoWithData(
		func() ([]byte, error) {
			attempt++
			return f.get(ctx, u.String())
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts()),
		retry.Delay(f.Delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logrus.WithFields(logrus.Fields{"url": u.Redacted(), "attempt": n + 1, "error": err}).Warn("document fetch attempt failed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document after %d attempt(s): %w", attempt, err)
	}
	return data, nil
}

func (f *Fetcher) attempts() uint {
	if f.Attempts == 0 {
		return 1
	}
	return f.Attempts
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{URL: target, StatusCode: resp.StatusCode}
		if resp.StatusCode < 500 {
			return nil, retry.Unrecoverable(serr)
		}
		return nil, serr
	}

	if f.MaxSize > 0 && resp.ContentLength > f.MaxSize {
		return nil, retry.Unrecoverable(fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, resp.ContentLength, f.MaxSize))
	}
	body := io.Reader(resp.Body)
	if f.MaxSize > 0 {
		body = io.LimitReader(resp.Body, f.MaxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if f.MaxSize > 0 && int64(len(data)) > f.MaxSize {
		return nil, retry.Unrecoverable(fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.MaxSize))
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, retry.Unrecoverable(ErrNotPDF)
	}
	return data, nil
}
