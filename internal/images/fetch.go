package images

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// Allowed source content types. Everything else is rejected before the
// body is decoded.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeWEBP = "image/webp"
)

var allowedMimeTypes = map[string]bool{
	MimeJPEG: true,
	MimePNG:  true,
	MimeWEBP: true,
}

// Fetcher downloads profile images from remote URLs. A single attempt is
// made per call; failures are never retried here.
type Fetcher struct {
	client *http.Client
}

// NewFetcher constructs a Fetcher with an explicit request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch performs a GET against url, following redirects, and returns the
// full body along with the normalized content type. Transport failures,
// non-2xx statuses, and content types outside the allow-list all yield
// ErrInvalidSource.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q: %v", ErrInvalidSource, url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: error occurred trying to read %q: %v", ErrInvalidSource, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: error occurred trying to read %q: status code %d", ErrInvalidSource, url, resp.StatusCode)
	}

	mimeType, err := normalizeContentType(resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q: %v", ErrInvalidSource, url, err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: error occurred trying to read %q: %v", ErrInvalidSource, url, err)
	}

	return data, mimeType, nil
}

func normalizeContentType(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", fmt.Errorf("missing content type")
	}
	mimeType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "", fmt.Errorf("unparseable content type %q", header)
	}
	mimeType = strings.ToLower(mimeType)
	if !allowedMimeTypes[mimeType] {
		return "", fmt.Errorf("invalid mime type %q, only accepting %q, %q or %q", mimeType, MimeJPEG, MimePNG, MimeWEBP)
	}
	return mimeType, nil
}
