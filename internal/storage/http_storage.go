package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/anime-shed/image-ocr-go/internal/errors"
	"github.com/anime-shed/image-ocr-go/pkg/models"
)

const maxRedirects = 3

// ImageFetcher retrieves the raw bytes behind an image URL
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (*models.FetchedImage, error)
}

// StatusError is the cause of a fetch error for a non-2xx upstream response
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

// ErrImageTooLarge is returned when the body exceeds the configured limit
var ErrImageTooLarge = errors.New("image exceeds size limit")

// HTTPImageFetcher performs a single GET per image; it never retries.
type HTTPImageFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPImageFetcher creates an HTTP image fetcher. timeout bounds the
// whole exchange including reading the body.
func NewHTTPImageFetcher(timeout time.Duration, maxBytes int64) *HTTPImageFetcher {
	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		MaxIdleConns:           10,
		MaxIdleConnsPerHost:    2,
		IdleConnTimeout:        30 * time.Second,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 16 << 10,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (limit: %d)", maxRedirects)
				}
				return nil
			},
		},
		maxBytes: maxBytes,
	}
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (*models.FetchedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, apperrors.NewInvalidURLError("invalid URL", err)
	}
	req.Header.Set("User-Agent", "image-ocr-go/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, apperrors.NewFetchError("failed to fetch image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, apperrors.NewFetchError("failed to fetch image", &StatusError{StatusCode: resp.StatusCode})
	}

	data, err := readLimited(resp.Body, h.maxBytes)
	if err != nil {
		return nil, apperrors.NewFetchError("failed to read image body", err)
	}

	return &models.FetchedImage{
		URL:         imageURL,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// readLimited reads all of r, failing with ErrImageTooLarge past limit bytes.
// A non-positive limit disables the check.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (limit: %d bytes)", ErrImageTooLarge, limit)
	}
	return data, nil
}
