package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/anime-shed/image-ocr-go/internal/errors"
)

// Valid minimal PNG data for a 1x1 transparent pixel
var pngData = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, // 1x1 dimensions
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, // bit depth, color type, etc.
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41, // IDAT chunk start
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00, // compressed data
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00, // compressed data end
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE, // IEND chunk
	0x42, 0x60, 0x82,
}

func TestHTTPImageFetcher_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.Header.Get("Accept") != "" {
			t.Errorf("Expected no Accept negotiation, got %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngData)
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(5*time.Second, 1024)
	img, err := fetcher.FetchImage(context.Background(), server.URL+"/hello.png")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if img.ContentType != "image/png" {
		t.Errorf("Expected image/png, got %q", img.ContentType)
	}
	if img.Size() != len(pngData) {
		t.Errorf("Expected %d bytes, got %d", len(pngData), img.Size())
	}
	if img.URL != server.URL+"/hello.png" {
		t.Errorf("Unexpected URL %q", img.URL)
	}
}

func TestHTTPImageFetcher_NoRetry(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"not found", http.StatusNotFound},
		{"forbidden", http.StatusForbidden},
		{"server error", http.StatusInternalServerError},
		{"bad gateway", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requestCount int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&requestCount, 1)
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(fmt.Sprintf("Error %d", tt.statusCode)))
			}))
			defer server.Close()

			fetcher := NewHTTPImageFetcher(5*time.Second, 1024)
			_, err := fetcher.FetchImage(context.Background(), server.URL)

			if got := atomic.LoadInt32(&requestCount); got != 1 {
				t.Errorf("Expected exactly 1 request, got %d", got)
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
				t.Fatalf("Expected fetch error, got: %v", err)
			}
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("Expected StatusError cause, got: %v", err)
			}
			if statusErr.StatusCode != tt.statusCode {
				t.Errorf("Expected upstream status %d, got %d", tt.statusCode, statusErr.StatusCode)
			}
		})
	}
}

func TestHTTPImageFetcher_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngData)
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(5*time.Second, 10)
	_, err := fetcher.FetchImage(context.Background(), server.URL)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("Expected ErrImageTooLarge, got: %v", err)
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
		t.Errorf("Expected fetch error type, got: %v", err)
	}
}

func TestHTTPImageFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	fetcher := NewHTTPImageFetcher(100*time.Millisecond, 1024)
	_, err := fetcher.FetchImage(context.Background(), server.URL)
	if !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
		t.Fatalf("Expected fetch error on timeout, got: %v", err)
	}
}

func TestHTTPImageFetcher_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewHTTPImageFetcher(time.Second, 1024)
	_, err := fetcher.FetchImage(context.Background(), url)
	if !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
		t.Fatalf("Expected fetch error, got: %v", err)
	}
	if apperrors.GetStatusCode(err) != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", apperrors.GetStatusCode(err))
	}
}

func TestHTTPImageFetcher_MalformedURL(t *testing.T) {
	fetcher := NewHTTPImageFetcher(time.Second, 1024)
	_, err := fetcher.FetchImage(context.Background(), "http://exa mple.com/\x7f")
	if !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
		t.Fatalf("Expected fetch error, got: %v", err)
	}
	if apperrors.GetStatusCode(err) != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", apperrors.GetStatusCode(err))
	}
}

func TestHTTPImageFetcher_RedirectLimit(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/again", http.StatusFound)
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(5*time.Second, 1024)
	_, err := fetcher.FetchImage(context.Background(), server.URL)
	if !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
		t.Fatalf("Expected fetch error for redirect loop, got: %v", err)
	}
}

func TestReadLimited_NoLimit(t *testing.T) {
	data, err := readLimited(bytesReader(pngData), 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(data) != len(pngData) {
		t.Errorf("Expected %d bytes, got %d", len(pngData), len(data))
	}
}
