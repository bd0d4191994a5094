package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/image-ocr-go/internal/errors"
	"github.com/anime-shed/image-ocr-go/pkg/models"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

const blobHostSuffix = ".blob.core.windows.net"

// BlobImageFetcher downloads images from one Azure storage account
type BlobImageFetcher struct {
	client   *azblob.Client
	host     string
	maxBytes int64
}

func NewBlobImageFetcher(accountName, accountKey string, maxBytes int64) (*BlobImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s%s", accountName, blobHostSuffix)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}

	return &BlobImageFetcher{
		client:   client,
		host:     strings.ToLower(accountName + blobHostSuffix),
		maxBytes: maxBytes,
	}, nil
}

// Handles reports whether imageURL points into this fetcher's account.
func (s *BlobImageFetcher) Handles(imageURL string) bool {
	u, err := url.Parse(imageURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), s.host)
}

func (s *BlobImageFetcher) FetchImage(ctx context.Context, blobURL string) (*models.FetchedImage, error) {
	parts, err := azblob.ParseURL(blobURL)
	if err != nil {
		return nil, apperrors.NewInvalidURLError("invalid blob URL", err)
	}
	if parts.ContainerName == "" || parts.BlobName == "" {
		return nil, apperrors.NewInvalidURLError("blob URL must name a container and a blob", nil)
	}

	resp, err := s.client.DownloadStream(ctx, parts.ContainerName, parts.BlobName, nil)
	if err != nil {
		return nil, apperrors.NewFetchError("blob download failed", err)
	}
	defer resp.Body.Close()

	data, err := readLimited(resp.Body, s.maxBytes)
	if err != nil {
		return nil, apperrors.NewFetchError("failed to read blob body", err)
	}

	var contentType string
	if resp.ContentType != nil {
		contentType = *resp.ContentType
	}

	return &models.FetchedImage{
		URL:         blobURL,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// RoutingFetcher sends URLs of the configured storage account to the blob
// fetcher and everything else over plain HTTP.
type RoutingFetcher struct {
	http ImageFetcher
	blob *BlobImageFetcher
}

// NewRoutingFetcher returns httpFetcher unchanged when blob is nil.
func NewRoutingFetcher(httpFetcher ImageFetcher, blob *BlobImageFetcher) ImageFetcher {
	if blob == nil {
		return httpFetcher
	}
	return &RoutingFetcher{http: httpFetcher, blob: blob}
}

func (r *RoutingFetcher) FetchImage(ctx context.Context, imageURL string) (*models.FetchedImage, error) {
	if r.blob.Handles(imageURL) {
		return r.blob.FetchImage(ctx, imageURL)
	}
	return r.http.FetchImage(ctx, imageURL)
}
