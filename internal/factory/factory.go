package factory

import (
	"fmt"

	"github.com/anime-shed/image-ocr-go/internal/config"
	"github.com/anime-shed/image-ocr-go/internal/recognizer"
	"github.com/anime-shed/image-ocr-go/internal/storage"
)

// StorageType names an image source backend
type StorageType string

const (
	// HTTPStorage fetches any http(s) URL
	HTTPStorage StorageType = "http"
	// AzureStorage downloads blobs from the configured storage account
	AzureStorage StorageType = "azure"
)

// StorageTypes lists the backends enabled by cfg, HTTP first.
func StorageTypes(cfg *config.Config) []StorageType {
	types := []StorageType{HTTPStorage}
	if cfg.BlobStorageEnabled() {
		types = append(types, AzureStorage)
	}
	return types
}

// NewImageFetcher builds the fetcher for cfg: plain HTTP, or HTTP routed
// alongside the Azure account when credentials are present.
func NewImageFetcher(cfg *config.Config) (storage.ImageFetcher, error) {
	httpFetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout, cfg.MaxImageBytes)

	var blob *storage.BlobImageFetcher
	for _, t := range StorageTypes(cfg) {
		switch t {
		case HTTPStorage:
		case AzureStorage:
			f, err := storage.NewBlobImageFetcher(cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.MaxImageBytes)
			if err != nil {
				return nil, fmt.Errorf("azure storage: %w", err)
			}
			blob = f
		default:
			return nil, fmt.Errorf("unsupported storage type: %s", t)
		}
	}

	return storage.NewRoutingFetcher(httpFetcher, blob), nil
}

// NewRecognizer builds the recognizer named by cfg.OCREngine.
func NewRecognizer(cfg *config.Config) (recognizer.TextRecognizer, error) {
	switch cfg.OCREngine {
	case config.EngineTesseract, "":
		return recognizer.NewTesseractRecognizer(recognizer.Options{
			Languages:      cfg.OCRLanguages(),
			Trim:           cfg.OCRTrim,
			TessdataPrefix: cfg.TessdataPrefix,
		})
	case config.EngineOpenAI:
		return recognizer.NewVisionRecognizer(recognizer.VisionOptions{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Trim:    cfg.OCRTrim,
		})
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", cfg.OCREngine)
	}
}
