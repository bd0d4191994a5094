package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/image-ocr-go/internal/config"
	"github.com/anime-shed/image-ocr-go/internal/decoder"
	"github.com/anime-shed/image-ocr-go/internal/factory"
	"github.com/anime-shed/image-ocr-go/internal/recognizer"
	"github.com/anime-shed/image-ocr-go/internal/service"
	"github.com/anime-shed/image-ocr-go/internal/storage"
	"github.com/anime-shed/image-ocr-go/internal/transport"
	"github.com/anime-shed/image-ocr-go/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config        *config.Config
	imageFetcher  storage.ImageFetcher
	imageDecoder  decoder.Decoder
	recognizer    recognizer.TextRecognizer
	ocrService    service.OCRService
	lambdaHandler *transport.LambdaHandler
	engineVersion string
}

// NewContainer wires the pipeline for cfg
func NewContainer(cfg *config.Config) (*Container, error) {
	imageFetcher, err := factory.NewImageFetcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create image fetcher: %w", err)
	}

	textRecognizer, err := factory.NewRecognizer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}

	validator := validation.NewURLValidator()
	if len(cfg.AllowedImageHosts) > 0 {
		validator = validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.AllowedImageHosts)
	}

	imageDecoder := decoder.NewDecoder()
	ocrService := service.NewOCRService(validator, imageFetcher, imageDecoder, textRecognizer)

	return &Container{
		config:        cfg,
		imageFetcher:  imageFetcher,
		imageDecoder:  imageDecoder,
		recognizer:    textRecognizer,
		ocrService:    ocrService,
		lambdaHandler: transport.NewLambdaHandler(ocrService, cfg.StructuredErrors),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	if c.engineVersion == "" {
		if e, ok := c.recognizer.(interface{ Engine() string }); ok {
			c.engineVersion = e.Engine()
		}
	}
	return transport.NewHandler(c.ocrService, c.config, c.engineVersion)
}

// LambdaHandler returns the serverless invocation handler
func (c *Container) LambdaHandler() *transport.LambdaHandler {
	return c.lambdaHandler
}

// OCRService returns the shared pipeline
func (c *Container) OCRService() service.OCRService {
	return c.ocrService
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
