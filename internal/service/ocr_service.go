package service

import (
	"context"
	"time"

	"github.com/anime-shed/image-ocr-go/internal/decoder"
	"github.com/anime-shed/image-ocr-go/internal/logger"
	"github.com/anime-shed/image-ocr-go/internal/recognizer"
	"github.com/anime-shed/image-ocr-go/internal/storage"
	"github.com/anime-shed/image-ocr-go/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Stage names one step of the pipeline; used in log fields
type Stage string

const (
	StageFetching    Stage = "fetching"
	StageDecoding    Stage = "decoding"
	StageRecognizing Stage = "recognizing"
)

// OCRService runs fetch, decode and recognize for a single URL
type OCRService interface {
	ExtractText(ctx context.Context, imageURL string) (string, error)
}

type ocrService struct {
	validator  *validation.URLValidator
	fetcher    storage.ImageFetcher
	decoder    decoder.Decoder
	recognizer recognizer.TextRecognizer
}

func NewOCRService(
	validator *validation.URLValidator,
	fetcher storage.ImageFetcher,
	dec decoder.Decoder,
	rec recognizer.TextRecognizer,
) OCRService {
	return &ocrService{
		validator:  validator,
		fetcher:    fetcher,
		decoder:    dec,
		recognizer: rec,
	}
}

// ExtractText stops at the first failing stage. Errors are returned as the
// stage produced them (tagged AppErrors); nothing is retried.
func (s *ocrService) ExtractText(ctx context.Context, imageURL string) (string, error) {
	start := time.Now()
	log := logger.WithField("url", imageURL)

	parsedURL, err := s.validator.ValidateImageURL(imageURL)
	if err != nil {
		log.WithError(err).WithField("stage", StageFetching).Warn("Rejected image URL")
		return "", err
	}

	log.WithField("stage", StageFetching).Debug("Fetching image")
	fetched, err := s.fetcher.FetchImage(ctx, parsedURL.String())
	if err != nil {
		log.WithError(err).WithField("stage", StageFetching).Error("Failed to fetch image")
		return "", err
	}

	log.WithFields(logrus.Fields{
		"stage":        StageDecoding,
		"bytes":        fetched.Size(),
		"content_type": fetched.ContentType,
	}).Debug("Decoding image")
	decoded, err := s.decoder.Decode(fetched)
	if err != nil {
		log.WithError(err).WithField("stage", StageDecoding).Error("Failed to decode image")
		return "", err
	}

	log.WithFields(logrus.Fields{
		"stage":  StageRecognizing,
		"format": decoded.Format,
		"width":  decoded.Width,
		"height": decoded.Height,
	}).Debug("Recognizing text")
	text, err := s.recognizer.Recognize(ctx, decoded)
	if err != nil {
		log.WithError(err).WithField("stage", StageRecognizing).Error("Failed to recognize text")
		return "", err
	}

	log.WithFields(logrus.Fields{
		"processing_time_ms": time.Since(start).Milliseconds(),
		"text_length":        len(text),
	}).Info("OCR completed successfully")

	return text, nil
}
