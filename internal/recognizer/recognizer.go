package recognizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"strings"

	apperrors "github.com/anime-shed/image-ocr-go/internal/errors"
	"github.com/anime-shed/image-ocr-go/pkg/models"

	"github.com/otiai10/gosseract/v2"
)

// ErrNoImage is the cause of a recognition error for a missing bitmap
var ErrNoImage = errors.New("no decoded image")

// TextRecognizer extracts text from a decoded bitmap
type TextRecognizer interface {
	Recognize(ctx context.Context, img *models.DecodedImage) (string, error)
}

// Options configure the Tesseract engine. Languages is required.
type Options struct {
	Languages      []string
	Trim           bool
	TessdataPrefix string
}

// TesseractRecognizer runs one gosseract client per call. Clients are not
// shared, so a recognizer is safe for concurrent use.
type TesseractRecognizer struct {
	opts          Options
	clientFactory func() *gosseract.Client
}

func NewTesseractRecognizer(opts Options) (*TesseractRecognizer, error) {
	if len(opts.Languages) == 0 {
		return nil, fmt.Errorf("at least one OCR language is required")
	}
	return &TesseractRecognizer{opts: opts, clientFactory: gosseract.NewClient}, nil
}

// Languages returns the configured language codes
func (r *TesseractRecognizer) Languages() []string {
	return append([]string(nil), r.opts.Languages...)
}

// Recognize returns the engine's UTF-8 text. Without Trim the trailing
// newline tesseract emits is kept; text that is only whitespace becomes "".
func (r *TesseractRecognizer) Recognize(_ context.Context, img *models.DecodedImage) (string, error) {
	if img == nil || img.Image == nil {
		return "", apperrors.NewRecognitionError("failed to recognize text", ErrNoImage)
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", apperrors.NewRecognitionError("failed to prepare image for OCR", err)
	}

	client := r.clientFactory()
	defer client.Close()
	client.Trim = r.opts.Trim

	if err := client.SetLanguage(r.opts.Languages...); err != nil {
		return "", apperrors.NewRecognitionError("failed to set OCR language", err)
	}
	if r.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.opts.TessdataPrefix); err != nil {
			return "", apperrors.NewRecognitionError("failed to set tessdata prefix", err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", apperrors.NewRecognitionError("failed to load image into OCR engine", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", apperrors.NewRecognitionError("failed to recognize text", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return text, nil
}

// Engine reports the linked Tesseract version
func (r *TesseractRecognizer) Engine() string {
	return "tesseract " + gosseract.Version()
}

// encodePNG re-encodes the bitmap losslessly so tesseract sees exactly the
// decoded pixels regardless of the source format.
func encodePNG(img *models.DecodedImage) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img.Image); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
