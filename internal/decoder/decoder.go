package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	apperrors "github.com/anime-shed/image-ocr-go/internal/errors"
	"github.com/anime-shed/image-ocr-go/pkg/models"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is the cause of a decode error for a zero-length body
var ErrEmptyImage = errors.New("image data is empty")

// Decoder turns fetched bytes into a bitmap
type Decoder interface {
	Decode(img *models.FetchedImage) (*models.DecodedImage, error)
}

type imageDecoder struct{}

// NewDecoder returns a decoder for png, jpeg, gif, webp, bmp and tiff.
// The format is sniffed from the bytes; the served content type is ignored.
func NewDecoder() Decoder {
	return &imageDecoder{}
}

func (d *imageDecoder) Decode(fetched *models.FetchedImage) (*models.DecodedImage, error) {
	if fetched == nil || len(fetched.Data) == 0 {
		return nil, apperrors.NewDecodeError("failed to decode image", ErrEmptyImage)
	}

	img, format, err := image.Decode(bytes.NewReader(fetched.Data))
	if err != nil {
		appErr := apperrors.NewDecodeError("failed to decode image", err)
		if fetched.ContentType != "" {
			appErr = appErr.WithDetails(fmt.Sprintf("served as %s", fetched.ContentType))
		}
		return nil, appErr
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, apperrors.NewDecodeError("image has no pixels", nil)
	}

	return &models.DecodedImage{
		Image:  img,
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
