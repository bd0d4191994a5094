package models

import "image"

// FetchedImage holds the raw bytes of one retrieved image
type FetchedImage struct {
	URL         string
	ContentType string
	Data        []byte
}

// Size returns the number of fetched bytes
func (f *FetchedImage) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

// DecodedImage is an in-memory bitmap ready for recognition
type DecodedImage struct {
	Image  image.Image
	Format string
	Width  int
	Height int
}
