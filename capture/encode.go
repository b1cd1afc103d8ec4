package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"
)

// Encoder writes img to w. scale is the requested quality in [0, 1].
type Encoder func(w io.Writer, img image.Image, scale float64) error

// EncodeJPEG is the default Encoder. It maps scale onto the 1 to 100 range
// of image/jpeg.
func EncodeJPEG(w io.Writer, img image.Image, scale float64) error {
	q := int(math.Round(scale * 100))
	q = min(max(q, 1), 100)
	return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
}

// qualityScale maps a 0 to 100 quality hint onto [0, 1].
func qualityScale(quality int) float64 {
	return float64(min(max(quality, 0), 100)) / 100
}

func encode(enc Encoder, img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := enc(&buf, img, qualityScale(quality)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: encoder produced no data", ErrEncodeFailure)
	}
	return buf.Bytes(), nil
}
