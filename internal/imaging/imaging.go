// Package imaging prepares chart screenshots for inference.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	apperrors "chart-advisor/internal/errors"
	"chart-advisor/pkg/utils"
)

// Options controls image normalization.
type Options struct {
	MaxEdge     int // longest edge after downscale, pixels
	JPEGQuality int // 1-100
	MaxSizeKB   int // 0 = no input size limit
}

// DefaultOptions returns the default normalization options.
func DefaultOptions() Options {
	return Options{
		MaxEdge:     800,
		JPEGQuality: 80,
		MaxSizeKB:   1024,
	}
}

// Result holds a normalized image.
type Result struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// Normalize decodes an image, downscales it so its longest edge does not
// exceed opts.MaxEdge, and re-encodes it as JPEG. Images already within
// bounds are re-encoded without resampling, so normalizing an already
// normalized image does not change its dimensions.
func Normalize(data []byte, opts Options) (*Result, error) {
	if opts.MaxSizeKB > 0 && len(data) > opts.MaxSizeKB*1024 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidImage,
			"image is %s, limit is %d KB", utils.FormatBytes(len(data)), opts.MaxSizeKB)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidImage, "decoding image")
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidImage, "empty image")
	}

	tw, th := fitWithin(w, h, opts.MaxEdge)
	if tw != w || th != h {
		scaled := image.NewRGBA(image.Rect(0, 0, tw, th))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
		return nil, apperrors.Wrap(err, "encoding JPEG")
	}

	return &Result{
		Data:     buf.Bytes(),
		MIMEType: "image/jpeg",
		Width:    tw,
		Height:   th,
	}, nil
}

// fitWithin returns dimensions scaled so the longest edge is at most maxEdge,
// preserving aspect ratio. Dimensions already within bounds are unchanged.
func fitWithin(w, h, maxEdge int) (int, int) {
	if maxEdge <= 0 {
		return w, h
	}
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return w, h
	}

	scale := float64(maxEdge) / float64(longest)
	tw := int(float64(w) * scale)
	th := int(float64(h) * scale)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}
