package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: for any decodable input image, the normalized output has its
// longest edge within the configured bound, keeps aspect ratio ordering,
// and normalizing the output again does not change its dimensions.

// testPNG encodes a solid-color PNG with the given dimensions.
func testPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := color.RGBA{R: uint8(w % 256), G: uint8(h % 256), B: 64, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestNormalizeBoundsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	opts := Options{MaxEdge: 800, JPEGQuality: 80}

	properties.Property("longest edge never exceeds the bound", prop.ForAll(
		func(w, h int) bool {
			res, err := Normalize(testPNG(w, h), opts)
			if err != nil {
				return false
			}
			longest := res.Width
			if res.Height > longest {
				longest = res.Height
			}
			return longest <= opts.MaxEdge
		},
		gen.IntRange(1, 1600),
		gen.IntRange(1, 1600),
	))

	properties.Property("aspect ordering is preserved", prop.ForAll(
		func(w, h int) bool {
			res, err := Normalize(testPNG(w, h), opts)
			if err != nil {
				return false
			}
			if w > h {
				return res.Width >= res.Height
			}
			if h > w {
				return res.Height >= res.Width
			}
			return res.Width == res.Height
		},
		gen.IntRange(2, 1600),
		gen.IntRange(2, 1600),
	))

	properties.Property("normalization is dimensionally idempotent", prop.ForAll(
		func(w, h int) bool {
			first, err := Normalize(testPNG(w, h), opts)
			if err != nil {
				return false
			}
			second, err := Normalize(first.Data, opts)
			if err != nil {
				return false
			}
			return first.Width == second.Width && first.Height == second.Height
		},
		gen.IntRange(1, 1600),
		gen.IntRange(1, 1600),
	))

	properties.Property("small images keep their dimensions", prop.ForAll(
		func(w, h int) bool {
			res, err := Normalize(testPNG(w, h), opts)
			if err != nil {
				return false
			}
			return res.Width == w && res.Height == h
		},
		gen.IntRange(1, 800),
		gen.IntRange(1, 800),
	))

	properties.TestingRun(t)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("not an image"), DefaultOptions())
	if err == nil {
		t.Fatal("expected error for undecodable input")
	}
}

func TestNormalizeRejectsOversizedInput(t *testing.T) {
	opts := Options{MaxEdge: 800, JPEGQuality: 80, MaxSizeKB: 1}
	data := testPNG(400, 400)
	if len(data) <= 1024 {
		t.Skip("test image unexpectedly small")
	}
	if _, err := Normalize(data, opts); err == nil {
		t.Fatal("expected error for oversized input")
	}
}

func TestNormalizeOutputIsJPEG(t *testing.T) {
	res, err := Normalize(testPNG(100, 50), DefaultOptions())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if res.MIMEType != "image/jpeg" {
		t.Errorf("mime = %s, want image/jpeg", res.MIMEType)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %s, want jpeg", format)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("dims = %dx%d, want 100x50", cfg.Width, cfg.Height)
	}
}
