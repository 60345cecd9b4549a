// Package imaging checks uploaded photos before they are handed to the media
// uploader.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// JPEGQuality is the compression quality used when a JPEG is re-encoded.
const JPEGQuality = 85

// ErrUnsupportedFormat is returned for anything that is not a JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// formats maps sniffed MIME types to the file extension the uploader expects.
var formats = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// Image is a validated photo ready for upload.
type Image struct {
	Data   []byte
	MIME   string
	Ext    string
	Width  int
	Height int
}

// Reader returns a fresh reader over the image bytes.
func (img *Image) Reader() io.Reader {
	return bytes.NewReader(img.Data)
}

// Process reads a photo, checks its format by sniffing the bytes (client
// headers are not trusted) and, when maxDim is positive, downscales it so
// neither side exceeds maxDim. Photos within bounds are passed through
// byte for byte.
func Process(r io.Reader, maxDim int) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	mime := http.DetectContentType(data)
	ext, ok := formats[mime]
	if !ok {
		return nil, fmt.Errorf("%w: %s (only JPEG and PNG accepted)", ErrUnsupportedFormat, mime)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	out := &Image{Data: data, MIME: mime, Ext: ext, Width: cfg.Width, Height: cfg.Height}
	if maxDim <= 0 || (cfg.Width <= maxDim && cfg.Height <= maxDim) {
		return out, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	dst := downscale(src, maxDim)

	var buf bytes.Buffer
	switch mime {
	case "image/png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", ext, err)
	}

	b := dst.Bounds()
	out.Data = buf.Bytes()
	out.Width, out.Height = b.Dx(), b.Dy()
	return out, nil
}

// downscale resizes img so its longer side equals maxDim, keeping the
// aspect ratio.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
