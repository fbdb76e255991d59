package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxPixels - предел по площади до полного декодирования
const maxPixels = 40_000_000

var ErrUnsupportedImage = errors.New("unsupported image")

// Result - перекодированная картинка, готовая к загрузке на image host
type Result struct {
	Data        []byte
	Ext         string
	ContentType string
	Width       int
	Height      int
}

// Processor handles image processing operations
type Processor struct {
	quality      int // JPEG quality (1-100)
	maxDimension int
}

// NewProcessor creates a new image processor
func NewProcessor(quality, maxDimension int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if maxDimension <= 0 {
		maxDimension = 1600
	}
	return &Processor{quality: quality, maxDimension: maxDimension}
}

// Process декодирует картинку (jpeg, png, gif, webp), уменьшает ее до maxDimension
// по большей стороне и кодирует в PNG для PNG и в JPEG для остальных форматов.
func (p *Processor) Process(data []byte) (*Result, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	img = p.resize(img)
	bounds := img.Bounds()

	var buf bytes.Buffer
	res := &Result{Width: bounds.Dx(), Height: bounds.Dy()}
	if format == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
		res.Ext, res.ContentType = "png", "image/png"
	} else {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		res.Ext, res.ContentType = "jpg", "image/jpeg"
	}
	res.Data = buf.Bytes()
	return res, nil
}

// resize уменьшает картинку с сохранением пропорций; маленькие не трогает
func (p *Processor) resize(img image.Image) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= p.maxDimension && height <= p.maxDimension {
		return img
	}

	newWidth, newHeight := p.maxDimension, p.maxDimension
	if width >= height {
		newHeight = max(1, height*p.maxDimension/width)
	} else {
		newWidth = max(1, width*p.maxDimension/height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
