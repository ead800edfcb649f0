//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// Inspect читает размеры изображения стандартными декодерами (сборка без OpenCV).
func (p *Previewer) Inspect(imageData []byte) (Preview, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return Preview{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return p.preview(cfg.Width, cfg.Height, format)
}
