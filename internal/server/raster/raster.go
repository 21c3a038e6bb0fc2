// Package raster turns uploaded SVG files into PNG previews.
package raster

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/h2non/bimg"
)

var ErrEmptyInput = errors.New("empty svg")

// process is a test seam for the libvips pipeline.
var process = func(buf []byte, o bimg.Options) ([]byte, error) {
	return bimg.NewImage(buf).Process(o)
}

type Rasterizer interface {
	Rasterize(svg []byte) ([]byte, error)
}

// BimgRasterizer renders through libvips. A zero Width keeps the SVG's
// intrinsic size.
type BimgRasterizer struct {
	Width int
}

func (r BimgRasterizer) Rasterize(svg []byte) ([]byte, error) {
	if len(bytes.TrimSpace(svg)) == 0 {
		return nil, ErrEmptyInput
	}

	out, err := process(svg, bimg.Options{Type: bimg.PNG, Width: r.Width})
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	return out, nil
}
