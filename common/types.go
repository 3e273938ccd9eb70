// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// FrameContext carries the per-frame transform state supplied to the frame
// dispatcher. It is built once per frame by the transform provider and passed
// as an explicit value - there is no ambient camera singleton.
type FrameContext struct {
	// View is the camera view matrix (16 elements, column-major).
	View [16]float32
	// CartesianToDevice is the viewport-to-device matrix (16 elements, column-major).
	CartesianToDevice [16]float32
	// DeltaTime is the elapsed time since the previous frame in seconds.
	DeltaTime float32
	// VisibleRect is the camera's visible region in world space, used for
	// chunk culling by batch sources.
	VisibleRect Rect
}

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// For array textures, Layers is the number of equally sized slices stacked in
// the pixel data; a value of 0 or 1 means a plain 2D texture.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of one texture layer in pixels.
	Width uint32
	// Height is the height of one texture layer in pixels.
	Height uint32
	// Layers is the number of array layers, 0 or 1 for a plain 2D texture.
	Layers uint32
}

// TextureAsset references image data either embedded in memory or on disk,
// pending decode into staging data. Produced by the asset loader.
type TextureAsset struct {
	// Name is an identifier for this texture (e.g. a tileset atlas name).
	Name string

	// Path is the file path for on-disk textures (empty for embedded).
	Path string

	// Data contains raw image bytes for embedded textures (PNG/JPEG).
	Data []byte
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either embedded Data bytes or loads from Path on disk.
// Supports PNG and JPEG formats.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - TextureStagingData: raw RGBA pixel data (4 bytes per pixel, row-major order) with dimensions
//   - error: error if decoding fails
func (t *TextureAsset) Decode() (TextureStagingData, error) {
	if t == nil {
		return TextureStagingData{}, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	} else {
		return TextureStagingData{}, fmt.Errorf("texture has neither data nor path")
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// DecodeArray decodes the texture and reinterprets it as a texture array of
// tileWidth x tileHeight slices read left-to-right, top-to-bottom. This is
// the layout used by tileset atlases sampled as 2D array textures.
//
// Parameters:
//   - tileWidth, tileHeight: dimensions of one slice in pixels
//
// Returns:
//   - TextureStagingData: slice pixel data stacked layer by layer
//   - error: error if decoding fails or the atlas does not divide evenly
func (t *TextureAsset) DecodeArray(tileWidth, tileHeight uint32) (TextureStagingData, error) {
	flat, err := t.Decode()
	if err != nil {
		return TextureStagingData{}, err
	}
	if tileWidth == 0 || tileHeight == 0 {
		return TextureStagingData{}, fmt.Errorf("invalid tile dimensions %dx%d", tileWidth, tileHeight)
	}
	if flat.Width%tileWidth != 0 || flat.Height%tileHeight != 0 {
		return TextureStagingData{}, fmt.Errorf("atlas %dx%d does not divide into %dx%d tiles", flat.Width, flat.Height, tileWidth, tileHeight)
	}

	columns := flat.Width / tileWidth
	rows := flat.Height / tileHeight
	layers := columns * rows

	out := make([]byte, 0, len(flat.Pixels))
	for layer := uint32(0); layer < layers; layer++ {
		tileX := (layer % columns) * tileWidth
		tileY := (layer / columns) * tileHeight
		for row := uint32(0); row < tileHeight; row++ {
			start := ((tileY+row)*flat.Width + tileX) * 4
			out = append(out, flat.Pixels[start:start+tileWidth*4]...)
		}
	}

	return TextureStagingData{
		Pixels: out,
		Width:  tileWidth,
		Height: tileHeight,
		Layers: layers,
	}, nil
}
