package drawables

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/engine/renderer"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/sampler"
	"github.com/rxght/LuveHulgerUlle/engine/tilemap/tileset"
)

// DynamicTile is a single tile quad placed freely in the world, outside any
// tile grid: a door, a pushed crate, a pickup. It samples one layer of the
// tileset atlas and can switch tiles at runtime through its frame-offset
// uniform, without touching geometry.
type DynamicTile struct {
	quad

	offset *wgpu.Buffer
	desc   *tileset.Descriptor
	tileID uint32
}

// NewDynamicTile registers a free-standing tile drawable sized to the
// tileset's tile dimensions.
//
// Parameters:
//   - r: the renderer
//   - global: the cartesian-to-device matrix buffer
//   - camera: the camera matrix buffer
//   - atlas: the tileset atlas as a texture array
//   - desc: the tileset descriptor
//   - tileID: the initial tile to show
//   - opts: a variadic list of QuadOption functions
//
// Returns:
//   - *DynamicTile: the registered drawable
//   - error: an error if the tile id is out of range or creation fails
func NewDynamicTile(r renderer.Renderer, global, camera *wgpu.Buffer, atlas *wgpu.TextureView, desc *tileset.Descriptor, tileID uint32, opts ...QuadOption) (*DynamicTile, error) {
	if tileID >= desc.TileCount() {
		return nil, fmt.Errorf("tile id %d on a %d-tile set", tileID, desc.TileCount())
	}

	d := &DynamicTile{
		quad: quad{
			r:      r,
			width:  float32(desc.TileWidth()),
			height: float32(desc.TileHeight()),
		},
		desc:   desc,
		tileID: tileID,
	}
	for _, opt := range opts {
		opt(&d.quad)
	}

	smp, err := r.AcquireSampler(sampler.PixelArt())
	if err != nil {
		return nil, err
	}

	d.offset, err = r.CreateUniformBuffer(frameOffsetData(tileID))
	if err != nil {
		return nil, err
	}

	vertexData, indexData, indexCount := unitQuadPosUV()
	geo, err := r.CreateGeometry(vertexData, indexData, indexCount)
	if err != nil {
		return nil, err
	}
	d.geo = geo

	d.id, err = r.Register(renderer.DrawConfig{
		Shader: "animated_quad",
		Resources: binding.Resources{
			Global:          global,
			MaterialTexture: atlas,
			MaterialSampler: smp.Handle(),
			Camera:          camera,
			FrameOffset:     d.offset,
		},
		Geometry: geo,
		Layer:    d.layer,
		Payload:  d.payload(),
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SetTile switches the displayed tile. Out-of-range ids are rejected.
//
// Parameters:
//   - tileID: the atlas tile to show
//
// Returns:
//   - error: an error if the id exceeds the tileset
func (d *DynamicTile) SetTile(tileID uint32) error {
	if tileID >= d.desc.TileCount() {
		return fmt.Errorf("tile id %d on a %d-tile set", tileID, d.desc.TileCount())
	}
	if tileID == d.tileID {
		return nil
	}
	d.tileID = tileID
	d.r.WriteUniform(d.offset, frameOffsetData(tileID))
	return nil
}

// Tile returns the tile currently shown.
func (d *DynamicTile) Tile() uint32 { return d.tileID }
