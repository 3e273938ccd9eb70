// Package tilemap stores a tile grid as fixed-size chunks and turns the
// visible ones into draw batches. Chunk bounding boxes partition the grid
// exactly, so frustum culling walks chunks instead of tiles and per-frame
// cost follows visible area rather than map size. Animated tile types share
// timelines through an arena keyed by type, never per instance.
package tilemap

import (
	"fmt"

	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/tilemap/tileset"
)

// DefaultChunkSize is the edge length, in tiles, of a map chunk.
const DefaultChunkSize = 16

// EmptyTile marks a grid cell with no tile.
const EmptyTile int32 = -1

// Chunk is one rectangular partition of the grid: its tile-space origin and
// extent plus its precomputed world-space bounding box.
type Chunk struct {
	// X, Y are the chunk origin in tile coordinates, row 0 at the top.
	X, Y uint32
	// Width, Height are the chunk extent in tiles.
	Width, Height uint32
	// Bounds is the chunk's world-space axis-aligned bounding box.
	Bounds common.Rect
}

// Map is a loaded tile grid. The grid itself is immutable after load except
// through SetTile; chunk geometry rebuilds are the drawable's concern.
type Map struct {
	desc *tileset.Descriptor

	width, height uint32
	tiles         []int32

	chunkSize uint32
	chunks    []Chunk

	originX, originY float32
	scale            float32

	arena     *AnimationArena
	colliders []common.Rect
}

// MapOption is a functional option applied to a map during construction via NewMap.
type MapOption func(*Map)

// WithChunkSize sets the chunk edge length in tiles. Values below 1 are ignored.
//
// Parameters:
//   - size: the chunk edge length
//
// Returns:
//   - MapOption: a function that applies the chunk size option to a map
func WithChunkSize(size uint32) MapOption {
	return func(m *Map) {
		if size >= 1 {
			m.chunkSize = size
		}
	}
}

// WithOrigin sets the world-space position of the map's bottom-left corner.
//
// Parameters:
//   - x, y: the world-space origin
//
// Returns:
//   - MapOption: a function that applies the origin option to a map
func WithOrigin(x, y float32) MapOption {
	return func(m *Map) {
		m.originX, m.originY = x, y
	}
}

// WithScale sets the world units per tileset pixel. Values at or below zero are ignored.
//
// Parameters:
//   - scale: the scale factor
//
// Returns:
//   - MapOption: a function that applies the scale option to a map
func WithScale(scale float32) MapOption {
	return func(m *Map) {
		if scale > 0 {
			m.scale = scale
		}
	}
}

// NewMap builds a map from a row-major tile-index grid, row 0 at the top.
// The grid is validated against the descriptor, partitioned into chunks and
// scanned for collision rectangles.
//
// Parameters:
//   - desc: the tileset the indices refer to
//   - width: the grid width in tiles
//   - height: the grid height in tiles
//   - tiles: the row-major tile indices, EmptyTile for empty cells
//   - opts: a variadic list of MapOption functions
//
// Returns:
//   - *Map: the loaded map
//   - error: an error if the grid shape or a tile index is invalid
func NewMap(desc *tileset.Descriptor, width, height uint32, tiles []int32, opts ...MapOption) (*Map, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("map dimensions must be positive")
	}
	if uint32(len(tiles)) != width*height {
		return nil, fmt.Errorf("grid has %d cells, want %d", len(tiles), width*height)
	}
	for i, id := range tiles {
		if id != EmptyTile && (id < 0 || uint32(id) >= desc.TileCount()) {
			return nil, fmt.Errorf("cell %d references tile id %d on a %d-tile set", i, id, desc.TileCount())
		}
	}

	m := &Map{
		desc:      desc,
		width:     width,
		height:    height,
		tiles:     append([]int32(nil), tiles...),
		chunkSize: DefaultChunkSize,
		scale:     1,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.buildChunks()
	m.buildColliders()
	m.arena = NewAnimationArena(desc)
	return m, nil
}

// BuildFromCorners resolves a (width+1) x (height+1) corner color grid into
// a tile grid through one of the descriptor's adjacency tables. The lookup
// is exact per tile; a corner pattern absent from the table rejects the
// whole load.
//
// Parameters:
//   - desc: the tileset descriptor
//   - set: the adjacency table name
//   - width: the target grid width in tiles
//   - height: the target grid height in tiles
//   - corners: the row-major corner colors, (width+1)*(height+1) entries
//
// Returns:
//   - []int32: the resolved row-major tile grid
//   - error: a MalformedAssetError naming the first unresolvable pattern
func BuildFromCorners(desc *tileset.Descriptor, set string, width, height uint32, corners []uint8) ([]int32, error) {
	cols := width + 1
	if uint32(len(corners)) != cols*(height+1) {
		return nil, fmt.Errorf("corner grid has %d entries, want %d", len(corners), cols*(height+1))
	}

	tiles := make([]int32, width*height)
	for row := uint32(0); row < height; row++ {
		for x := uint32(0); x < width; x++ {
			tl := corners[row*cols+x]
			tr := corners[row*cols+x+1]
			bl := corners[(row+1)*cols+x]
			br := corners[(row+1)*cols+x+1]

			id, ok := desc.CornerTile(set, tl, tr, bl, br)
			if !ok {
				return nil, &tileset.MalformedAssetError{
					Asset: desc.Name(),
					Reason: fmt.Sprintf("adjacency table %q has no tile for corner pattern [%d %d %d %d]",
						set, tl, tr, bl, br),
				}
			}
			tiles[row*width+x] = int32(id)
		}
	}
	return tiles, nil
}

// buildChunks partitions the grid into chunkSize-sized rectangles with
// precomputed world bounds. The partition is exact: every cell belongs to
// exactly one chunk.
func (m *Map) buildChunks() {
	tileW := float32(m.desc.TileWidth()) * m.scale
	tileH := float32(m.desc.TileHeight()) * m.scale

	for y := uint32(0); y < m.height; y += m.chunkSize {
		chunkH := min(m.chunkSize, m.height-y)
		for x := uint32(0); x < m.width; x += m.chunkSize {
			chunkW := min(m.chunkSize, m.width-x)

			// Row 0 is the top of the map, world y grows upward.
			bottomRow := m.height - y - chunkH
			m.chunks = append(m.chunks, Chunk{
				X: x, Y: y, Width: chunkW, Height: chunkH,
				Bounds: common.NewRect(
					m.originX+float32(x)*tileW,
					m.originY+float32(bottomRow)*tileH,
					float32(chunkW)*tileW,
					float32(chunkH)*tileH,
				),
			})
		}
	}
}

// buildColliders collects the world-space collision rectangles of every
// placed tile that declares them.
func (m *Map) buildColliders() {
	tileW := float32(m.desc.TileWidth()) * m.scale
	tileH := float32(m.desc.TileHeight()) * m.scale

	for row := uint32(0); row < m.height; row++ {
		for x := uint32(0); x < m.width; x++ {
			id := m.tiles[row*m.width+x]
			if id == EmptyTile {
				continue
			}
			tile := m.desc.Tile(uint32(id))
			if tile == nil || len(tile.Collision) == 0 {
				continue
			}

			left := m.originX + float32(x)*tileW
			top := m.originY + float32(m.height-row)*tileH
			for _, c := range tile.Collision {
				m.colliders = append(m.colliders, common.NewRect(
					left+c.X*m.scale,
					top-(c.Y+c.Height)*m.scale,
					c.Width*m.scale,
					c.Height*m.scale,
				))
			}
		}
	}
}

// Descriptor returns the tileset the map references.
func (m *Map) Descriptor() *tileset.Descriptor { return m.desc }

// Size returns the grid dimensions in tiles.
//
// Returns:
//   - width, height: the grid size
func (m *Map) Size() (width, height uint32) {
	return m.width, m.height
}

// TileAt returns the tile index at a cell, or EmptyTile outside the grid.
//
// Parameters:
//   - x: the column
//   - row: the row, 0 at the top
//
// Returns:
//   - int32: the tile index
func (m *Map) TileAt(x, row uint32) int32 {
	if x >= m.width || row >= m.height {
		return EmptyTile
	}
	return m.tiles[row*m.width+x]
}

// SetTile replaces the tile index at a cell. Out-of-grid cells and invalid
// indices are ignored. The caller owns rebuilding chunk geometry.
//
// Parameters:
//   - x: the column
//   - row: the row, 0 at the top
//   - id: the new tile index or EmptyTile
func (m *Map) SetTile(x, row uint32, id int32) {
	if x >= m.width || row >= m.height {
		return
	}
	if id != EmptyTile && (id < 0 || uint32(id) >= m.desc.TileCount()) {
		return
	}
	m.tiles[row*m.width+x] = id
}

// Chunks returns the map's chunk partition.
func (m *Map) Chunks() []Chunk { return m.chunks }

// Bounds returns the map's full world-space bounding box.
func (m *Map) Bounds() common.Rect {
	tileW := float32(m.desc.TileWidth()) * m.scale
	tileH := float32(m.desc.TileHeight()) * m.scale
	return common.NewRect(m.originX, m.originY, float32(m.width)*tileW, float32(m.height)*tileH)
}

// VisibleChunks appends the indices of chunks intersecting a world rect.
//
// Parameters:
//   - rect: the visible world rect
//   - dst: the slice to append to
//
// Returns:
//   - []int: dst extended with the intersecting chunk indices
func (m *Map) VisibleChunks(rect common.Rect, dst []int) []int {
	for i := range m.chunks {
		if m.chunks[i].Bounds.Intersects(rect) {
			dst = append(dst, i)
		}
	}
	return dst
}

// Colliders returns the world-space collision rectangles of the map.
func (m *Map) Colliders() []common.Rect { return m.colliders }

// Arena returns the map's animation arena.
func (m *Map) Arena() *AnimationArena { return m.arena }
