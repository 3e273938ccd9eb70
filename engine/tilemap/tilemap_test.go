package tilemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/tilemap/tileset"
)

const terrainAsset = `{
	"name": "terrain",
	"image": "terrain.png",
	"tileWidth": 16,
	"tileHeight": 16,
	"tileCount": 36,
	"columns": 6,
	"tiles": [
		{"id": 0, "class": "ground"},
		{"id": 7, "class": "decoration"},
		{"id": 12, "class": "water", "animation": [
			{"tileId": 12, "duration": 1000},
			{"tileId": 13, "duration": 100},
			{"tileId": 14, "duration": 900}
		]},
		{"id": 20, "class": "wall", "collision": [
			{"x": 0, "y": 8, "width": 16, "height": 8}
		]}
	],
	"wangSets": [
		{"name": "cliffs", "corners": [
			{"tileId": 4, "colors": [0, 1, 0, 1]},
			{"tileId": 5, "colors": [1, 1, 1, 1]}
		]}
	]
}`

func terrain(t *testing.T) *tileset.Descriptor {
	t.Helper()
	d, err := tileset.Parse("terrain.json", []byte(terrainAsset))
	require.NoError(t, err)
	return d
}

func uniformGrid(w, h uint32, id int32) []int32 {
	tiles := make([]int32, w*h)
	for i := range tiles {
		tiles[i] = id
	}
	return tiles
}

func TestAnimationFollowsCumulativeDurations(t *testing.T) {
	arena := NewAnimationArena(terrain(t))
	require.Equal(t, []uint32{12}, arena.Types())

	// Timeline: 12 for 1000ms, 13 for 100ms, 14 for 900ms.
	assert.Equal(t, uint32(12), arena.CurrentFrame(12))

	arena.Advance(1.05)
	assert.Equal(t, uint32(13), arena.CurrentFrame(12), "1050ms lands in the 100ms middle frame")

	arena.Advance(0.06)
	assert.Equal(t, uint32(14), arena.CurrentFrame(12), "1110ms is past the middle frame")

	arena.Advance(0.9)
	assert.Equal(t, uint32(12), arena.CurrentFrame(12), "2010ms wraps back to the first frame")

	assert.Equal(t, uint32(3), arena.CurrentFrame(3), "static types resolve to themselves")
	assert.False(t, arena.Animated(3))
	assert.True(t, arena.Animated(12))
}

func TestChunksPartitionTheMapExactly(t *testing.T) {
	m, err := NewMap(terrain(t), 20, 11, uniformGrid(20, 11, 0), WithChunkSize(8))
	require.NoError(t, err)

	chunks := m.Chunks()
	require.Len(t, chunks, 6, "20x11 tiles in 8x8 chunks")

	bounds := m.Bounds()
	assert.Equal(t, common.NewRect(0, 0, 20*16, 11*16), bounds)

	var area float32
	union := common.Rect{}
	for i, c := range chunks {
		area += c.Bounds.Area()
		union = union.Union(c.Bounds)
		for j := i + 1; j < len(chunks); j++ {
			assert.False(t, c.Bounds.Intersects(chunks[j].Bounds),
				"chunks %d and %d overlap", i, j)
		}
	}
	assert.InDelta(t, bounds.Area(), area, 1e-3)
	assert.Equal(t, bounds, union, "chunk boxes cover the full map")
}

func TestVisibleChunksCullsAgainstRect(t *testing.T) {
	m, err := NewMap(terrain(t), 32, 32, uniformGrid(32, 32, 0), WithChunkSize(16))
	require.NoError(t, err)
	require.Len(t, m.Chunks(), 4)

	all := m.VisibleChunks(m.Bounds(), nil)
	assert.Len(t, all, 4)

	// A rect inside the bottom-left quadrant touches exactly one chunk.
	one := m.VisibleChunks(common.NewRect(10, 10, 50, 50), nil)
	require.Len(t, one, 1)
	assert.Equal(t, common.NewRect(0, 0, 256, 256), m.Chunks()[one[0]].Bounds)

	none := m.VisibleChunks(common.NewRect(-500, -500, 100, 100), nil)
	assert.Empty(t, none)
}

func TestNewMapRejectsDanglingTileIndex(t *testing.T) {
	tiles := uniformGrid(4, 4, 0)
	tiles[5] = 36

	_, err := NewMap(terrain(t), 4, 4, tiles)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "36")

	_, err = NewMap(terrain(t), 4, 4, tiles[:3])
	assert.Error(t, err, "grid size mismatch")
}

func TestBuildFromCornersResolvesGrid(t *testing.T) {
	d := terrain(t)

	tiles, err := BuildFromCorners(d, "cliffs", 1, 1, []uint8{0, 1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []int32{4}, tiles)

	tiles, err = BuildFromCorners(d, "cliffs", 1, 1, []uint8{1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []int32{5}, tiles)
}

func TestBuildFromCornersRejectsMissingPattern(t *testing.T) {
	d := terrain(t)

	tiles, err := BuildFromCorners(d, "cliffs", 1, 1, []uint8{1, 0, 0, 0})
	assert.Nil(t, tiles)

	var malformed *tileset.MalformedAssetError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "terrain", malformed.Asset)
	assert.Contains(t, malformed.Reason, "cliffs")
}

func TestCollidersPlaceTileShapesInWorldSpace(t *testing.T) {
	// 2x1 grid: ground at (0,0), wall at (1,0). The wall's shape covers the
	// lower half of its tile, 8px tall starting 8px below the tile top.
	m, err := NewMap(terrain(t), 2, 1, []int32{0, 20})
	require.NoError(t, err)

	colliders := m.Colliders()
	require.Len(t, colliders, 1)
	assert.Equal(t, common.NewRect(16, 0, 16, 8), colliders[0])
}

func TestCollidersRespectOriginAndScale(t *testing.T) {
	m, err := NewMap(terrain(t), 1, 1, []int32{20}, WithOrigin(100, 200), WithScale(2))
	require.NoError(t, err)

	require.Len(t, m.Colliders(), 1)
	assert.Equal(t, common.NewRect(100, 200, 32, 16), m.Colliders()[0])
}

func TestBuildChunkMeshesSplitsStaticAndAnimated(t *testing.T) {
	// Row 0 (top): water(12) ground(0); row 1: empty, decoration(7).
	m, err := NewMap(terrain(t), 2, 2, []int32{12, 0, EmptyTile, 7})
	require.NoError(t, err)
	require.Len(t, m.Chunks(), 1)

	meshes := BuildChunkMeshes(m, 0)

	require.Equal(t, uint32(12), meshes.Static.IndexCount(), "two static quads")
	require.Len(t, meshes.Animated, 1)
	water := meshes.Animated[12]
	assert.Equal(t, uint32(6), water.IndexCount())

	// The water tile sits at grid (0, top row): local position (0, 16),
	// carrying its own id as the atlas layer.
	assert.Equal(t, []float32{0, 16, 0, 0, 1, 12}, water.Vertices[:vertexFloats])

	// Static quads keep grid order: ground at (16, 16), decoration at (16, 0).
	assert.Equal(t, []float32{16, 16, 0, 0, 1, 0}, meshes.Static.Vertices[:vertexFloats])
	second := meshes.Static.Vertices[4*vertexFloats : 5*vertexFloats]
	assert.Equal(t, []float32{16, 0, 0, 0, 1, 7}, second)
}

func TestSetTileUpdatesGrid(t *testing.T) {
	m, err := NewMap(terrain(t), 2, 2, uniformGrid(2, 2, 0))
	require.NoError(t, err)

	m.SetTile(1, 1, 7)
	assert.Equal(t, int32(7), m.TileAt(1, 1))

	m.SetTile(1, 1, 99)
	assert.Equal(t, int32(7), m.TileAt(1, 1), "invalid ids are ignored")

	m.SetTile(5, 5, 0)
	assert.Equal(t, EmptyTile, m.TileAt(5, 5))
}
