package tilemap

import (
	"github.com/rxght/LuveHulgerUlle/common"
)

// vertexFloats is the PosUV3 vertex size in floats: xyz position, xyz
// texture coordinate with the atlas layer in z.
const vertexFloats = 6

// Mesh is CPU-side chunk geometry pending upload. Positions are local to
// the chunk's bottom-left corner; the chunk offset travels in the per-draw
// payload so the mesh never rebuilds when the map moves.
type Mesh struct {
	Vertices []float32
	Indices  []uint16
}

// Empty reports whether the mesh holds no geometry.
func (m Mesh) Empty() bool { return len(m.Indices) == 0 }

// VertexBytes returns the vertex buffer contents.
func (m Mesh) VertexBytes() []byte { return common.SliceToBytes(m.Vertices) }

// IndexBytes returns the index buffer contents.
func (m Mesh) IndexBytes() []byte { return common.SliceToBytes(m.Indices) }

// IndexCount returns the number of indices to draw.
func (m Mesh) IndexCount() uint32 { return uint32(len(m.Indices)) }

// ChunkMeshes is one chunk's geometry split by draw state: one mesh for all
// static tiles and one mesh per animated tile type. The split keeps each
// draw's atlas layer selection uniform - static tiles carry their layer per
// vertex, animated tiles read it from the payload shared by every instance
// of the type.
type ChunkMeshes struct {
	Static   Mesh
	Animated map[uint32]Mesh
}

// BuildChunkMeshes assembles the geometry of one chunk of a map.
//
// Parameters:
//   - m: the map
//   - chunkIndex: the index into m.Chunks()
//
// Returns:
//   - ChunkMeshes: the chunk's static and per-animated-type meshes
func BuildChunkMeshes(m *Map, chunkIndex int) ChunkMeshes {
	chunk := m.chunks[chunkIndex]
	tileW := float32(m.desc.TileWidth()) * m.scale
	tileH := float32(m.desc.TileHeight()) * m.scale

	out := ChunkMeshes{}
	for row := chunk.Y; row < chunk.Y+chunk.Height; row++ {
		for x := chunk.X; x < chunk.X+chunk.Width; x++ {
			id := m.tiles[row*m.width+x]
			if id == EmptyTile {
				continue
			}

			px := float32(x-chunk.X) * tileW
			py := float32(chunk.Height-1-(row-chunk.Y)) * tileH

			if m.arena.Animated(uint32(id)) {
				if out.Animated == nil {
					out.Animated = make(map[uint32]Mesh)
				}
				mesh := out.Animated[uint32(id)]
				appendQuad(&mesh, px, py, tileW, tileH, float32(id))
				out.Animated[uint32(id)] = mesh
				continue
			}
			appendQuad(&out.Static, px, py, tileW, tileH, float32(id))
		}
	}
	return out
}

// appendQuad appends one tile quad. Texture v runs downward so the tile's
// top row of pixels lands at the quad's top edge.
func appendQuad(m *Mesh, x, y, w, h, layer float32) {
	base := uint16(len(m.Vertices) / vertexFloats)

	m.Vertices = append(m.Vertices,
		x, y, 0, 0, 1, layer,
		x+w, y, 0, 1, 1, layer,
		x, y+h, 0, 0, 0, layer,
		x+w, y+h, 0, 1, 0, layer,
	)
	m.Indices = append(m.Indices,
		base, base+1, base+2,
		base+2, base+1, base+3,
	)
}
