package renderer

import "github.com/rxght/LuveHulgerUlle/common"

// PayloadSize is the byte size of the per-draw inline payload uniform. Every
// shader pair declares a 32-byte payload block (two vec4s); unused lanes
// stay zero.
const PayloadSize = 32

// Payload is the per-draw inline data delivered alongside a draw command.
// It is plain data, cheap to copy, and never interned in any cache: two
// draws with identical bindings but different payloads stay one pipeline,
// one bound set, two draw commands.
type Payload [8]float32

// QuadPayload builds the payload for quad variants: a world translation and
// a per-axis scale.
//
// Parameters:
//   - x, y, z: the world-space translation
//   - sx, sy: the quad scale factors
//
// Returns:
//   - Payload: the packed payload
func QuadPayload(x, y, z, sx, sy float32) Payload {
	return Payload{x, y, z, 0, sx, sy, 1, 0}
}

// ChunkPayload builds the payload for static tile-chunk draws: the chunk's
// world-space origin.
//
// Parameters:
//   - x, y, z: the chunk origin
//
// Returns:
//   - Payload: the packed payload
func ChunkPayload(x, y, z float32) Payload {
	return Payload{x, y, z, 0, 0, 0, 0, 0}
}

// TileAnimPayload builds the payload for animated tile draws: the chunk
// origin plus the atlas layer of the animation frame currently showing.
//
// Parameters:
//   - x, y, z: the chunk origin
//   - frameLayer: the atlas layer index of the current animation frame
//
// Returns:
//   - Payload: the packed payload
func TileAnimPayload(x, y, z float32, frameLayer uint32) Payload {
	return Payload{x, y, z, 0, float32(frameLayer), 0, 0, 0}
}

// UIPayload builds the payload for UI draws: a screen-space translation and
// a scale in cartesian screen units.
//
// Parameters:
//   - x, y: the screen-space translation
//   - layer: the UI depth layer
//   - sx, sy: the element scale factors
//
// Returns:
//   - Payload: the packed payload
func UIPayload(x, y, layer, sx, sy float32) Payload {
	return Payload{x, y, layer, 0, sx, sy, 1, 0}
}

// Bytes serializes the payload for GPU upload.
//
// Returns:
//   - []byte: the 32-byte little-endian representation
func (p *Payload) Bytes() []byte {
	return common.SliceToBytes(p[:])
}
