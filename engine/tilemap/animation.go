package tilemap

import (
	"github.com/rxght/LuveHulgerUlle/engine/tilemap/tileset"
)

// timeline is one animated tile type's frame list with precomputed
// cumulative durations.
type timeline struct {
	typeID     uint32
	frames     []tileset.AnimationFrame
	cumulative []uint32
	total      uint32
}

// AnimationArena owns one timeline per distinct animated tile type and one
// shared elapsed-time accumulator. Every instance of a type reads the same
// timeline, so identical tiles animate in lockstep and memory is bounded by
// the number of types, never the number of placed tiles.
type AnimationArena struct {
	timelines []timeline
	byType    map[uint32]int
	elapsedMs float64
}

// NewAnimationArena builds timelines for every animated tile type of a
// descriptor.
//
// Parameters:
//   - desc: the tileset descriptor
//
// Returns:
//   - *AnimationArena: the arena, empty if the set has no animated tiles
func NewAnimationArena(desc *tileset.Descriptor) *AnimationArena {
	a := &AnimationArena{byType: make(map[uint32]int)}
	for _, id := range desc.AnimatedTiles() {
		tile := desc.Tile(id)

		tl := timeline{
			typeID:     id,
			frames:     tile.Animation,
			cumulative: make([]uint32, len(tile.Animation)),
		}
		for i, frame := range tile.Animation {
			tl.total += frame.DurationMs
			tl.cumulative[i] = tl.total
		}
		a.byType[id] = len(a.timelines)
		a.timelines = append(a.timelines, tl)
	}
	return a
}

// Advance adds a frame's delta time to the shared accumulator.
//
// Parameters:
//   - deltaSeconds: seconds elapsed since the previous frame
func (a *AnimationArena) Advance(deltaSeconds float32) {
	a.elapsedMs += float64(deltaSeconds) * 1000
}

// Types lists the animated tile type ids in timeline order.
//
// Returns:
//   - []uint32: the animated type ids
func (a *AnimationArena) Types() []uint32 {
	out := make([]uint32, len(a.timelines))
	for i, tl := range a.timelines {
		out[i] = tl.typeID
	}
	return out
}

// CurrentFrame resolves the tile id a type currently shows. The active
// frame is a pure function of the accumulator: elapsed modulo the timeline's
// total duration, mapped through the cumulative duration list to the first
// frame whose cumulative duration exceeds it.
//
// Parameters:
//   - typeID: the animated tile type
//
// Returns:
//   - uint32: the tile id of the active frame; the type id itself when the
//     type has no timeline
func (a *AnimationArena) CurrentFrame(typeID uint32) uint32 {
	idx, ok := a.byType[typeID]
	if !ok {
		return typeID
	}
	tl := &a.timelines[idx]

	phase := uint32(uint64(a.elapsedMs) % uint64(tl.total))
	for i, cum := range tl.cumulative {
		if phase < cum {
			return tl.frames[i].TileID
		}
	}
	return tl.frames[len(tl.frames)-1].TileID
}

// Animated reports whether a tile type owns a timeline.
//
// Parameters:
//   - typeID: the tile type
//
// Returns:
//   - bool: true if the type animates
func (a *AnimationArena) Animated(typeID uint32) bool {
	_, ok := a.byType[typeID]
	return ok
}
