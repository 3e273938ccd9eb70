// Package tileset parses and validates tileset descriptors. A descriptor
// declares the atlas grid plus optional per-tile data: placement
// probability, a gameplay classification, collision rectangles and an
// animation frame list, and corner adjacency tables used for procedural
// edge-variant selection. Descriptors are immutable after load and are
// validated as a whole: any dangling tile reference rejects the entire
// asset.
package tileset

import (
	"encoding/json"
	"fmt"

	"github.com/rxght/LuveHulgerUlle/common"
)

// Class is the closed gameplay classification of a tile, resolved from the
// asset's free-form tag at load time. Its gameplay effects (movement cost,
// footstep audio) live in external tables keyed by this enum.
type Class int

const (
	// ClassUnspecified is the explicit "no classification" variant.
	ClassUnspecified Class = iota
	ClassGround
	ClassWater
	ClassWall
	ClassDecoration
	ClassHazard
)

var classNames = map[string]Class{
	"":           ClassUnspecified,
	"ground":     ClassGround,
	"water":      ClassWater,
	"wall":       ClassWall,
	"decoration": ClassDecoration,
	"hazard":     ClassHazard,
}

// String returns the asset-side tag for the class.
func (c Class) String() string {
	for name, class := range classNames {
		if class == c && name != "" {
			return name
		}
	}
	return "unspecified"
}

// MalformedAssetError reports a tileset asset that failed whole-asset
// validation. Nothing of the asset is retained when this is returned.
type MalformedAssetError struct {
	// Asset is the descriptor name or path.
	Asset string
	// Reason describes the first violation found.
	Reason string
}

func (e *MalformedAssetError) Error() string {
	return fmt.Sprintf("malformed tileset %q: %s", e.Asset, e.Reason)
}

// AnimationFrame is one step of a tile type's animation timeline.
type AnimationFrame struct {
	// TileID is the atlas tile shown during this frame.
	TileID uint32 `json:"tileId"`
	// DurationMs is how long the frame shows, in milliseconds.
	DurationMs uint32 `json:"duration"`
}

// collisionRect mirrors the asset's collision rectangle encoding, in pixels
// relative to the tile's top-left corner.
type collisionRect struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// tileEntry mirrors one entry of the asset's tiles array. Optional fields
// stay pointers/nil so re-serialization preserves their absence.
type tileEntry struct {
	ID          uint32           `json:"id"`
	Probability *float32         `json:"probability,omitempty"`
	Class       *string          `json:"class,omitempty"`
	Collision   []collisionRect  `json:"collision,omitempty"`
	Animation   []AnimationFrame `json:"animation,omitempty"`
}

// cornerEntry mirrors one corner-pattern mapping of a wang set. Colors are
// ordered top-left, top-right, bottom-left, bottom-right.
type cornerEntry struct {
	TileID uint32    `json:"tileId"`
	Colors [4]uint8  `json:"colors"`
}

// wangSetEntry mirrors one adjacency table of the asset.
type wangSetEntry struct {
	Name    string        `json:"name"`
	Corners []cornerEntry `json:"corners"`
}

// document mirrors the complete asset file and is kept verbatim so the
// descriptor can re-serialize losslessly.
type document struct {
	Name       string         `json:"name"`
	Image      string         `json:"image"`
	TileWidth  uint32         `json:"tileWidth"`
	TileHeight uint32         `json:"tileHeight"`
	TileCount  uint32         `json:"tileCount"`
	Columns    uint32         `json:"columns"`
	Tiles      []tileEntry    `json:"tiles,omitempty"`
	WangSets   []wangSetEntry `json:"wangSets,omitempty"`
}

// Tile is the resolved runtime form of one tile's optional data.
type Tile struct {
	// ID is the tile's index into the atlas grid.
	ID uint32
	// Probability is the random-placement weight, 1 when the asset omits it.
	Probability float32
	// Class is the resolved gameplay classification.
	Class Class
	// Collision holds the tile's collision rectangles in pixels relative to
	// the tile's top-left corner.
	Collision []common.Rect
	// Animation is the tile type's timeline, nil for static tiles.
	Animation []AnimationFrame
}

// CornerKey packs four corner colors (top-left, top-right, bottom-left,
// bottom-right) into the adjacency table's lookup key.
//
// Parameters:
//   - tl, tr, bl, br: the corner colors
//
// Returns:
//   - uint16: the packed key
func CornerKey(tl, tr, bl, br uint8) uint16 {
	return uint16(tl&0xf)<<12 | uint16(tr&0xf)<<8 | uint16(bl&0xf)<<4 | uint16(br&0xf)
}

// Descriptor is a parsed, validated tileset. It is immutable; TileMap
// instances reference it without copying.
type Descriptor struct {
	doc document

	tiles map[uint32]*Tile
	wang  map[string]map[uint16]uint32
}

// Parse decodes and validates a tileset asset. Validation covers the whole
// asset before anything is returned: a single out-of-range tile reference
// in the tiles array, an animation timeline or an adjacency table rejects
// the load with MalformedAssetError.
//
// Parameters:
//   - name: the asset name or path, used in error messages
//   - data: the raw JSON bytes
//
// Returns:
//   - *Descriptor: the validated descriptor
//   - error: a MalformedAssetError describing the first violation
func Parse(name string, data []byte) (*Descriptor, error) {
	fail := func(format string, args ...any) (*Descriptor, error) {
		return nil, &MalformedAssetError{Asset: name, Reason: fmt.Sprintf(format, args...)}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fail("invalid JSON: %v", err)
	}

	if doc.TileWidth == 0 || doc.TileHeight == 0 {
		return fail("tile dimensions must be positive")
	}
	if doc.TileCount == 0 {
		return fail("tile count must be positive")
	}
	if doc.Columns == 0 || doc.Columns > doc.TileCount {
		return fail("columns must be between 1 and the tile count")
	}

	d := &Descriptor{
		doc:   doc,
		tiles: make(map[uint32]*Tile, len(doc.Tiles)),
		wang:  make(map[string]map[uint16]uint32, len(doc.WangSets)),
	}

	for _, entry := range doc.Tiles {
		if entry.ID >= doc.TileCount {
			return fail("tile entry %d exceeds tile count %d", entry.ID, doc.TileCount)
		}
		if _, dup := d.tiles[entry.ID]; dup {
			return fail("duplicate tile entry %d", entry.ID)
		}

		tile := &Tile{ID: entry.ID, Probability: 1}
		if entry.Probability != nil {
			p := *entry.Probability
			if p < 0 || p > 1 {
				return fail("tile %d: probability %v outside [0, 1]", entry.ID, p)
			}
			tile.Probability = p
		}
		if entry.Class != nil {
			class, ok := classNames[*entry.Class]
			if !ok {
				return fail("tile %d: unknown class %q", entry.ID, *entry.Class)
			}
			tile.Class = class
		}
		for _, c := range entry.Collision {
			if c.Width <= 0 || c.Height <= 0 {
				return fail("tile %d: collision rect with non-positive size", entry.ID)
			}
			tile.Collision = append(tile.Collision, common.NewRect(c.X, c.Y, c.Width, c.Height))
		}
		for i, frame := range entry.Animation {
			if frame.TileID >= doc.TileCount {
				return fail("tile %d: animation frame %d references tile id %d on a %d-tile set",
					entry.ID, i, frame.TileID, doc.TileCount)
			}
			if frame.DurationMs == 0 {
				return fail("tile %d: animation frame %d has zero duration", entry.ID, i)
			}
		}
		if len(entry.Animation) > 0 {
			tile.Animation = append([]AnimationFrame(nil), entry.Animation...)
		}
		d.tiles[entry.ID] = tile
	}

	for _, set := range doc.WangSets {
		if set.Name == "" {
			return fail("adjacency table without a name")
		}
		if _, dup := d.wang[set.Name]; dup {
			return fail("duplicate adjacency table %q", set.Name)
		}
		table := make(map[uint16]uint32, len(set.Corners))
		for _, corner := range set.Corners {
			if corner.TileID >= doc.TileCount {
				return fail("adjacency table %q references tile id %d on a %d-tile set",
					set.Name, corner.TileID, doc.TileCount)
			}
			// The packed key holds 4 bits per corner; a wider color would
			// alias an unrelated pattern instead of failing its lookups.
			for _, color := range corner.Colors {
				if color > 15 {
					return fail("adjacency table %q: corner color %d exceeds 15", set.Name, color)
				}
			}
			key := CornerKey(corner.Colors[0], corner.Colors[1], corner.Colors[2], corner.Colors[3])
			if _, dup := table[key]; dup {
				return fail("adjacency table %q: duplicate corner pattern %v", set.Name, corner.Colors)
			}
			table[key] = corner.TileID
		}
		d.wang[set.Name] = table
	}

	return d, nil
}

// Name returns the descriptor's asset name.
func (d *Descriptor) Name() string { return d.doc.Name }

// Image returns the atlas image path.
func (d *Descriptor) Image() string { return d.doc.Image }

// TileWidth returns the tile width in pixels.
func (d *Descriptor) TileWidth() uint32 { return d.doc.TileWidth }

// TileHeight returns the tile height in pixels.
func (d *Descriptor) TileHeight() uint32 { return d.doc.TileHeight }

// TileCount returns the number of tiles in the atlas grid.
func (d *Descriptor) TileCount() uint32 { return d.doc.TileCount }

// Columns returns the atlas grid width in tiles.
func (d *Descriptor) Columns() uint32 { return d.doc.Columns }

// Tile retrieves the resolved optional data for a tile id. Tiles without an
// entry in the asset have no optional data.
//
// Parameters:
//   - id: the tile id
//
// Returns:
//   - *Tile: the tile data, or nil when the asset declares none
func (d *Descriptor) Tile(id uint32) *Tile {
	return d.tiles[id]
}

// CornerTile resolves a corner color pattern through an adjacency table.
// The lookup is exact; a missing pattern is reported, never approximated.
//
// Parameters:
//   - set: the adjacency table name
//   - tl, tr, bl, br: the corner colors
//
// Returns:
//   - uint32: the tile id rendering the pattern
//   - bool: false if the table or pattern does not exist
func (d *Descriptor) CornerTile(set string, tl, tr, bl, br uint8) (uint32, bool) {
	if tl > 15 || tr > 15 || bl > 15 || br > 15 {
		// Colors beyond the key width can never be declared; masking them
		// would alias a declared pattern.
		return 0, false
	}
	table, ok := d.wang[set]
	if !ok {
		return 0, false
	}
	id, ok := table[CornerKey(tl, tr, bl, br)]
	return id, ok
}

// AnimatedTiles lists the tile ids carrying an animation timeline, in
// unspecified order.
//
// Returns:
//   - []uint32: the animated tile ids
func (d *Descriptor) AnimatedTiles() []uint32 {
	var out []uint32
	for id, tile := range d.tiles {
		if len(tile.Animation) > 0 {
			out = append(out, id)
		}
	}
	return out
}

// Marshal re-serializes the descriptor. Every field of the source asset is
// preserved exactly, including omitted optional fields.
//
// Returns:
//   - []byte: the JSON encoding
//   - error: an error if encoding fails
func (d *Descriptor) Marshal() ([]byte, error) {
	return json.Marshal(d.doc)
}
