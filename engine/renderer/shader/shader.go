// Package shader holds the engine's built-in WGSL shader pairs. Each pair is
// a single embedded module exposing a vs_main and fs_main entry point, plus
// the binding slots and vertex-input format the module expects. The registry
// is the single source of truth the pipeline cache keys against: a shader
// pair name appearing in a pipeline config always resolves here.
package shader

import (
	_ "embed"
	"fmt"

	"github.com/rxght/LuveHulgerUlle/engine/renderer/pipeline"
)

// PayloadGroup is the bind group index reserved for the per-draw inline
// payload uniform. It sits above the five content-addressed slots; the
// backend requests a raised max-bind-group limit to cover it.
const PayloadGroup = 5

//go:embed assets/color_quad.wgsl
var colorQuadSource string

//go:embed assets/textured_quad.wgsl
var texturedQuadSource string

//go:embed assets/animated_quad.wgsl
var animatedQuadSource string

//go:embed assets/tile_chunk.wgsl
var tileChunkSource string

//go:embed assets/tile_anim.wgsl
var tileAnimSource string

//go:embed assets/ui_textured.wgsl
var uiTexturedSource string

// Pair describes one vertex+fragment shader module and the interface it
// exposes to the binder and the pipeline cache.
type Pair struct {
	// Name is the registry key, also used as the pipeline config's ShaderPair.
	Name string
	// Source is the complete WGSL module with vs_main and fs_main entry points.
	Source string
	// Slots are the binding slots the module declares.
	Slots pipeline.SlotMask
	// VertexFormat is the vertex-input layout vs_main consumes.
	VertexFormat pipeline.VertexFormat
	// ColorMaterial is true when the material slot binds a flat color
	// uniform instead of a texture array with sampler.
	ColorMaterial bool
}

var pairs = map[string]Pair{
	"color_quad": {
		Name:          "color_quad",
		Source:        colorQuadSource,
		Slots:         pipeline.SlotGlobal | pipeline.SlotMaterial | pipeline.SlotCamera,
		VertexFormat:  pipeline.VertexFormatPos,
		ColorMaterial: true,
	},
	"textured_quad": {
		Name:         "textured_quad",
		Source:       texturedQuadSource,
		Slots:        pipeline.SlotGlobal | pipeline.SlotMaterial | pipeline.SlotCamera,
		VertexFormat: pipeline.VertexFormatPosUV,
	},
	"animated_quad": {
		Name:         "animated_quad",
		Source:       animatedQuadSource,
		Slots:        pipeline.SlotGlobal | pipeline.SlotMaterial | pipeline.SlotCamera | pipeline.SlotFrameOffset,
		VertexFormat: pipeline.VertexFormatPosUV,
	},
	"tile_chunk": {
		Name:         "tile_chunk",
		Source:       tileChunkSource,
		Slots:        pipeline.SlotGlobal | pipeline.SlotMaterial | pipeline.SlotCamera | pipeline.SlotEdgeMargin,
		VertexFormat: pipeline.VertexFormatPosUV3,
	},
	"tile_anim": {
		Name:         "tile_anim",
		Source:       tileAnimSource,
		Slots:        pipeline.SlotGlobal | pipeline.SlotMaterial | pipeline.SlotCamera | pipeline.SlotEdgeMargin,
		VertexFormat: pipeline.VertexFormatPosUV3,
	},
	"ui_textured": {
		Name:         "ui_textured",
		Source:       uiTexturedSource,
		Slots:        pipeline.SlotGlobal | pipeline.SlotMaterial,
		VertexFormat: pipeline.VertexFormatPosUV,
	},
}

// Lookup retrieves a built-in shader pair by name.
//
// Parameters:
//   - name: the registry key
//
// Returns:
//   - Pair: the shader pair
//   - error: an error if no pair is registered under the name
func Lookup(name string) (Pair, error) {
	p, ok := pairs[name]
	if !ok {
		return Pair{}, fmt.Errorf("no shader pair registered under %q", name)
	}
	return p, nil
}

// Config builds the canonical pipeline config for a built-in shader pair,
// filling the slots and vertex format from the registry.
//
// Parameters:
//   - name: the registry key
//   - opts: a variadic list of pipeline options to adjust fixed-function state
//
// Returns:
//   - pipeline.Config: the pipeline configuration
//   - error: an error if no pair is registered under the name
func Config(name string, opts ...pipeline.Option) (pipeline.Config, error) {
	p, err := Lookup(name)
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.NewConfig(p.Name, p.Slots, p.VertexFormat, opts...), nil
}

// Names lists the registered shader pair names. Order is unspecified.
//
// Returns:
//   - []string: the registry keys
func Names() []string {
	out := make([]string, 0, len(pairs))
	for name := range pairs {
		out = append(out, name)
	}
	return out
}
