package pipeline

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/cogentcore/webgpu/wgpu"
)

// SlotMask declares which descriptor-set slots of the fixed binding
// convention a pipeline variant uses. Slot numbers are shared across every
// pipeline in the engine; see the binding package for their contents.
type SlotMask uint8

const (
	// SlotGlobal is set 0: the cartesian-to-device matrix, written once per frame.
	SlotGlobal SlotMask = 1 << iota
	// SlotMaterial is set 1: the per-material resource, either a texture array with sampler or a flat color vector.
	SlotMaterial
	// SlotCamera is set 2: the camera view matrix, written per active camera.
	SlotCamera
	// SlotFrameOffset is set 3: the atlas/animation UV offset, written per animated material.
	SlotFrameOffset
	// SlotEdgeMargin is set 4: the edge-margin correction scalars, written per atlas-sampling material.
	SlotEdgeMargin
)

// SlotCount is the number of descriptor-set slots in the binding convention.
const SlotCount = 5

// Has reports whether the mask includes the given slot bit.
//
// Parameters:
//   - slot: the slot bit to test
//
// Returns:
//   - bool: true if the slot is declared
func (m SlotMask) Has(slot SlotMask) bool {
	return m&slot != 0
}

// VertexFormat identifies the vertex-input layout of a pipeline variant.
type VertexFormat int

const (
	// VertexFormatPos is a bare 2D position, expanded by the shader (quads, UI).
	VertexFormatPos VertexFormat = iota

	// VertexFormatPosUV is a 2D position with a 2D texture coordinate (sprites).
	VertexFormatPosUV

	// VertexFormatPosUV3 is a 3D position with a 3D texture coordinate whose
	// third component selects a texture array layer (tile chunk meshes).
	VertexFormatPosUV3
)

// Config describes a render pipeline as pure data: the shader pair, the
// declared binding slots, the vertex-input format, and the fixed-function
// state. Configs are immutable once built; a drawable needing different
// state requests a different config and therefore a different cache key.
// Shared pipeline objects are never mutated in place.
type Config struct {
	// ShaderPair identifies the vertex+fragment shader pair by name.
	ShaderPair string
	// Slots declares which descriptor-set slots the shader pair binds.
	Slots SlotMask
	// VertexFormat is the vertex-input layout the vertex shader consumes.
	VertexFormat VertexFormat

	// The following fields configure fixed-function state and default to the
	// values produced by NewConfig.

	BlendEnabled      bool
	DepthTestEnabled  bool
	DepthWriteEnabled bool
	CullMode          wgpu.CullMode
	Topology          wgpu.PrimitiveTopology
	FrontFace         wgpu.FrontFace
	WriteMask         wgpu.ColorWriteMask
}

// Option is a functional option used to adjust a Config during construction.
type Option func(*Config)

// WithBlend toggles alpha blending.
//
// Parameters:
//   - enabled: whether blending is enabled
//
// Returns:
//   - Option: a function that sets the blend state
func WithBlend(enabled bool) Option {
	return func(c *Config) {
		c.BlendEnabled = enabled
	}
}

// WithDepth toggles depth testing and depth writes together.
//
// Parameters:
//   - test: whether depth testing is enabled
//   - write: whether depth writes are enabled
//
// Returns:
//   - Option: a function that sets the depth state
func WithDepth(test, write bool) Option {
	return func(c *Config) {
		c.DepthTestEnabled = test
		c.DepthWriteEnabled = write
	}
}

// WithCullMode sets the face culling mode.
//
// Parameters:
//   - mode: the cull mode to use
//
// Returns:
//   - Option: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) Option {
	return func(c *Config) {
		c.CullMode = mode
	}
}

// WithTopology sets the primitive topology.
//
// Parameters:
//   - topology: the primitive topology to use
//
// Returns:
//   - Option: a function that sets the topology
func WithTopology(topology wgpu.PrimitiveTopology) Option {
	return func(c *Config) {
		c.Topology = topology
	}
}

// NewConfig builds a pipeline config with the engine defaults: alpha
// blending enabled, depth test and write enabled, no culling, triangle
// list topology, counter-clockwise front faces, full color write mask.
//
// Parameters:
//   - shaderPair: the shader pair name
//   - slots: the declared binding slots
//   - format: the vertex-input format
//   - opts: a variadic list of Option functions to adjust the config
//
// Returns:
//   - Config: the pipeline configuration
func NewConfig(shaderPair string, slots SlotMask, format VertexFormat, opts ...Option) Config {
	c := Config{
		ShaderPair:        shaderPair,
		Slots:             slots,
		VertexFormat:      format,
		BlendEnabled:      true,
		DepthTestEnabled:  true,
		DepthWriteEnabled: true,
		CullMode:          wgpu.CullModeNone,
		Topology:          wgpu.PrimitiveTopologyTriangleList,
		FrontFace:         wgpu.FrontFaceCCW,
		WriteMask:         wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Key computes the content key for this config using FNV-1a over every
// field. Equal configs always produce equal keys; the cache verifies the
// reverse direction on every hit.
//
// Returns:
//   - uint64: the content key
func (c Config) Key() uint64 {
	h := fnv.New64a()
	var buf [4]byte

	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:], v)
		h.Write(buf[:])
	}
	writeBool := func(v bool) {
		if v {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}

	h.Write([]byte(c.ShaderPair))
	h.Write([]byte{0}) // terminator so "ab"+"c" differs from "a"+"bc"
	writeU32(uint32(c.Slots))
	writeU32(uint32(c.VertexFormat))
	writeBool(c.BlendEnabled)
	writeBool(c.DepthTestEnabled)
	writeBool(c.DepthWriteEnabled)
	writeU32(uint32(c.CullMode))
	writeU32(uint32(c.Topology))
	writeU32(uint32(c.FrontFace))
	writeU32(uint32(c.WriteMask))

	return h.Sum64()
}

// Pipeline is a cache-owned reference to a GPU render pipeline. Pipelines
// are immutable after construction and shared by every drawable requesting
// an equal Config.
type Pipeline interface {
	// Key retrieves the content key this pipeline is cached under.
	//
	// Returns:
	//   - uint64: the content key
	Key() uint64

	// Config retrieves the configuration this pipeline was created from.
	//
	// Returns:
	//   - Config: the pipeline configuration
	Config() Config

	// Handle retrieves the underlying GPU render pipeline object.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline
	Handle() *wgpu.RenderPipeline
}

// entry is the implementation of the Pipeline interface plus cache book-keeping.
type entry struct {
	key    uint64
	config Config
	handle *wgpu.RenderPipeline

	refs      int
	lastFrame uint64
}

var _ Pipeline = &entry{}

func (e *entry) Key() uint64 {
	return e.key
}

func (e *entry) Config() Config {
	return e.config
}

func (e *entry) Handle() *wgpu.RenderPipeline {
	return e.handle
}
