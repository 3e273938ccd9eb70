package sampler

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
)

// Config describes a sampler as pure data: filter modes, wrap modes, and mip
// policy. Two configs with equal fields always resolve to the same GPU
// sampler through the Cache; constructing samplers outside the cache is not
// supported.
type Config struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// Key computes the content key for this config using FNV-1a over every field.
// Equal configs always produce equal keys; the cache verifies the reverse
// direction on every hit.
//
// Returns:
//   - uint64: the content key
func (c Config) Key() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:4], v)
		h.Write(buf[:4])
	}

	writeU32(uint32(c.AddressModeU))
	writeU32(uint32(c.AddressModeV))
	writeU32(uint32(c.AddressModeW))
	writeU32(uint32(c.MagFilter))
	writeU32(uint32(c.MinFilter))
	writeU32(uint32(c.MipmapFilter))
	writeU32(math.Float32bits(c.LodMinClamp))
	writeU32(math.Float32bits(c.LodMaxClamp))
	writeU32(uint32(c.MaxAnisotropy))

	return h.Sum64()
}

// PixelArt returns the sampler config used for tile atlases: nearest
// filtering with clamped edges, no mipmapping.
//
// Returns:
//   - Config: the pixel-art sampler configuration
func PixelArt() Config {
	return Config{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   0,
		MaxAnisotropy: 1,
	}
}

// LinearRepeat returns a bilinear sampler with repeating wrap, matching the
// default used for non-atlas textures such as UI images.
//
// Returns:
//   - Config: the linear sampler configuration
func LinearRepeat() Config {
	return Config{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

// Sampler is a cache-owned reference to a GPU sampler object. Handles are
// shared between every drawable requesting an equal Config and stay valid
// until the owning cache evicts them.
type Sampler interface {
	// Key retrieves the content key this sampler is cached under.
	//
	// Returns:
	//   - uint64: the content key
	Key() uint64

	// Config retrieves the configuration this sampler was created from.
	//
	// Returns:
	//   - Config: the sampler configuration
	Config() Config

	// Handle retrieves the underlying GPU sampler object.
	//
	// Returns:
	//   - *wgpu.Sampler: the GPU sampler
	Handle() *wgpu.Sampler
}

// entry is the implementation of the Sampler interface plus cache book-keeping.
type entry struct {
	key    uint64
	config Config
	handle *wgpu.Sampler

	refs      int
	lastFrame uint64
}

var _ Sampler = &entry{}

func (e *entry) Key() uint64 {
	return e.key
}

func (e *entry) Config() Config {
	return e.config
}

func (e *entry) Handle() *wgpu.Sampler {
	return e.handle
}
