package drawables

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/engine/renderer"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/sampler"
)

// Sprite is a textured quad sampling layer zero of a texture array.
type Sprite struct {
	quad
}

// SpriteOption is a functional option for sprite-family constructors.
type SpriteOption func(*spriteConfig)

type spriteConfig struct {
	quadOpts []QuadOption
	sampler  sampler.Config
}

// WithQuad forwards quad placement options to a sprite constructor.
//
// Parameters:
//   - opts: the quad options to apply
//
// Returns:
//   - SpriteOption: a function that applies the quad options
func WithQuad(opts ...QuadOption) SpriteOption {
	return func(c *spriteConfig) {
		c.quadOpts = append(c.quadOpts, opts...)
	}
}

// WithSampler overrides the sprite's sampler configuration. The default is
// nearest filtering for crisp pixel art.
//
// Parameters:
//   - config: the sampler configuration
//
// Returns:
//   - SpriteOption: a function that applies the sampler option
func WithSampler(config sampler.Config) SpriteOption {
	return func(c *spriteConfig) {
		c.sampler = config
	}
}

// NewSprite registers a textured quad drawable.
//
// Parameters:
//   - r: the renderer
//   - global: the cartesian-to-device matrix buffer
//   - camera: the camera matrix buffer
//   - texture: the texture array view to sample
//   - opts: a variadic list of SpriteOption functions
//
// Returns:
//   - *Sprite: the registered drawable
//   - error: an error if resource creation fails
func NewSprite(r renderer.Renderer, global, camera *wgpu.Buffer, texture *wgpu.TextureView, opts ...SpriteOption) (*Sprite, error) {
	cfg := spriteConfig{sampler: sampler.PixelArt()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Sprite{quad: quad{r: r, width: 1, height: 1}}
	for _, opt := range cfg.quadOpts {
		opt(&s.quad)
	}

	smp, err := r.AcquireSampler(cfg.sampler)
	if err != nil {
		return nil, err
	}

	vertexData, indexData, indexCount := unitQuadPosUV()
	geo, err := r.CreateGeometry(vertexData, indexData, indexCount)
	if err != nil {
		return nil, err
	}
	s.geo = geo

	s.id, err = r.Register(renderer.DrawConfig{
		Shader: "textured_quad",
		Resources: binding.Resources{
			Global:          global,
			MaterialTexture: texture,
			MaterialSampler: smp.Handle(),
			Camera:          camera,
		},
		Geometry: geo,
		Layer:    s.layer,
		Payload:  s.payload(),
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
