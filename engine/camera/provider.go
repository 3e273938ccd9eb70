package camera

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/common"
)

// UniformWriter is the slice of the renderer the provider needs: creating
// and refreshing uniform buffers.
type UniformWriter interface {
	// CreateUniformBuffer creates a uniform buffer initialized with data.
	//
	// Parameters:
	//   - data: the initial contents
	//
	// Returns:
	//   - *wgpu.Buffer: the uniform buffer
	//   - error: an error if creation fails
	CreateUniformBuffer(data []byte) (*wgpu.Buffer, error)

	// WriteUniform overwrites a uniform buffer from offset zero.
	//
	// Parameters:
	//   - buf: the buffer to write
	//   - data: the bytes to upload
	WriteUniform(buf *wgpu.Buffer, data []byte)
}

// Provider owns the global and camera uniform buffers and produces the
// frame context. BeginFrame is called once per frame before dispatch; it
// refreshes both uniforms from the camera's current state so every draw in
// the frame sees one consistent transform.
type Provider interface {
	// Camera returns the camera driving this provider.
	//
	// Returns:
	//   - Camera: the attached camera
	Camera() Camera

	// GlobalBuffer returns the cartesian-to-device matrix uniform, bound at
	// the global slot by every pipeline variant.
	//
	// Returns:
	//   - *wgpu.Buffer: the global transform uniform
	GlobalBuffer() *wgpu.Buffer

	// CameraBuffer returns the view matrix uniform, bound at the camera slot.
	//
	// Returns:
	//   - *wgpu.Buffer: the camera uniform
	CameraBuffer() *wgpu.Buffer

	// BeginFrame recomputes both transforms, uploads them and assembles the
	// frame context.
	//
	// Parameters:
	//   - deltaTime: seconds elapsed since the previous frame
	//
	// Returns:
	//   - common.FrameContext: the context for the coming frame
	BeginFrame(deltaTime float32) common.FrameContext
}

// provider is the implementation of the Provider interface.
type provider struct {
	cam    Camera
	writer UniformWriter

	globalBuf *wgpu.Buffer
	cameraBuf *wgpu.Buffer
}

var _ Provider = &provider{}

// NewProvider creates the transform provider and its uniform buffers.
//
// Parameters:
//   - writer: the renderer's uniform interface
//   - cam: the camera to read each frame
//
// Returns:
//   - Provider: the transform provider
//   - error: an error if buffer creation fails
func NewProvider(writer UniformWriter, cam Camera) (Provider, error) {
	var identity [16]float32
	common.Identity(identity[:])

	globalBuf, err := writer.CreateUniformBuffer(common.SliceToBytes(identity[:]))
	if err != nil {
		return nil, fmt.Errorf("global transform uniform: %w", err)
	}
	cameraBuf, err := writer.CreateUniformBuffer(common.SliceToBytes(identity[:]))
	if err != nil {
		return nil, fmt.Errorf("camera uniform: %w", err)
	}

	return &provider{
		cam:       cam,
		writer:    writer,
		globalBuf: globalBuf,
		cameraBuf: cameraBuf,
	}, nil
}

func (p *provider) Camera() Camera {
	return p.cam
}

func (p *provider) GlobalBuffer() *wgpu.Buffer {
	return p.globalBuf
}

func (p *provider) CameraBuffer() *wgpu.Buffer {
	return p.cameraBuf
}

func (p *provider) BeginFrame(deltaTime float32) common.FrameContext {
	width, height := p.cam.SurfaceSize()

	var ctx common.FrameContext
	common.CartesianToDevice(ctx.CartesianToDevice[:], width, height)
	ctx.View = p.cam.ViewMatrix()
	ctx.DeltaTime = deltaTime
	ctx.VisibleRect = p.cam.VisibleRect()

	p.writer.WriteUniform(p.globalBuf, common.SliceToBytes(ctx.CartesianToDevice[:]))
	p.writer.WriteUniform(p.cameraBuf, common.SliceToBytes(ctx.View[:]))

	return ctx
}
