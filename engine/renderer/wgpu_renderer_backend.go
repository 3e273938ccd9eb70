package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/pipeline"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/sampler"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/shader"
)

// payloadStride is the spacing between payload allocations in the per-frame
// arena. Dynamic uniform offsets must be 256-byte aligned, so each 32-byte
// payload occupies one aligned cell.
const payloadStride = 256

// initialPayloadCapacity is how many draws fit in a fresh payload arena.
const initialPayloadCapacity = 4096

// payloadArena is one frame's worth of inline payload storage: a uniform
// buffer addressed by dynamic offset, one cell per draw.
type payloadArena struct {
	buf      *wgpu.Buffer
	group    *wgpu.BindGroup
	capacity uint32
	cursor   uint32

	// Buffer/bind-group pairs replaced by a mid-frame grow. They may still
	// be referenced by submitted commands, so they are released only when
	// this arena's slot comes around again.
	retired []retiredPayload
}

// retiredPayload is an exhausted arena's buffer and its bind group, parked
// until the arena slot cycles.
type retiredPayload struct {
	buf   *wgpu.Buffer
	group *wgpu.BindGroup
}

// wgpuRendererBackend is the WGPU implementation of the RendererBackend interface.
type wgpuRendererBackend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	width, height int

	// Canonical bind group layouts for the fixed slot convention.
	uniformLayout *wgpu.BindGroupLayout
	textureLayout *wgpu.BindGroupLayout
	payloadLayout *wgpu.BindGroupLayout
	emptyLayout   *wgpu.BindGroupLayout

	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	arenas      [DefaultInFlightFrames]*payloadArena
	activeArena int

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackend{}

// newWGPURendererBackend initializes the WGPU instance, surface, adapter,
// device and the canonical bind group layouts, then configures the surface
// for the given size.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, mode PresentMode) (*wgpuRendererBackend, error) {
	runtime.LockOSThread()

	b := &wgpuRendererBackend{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	if mode == PresentModeUncapped {
		b.presentMode = wgpu.PresentModeImmediate
	}

	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = adapter

	// Raise MaxBindGroups to cover the five slot groups plus the payload
	// group at index 5.
	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 8

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	if err := b.createLayouts(); err != nil {
		return nil, err
	}
	for i := range b.arenas {
		arena, err := b.createArena(initialPayloadCapacity)
		if err != nil {
			return nil, err
		}
		b.arenas[i] = arena
	}

	b.configureSurface(width, height)
	return b, nil
}

func (b *wgpuRendererBackend) createLayouts() error {
	var err error

	b.uniformLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Uniform Slot Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("uniform layout: %w: %w", ErrResourceCreation, err)
	}

	b.textureLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Texture Slot Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("texture layout: %w: %w", ErrResourceCreation, err)
	}

	b.payloadLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Payload Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   PayloadSize,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("payload layout: %w: %w", ErrResourceCreation, err)
	}

	b.emptyLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Empty Slot Layout",
	})
	if err != nil {
		return fmt.Errorf("empty layout: %w: %w", ErrResourceCreation, err)
	}
	return nil
}

func (b *wgpuRendererBackend) createArena(capacity uint32) (*payloadArena, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Payload Arena",
		Size:  uint64(capacity) * payloadStride,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("payload arena: %w: %w", ErrResourceCreation, err)
	}

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Payload Arena Bind Group",
		Layout: b.payloadLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Size:    PayloadSize,
		}},
	})
	if err != nil {
		buf.Release()
		return nil, fmt.Errorf("payload arena bind group: %w: %w", ErrResourceCreation, err)
	}

	return &payloadArena{buf: buf, group: group, capacity: capacity}, nil
}

// configureSurface (re)configures the swapchain and depth attachment for a
// surface size and rebuilds the cached render pass descriptor.
func (b *wgpuRendererBackend) configureSurface(width, height int) {
	b.width, b.height = width, height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    nil, // set per-frame to the swapchain view
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0.1, G: 0.1, B: 0.1, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

// slotLayouts assembles the pipeline layout's bind group layout list for a
// config: the canonical layout for each declared slot, empty layouts for
// gaps, and the payload layout at the top group index.
func (b *wgpuRendererBackend) slotLayouts(config pipeline.Config, colorMaterial bool) []*wgpu.BindGroupLayout {
	layouts := make([]*wgpu.BindGroupLayout, shader.PayloadGroup+1)
	for i := range layouts {
		layouts[i] = b.emptyLayout
	}
	if config.Slots.Has(pipeline.SlotGlobal) {
		layouts[binding.SlotGlobal] = b.uniformLayout
	}
	if config.Slots.Has(pipeline.SlotMaterial) {
		if colorMaterial {
			layouts[binding.SlotMaterial] = b.uniformLayout
		} else {
			layouts[binding.SlotMaterial] = b.textureLayout
		}
	}
	if config.Slots.Has(pipeline.SlotCamera) {
		layouts[binding.SlotCamera] = b.uniformLayout
	}
	if config.Slots.Has(pipeline.SlotFrameOffset) {
		layouts[binding.SlotFrameOffset] = b.uniformLayout
	}
	if config.Slots.Has(pipeline.SlotEdgeMargin) {
		layouts[binding.SlotEdgeMargin] = b.uniformLayout
	}
	layouts[shader.PayloadGroup] = b.payloadLayout
	return layouts
}

// vertexLayouts maps a vertex format to its WGPU buffer layout.
func vertexLayouts(format pipeline.VertexFormat) []wgpu.VertexBufferLayout {
	switch format {
	case pipeline.VertexFormatPos:
		return []wgpu.VertexBufferLayout{{
			ArrayStride: 8,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			},
		}}
	case pipeline.VertexFormatPosUV:
		return []wgpu.VertexBufferLayout{{
			ArrayStride: 16,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			},
		}}
	case pipeline.VertexFormatPosUV3:
		return []wgpu.VertexBufferLayout{{
			ArrayStride: 24,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			},
		}}
	default:
		return nil
	}
}

func (b *wgpuRendererBackend) CreatePipeline(config pipeline.Config) (*wgpu.RenderPipeline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pair, err := shader.Lookup(config.ShaderPair)
	if err != nil {
		return nil, err
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: pair.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: pair.Source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("shader module %q: %w: %w", pair.Name, ErrResourceCreation, err)
	}
	defer module.Release()

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            pair.Name,
		BindGroupLayouts: b.slotLayouts(config, pair.ColorMaterial),
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline layout %q: %w: %w", pair.Name, ErrResourceCreation, err)
	}
	defer pipelineLayout.Release()

	colorTarget := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: config.WriteMask,
	}
	if config.BlendEnabled {
		colorTarget.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}

	depthCompare := wgpu.CompareFunctionLessEqual
	if !config.DepthTestEnabled {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  pair.Name + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    vertexLayouts(config.VertexFormat),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{colorTarget},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  config.Topology,
			FrontFace: config.FrontFace,
			CullMode:  config.CullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: config.DepthWriteEnabled,
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render pipeline %q: %w: %w", pair.Name, ErrResourceCreation, err)
	}
	return created, nil
}

func (b *wgpuRendererBackend) DestroyPipeline(p *wgpu.RenderPipeline) {
	if p != nil {
		p.Release()
	}
}

func (b *wgpuRendererBackend) CreateSampler(config sampler.Config) (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Cached Sampler",
		AddressModeU:  config.AddressModeU,
		AddressModeV:  config.AddressModeV,
		AddressModeW:  config.AddressModeW,
		MagFilter:     config.MagFilter,
		MinFilter:     config.MinFilter,
		MipmapFilter:  config.MipmapFilter,
		LodMinClamp:   config.LodMinClamp,
		LodMaxClamp:   config.LodMaxClamp,
		MaxAnisotropy: config.MaxAnisotropy,
	})
	if err != nil {
		return nil, fmt.Errorf("sampler: %w: %w", ErrResourceCreation, err)
	}
	return s, nil
}

func (b *wgpuRendererBackend) DestroySampler(s *wgpu.Sampler) {
	if s != nil {
		s.Release()
	}
}

func (b *wgpuRendererBackend) CreateBindGroups(config pipeline.Config, res binding.Resources) ([pipeline.SlotCount]*wgpu.BindGroup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var groups [pipeline.SlotCount]*wgpu.BindGroup

	uniformGroup := func(slot int, label string, buf *wgpu.Buffer) error {
		g, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  label,
			Layout: b.uniformLayout,
			Entries: []wgpu.BindGroupEntry{{
				Binding: 0,
				Buffer:  buf,
				Size:    wgpu.WholeSize,
			}},
		})
		if err != nil {
			return fmt.Errorf("%s bind group: %w: %w", label, ErrResourceCreation, err)
		}
		groups[slot] = g
		return nil
	}

	if config.Slots.Has(pipeline.SlotGlobal) {
		if err := uniformGroup(binding.SlotGlobal, "global", res.Global); err != nil {
			return groups, err
		}
	}
	if config.Slots.Has(pipeline.SlotMaterial) {
		if res.MaterialColor != nil {
			if err := uniformGroup(binding.SlotMaterial, "material color", res.MaterialColor); err != nil {
				return groups, err
			}
		} else {
			g, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
				Label:  "material texture",
				Layout: b.textureLayout,
				Entries: []wgpu.BindGroupEntry{
					{Binding: 0, TextureView: res.MaterialTexture},
					{Binding: 1, Sampler: res.MaterialSampler},
				},
			})
			if err != nil {
				return groups, fmt.Errorf("material bind group: %w: %w", ErrResourceCreation, err)
			}
			groups[binding.SlotMaterial] = g
		}
	}
	if config.Slots.Has(pipeline.SlotCamera) {
		if err := uniformGroup(binding.SlotCamera, "camera", res.Camera); err != nil {
			return groups, err
		}
	}
	if config.Slots.Has(pipeline.SlotFrameOffset) {
		if err := uniformGroup(binding.SlotFrameOffset, "frame offset", res.FrameOffset); err != nil {
			return groups, err
		}
	}
	if config.Slots.Has(pipeline.SlotEdgeMargin) {
		if err := uniformGroup(binding.SlotEdgeMargin, "edge margin", res.EdgeMargin); err != nil {
			return groups, err
		}
	}
	return groups, nil
}

func (b *wgpuRendererBackend) DestroyBindGroups(groups [pipeline.SlotCount]*wgpu.BindGroup) {
	for _, g := range groups {
		if g != nil {
			g.Release()
		}
	}
}

func (b *wgpuRendererBackend) CreateGeometry(vertexData, indexData []byte, indexCount uint32) (Geometry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var g Geometry

	vbuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return g, fmt.Errorf("vertex buffer: %w: %w", ErrResourceCreation, err)
	}
	b.queue.WriteBuffer(vbuf, 0, vertexData)

	ibuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vbuf.Release()
		return g, fmt.Errorf("index buffer: %w: %w", ErrResourceCreation, err)
	}
	b.queue.WriteBuffer(ibuf, 0, indexData)

	g.VertexBuffer = vbuf
	g.IndexBuffer = ibuf
	g.IndexCount = indexCount
	return g, nil
}

func (b *wgpuRendererBackend) DestroyGeometry(g Geometry) {
	if g.VertexBuffer != nil {
		g.VertexBuffer.Release()
	}
	if g.IndexBuffer != nil {
		g.IndexBuffer.Release()
	}
}

func (b *wgpuRendererBackend) CreateUniformBuffer(data []byte) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Uniform Buffer",
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("uniform buffer: %w: %w", ErrResourceCreation, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuRendererBackend) WriteUniform(buf *wgpu.Buffer, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.WriteBuffer(buf, 0, data)
}

func (b *wgpuRendererBackend) DestroyBuffer(buf *wgpu.Buffer) {
	if buf != nil {
		buf.Release()
	}
}

func (b *wgpuRendererBackend) CreateTexture(data common.TextureStagingData) (*wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	layers := data.Layers
	if layers == 0 {
		layers = 1
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "Texture Array",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: layers,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("texture: %w: %w", ErrResourceCreation, err)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: layers,
		},
	)

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           "Texture Array View",
		Format:          wgpu.TextureFormatRGBA8UnormSrgb,
		Dimension:       wgpu.TextureViewDimension2DArray,
		MipLevelCount:   1,
		ArrayLayerCount: layers,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("texture view: %w: %w", ErrResourceCreation, err)
	}
	return view, nil
}

func (b *wgpuRendererBackend) DestroyTexture(view *wgpu.TextureView) {
	if view != nil {
		view.Release()
	}
}

func (b *wgpuRendererBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	b.activeArena = (b.activeArena + 1) % len(b.arenas)
	arena := b.arenas[b.activeArena]
	arena.cursor = 0
	// Anything retired here has had a full in-flight cycle to drain.
	for _, old := range arena.retired {
		old.group.Release()
		old.buf.Release()
	}
	arena.retired = nil

	return b.openPassLocked(wgpu.LoadOpClear)
}

// openPassLocked acquires the surface texture if needed and begins a render
// pass. loadOp is Clear for the frame's first pass and Load after a flush.
func (b *wgpuRendererBackend) openPassLocked(loadOp wgpu.LoadOp) error {
	if b.frameSurface == nil {
		surfaceTexture, err := b.surface.GetCurrentTexture()
		if err != nil {
			return fmt.Errorf("acquire surface texture: %w", err)
		}
		view, err := surfaceTexture.CreateView(nil)
		if err != nil {
			surfaceTexture.Release()
			return fmt.Errorf("surface view: %w: %w", ErrResourceCreation, err)
		}
		b.frameSurface = surfaceTexture
		b.frameView = view
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w: %w", ErrResourceCreation, err)
	}

	b.renderPassDescriptor.ColorAttachments[0].View = b.frameView
	b.renderPassDescriptor.ColorAttachments[0].LoadOp = loadOp
	if loadOp == wgpu.LoadOpLoad {
		b.renderPassDescriptor.DepthStencilAttachment.DepthLoadOp = wgpu.LoadOpLoad
		b.renderPassDescriptor.DepthStencilAttachment.DepthStoreOp = wgpu.StoreOpStore
	} else {
		b.renderPassDescriptor.DepthStencilAttachment.DepthLoadOp = wgpu.LoadOpClear
		b.renderPassDescriptor.DepthStencilAttachment.DepthStoreOp = wgpu.StoreOpStore
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	return nil
}

func (b *wgpuRendererBackend) BindPipeline(p *wgpu.RenderPipeline) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.framePass.SetPipeline(p)
}

func (b *wgpuRendererBackend) BindGroups(groups [pipeline.SlotCount]*wgpu.BindGroup) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, g := range groups {
		if g != nil {
			b.framePass.SetBindGroup(uint32(i), g, nil)
		}
	}
}

func (b *wgpuRendererBackend) Draw(g Geometry, payload Payload) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	arena := b.arenas[b.activeArena]
	if arena.cursor >= arena.capacity {
		return ErrOutOfFrameResources
	}

	offset := arena.cursor * payloadStride
	arena.cursor++
	b.queue.WriteBuffer(arena.buf, uint64(offset), payload.Bytes())

	b.framePass.SetBindGroup(shader.PayloadGroup, arena.group, []uint32{offset})
	b.framePass.SetVertexBuffer(0, g.VertexBuffer, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(g.IndexBuffer, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(g.IndexCount, 1, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.submitPassLocked()

	// Grow the arena so the rest of the frame fits; the exhausted buffer and
	// its bind group are parked until this arena slot cycles around again.
	arena := b.arenas[b.activeArena]
	grown, err := b.createArena(arena.capacity * 2)
	if err != nil {
		return err
	}
	grown.retired = append(arena.retired, retiredPayload{buf: arena.buf, group: arena.group})
	b.arenas[b.activeArena] = grown

	return b.openPassLocked(wgpu.LoadOpLoad)
}

// submitPassLocked ends the current pass and submits its commands.
func (b *wgpuRendererBackend) submitPassLocked() {
	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		return
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
}

func (b *wgpuRendererBackend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.submitPassLocked()

	if b.frameSurface == nil {
		return nil
	}
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
	return nil
}

func (b *wgpuRendererBackend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	b.configureSurface(width, height)
}

func (b *wgpuRendererBackend) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, arena := range b.arenas {
		if arena == nil {
			continue
		}
		for _, old := range arena.retired {
			old.group.Release()
			old.buf.Release()
		}
		arena.group.Release()
		arena.buf.Release()
		b.arenas[i] = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
