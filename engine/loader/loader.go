// Package loader decodes assets off the dispatch thread. Worker goroutines
// parse tileset descriptors and decode images into staging data; finished
// work lands in a ready queue the dispatch thread drains at frame start,
// performing only the GPU uploads there. A frame never blocks on a decode
// in progress.
package loader

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/tilemap/tileset"
)

// readyQueueSize bounds decodes finished but not yet drained. Submitting
// stalls a worker, never the dispatch thread, when the queue is full.
const readyQueueSize = 64

// GPUUploader is the slice of the renderer the loader needs at drain time.
type GPUUploader interface {
	CreateTexture(data common.TextureStagingData) (*wgpu.TextureView, error)
}

// TilesetAsset is a fully loaded tileset: the validated descriptor plus its
// atlas uploaded as a texture array, one layer per tile.
type TilesetAsset struct {
	Name       string
	Descriptor *tileset.Descriptor
	Atlas      *wgpu.TextureView
}

// TextureAsset is a loaded standalone texture.
type TextureAsset struct {
	Name string
	View *wgpu.TextureView
	// Width, Height are the pixel dimensions of the decoded image.
	Width, Height uint32
}

// Result reports one drained asset. Err carries decode or upload failures;
// failed assets are not retained.
type Result struct {
	Name string
	Err  error
}

// staged is one finished decode waiting in the ready queue.
type staged struct {
	name    string
	err     error
	desc    *tileset.Descriptor
	staging common.TextureStagingData
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu *sync.Mutex

	gpu     GPUUploader
	pool    worker.DynamicWorkerPool
	workers int

	ready    chan staged
	pending  int
	nextTask int

	tilesets map[string]*TilesetAsset
	textures map[string]*TextureAsset
}

// Loader queues asset decodes and hands finished assets to the dispatch
// thread. Queue methods are safe from any goroutine; Drain must run on the
// dispatch thread since it creates GPU resources.
type Loader interface {
	// QueueTileset schedules a tileset load: descriptor parse plus atlas
	// decode into per-tile array layers. The descriptor and image come from
	// the referenced files or from the optional in-memory bytes.
	//
	// Parameters:
	//   - name: the cache key for the loaded tileset
	//   - descriptor: the descriptor source (path or raw JSON bytes)
	//   - image: the atlas image source (path or raw PNG/JPEG bytes)
	QueueTileset(name string, descriptor Source, image Source)

	// QueueTexture schedules a standalone texture decode.
	//
	// Parameters:
	//   - name: the cache key for the loaded texture
	//   - image: the image source (path or raw PNG/JPEG bytes)
	QueueTexture(name string, image Source)

	// Drain uploads every decode finished since the previous call and files
	// the assets into the cache. Never blocks on decodes still in progress.
	//
	// Returns:
	//   - []Result: one entry per asset drained, failed or not
	Drain() []Result

	// Pending reports the number of queued loads not yet drained.
	//
	// Returns:
	//   - int: the outstanding load count
	Pending() int

	// Tileset retrieves a loaded tileset by name.
	//
	// Parameters:
	//   - name: the cache key
	//
	// Returns:
	//   - *TilesetAsset: the asset, or nil
	//   - bool: false if the name is unknown
	Tileset(name string) (*TilesetAsset, bool)

	// Texture retrieves a loaded texture by name.
	//
	// Parameters:
	//   - name: the cache key
	//
	// Returns:
	//   - *TextureAsset: the asset, or nil
	//   - bool: false if the name is unknown
	Texture(name string) (*TextureAsset, bool)
}

var _ Loader = &loader{}

// Source references asset bytes either on disk or in memory. Exactly one
// field should be set; in-memory data wins when both are.
type Source struct {
	Path string
	Data []byte
}

// NewLoader creates a loader uploading through the given GPU surface.
//
// Parameters:
//   - gpu: the renderer slice used for texture uploads at drain time
//   - options: a variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the loader, workers already running
func NewLoader(gpu GPUUploader, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:       &sync.Mutex{},
		gpu:      gpu,
		workers:  max(runtime.NumCPU()-1, 1),
		ready:    make(chan staged, readyQueueSize),
		tilesets: make(map[string]*TilesetAsset),
		textures: make(map[string]*TextureAsset),
	}

	for _, option := range options {
		option(l)
	}

	l.pool = worker.NewDynamicWorkerPool(l.workers, readyQueueSize, 1*time.Second)
	return l
}

func (l *loader) QueueTileset(name string, descriptor Source, image Source) {
	l.submit(func() staged {
		data, err := descriptor.read()
		if err != nil {
			return staged{name: name, err: fmt.Errorf("tileset %q descriptor: %w", name, err)}
		}
		desc, err := tileset.Parse(name, data)
		if err != nil {
			return staged{name: name, err: err}
		}

		asset := common.TextureAsset{Name: name, Path: image.Path, Data: image.Data}
		staging, err := asset.DecodeArray(desc.TileWidth(), desc.TileHeight())
		if err != nil {
			return staged{name: name, err: fmt.Errorf("tileset %q atlas: %w", name, err)}
		}
		return staged{name: name, desc: desc, staging: staging}
	})
}

func (l *loader) QueueTexture(name string, image Source) {
	l.submit(func() staged {
		asset := common.TextureAsset{Name: name, Path: image.Path, Data: image.Data}
		staging, err := asset.Decode()
		if err != nil {
			return staged{name: name, err: fmt.Errorf("texture %q: %w", name, err)}
		}
		return staged{name: name, staging: staging}
	})
}

// submit hands a decode to the pool and tracks it as pending.
func (l *loader) submit(do func() staged) {
	l.mu.Lock()
	l.pending++
	id := l.nextTask
	l.nextTask++
	l.mu.Unlock()

	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			l.ready <- do()
			return nil, nil
		},
	})
}

func (l *loader) Drain() []Result {
	var results []Result
	for {
		select {
		case s := <-l.ready:
			results = append(results, l.finish(s))
		default:
			return results
		}
	}
}

// finish uploads one staged decode and files the asset.
func (l *loader) finish(s staged) Result {
	l.mu.Lock()
	l.pending--
	l.mu.Unlock()

	if s.err != nil {
		return Result{Name: s.name, Err: s.err}
	}

	view, err := l.gpu.CreateTexture(s.staging)
	if err != nil {
		return Result{Name: s.name, Err: fmt.Errorf("upload %q: %w", s.name, err)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if s.desc != nil {
		l.tilesets[s.name] = &TilesetAsset{Name: s.name, Descriptor: s.desc, Atlas: view}
	} else {
		l.textures[s.name] = &TextureAsset{
			Name:   s.name,
			View:   view,
			Width:  s.staging.Width,
			Height: s.staging.Height,
		}
	}
	return Result{Name: s.name}
}

func (l *loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

func (l *loader) Tileset(name string) (*TilesetAsset, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.tilesets[name]
	return t, ok
}

func (l *loader) Texture(name string) (*TextureAsset, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.textures[name]
	return t, ok
}

// read resolves a source to its raw bytes.
func (s Source) read() ([]byte, error) {
	if len(s.Data) > 0 {
		return s.Data, nil
	}
	if s.Path == "" {
		return nil, fmt.Errorf("source has neither data nor path")
	}
	return readFile(s.Path)
}
