package pipeline

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// CreateFunc constructs the GPU pipeline for a config. Provided by the
// renderer backend when the cache is created. Construction failure is
// fatal for the requesting frame and is propagated, never retried.
type CreateFunc func(Config) (*wgpu.RenderPipeline, error)

// DestroyFunc releases a GPU pipeline evicted from the cache. Provided by
// the renderer backend; may be nil when the backend owns object teardown.
type DestroyFunc func(*wgpu.RenderPipeline)

// Cache is the content-addressed pipeline store. At most one GPU pipeline
// exists per distinct Config; no partial or placeholder pipelines are ever
// handed out. All mutation happens on the dispatch thread.
type Cache interface {
	// Acquire returns the cached pipeline for the config, constructing it on
	// first use. The returned reference is counted and must be paired with
	// Release once the holder no longer needs it.
	//
	// Parameters:
	//   - config: the pipeline configuration
	//
	// Returns:
	//   - Pipeline: the shared pipeline reference
	//   - error: an error if GPU construction fails
	Acquire(config Config) (Pipeline, error)

	// Release decrements the reference count taken by Acquire. Destruction
	// is deferred until Collect proves no in-flight frame still reads the
	// object.
	//
	// Parameters:
	//   - p: the pipeline reference to release
	Release(p Pipeline)

	// Touch stamps the pipeline as referenced by the given frame index.
	//
	// Parameters:
	//   - p: the pipeline in use
	//   - frame: the current frame index
	Touch(p Pipeline, frame uint64)

	// Collect destroys pipelines that have no holders and were last
	// referenced by a frame older than oldestLiveFrame.
	//
	// Parameters:
	//   - oldestLiveFrame: index of the oldest frame still in flight
	//
	// Returns:
	//   - int: the number of pipelines destroyed
	Collect(oldestLiveFrame uint64) int

	// Len returns the number of live cached pipelines.
	//
	// Returns:
	//   - int: the cache size
	Len() int
}

// cache is the implementation of the Cache interface.
type cache struct {
	create  CreateFunc
	destroy DestroyFunc
	entries map[uint64]*entry
}

var _ Cache = &cache{}

// NewCache creates a pipeline cache backed by the given construction and
// destruction functions.
//
// Parameters:
//   - create: the backend function that builds GPU pipelines
//   - destroy: the backend function that releases evicted pipelines (nil safe)
//
// Returns:
//   - Cache: an empty pipeline cache
func NewCache(create CreateFunc, destroy DestroyFunc) Cache {
	return &cache{
		create:  create,
		destroy: destroy,
		entries: make(map[uint64]*entry),
	}
}

func (c *cache) Acquire(config Config) (Pipeline, error) {
	key := config.Key()
	if e, ok := c.entries[key]; ok {
		if e.config != config {
			panic(fmt.Sprintf("pipeline cache: key collision between %+v and %+v", e.config, config))
		}
		e.refs++
		return e, nil
	}

	handle, err := c.create(config)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", config.ShaderPair, err)
	}

	e := &entry{
		key:    key,
		config: config,
		handle: handle,
		refs:   1,
	}
	c.entries[key] = e
	return e, nil
}

func (c *cache) Release(p Pipeline) {
	if p == nil {
		return
	}
	e, ok := c.entries[p.Key()]
	if !ok || e.refs == 0 {
		return
	}
	e.refs--
}

func (c *cache) Touch(p Pipeline, frame uint64) {
	if p == nil {
		return
	}
	if e, ok := c.entries[p.Key()]; ok {
		e.lastFrame = frame
	}
}

func (c *cache) Collect(oldestLiveFrame uint64) int {
	destroyed := 0
	for key, e := range c.entries {
		if e.refs > 0 || e.lastFrame >= oldestLiveFrame {
			continue
		}
		if c.destroy != nil && e.handle != nil {
			c.destroy(e.handle)
		}
		delete(c.entries, key)
		destroyed++
	}
	return destroyed
}

func (c *cache) Len() int {
	return len(c.entries)
}
