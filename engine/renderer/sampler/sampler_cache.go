package sampler

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// CreateFunc constructs the GPU sampler for a config. Provided by the
// renderer backend when the cache is created.
type CreateFunc func(Config) (*wgpu.Sampler, error)

// DestroyFunc releases a GPU sampler evicted from the cache. Provided by the
// renderer backend; may be nil when the backend owns object teardown.
type DestroyFunc func(*wgpu.Sampler)

// Cache is the content-addressed sampler store. At most one GPU sampler
// exists per distinct Config; repeated Acquire calls with equal configs
// return the identical handle. All mutation happens on the dispatch thread.
type Cache interface {
	// Acquire returns the cached sampler for the config, constructing it on
	// first use. The returned reference is counted and must be paired with
	// Release once the holder no longer needs it.
	//
	// Parameters:
	//   - config: the sampler configuration
	//
	// Returns:
	//   - Sampler: the shared sampler reference
	//   - error: an error if GPU construction fails
	Acquire(config Config) (Sampler, error)

	// Release decrements the reference count taken by Acquire. The GPU
	// object is not destroyed immediately; it stays alive until Collect
	// determines no in-flight frame can still reference it.
	//
	// Parameters:
	//   - s: the sampler reference to release
	Release(s Sampler)

	// Touch stamps the sampler as referenced by the given frame index.
	// The dispatcher calls this for every sampler used while encoding a
	// frame so eviction can respect frames still in flight.
	//
	// Parameters:
	//   - s: the sampler in use
	//   - frame: the current frame index
	Touch(s Sampler, frame uint64)

	// Collect destroys samplers that have no holders and were last
	// referenced by a frame older than oldestLiveFrame.
	//
	// Parameters:
	//   - oldestLiveFrame: index of the oldest frame still in flight
	//
	// Returns:
	//   - int: the number of samplers destroyed
	Collect(oldestLiveFrame uint64) int

	// Len returns the number of live cached samplers.
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

// NewCache creates a sampler cache backed by the given construction and
// destruction functions.
//
// Parameters:
//   - create: the backend function that builds GPU samplers
//   - destroy: the backend function that releases evicted samplers (nil safe)
//
// Returns:
//   - Cache: an empty sampler cache
func NewCache(create CreateFunc, destroy DestroyFunc) Cache {
	return &cache{
		create:  create,
		destroy: destroy,
		entries: make(map[uint64]*entry),
	}
}

func (c *cache) Acquire(config Config) (Sampler, error) {
	key := config.Key()
	if e, ok := c.entries[key]; ok {
		if e.config != config {
			panic(fmt.Sprintf("sampler cache: key collision between %+v and %+v", e.config, config))
		}
		e.refs++
		return e, nil
	}

	handle, err := c.create(config)
	if err != nil {
		return nil, fmt.Errorf("sampler %#x: %w", key, err)
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

func (c *cache) Release(s Sampler) {
	if s == nil {
		return
	}
	e, ok := c.entries[s.Key()]
	if !ok || e.refs == 0 {
		return
	}
	e.refs--
}

func (c *cache) Touch(s Sampler, frame uint64) {
	if s == nil {
		return
	}
	if e, ok := c.entries[s.Key()]; ok {
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
