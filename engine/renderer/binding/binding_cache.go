package binding

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/engine/renderer/pipeline"
)

// CreateFunc constructs the GPU bind groups for a pipeline's declared slots
// against a resolved resource tuple. Provided by the renderer backend when
// the binder is created.
type CreateFunc func(config pipeline.Config, res Resources) ([pipeline.SlotCount]*wgpu.BindGroup, error)

// DestroyFunc releases the bind groups of an evicted bound set. Provided by
// the renderer backend; may be nil when the backend owns object teardown.
type DestroyFunc func([pipeline.SlotCount]*wgpu.BindGroup)

// Binder is the content-addressed bound-set store. At most one set of bind
// groups exists per distinct (pipeline, resource tuple) pair. The key is the
// exact resource tuple rather than a hash of it, so two different tuples can
// never alias one cache slot. All mutation happens on the dispatch thread.
type Binder interface {
	// Acquire returns the cached bound set for the pipeline and resource
	// tuple, constructing the bind groups on first use. The returned
	// reference is counted and must be paired with Release.
	//
	// Parameters:
	//   - p: the pipeline whose slots are being bound
	//   - res: the resource tuple to bind
	//
	// Returns:
	//   - BoundSet: the shared bound set reference
	//   - error: an error if the tuple is incomplete or GPU construction fails
	Acquire(p pipeline.Pipeline, res Resources) (BoundSet, error)

	// Release decrements the reference count taken by Acquire. Destruction
	// is deferred until Collect proves no in-flight frame still reads the
	// bind groups.
	//
	// Parameters:
	//   - b: the bound set reference to release
	Release(b BoundSet)

	// Touch stamps the bound set as referenced by the given frame index.
	//
	// Parameters:
	//   - b: the bound set in use
	//   - frame: the current frame index
	Touch(b BoundSet, frame uint64)

	// Collect destroys bound sets that have no holders and were last
	// referenced by a frame older than oldestLiveFrame.
	//
	// Parameters:
	//   - oldestLiveFrame: index of the oldest frame still in flight
	//
	// Returns:
	//   - int: the number of bound sets destroyed
	Collect(oldestLiveFrame uint64) int

	// Len returns the number of live cached bound sets.
	//
	// Returns:
	//   - int: the cache size
	Len() int
}

// binder is the implementation of the Binder interface.
type binder struct {
	create  CreateFunc
	destroy DestroyFunc
	entries map[Key]*entry
}

var _ Binder = &binder{}

// NewBinder creates a bound-set cache backed by the given construction and
// destruction functions.
//
// Parameters:
//   - create: the backend function that builds bind groups
//   - destroy: the backend function that releases evicted bind groups (nil safe)
//
// Returns:
//   - Binder: an empty bound-set cache
func NewBinder(create CreateFunc, destroy DestroyFunc) Binder {
	return &binder{
		create:  create,
		destroy: destroy,
		entries: make(map[Key]*entry),
	}
}

func (c *binder) Acquire(p pipeline.Pipeline, res Resources) (BoundSet, error) {
	config := p.Config()
	if err := res.Validate(config.Slots); err != nil {
		return nil, fmt.Errorf("bind %q: %w", config.ShaderPair, err)
	}

	key := Key{Pipeline: p.Key(), Resources: res}
	if e, ok := c.entries[key]; ok {
		e.refs++
		return e, nil
	}

	groups, err := c.create(config, res)
	if err != nil {
		return nil, fmt.Errorf("bind %q: %w", config.ShaderPair, err)
	}

	e := &entry{
		key:    key,
		groups: groups,
		refs:   1,
	}
	c.entries[key] = e
	return e, nil
}

func (c *binder) Release(b BoundSet) {
	if b == nil {
		return
	}
	e, ok := c.entries[b.Key()]
	if !ok || e.refs == 0 {
		return
	}
	e.refs--
}

func (c *binder) Touch(b BoundSet, frame uint64) {
	if b == nil {
		return
	}
	if e, ok := c.entries[b.Key()]; ok {
		e.lastFrame = frame
	}
}

func (c *binder) Collect(oldestLiveFrame uint64) int {
	destroyed := 0
	for key, e := range c.entries {
		if e.refs > 0 || e.lastFrame >= oldestLiveFrame {
			continue
		}
		if c.destroy != nil {
			c.destroy(e.groups)
		}
		delete(c.entries, key)
		destroyed++
	}
	return destroyed
}

func (c *binder) Len() int {
	return len(c.entries)
}
