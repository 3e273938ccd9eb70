// Package binding resolves a pipeline's declared binding slots against
// concrete GPU resources. Bound sets are content-addressed by the pair
// (pipeline key, resource tuple) so that logically identical bindings share
// one GPU descriptor object. Per-draw values that change every draw call
// (position, frame index, layer, ui scale) never pass through this package;
// they travel as inline payload on the draw command instead, keeping this
// cache's churn independent of draw count.
package binding

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/engine/renderer/pipeline"
)

// Slot indices of the fixed binding convention. Every pipeline variant in
// the engine shares this table; a variant simply declares the subset it
// uses through pipeline.SlotMask.
const (
	// SlotGlobal is the global cartesian-to-device matrix uniform (once per frame).
	SlotGlobal = 0
	// SlotMaterial is the per-material resource: texture array + sampler, or a flat color uniform.
	SlotMaterial = 1
	// SlotCamera is the camera matrix uniform (per active camera).
	SlotCamera = 2
	// SlotFrameOffset is the atlas/animation UV offset uniform (per animated material).
	SlotFrameOffset = 3
	// SlotEdgeMargin is the edge-margin correction uniform (per atlas-sampling material).
	SlotEdgeMargin = 4
)

// Resources is the concrete resource tuple resolved against a pipeline's
// declared slots. Exactly one of the material forms may be set: texture plus
// sampler for textured variants, or a color uniform for flat-color variants.
// The struct is comparable; bound sets are cached by exact tuple equality,
// which rules out key collisions entirely for this cache.
type Resources struct {
	// Global is the cartesian-to-device matrix buffer (slot 0).
	Global *wgpu.Buffer
	// MaterialTexture and MaterialSampler fill slot 1 for textured materials.
	MaterialTexture *wgpu.TextureView
	MaterialSampler *wgpu.Sampler
	// MaterialColor fills slot 1 for flat-color materials.
	MaterialColor *wgpu.Buffer
	// Camera is the camera matrix buffer (slot 2).
	Camera *wgpu.Buffer
	// FrameOffset is the UV offset buffer (slot 3).
	FrameOffset *wgpu.Buffer
	// EdgeMargin is the margin correction buffer (slot 4).
	EdgeMargin *wgpu.Buffer
}

// Key identifies a bound set: the pipeline content key paired with the
// exact resource tuple.
type Key struct {
	Pipeline  uint64
	Resources Resources
}

// Validate checks that the tuple provides every resource the slot mask
// declares and nothing contradictory.
//
// Parameters:
//   - slots: the pipeline's declared slot mask
//
// Returns:
//   - error: a descriptive error if a declared slot has no resource
func (r Resources) Validate(slots pipeline.SlotMask) error {
	if slots.Has(pipeline.SlotGlobal) && r.Global == nil {
		return fmt.Errorf("slot %d declared but no global transform buffer bound", SlotGlobal)
	}
	if slots.Has(pipeline.SlotMaterial) {
		textured := r.MaterialTexture != nil && r.MaterialSampler != nil
		colored := r.MaterialColor != nil
		if textured == colored {
			return fmt.Errorf("slot %d requires either texture+sampler or a color buffer", SlotMaterial)
		}
	}
	if slots.Has(pipeline.SlotCamera) && r.Camera == nil {
		return fmt.Errorf("slot %d declared but no camera buffer bound", SlotCamera)
	}
	if slots.Has(pipeline.SlotFrameOffset) && r.FrameOffset == nil {
		return fmt.Errorf("slot %d declared but no frame offset buffer bound", SlotFrameOffset)
	}
	if slots.Has(pipeline.SlotEdgeMargin) && r.EdgeMargin == nil {
		return fmt.Errorf("slot %d declared but no edge margin buffer bound", SlotEdgeMargin)
	}
	return nil
}

// BoundSet is a cache-owned reference to the GPU bind groups resolved for
// one (pipeline, resource tuple) pair. Group entries for undeclared slots
// are nil.
type BoundSet interface {
	// Key retrieves the cache key of this bound set.
	//
	// Returns:
	//   - Key: the (pipeline, resources) key
	Key() Key

	// Groups retrieves the per-slot GPU bind groups, nil for unused slots.
	//
	// Returns:
	//   - [pipeline.SlotCount]*wgpu.BindGroup: the bind groups by slot index
	Groups() [pipeline.SlotCount]*wgpu.BindGroup
}

// entry is the implementation of the BoundSet interface plus cache book-keeping.
type entry struct {
	key    Key
	groups [pipeline.SlotCount]*wgpu.BindGroup

	refs      int
	lastFrame uint64
}

var _ BoundSet = &entry{}

func (e *entry) Key() Key {
	return e.key
}

func (e *entry) Groups() [pipeline.SlotCount]*wgpu.BindGroup {
	return e.groups
}
