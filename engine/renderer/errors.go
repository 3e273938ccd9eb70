package renderer

import "errors"

// ErrResourceCreation wraps any GPU object construction failure (buffers,
// textures, samplers, pipelines, bind groups). The failure is propagated to
// the caller that requested the resource; no placeholder objects are ever
// substituted.
var ErrResourceCreation = errors.New("gpu resource creation failed")

// ErrOutOfFrameResources is returned by a backend draw when the per-frame
// payload arena is exhausted. The dispatcher reacts by flushing the commands
// recorded so far and retrying the draw against a fresh arena; it is not an
// application-visible failure unless the flush itself fails.
var ErrOutOfFrameResources = errors.New("per-frame draw resources exhausted")
