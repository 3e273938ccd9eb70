package sampler

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReturnsSameHandleForEqualConfigs(t *testing.T) {
	created := 0
	c := NewCache(func(Config) (*wgpu.Sampler, error) {
		created++
		return &wgpu.Sampler{}, nil
	}, nil)

	first, err := c.Acquire(PixelArt())
	require.NoError(t, err)
	second, err := c.Acquire(PixelArt())
	require.NoError(t, err)

	assert.Same(t, first.Handle(), second.Handle())
	assert.Equal(t, 1, created, "equal configs must not construct twice")
	assert.Equal(t, 1, c.Len())
}

func TestAcquireDistinguishesConfigs(t *testing.T) {
	created := 0
	c := NewCache(func(Config) (*wgpu.Sampler, error) {
		created++
		return &wgpu.Sampler{}, nil
	}, nil)

	pixel, err := c.Acquire(PixelArt())
	require.NoError(t, err)
	linear, err := c.Acquire(LinearRepeat())
	require.NoError(t, err)

	assert.NotSame(t, pixel.Handle(), linear.Handle())
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, c.Len())
}

func TestAcquirePropagatesCreationFailure(t *testing.T) {
	deviceLost := errors.New("device lost")
	c := NewCache(func(Config) (*wgpu.Sampler, error) {
		return nil, deviceLost
	}, nil)

	_, err := c.Acquire(PixelArt())
	require.Error(t, err)
	assert.ErrorIs(t, err, deviceLost)
	assert.Equal(t, 0, c.Len(), "failed construction must not leave an entry behind")
}

func TestCollectRespectsInFlightFrames(t *testing.T) {
	destroyed := 0
	c := NewCache(func(Config) (*wgpu.Sampler, error) {
		return &wgpu.Sampler{}, nil
	}, func(*wgpu.Sampler) {
		destroyed++
	})

	s, err := c.Acquire(PixelArt())
	require.NoError(t, err)

	c.Touch(s, 10)
	c.Release(s)

	// Frame 10 is still in flight: nothing may be destroyed.
	assert.Equal(t, 0, c.Collect(10))
	assert.Equal(t, 1, c.Len())

	// Frame 10 has retired.
	assert.Equal(t, 1, c.Collect(11))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, destroyed)
}

func TestCollectKeepsReferencedEntries(t *testing.T) {
	c := NewCache(func(Config) (*wgpu.Sampler, error) {
		return &wgpu.Sampler{}, nil
	}, nil)

	_, err := c.Acquire(PixelArt())
	require.NoError(t, err)

	assert.Equal(t, 0, c.Collect(100), "held references must survive collection")
	assert.Equal(t, 1, c.Len())
}

func TestKeyIsStableAcrossFieldPermutations(t *testing.T) {
	base := PixelArt()
	assert.Equal(t, base.Key(), PixelArt().Key())

	changed := base
	changed.MagFilter = wgpu.FilterModeLinear
	assert.NotEqual(t, base.Key(), changed.Key())

	changed = base
	changed.LodMaxClamp = 4
	assert.NotEqual(t, base.Key(), changed.Key())
}
