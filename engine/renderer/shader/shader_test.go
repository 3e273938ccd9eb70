package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxght/LuveHulgerUlle/engine/renderer/pipeline"
)

func TestLookupKnownPairs(t *testing.T) {
	for _, name := range Names() {
		p, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name)
		assert.Contains(t, p.Source, "vs_main", name)
		assert.Contains(t, p.Source, "fs_main", name)
	}
}

func TestLookupUnknownPair(t *testing.T) {
	_, err := Lookup("bloom_pass")
	assert.Error(t, err)
}

func TestConfigMatchesRegistry(t *testing.T) {
	cfg, err := Config("tile_chunk")
	require.NoError(t, err)
	assert.Equal(t, "tile_chunk", cfg.ShaderPair)
	assert.Equal(t, pipeline.VertexFormatPosUV3, cfg.VertexFormat)
	assert.True(t, cfg.Slots.Has(pipeline.SlotEdgeMargin))
	assert.False(t, cfg.Slots.Has(pipeline.SlotFrameOffset))
}

func TestSourcesDeclareOnlyRegisteredSlots(t *testing.T) {
	// Every group index used in a module must be declared in its slot mask,
	// except the payload group which is per-draw and outside the binder.
	groups := map[pipeline.SlotMask]string{
		pipeline.SlotGlobal:      "@group(0)",
		pipeline.SlotMaterial:    "@group(1)",
		pipeline.SlotCamera:      "@group(2)",
		pipeline.SlotFrameOffset: "@group(3)",
		pipeline.SlotEdgeMargin:  "@group(4)",
	}

	for _, name := range Names() {
		p, err := Lookup(name)
		require.NoError(t, err)
		for slot, marker := range groups {
			used := strings.Contains(p.Source, marker)
			assert.Equal(t, p.Slots.Has(slot), used,
				"%s: declaration of %s must match the slot mask", name, marker)
		}
	}
}
