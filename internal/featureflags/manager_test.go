package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_SwitchValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=TRUE,d=false,e=1,f=0,g=yes,h=no")

	for _, name := range []string{"a", "c", "e", "g"} {
		assert.True(t, m.Enabled(name, 1), name)
		assert.True(t, m.Enabled(name, 0), "fully enabled flags include anonymous visitors: %s", name)
	}
	for _, name := range []string{"b", "d", "f", "h", "unknown"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_Rollout(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=x%,over=250%")

	assert.True(t, m.Enabled("always", 0))
	assert.True(t, m.Enabled("over", 0))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("broken", 1))
	assert.False(t, m.Enabled("canary", 0), "partial rollouts exclude anonymous visitors")

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42))
	}

	on := 0
	for id := uint(1); id <= 1000; id++ {
		if m.Enabled("canary", id) {
			on++
		}
	}
	assert.InDelta(t, 250, on, 60)
}

func TestDefaultsAndOverrides(t *testing.T) {
	m := NewManager("")
	assert.True(t, m.Enabled(IndexCache, 0))
	assert.True(t, m.Enabled(ImageUploads, 7))

	m = NewManager(" INDEX_CACHE = off ")
	assert.False(t, m.Enabled(IndexCache, 0))
	assert.True(t, m.Enabled(ImageUploads, 0))

	var nilManager *Manager
	assert.False(t, nilManager.Enabled(IndexCache, 0))
	assert.Equal(t, "", nilManager.String())
}

func TestString(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off,=on")
	assert.Equal(t, "image_uploads=on,index_cache=on,x=on,y=20%,z=off", m.String())
}
