package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_Percentages(t *testing.T) {
	m := NewManager("none=0%,all=100%,half=50%,bad=x%")

	assert.False(t, m.Enabled("none", 7))
	assert.True(t, m.Enabled("all", 7))
	assert.False(t, m.Enabled("half", 0), "anonymous users never enter a partial rollout")
	assert.False(t, m.Enabled("bad", 7))

	first := m.Enabled("half", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("half", 42), "rollout must be stable per user")
	}

	enabled := 0
	for uid := uint(1); uid <= 1000; uid++ {
		if m.Enabled("half", uid) {
			enabled++
		}
	}
	assert.InDelta(t, 500, enabled, 150)
}

func TestNewManager_Normalizes(t *testing.T) {
	m := NewManager(" Self_Follow = ON , junk, =on, self_like=")

	assert.True(t, m.Enabled(SelfFollow, 3))
	assert.False(t, m.Enabled(SelfLike, 3))
	assert.Equal(t, map[string]string{"self_follow": "on"}, m.Raw())
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled(SelfFollow, 1))
}
