package pathway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	require.Equal(t, 3, r.Len())

	all := r.All()
	assert.Equal(t, NewIdea, all[0].ID)
	assert.Equal(t, BusinessModel, all[1].ID)
	assert.Equal(t, Optimize, all[2].ID)

	for _, p := range all {
		assert.NotEmpty(t, p.Name, "pathway %s missing name", p.ID)
		assert.NotEmpty(t, p.Templates, "pathway %s missing templates", p.ID)
		assert.NotEmpty(t, p.ExpectedOutcome, "pathway %s missing outcome", p.ID)
	}
}

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry()

	p, ok := r.Get(BusinessModel)
	require.True(t, ok)
	assert.Equal(t, "Business Model Analysis", p.Name)

	_, ok = r.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_Default(t *testing.T) {
	r := DefaultRegistry()

	def := r.Default()
	require.NotNil(t, def)
	assert.Equal(t, NewIdea, def.ID)
}

func TestRegistry_DefaultEmpty(t *testing.T) {
	r := NewRegistry()

	assert.Nil(t, r.Default())
	assert.Equal(t, 0, r.Len())
}

func TestNewRegistry_DuplicateIDsIgnored(t *testing.T) {
	r := NewRegistry(
		Pathway{ID: "a", Name: "first"},
		Pathway{ID: "a", Name: "second"},
	)

	require.Equal(t, 1, r.Len())
	p, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", p.Name)
}
