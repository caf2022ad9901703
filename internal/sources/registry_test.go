package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/query"
)

// stubAdapter is a minimal SourceAdapter for registry tests.
type stubAdapter struct {
	name    string
	syntax  query.Syntax
	enabled bool
}

var _ SourceAdapter = (*stubAdapter)(nil)

func (s *stubAdapter) Search(_ context.Context, _ SearchParams) ([]*domain.Paper, error) {
	return nil, nil
}

func (s *stubAdapter) Name() string         { return s.name }
func (s *stubAdapter) Syntax() query.Syntax { return s.syntax }
func (s *stubAdapter) IsEnabled() bool      { return s.enabled }

func newTestRegistry() *Registry {
	r := NewRegistry(NewProfiles([]Profile{
		{Name: "alpha", Weight: 0.9},
		{Name: "beta", Weight: 0.6},
	}))
	r.Register(&stubAdapter{name: "alpha", syntax: query.SyntaxBoolean, enabled: true})
	r.Register(&stubAdapter{name: "beta", syntax: query.SyntaxPlain, enabled: true})
	r.Register(&stubAdapter{name: "gamma", syntax: query.SyntaxFielded, enabled: false})
	return r
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()

	assert.NotNil(t, r.Get("alpha"))
	assert.Nil(t, r.Get("unknown"))
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, r.Names())

	t.Run("replaces adapter with same name", func(t *testing.T) {
		replacement := &stubAdapter{name: "alpha", syntax: query.SyntaxPlain, enabled: true}
		r.Register(replacement)
		assert.Same(t, SourceAdapter(replacement), r.Get("alpha"))
	})
}

func TestRegistry_Profile(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()

	assert.Equal(t, 0.9, r.Profile("alpha").Weight)

	// Unregistered sources get the default profile.
	p := r.Profile("gamma")
	assert.Equal(t, "gamma", p.Name)
	assert.Equal(t, DefaultProfile.Weight, p.Weight)
}

func TestRegistry_Select(t *testing.T) {
	t.Parallel()

	t.Run("empty allow-list selects all enabled adapters", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		selected := r.Select(nil)
		require.Len(t, selected, 2)
		assert.Equal(t, "alpha", selected[0].Name())
		assert.Equal(t, "beta", selected[1].Name())
	})

	t.Run("allow-list narrows the selection", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		selected := r.Select([]string{"beta"})
		require.Len(t, selected, 1)
		assert.Equal(t, "beta", selected[0].Name())
	})

	t.Run("unknown names are skipped", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		selected := r.Select([]string{"beta", "nonexistent"})
		require.Len(t, selected, 1)
		assert.Equal(t, "beta", selected[0].Name())
	})

	t.Run("disabled adapters are excluded", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		selected := r.Select([]string{"alpha", "gamma"})
		require.Len(t, selected, 1)
		assert.Equal(t, "alpha", selected[0].Name())
	})

	t.Run("duplicate names select the adapter once", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		selected := r.Select([]string{"alpha", "alpha", "beta"})
		require.Len(t, selected, 2)
		assert.Equal(t, "alpha", selected[0].Name())
		assert.Equal(t, "beta", selected[1].Name())
	})

	t.Run("selection is ordered by name", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		selected := r.Select([]string{"beta", "alpha"})
		require.Len(t, selected, 2)
		assert.Equal(t, "alpha", selected[0].Name())
		assert.Equal(t, "beta", selected[1].Name())
	})
}
