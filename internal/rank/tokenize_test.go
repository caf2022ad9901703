package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "lowercases and splits on non-word boundaries",
			in:   "Machine-Learning, for EDUCATION!",
			want: []string{"machine", "learning", "for", "education"},
		},
		{
			name: "strips markup",
			in:   "<b>Deep</b> <i>learning</i> methods",
			want: []string{"deep", "learning", "methods"},
		},
		{
			name: "drops short tokens",
			in:   "a an of the DNA genome",
			want: []string{"the", "dna", "genome"},
		},
		{
			name: "keeps plausible years, drops other numerics",
			in:   "climate change 2020 study 12345 p 42",
			want: []string{"climate", "change", "2020", "study"},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
		{
			name: "only noise",
			in:   "a b c 7 99",
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, jaccard(nil, []string{"one"}))
	assert.Equal(t, 1.0, jaccard([]string{"one", "two"}, []string{"two", "one"}))
	assert.InDelta(t, 1.0/3.0, jaccard([]string{"one", "two"}, []string{"two", "three"}), 1e-9)
}

func TestQueryTerms(t *testing.T) {
	t.Parallel()

	t.Run("splits phrases and lowercases", func(t *testing.T) {
		t.Parallel()
		got := QueryTerms([]string{"Child Nutrition", "machine-learning"})
		assert.Equal(t, []string{"child", "nutrition", "machine", "learning"}, got)
	})

	t.Run("collapses duplicates across parts", func(t *testing.T) {
		t.Parallel()
		got := QueryTerms([]string{"child nutrition", "nutrition", "Child"})
		assert.Equal(t, []string{"child", "nutrition"}, got)
	})

	t.Run("empty and unusable parts yield nil", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, QueryTerms(nil))
		assert.Nil(t, QueryTerms([]string{"", "of", "42"}))
	})
}
