package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillExtractor_Extract(t *testing.T) {
	t.Parallel()
	e := NewSkillExtractor(DefaultVocabulary())

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "tokens with trailing punctuation",
			text: "Experienced in Python, Java and node.js.",
			want: []string{"java", "node.js", "python"},
		},
		{
			name: "multi word phrase",
			text: "strong problem solving and teamwork",
			want: []string{"problem solving", "teamwork"},
		},
		{
			name: "special characters kept in token",
			text: "C++ developer with SQL",
			want: []string{"c++", "sql"},
		},
		{
			name: "no partial token match",
			text: "we use javascript daily",
			want: []string{"javascript"},
		},
		{name: "empty", text: "", want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, e.Extract(tc.text))
		})
	}
}

func TestSkillExtractor_Deterministic(t *testing.T) {
	t.Parallel()
	e := NewSkillExtractor(DefaultVocabulary())
	text := "python go docker kubernetes aws communication"
	first := e.Extract(text)
	for range 10 {
		assert.Equal(t, first, e.Extract(text))
	}
}

func TestIntersectAndDifference(t *testing.T) {
	t.Parallel()
	a := []string{"python", "go", "sql"}
	b := []string{"sql", "java", "python"}
	assert.Equal(t, []string{"python", "sql"}, Intersect(a, b))
	assert.Equal(t, []string{"go"}, Difference(a, b))
	assert.Empty(t, Intersect(nil, b))
	assert.Equal(t, []string{"java", "python", "sql"}, Difference(b, nil))
}
