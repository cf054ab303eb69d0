package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTFIDF(t *testing.T) {
	t.Parallel()

	t.Run("identical texts score 100", func(t *testing.T) {
		t.Parallel()
		text := "backend engineer with python and sql experience"
		assert.InDelta(t, 100.0, TFIDF(text, text), 1e-6)
	})

	t.Run("empty either side scores 0", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, TFIDF("", "some text here"))
		assert.Zero(t, TFIDF("some text here", ""))
		assert.Zero(t, TFIDF("   ", "some text here"))
	})

	t.Run("disjoint vocabularies score 0", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, TFIDF("alpha beta gamma", "delta epsilon zeta"))
	})

	t.Run("partial overlap lands strictly between", func(t *testing.T) {
		t.Parallel()
		got := TFIDF("python sql developer", "python sql analyst")
		assert.Greater(t, got, 0.0)
		assert.Less(t, got, 100.0)
	})

	t.Run("single character tokens ignored", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, TFIDF("a b c", "a b c d"))
	})
}
