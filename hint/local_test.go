package hint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal() *LocalProvider {
	corpus := NewCorpus(testText)
	rules := &Rules{
		Forbidden: []string{"욕설"},
		Spoilers:  []string{"정답"},
	}
	return NewLocalProvider(corpus, rules)
}

func TestLocalGenerateHint_MasksSecret(t *testing.T) {
	p := newTestLocal()

	result, err := p.GenerateHint(context.Background(), Request{
		Round:  1,
		Secret: "고양이",
		Word:   "산책",
		Flags:  []string{"off_topic"},
	})

	require.NoError(t, err)
	assert.NotContains(t, result.Hint, "고양이")
	assert.NotEmpty(t, result.Hint)
	assert.Equal(t, SourceLocal, result.Source)
	assert.Equal(t, []string{"off_topic"}, result.Flags, "flags pass through untouched")
	assert.Equal(t, 2, result.AdviceScore)
}

func TestLocalGenerateHint_FallbackSentence(t *testing.T) {
	p := newTestLocal()

	result, err := p.GenerateHint(context.Background(), Request{
		Round:  1,
		Secret: "우주선",
		Word:   "로켓",
	})

	require.NoError(t, err)
	assert.Contains(t, result.Hint, "로켓")
	assert.Equal(t, 1, result.AdviceScore)
}

func TestLocalGenerateHint_EmptyWord(t *testing.T) {
	p := newTestLocal()

	result, err := p.GenerateHint(context.Background(), Request{
		Round:  1,
		Secret: "우주선",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Hint)
	assert.Equal(t, 0, result.AdviceScore)
}

func TestLocalChooseSecret_Deterministic(t *testing.T) {
	p := newTestLocal()

	first, err := p.ChooseSecret(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Secret)
	assert.Equal(t, SourceLocal, first.Source)

	again, err := p.ChooseSecret(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Secret, again.Secret)
}

func TestLocalChooseSecret_ExcludesUsed(t *testing.T) {
	p := newTestLocal()

	first, err := p.ChooseSecret(context.Background(), 1, nil)
	require.NoError(t, err)

	second, err := p.ChooseSecret(context.Background(), 1, []string{first.Secret})
	require.NoError(t, err)
	assert.NotEqual(t, first.Secret, second.Secret)
}

func TestLocalChooseSecret_PoolExhausted(t *testing.T) {
	p := newTestLocal()

	used := p.corpus.Keywords(nil)
	_, err := p.ChooseSecret(context.Background(), 4, used)
	assert.Error(t, err)
}
