package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ohjackson/Aj-ruKaisen/hint"
)

func newTestFilter(corpus KeywordIndex) *WordFilter {
	return NewWordFilter(&hint.Rules{
		Forbidden: []string{"욕설", "바보"},
		Spoilers:  []string{"정답"},
	}, corpus)
}

func TestClassify(t *testing.T) {
	f := newTestFilter(allKnown{})

	tests := []struct {
		name   string
		secret string
		word   string
		want   []string
	}{
		{"clean word", "고양이", "상자", nil},
		{"secret itself is too direct", "고양이", "고양이", []string{FlagTooDirect}},
		{"case insensitive secret match", "Cat", "cat", []string{FlagTooDirect}},
		{"spoiler term is too direct", "고양이", "정답", []string{FlagTooDirect}},
		{"forbidden term", "고양이", "욕설", []string{FlagForbidden}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Classify(tt.secret, tt.word))
		})
	}
}

func TestClassify_OffTopic(t *testing.T) {
	f := newTestFilter(nothingKnown{})
	assert.Equal(t, []string{FlagOffTopic}, f.Classify("고양이", "상자"))
}

func TestClassify_ForbiddenAndDirectStack(t *testing.T) {
	f := newTestFilter(allKnown{})
	flags := f.Classify("욕설", "욕설")
	assert.Contains(t, flags, FlagTooDirect)
	assert.Contains(t, flags, FlagForbidden)
}

func TestMaskTerms_CoversBothRuleLists(t *testing.T) {
	f := newTestFilter(allKnown{})
	terms := f.MaskTerms()
	assert.ElementsMatch(t, []string{"욕설", "바보", "정답"}, terms)
}
