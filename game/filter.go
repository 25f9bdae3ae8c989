package game

import (
	"strings"

	"github.com/Ohjackson/Aj-ruKaisen/hint"
)

// Submission flags. Filter flags feed scoring; timeout/disconnected mark
// placeholder submissions created at round close.
const (
	FlagForbidden    = "forbidden"
	FlagOffTopic     = "off_topic"
	FlagTooDirect    = "too_direct"
	FlagTimeout      = "timeout"
	FlagDisconnected = "disconnected"
)

// KeywordIndex is the corpus-membership lookup the filter needs to call a
// word on-topic. *hint.Corpus satisfies it.
type KeywordIndex interface {
	Knows(text string) bool
}

// WordFilter classifies a submitted word against the static rule set and
// the corpus. Classification never rejects a submission; it only feeds
// scoring.
type WordFilter struct {
	forbidden map[string]struct{}
	spoilers  map[string]struct{}
	corpus    KeywordIndex
}

func NewWordFilter(rules *hint.Rules, corpus KeywordIndex) *WordFilter {
	return &WordFilter{
		forbidden: lowerSet(rules.Forbidden),
		spoilers:  lowerSet(rules.Spoilers),
		corpus:    corpus,
	}
}

// Classify returns the word's flags for the given round secret: empty means
// clean.
func (f *WordFilter) Classify(secret, word string) []string {
	secretTokens := lowerSet(hint.Tokens(secret))
	wordTokens := lowerSet(hint.Tokens(word))

	var flags []string
	addFlag := func(flag string) {
		for _, existing := range flags {
			if existing == flag {
				return
			}
		}
		flags = append(flags, flag)
	}

	for token := range wordTokens {
		if _, hit := secretTokens[token]; hit {
			addFlag(FlagTooDirect)
		}
		if _, hit := f.spoilers[token]; hit {
			addFlag(FlagTooDirect)
		}
		if _, hit := f.forbidden[token]; hit {
			addFlag(FlagForbidden)
		}
	}

	if len(wordTokens) == 0 || !f.corpus.Knows(word) {
		addFlag(FlagOffTopic)
	}

	return flags
}

// MaskTerms returns every rule term that chat masking must hide.
func (f *WordFilter) MaskTerms() []string {
	terms := make([]string, 0, len(f.forbidden)+len(f.spoilers))
	for t := range f.forbidden {
		terms = append(terms, t)
	}
	for t := range f.spoilers {
		terms = append(terms, t)
	}
	return terms
}

func lowerSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
