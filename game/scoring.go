package game

import (
	"strings"

	"github.com/samber/lo"
)

// ScoreRules configures the only tunable part of the formula: the floor
// applied to forbidden submissions (0, or -1 for the harsher variant).
type ScoreRules struct {
	ForbiddenFloor int
}

// ScoreRound maps one round's submissions to per-player score deltas.
//
// The formula is fully deterministic: +1 base for a non-empty word, +1 when
// the word is unique within the round (case-insensitive, trimmed), +1
// unless flagged too_direct. Flagged submissions are clamped: too_direct
// to 0, forbidden to the configured floor. An AI advice score never enters
// here.
func ScoreRound(subs map[string]*Submission, rules ScoreRules) map[string]int {
	counts := lo.CountValuesBy(lo.Values(subs), func(s *Submission) string {
		return normalizeWord(s.Word)
	})

	deltas := make(map[string]int, len(subs))
	for playerID, sub := range subs {
		word := normalizeWord(sub.Word)
		if word == "" {
			deltas[playerID] = 0
			continue
		}

		delta := 1
		if counts[word] == 1 {
			delta++
		}
		if !hasFlag(sub.Flags, FlagTooDirect) {
			delta++
		}

		switch {
		case hasFlag(sub.Flags, FlagForbidden):
			delta = rules.ForbiddenFloor
		case hasFlag(sub.Flags, FlagTooDirect):
			delta = 0
		}

		deltas[playerID] = delta
	}
	return deltas
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
