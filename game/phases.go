package game

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/Ohjackson/Aj-ruKaisen/hint"
	"github.com/Ohjackson/Aj-ruKaisen/shared/logger"
)

// enterPhase is the single place a phase change happens. duration zero
// means the phase has no deadline and only events can leave it.
func (r *Room) enterPhase(now time.Time, phase Phase, duration time.Duration, reason string) {
	r.phase = phase
	if duration > 0 {
		r.nextTick = now.Add(duration)
	} else {
		r.nextTick = time.Time{}
	}

	logger.Debugf("phase -> %s (round %d, reason %q)", phase, r.round, reason)
	r.broadcast(MakePhaseChanged(phase, r.round, reason))
	r.broadcast(MakeRoomState(r.publicView(now)))
}

// handleTick drives every timed transition. Ticks arrive at 1Hz; phases
// without a deadline ignore them.
func (r *Room) handleTick(now time.Time) {
	switch r.phase {
	case PhaseSubmission, PhaseDiscussion, PhaseTransition:
	default:
		return
	}

	remaining := r.nextTick.Sub(now).Milliseconds()
	if remaining < 0 {
		remaining = 0
	}
	r.broadcast(MakeTick(r.phase, r.round, remaining))

	if now.Before(r.nextTick) {
		return
	}

	switch r.phase {
	case PhaseSubmission:
		r.finalizeRound(now, "timer")
	case PhaseDiscussion:
		r.enterPhase(now, PhaseTransition, r.settings.TransitionDuration, "")
	case PhaseTransition:
		r.nextRoundOrEnd(now)
	}
}

// beginRound commits the round's secret and opens the submission window.
// In classic mode the secret was staged by the host; in AI mode the
// provider chain picks one here.
func (r *Room) beginRound(now time.Time) error {
	var secret string
	if r.settings.Mode == ModeClassic {
		secret = r.pendingSecret
		r.pendingSecret = ""
		if secret == "" {
			return ErrEmptySecret
		}
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), r.settings.ResolutionTimeout)
		choice, err := r.hinter.ChooseSecret(ctx, r.round+1, lo.Values(r.secrets))
		cancel()
		if err != nil {
			logger.Warningf("secret selection failed for round %d: %v", r.round+1, err)
			return ErrNoSecretAvailable
		}
		secret = choice.Secret
		r.broadcast(MakeRoundPrep(r.round+1, choice.Theme, choice.Source, choice.Rationale))
	}

	r.round++
	r.secrets[r.round] = secret
	r.submissions[r.round] = make(map[string]*Submission)
	for _, p := range r.players {
		p.LastWord = ""
	}

	if r.settings.Mode == ModeClassic {
		r.turnOrder = nil
		for _, p := range r.players {
			if p.Connected {
				r.turnOrder = append(r.turnOrder, p.ID)
			}
		}
		r.turnIdx = 0
	}

	r.enterPhase(now, PhaseSubmission, r.settings.SubmissionDuration, "round_start")
	if r.settings.Mode == ModeClassic {
		r.broadcast(MakeTurnNext(r.currentTurn()))
	}
	return nil
}

// finalizeRound closes the submission window, scores, generates hints,
// and moves to discussion. It runs synchronously on the loop goroutine;
// the provider chain is bounded by ResolutionTimeout so a slow external
// backend degrades to the local corpus instead of stalling the room.
func (r *Room) finalizeRound(now time.Time, reason string) {
	if r.phase != PhaseSubmission {
		return
	}
	r.enterPhase(now, PhaseResolution, 0, reason)

	r.fillMissingSubmissions(now)

	secret := r.secrets[r.round]
	subs := r.submissions[r.round]
	deltas := ScoreRound(subs, ScoreRules{ForbiddenFloor: r.settings.ForbiddenFloor})
	allWords := lo.FilterMap(r.players, func(p *Player, _ int) (string, bool) {
		sub := subs[p.ID]
		if sub == nil || sub.Word == "" {
			return "", false
		}
		return sub.Word, true
	})

	ctx, cancel := context.WithTimeout(context.Background(), r.settings.ResolutionTimeout)
	defer cancel()

	for _, p := range r.players {
		sub := subs[p.ID]
		if sub == nil {
			continue
		}
		sub.ScoreDelta = deltas[p.ID]
		p.Score += sub.ScoreDelta

		result := r.hinter.GenerateHint(ctx, hint.Request{
			Round:      r.round,
			Secret:     secret,
			PlayerName: p.Name,
			Word:       sub.Word,
			Flags:      sub.Flags,
			AllWords:   allWords,
		})
		sub.Hint = result.Hint
		sub.HintSource = result.Source
		sub.AdviceScore = result.AdviceScore
		if result.Flags != nil {
			sub.Flags = result.Flags
		}

		r.unicast(p.ID, MakeRoundResultMe(r.round, result.Hint, sub.ScoreDelta, sub.Flags, result.Source))
	}

	r.broadcast(MakeRoundSummary(r.round, r.summaryEntries(r.round)))
	r.enterPhase(now, PhaseDiscussion, r.settings.DiscussionDuration, "")
}

// fillMissingSubmissions writes an empty placeholder for every roster
// player without a word so the round record stays rectangular.
func (r *Room) fillMissingSubmissions(now time.Time) {
	subs := r.submissions[r.round]
	for _, p := range r.players {
		if _, ok := subs[p.ID]; ok {
			continue
		}
		flags := []string{FlagTimeout}
		if !p.Connected {
			flags = append(flags, FlagDisconnected)
		}
		subs[p.ID] = &Submission{
			PlayerID: p.ID,
			Round:    r.round,
			At:       now,
			Flags:    flags,
		}
	}
}

func (r *Room) nextRoundOrEnd(now time.Time) {
	if r.round >= r.settings.MaxRounds {
		r.concludeGame(now)
		return
	}
	if r.settings.Mode == ModeClassic {
		// waits for the host's next secret, no deadline
		r.enterPhase(now, PhaseSecretSetup, 0, "")
		return
	}
	if err := r.beginRound(now); err != nil {
		logger.Warningf("cannot start round %d, ending game: %v", r.round+1, err)
		r.concludeGame(now)
	}
}

func (r *Room) concludeGame(now time.Time) {
	r.enterPhase(now, PhaseEnd, 0, "game_over")
	if w := r.winner(); w != nil {
		r.broadcast(MakeEndWinner(w.ID, w.Name, w.Score))
	}
	r.broadcast(MakeStatsOpen(r.statsSnapshot()))
	for _, p := range r.players {
		p.Ready = false
	}
}

// resetForNewGame re-arms a finished room for a rematch. Scores carry
// over unless the room was configured to reset them.
func (r *Room) resetForNewGame() {
	r.round = 0
	r.pendingSecret = ""
	r.secrets = make(map[int]string)
	r.submissions = make(map[int]map[string]*Submission)
	r.turnOrder = nil
	r.turnIdx = 0
	for _, p := range r.players {
		p.LastWord = ""
		if r.settings.ResetScoresOnRematch {
			p.Score = 0
		}
	}
}
