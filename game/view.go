package game

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
)

// Everything in this file is safe to serialize. Secrets never appear in
// these types: the round record only surfaces as words, scores and flags,
// and the debug snapshot reduces each secret to presence and length.

type PublicPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	LastWord  string `json:"lastWord,omitempty"`
	IsHost    bool   `json:"isHost"`
	Connected bool   `json:"connected"`
	Ready     bool   `json:"ready"`
}

type PublicRoomView struct {
	Phase     Phase          `json:"phase"`
	Round     int            `json:"round"`
	MaxRounds int            `json:"maxRounds"`
	Mode      string         `json:"mode"`
	Turn      string         `json:"turn,omitempty"`
	TimerMs   int64          `json:"timerMs"`
	Players   []PublicPlayer `json:"players"`
}

// SummaryEntry is one row of a round summary. Classic rounds publish
// anonymized slots; AI rounds attribute words by name.
type SummaryEntry struct {
	Slot     string   `json:"slot,omitempty"`
	PlayerID string   `json:"playerId,omitempty"`
	Name     string   `json:"name,omitempty"`
	Word     string   `json:"word"`
	Score    int      `json:"score"`
	Flags    []string `json:"flags,omitempty"`
}

type RoundCell struct {
	Word  string   `json:"word"`
	Score int      `json:"score"`
	Hint  string   `json:"hint,omitempty"`
	Flags []string `json:"flags,omitempty"`
}

type PlayerStats struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Total    int         `json:"total"`
	Rank     int         `json:"rank"`
	PerRound []RoundCell `json:"perRound"`
}

type StatsSnapshot struct {
	Rounds  int           `json:"rounds"`
	Players []PlayerStats `json:"players"`
}

type SecretInfo struct {
	Stored bool `json:"stored"`
	Length int  `json:"length"`
}

type DebugSubmission struct {
	Word  string   `json:"word"`
	Score int      `json:"score"`
	Hint  string   `json:"hint,omitempty"`
	Flags []string `json:"flags,omitempty"`
}

type DebugSnapshot struct {
	Phase   Phase                              `json:"phase"`
	Round   int                                `json:"round"`
	TimerMs int64                              `json:"timerMs"`
	Players []PublicPlayer                     `json:"players"`
	Secrets map[int]SecretInfo                 `json:"secrets"`
	Rounds  map[int]map[string]DebugSubmission `json:"rounds"`
	Chat    []ChatEntry                        `json:"chat"`
}

func (r *Room) publicView(now time.Time) PublicRoomView {
	var timerMs int64
	if !r.nextTick.IsZero() {
		timerMs = r.nextTick.Sub(now).Milliseconds()
		if timerMs < 0 {
			timerMs = 0
		}
	}
	return PublicRoomView{
		Phase:     r.phase,
		Round:     r.round,
		MaxRounds: r.settings.MaxRounds,
		Mode:      r.settings.Mode,
		Turn:      r.currentTurn(),
		TimerMs:   timerMs,
		Players: lo.Map(r.players, func(p *Player, _ int) PublicPlayer {
			return PublicPlayer{
				ID:        p.ID,
				Name:      p.Name,
				Score:     p.Score,
				LastWord:  p.LastWord,
				IsHost:    p.Host,
				Connected: p.Connected,
				Ready:     p.Ready,
			}
		}),
	}
}

func (r *Room) summaryEntries(round int) []SummaryEntry {
	subs := r.submissions[round]
	entries := make([]SummaryEntry, 0, len(r.players))
	for i, p := range r.players {
		sub := subs[p.ID]
		if sub == nil {
			continue
		}
		entry := SummaryEntry{
			Word:  sub.Word,
			Score: sub.ScoreDelta,
			Flags: sub.Flags,
		}
		if r.settings.Mode == ModeClassic {
			entry.Slot = fmt.Sprintf("P%d", i+1)
		} else {
			entry.PlayerID = p.ID
			entry.Name = p.Name
		}
		entries = append(entries, entry)
	}
	return entries
}

func (r *Room) statsSnapshot() StatsSnapshot {
	ranked := r.rankPlayers()
	snapshot := StatsSnapshot{
		Rounds:  r.round,
		Players: make([]PlayerStats, 0, len(ranked)),
	}
	for rank, p := range ranked {
		stats := PlayerStats{
			ID:       p.ID,
			Name:     p.Name,
			Total:    p.Score,
			Rank:     rank + 1,
			PerRound: make([]RoundCell, 0, r.round),
		}
		for round := 1; round <= r.round; round++ {
			sub := r.submissions[round][p.ID]
			if sub == nil {
				stats.PerRound = append(stats.PerRound, RoundCell{})
				continue
			}
			stats.PerRound = append(stats.PerRound, RoundCell{
				Word:  sub.Word,
				Score: sub.ScoreDelta,
				Hint:  sub.Hint,
				Flags: sub.Flags,
			})
		}
		snapshot.Players = append(snapshot.Players, stats)
	}
	return snapshot
}

func (r *Room) winner() *Player {
	ranked := r.rankPlayers()
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0]
}

// rankPlayers orders by total score, ties broken by who reached their
// final total in an earlier round, then by join order.
func (r *Room) rankPlayers() []*Player {
	joinOrder := make(map[string]int, len(r.players))
	for i, p := range r.players {
		joinOrder[p.ID] = i
	}

	ranked := make([]*Player, len(r.players))
	copy(ranked, r.players)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ra, rb := r.settledRound(a.ID), r.settledRound(b.ID)
		if ra != rb {
			return ra < rb
		}
		return joinOrder[a.ID] < joinOrder[b.ID]
	})
	return ranked
}

// settledRound is the last round in which the player's score moved, i.e.
// the round their final total was reached.
func (r *Room) settledRound(playerID string) int {
	settled := 0
	for round := 1; round <= r.round; round++ {
		if sub := r.submissions[round][playerID]; sub != nil && sub.ScoreDelta != 0 {
			settled = round
		}
	}
	return settled
}

func (r *Room) debugSnapshot() DebugSnapshot {
	now := time.Now()
	view := r.publicView(now)

	secrets := make(map[int]SecretInfo, len(r.secrets))
	for round, secret := range r.secrets {
		secrets[round] = SecretInfo{Stored: secret != "", Length: len([]rune(secret))}
	}

	rounds := make(map[int]map[string]DebugSubmission, len(r.submissions))
	for round, subs := range r.submissions {
		row := make(map[string]DebugSubmission, len(subs))
		for playerID, sub := range subs {
			row[playerID] = DebugSubmission{
				Word:  sub.Word,
				Score: sub.ScoreDelta,
				Hint:  sub.Hint,
				Flags: sub.Flags,
			}
		}
		rounds[round] = row
	}

	chat := make([]ChatEntry, len(r.chatLog))
	copy(chat, r.chatLog)

	return DebugSnapshot{
		Phase:   r.phase,
		Round:   r.round,
		TimerMs: view.TimerMs,
		Players: view.Players,
		Secrets: secrets,
		Rounds:  rounds,
		Chat:    chat,
	}
}
