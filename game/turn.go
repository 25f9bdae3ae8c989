package game

// Turn handling for classic mode. The order is frozen when the round
// opens; the cursor only ever moves forward, so a slot skipped while its
// player was offline does not come back even if the player reconnects.
//
// The cursor invariant: turnIdx points at an eligible player or past the
// end of the order. It is maintained at the three points that can break
// it (round start, accepted submission, turn holder disconnecting);
// currentTurn itself is a pure read, safe to call from view assembly.

// currentTurn returns the ID of the player whose turn it is, or "" when
// the order is exhausted or turns do not apply.
func (r *Room) currentTurn() string {
	if r.settings.Mode != ModeClassic || r.phase != PhaseSubmission {
		return ""
	}
	if r.turnIdx >= len(r.turnOrder) {
		return ""
	}
	return r.turnOrder[r.turnIdx]
}

// advanceTurn moves past the player who just submitted.
func (r *Room) advanceTurn() {
	if r.turnIdx < len(r.turnOrder) {
		r.turnIdx++
	}
	r.normalizeTurn()
}

// normalizeTurn moves the cursor past players who cannot take the turn
// right now: disconnected ones and those who already submitted.
func (r *Room) normalizeTurn() {
	for r.turnIdx < len(r.turnOrder) {
		if r.eligibleForTurn(r.turnOrder[r.turnIdx]) {
			return
		}
		r.turnIdx++
	}
}

func (r *Room) eligibleForTurn(playerID string) bool {
	player := r.byID[playerID]
	if player == nil || !player.Connected {
		return false
	}
	_, submitted := r.submissions[r.round][playerID]
	return !submitted
}

// allConnectedSubmitted reports whether every connected player has a word
// in for the current round. False with nobody connected, so an empty room
// never closes its own round.
func (r *Room) allConnectedSubmitted() bool {
	connected := 0
	for _, p := range r.players {
		if !p.Connected {
			continue
		}
		connected++
		if _, ok := r.submissions[r.round][p.ID]; !ok {
			return false
		}
	}
	return connected > 0
}
