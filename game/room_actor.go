package game

import (
	"strings"
	"time"

	"github.com/Ohjackson/Aj-ruKaisen/hint"
	"github.com/Ohjackson/Aj-ruKaisen/shared/logger"
)

// GameLoop drains every input channel on a single goroutine. All room
// state is owned here; handlers queue outbound frames and flush runs
// once per drained message, never mid-handler.
func (r *Room) GameLoop() {
	for {
		select {
		case env := <-r.inbox:
			r.handleEnvelope(env)
		case now := <-r.ticks:
			r.handleTick(now)
		case c := <-r.detach:
			r.handleDetach(c)
		case resp := <-r.debugReqs:
			resp <- r.debugSnapshot()
		case <-r.done:
			return
		}
		r.flush()
	}
}

func (r *Room) handleEnvelope(env envelope) {
	if env.evt.Type == EvtJoin {
		payload, err := decodePayload[JoinPayload](env.evt.Payload)
		if err != nil {
			r.sendToClient(env.from, MakeError(ErrBadPayload.Error()))
			return
		}
		r.handleJoin(env.from, payload)
		return
	}

	playerID, ok := r.bound[env.from]
	if !ok {
		r.sendToClient(env.from, MakeError(ErrNotJoined.Error()))
		return
	}

	switch env.evt.Type {
	case EvtLeave:
		r.handleLeave(playerID)
	case EvtSetSecret:
		payload, err := decodePayload[SetSecretPayload](env.evt.Payload)
		if err != nil {
			r.reject(playerID, ErrBadPayload)
			return
		}
		r.reject(playerID, r.handleSetSecret(playerID, payload.Secret))
	case EvtStartGame:
		r.reject(playerID, r.handleStartGame(playerID))
	case EvtReadyToggle:
		r.reject(playerID, r.handleReadyToggle(playerID))
	case EvtSubmitWord:
		payload, err := decodePayload[SubmitPayload](env.evt.Payload)
		if err != nil {
			r.reject(playerID, ErrBadPayload)
			return
		}
		r.reject(playerID, r.handleSubmit(playerID, payload.Word))
	case EvtChatSay:
		payload, err := decodePayload[ChatPayload](env.evt.Payload)
		if err != nil {
			r.reject(playerID, ErrBadPayload)
			return
		}
		r.reject(playerID, r.handleChat(playerID, payload.Message))
	case EvtStatsReq:
		r.unicast(playerID, MakeStatsOpen(r.statsSnapshot()))
	case EvtPing:
		r.unicast(playerID, MakePong())
	default:
		r.reject(playerID, ErrUnknownEvent)
	}
}

// reject converts a handler error into an error event for the sender.
func (r *Room) reject(playerID string, err error) {
	if err == nil {
		return
	}
	r.unicast(playerID, MakeError(err.Error()))
}

func (r *Room) handleJoin(c *client, payload JoinPayload) {
	if _, dup := r.bound[c]; dup {
		r.sendToClient(c, MakeError(ErrAlreadyJoined.Error()))
		return
	}

	name := strings.TrimSpace(payload.Name)

	// A valid reconnection token that maps onto a roster record takes
	// this path; anything else degrades to a fresh join.
	if payload.Token != "" {
		if id, err := r.tokens.Verify(payload.Token); err == nil {
			if player, ok := r.byID[id]; ok {
				r.reattach(c, player, name, payload.Token)
				return
			}
		} else {
			logger.Debugf("join with stale token rejected: %v", err)
		}
	}

	if r.connectedCount() >= r.settings.MaxPlayers {
		r.sendToClient(c, MakeError(ErrRoomFull.Error()))
		return
	}

	now := time.Now()
	id := r.ids.Generate()
	token, err := r.tokens.Generate(id, now)
	if err != nil {
		logger.Criticalf("reconnection token generation failed: %v", err)
		r.sendToClient(c, MakeError("접속 처리 중 오류가 발생했습니다."))
		return
	}

	if name == "" {
		name = "플레이어"
	}

	player := &Player{
		ID:        id,
		Name:      name,
		Host:      !r.hasConnectedHost(),
		Connected: true,
		JoinedAt:  now,
	}
	r.players = append(r.players, player)
	r.byID[id] = player
	r.bind(c, player)

	r.sendToClient(c, MakeJoined(player.ID, player.Name, player.Host, token))
	r.broadcast(MakeRoomState(r.publicView(now)))
}

func (r *Room) reattach(c *client, player *Player, name, token string) {
	if old := r.sessions[player.ID]; old != nil {
		delete(r.bound, old)
		old.shutdown()
	}

	player.Connected = true
	if name != "" {
		player.Name = name
	}
	if !r.hasConnectedHost() {
		player.Host = true
	}
	r.bind(c, player)

	r.sendToClient(c, MakeJoined(player.ID, player.Name, player.Host, token))
	r.broadcast(MakeRoomState(r.publicView(time.Now())))
}

func (r *Room) handleLeave(playerID string) {
	r.unicast(playerID, MakeLeft())
	r.dropConnection(playerID)
	r.disconnectPlayer(playerID)
}

func (r *Room) handleDetach(c *client) {
	playerID, ok := r.bound[c]
	c.shutdown()
	if !ok {
		return
	}
	r.dropConnection(playerID)
	r.disconnectPlayer(playerID)
}

// disconnectPlayer marks the roster record offline and repairs whatever
// depended on the player being present: host role, turn order, and the
// early-close condition of an open submission window.
func (r *Room) disconnectPlayer(playerID string) {
	player := r.byID[playerID]
	if player == nil || !player.Connected {
		return
	}

	hadTurn := r.settings.Mode == ModeClassic && r.currentTurn() == playerID

	player.Connected = false
	player.Ready = false
	if hadTurn {
		r.normalizeTurn()
	}
	if player.Host {
		player.Host = false
		r.transferHost()
	}

	now := time.Now()
	r.broadcast(MakeRoomState(r.publicView(now)))

	if r.phase != PhaseSubmission {
		return
	}
	if r.settings.Mode == ModeClassic {
		if hadTurn {
			if next := r.currentTurn(); next != "" {
				r.broadcast(MakeTurnNext(next))
			} else {
				r.finalizeRound(now, "all_submitted")
			}
		}
		return
	}
	if r.allConnectedSubmitted() {
		r.finalizeRound(now, "all_submitted")
	}
}

func (r *Room) handleSetSecret(playerID, secret string) error {
	if r.settings.Mode != ModeClassic {
		return ErrOutOfPhase
	}
	player := r.byID[playerID]
	if !player.Host {
		return ErrNotHost
	}
	switch r.phase {
	case PhaseLobby, PhaseSecretSetup, PhaseTransition:
		// after the final round only the end screen can restart the game
		if r.round >= r.settings.MaxRounds {
			return ErrOutOfPhase
		}
	case PhaseEnd:
	default:
		return ErrOutOfPhase
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ErrEmptySecret
	}
	if r.connectedCount() < r.settings.MinPlayers {
		return ErrNotEnough
	}

	if r.phase == PhaseEnd {
		r.resetForNewGame()
	}

	r.pendingSecret = secret
	return r.beginRound(time.Now())
}

func (r *Room) handleStartGame(playerID string) error {
	if r.settings.Mode != ModeAI {
		return ErrOutOfPhase
	}
	player := r.byID[playerID]
	if !player.Host {
		return ErrNotHost
	}
	switch r.phase {
	case PhaseLobby, PhaseReady, PhaseEnd:
	default:
		return ErrOutOfPhase
	}
	if r.connectedCount() < r.settings.MinPlayers {
		return ErrNotEnough
	}
	if !r.allConnectedReady() {
		return ErrNotAllReady
	}

	if r.phase == PhaseEnd {
		r.resetForNewGame()
	}
	return r.beginRound(time.Now())
}

func (r *Room) handleReadyToggle(playerID string) error {
	if r.settings.Mode != ModeAI {
		return ErrOutOfPhase
	}
	switch r.phase {
	case PhaseLobby, PhaseReady, PhaseEnd:
	default:
		return ErrOutOfPhase
	}

	player := r.byID[playerID]
	player.Ready = !player.Ready

	now := time.Now()
	r.broadcast(MakePlayerReady(player.ID, player.Ready))

	if r.phase == PhaseLobby && player.Ready &&
		r.connectedCount() >= r.settings.MinPlayers && r.allConnectedReady() {
		r.enterPhase(now, PhaseReady, 0, "all_ready")
	} else if r.phase == PhaseReady && !player.Ready {
		r.enterPhase(now, PhaseLobby, 0, "ready_broken")
	} else {
		r.broadcast(MakeRoomState(r.publicView(now)))
	}
	return nil
}

func (r *Room) handleSubmit(playerID, word string) error {
	if r.phase != PhaseSubmission {
		return ErrOutOfPhase
	}
	if r.settings.Mode == ModeClassic && r.currentTurn() != playerID {
		return ErrNotYourTurn
	}

	word = strings.TrimSpace(word)
	if word == "" {
		return ErrEmptyWord
	}
	if len(strings.Fields(word)) > 1 {
		return ErrMultiWord
	}

	now := time.Now()
	flags := r.filter.Classify(r.secrets[r.round], word)

	subs := r.submissions[r.round]
	if sub, ok := subs[playerID]; ok {
		// re-submission within the window replaces the previous word
		sub.Word = word
		sub.At = now
		sub.Flags = flags
	} else {
		subs[playerID] = &Submission{
			PlayerID: playerID,
			Round:    r.round,
			Word:     word,
			At:       now,
			Flags:    flags,
		}
	}
	r.byID[playerID].LastWord = word

	if r.settings.Mode == ModeClassic {
		r.advanceTurn()
	}
	r.broadcast(MakeRoomState(r.publicView(now)))

	if r.settings.Mode == ModeClassic {
		if next := r.currentTurn(); next != "" {
			r.broadcast(MakeTurnNext(next))
			return nil
		}
		r.finalizeRound(now, "all_submitted")
		return nil
	}

	if r.allConnectedSubmitted() {
		r.finalizeRound(now, "all_submitted")
	}
	return nil
}

func (r *Room) handleChat(playerID, message string) error {
	switch r.phase {
	case PhaseLobby, PhaseReady, PhaseDiscussion:
	default:
		return ErrChatClosed
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	terms := r.filter.MaskTerms()
	if secret := r.secrets[r.round]; secret != "" {
		terms = append(terms, secret)
	}
	masked := hint.Mask(message, terms)

	player := r.byID[playerID]
	entry := ChatEntry{
		PlayerID: player.ID,
		Name:     player.Name,
		Message:  masked,
		Ts:       time.Now().UnixMilli(),
	}
	r.chatLog = append(r.chatLog, entry)
	if len(r.chatLog) > chatLogMax {
		r.chatLog = r.chatLog[len(r.chatLog)-chatLogMax:]
	}

	r.broadcast(MakeChatMessage(entry.PlayerID, entry.Name, entry.Message, entry.Ts))
	return nil
}

func (r *Room) bind(c *client, player *Player) {
	r.sessions[player.ID] = c
	r.bound[c] = player.ID
}

func (r *Room) dropConnection(playerID string) {
	c := r.sessions[playerID]
	if c == nil {
		return
	}
	delete(r.sessions, playerID)
	delete(r.bound, c)
}

func (r *Room) connectedCount() int {
	count := 0
	for _, p := range r.players {
		if p.Connected {
			count++
		}
	}
	return count
}

func (r *Room) hasConnectedHost() bool {
	for _, p := range r.players {
		if p.Host && p.Connected {
			return true
		}
	}
	return false
}

// transferHost hands the role to the earliest-joined connected player.
// With everyone offline the role stays vacant until a reconnect.
func (r *Room) transferHost() {
	for _, p := range r.players {
		if p.Connected {
			p.Host = true
			return
		}
	}
}

func (r *Room) allConnectedReady() bool {
	for _, p := range r.players {
		if p.Connected && !p.Ready {
			return false
		}
	}
	return true
}
