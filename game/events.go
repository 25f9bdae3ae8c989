package game

import (
	"encoding/json"
	"fmt"

	"github.com/Ohjackson/Aj-ruKaisen/shared/logger"
)

// Inbound event types. The set is closed: handleEnvelope switches over it
// exhaustively and anything else is rejected.
const (
	EvtJoin        = "join"
	EvtLeave       = "leave"
	EvtSetSecret   = "host.set_secret"
	EvtStartGame   = "host.start_game"
	EvtReadyToggle = "player.ready_toggle"
	EvtSubmitWord  = "submit.word"
	EvtChatSay     = "chat.say"
	EvtStatsReq    = "stats.request"
	EvtPing        = "ping"
)

// ClientEvent is the wire envelope for client→server messages. The payload
// stays raw until the type tag selects its concrete struct.
type ClientEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type JoinPayload struct {
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

type SetSecretPayload struct {
	Secret string `json:"secret"`
}

type SubmitPayload struct {
	Word string `json:"word"`
}

type ChatPayload struct {
	Message string `json:"message"`
}

// DecodeClientEvent parses one inbound frame.
func DecodeClientEvent(data []byte) (ClientEvent, error) {
	var evt ClientEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return ClientEvent{}, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	if evt.Type == "" {
		return ClientEvent{}, ErrBadPayload
	}
	return evt, nil
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var payload T
	if len(raw) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return payload, nil
}

// ServerEvent is the wire envelope for server→client messages. Payloads are
// built exclusively from secret-free view types.
type ServerEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (e ServerEvent) Encode() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		logger.Criticalf("failed to marshal %s event: %v", e.Type, err)
		return []byte(`{"type":"error","payload":{"message":"internal error"}}`)
	}
	return data
}

func MakeJoined(playerID, name string, isHost bool, token string) ServerEvent {
	return ServerEvent{Type: "joined", Payload: map[string]any{
		"playerId": playerID,
		"name":     name,
		"isHost":   isHost,
		"token":    token,
	}}
}

func MakeRoomState(view PublicRoomView) ServerEvent {
	return ServerEvent{Type: "room.state", Payload: view}
}

func MakePhaseChanged(phase Phase, round int, reason string) ServerEvent {
	payload := map[string]any{"phase": phase, "round": round}
	if reason != "" {
		payload["reason"] = reason
	}
	return ServerEvent{Type: "phase.changed", Payload: payload}
}

func MakeTick(phase Phase, round int, timerMs int64) ServerEvent {
	return ServerEvent{Type: "tick", Payload: map[string]any{
		"phase":   phase,
		"round":   round,
		"timerMs": timerMs,
	}}
}

func MakeTurnNext(playerID string) ServerEvent {
	return ServerEvent{Type: "turn.next", Payload: map[string]any{"playerId": playerID}}
}

func MakeRoundPrep(round int, theme, source, rationale string) ServerEvent {
	return ServerEvent{Type: "round.prep", Payload: map[string]any{
		"round":     round,
		"theme":     theme,
		"source":    source,
		"rationale": rationale,
	}}
}

func MakeRoundResultMe(round int, hint string, score int, flags []string, source string) ServerEvent {
	if flags == nil {
		flags = []string{}
	}
	return ServerEvent{Type: "round.result:me", Payload: map[string]any{
		"round":  round,
		"hint":   hint,
		"score":  score,
		"flags":  flags,
		"source": source,
	}}
}

func MakeRoundSummary(round int, entries []SummaryEntry) ServerEvent {
	return ServerEvent{Type: "round.summary", Payload: map[string]any{
		"round":   round,
		"entries": entries,
	}}
}

func MakeEndWinner(playerID, name string, score int) ServerEvent {
	return ServerEvent{Type: "end.winner", Payload: map[string]any{
		"playerId": playerID,
		"name":     name,
		"score":    score,
	}}
}

func MakeStatsOpen(stats StatsSnapshot) ServerEvent {
	return ServerEvent{Type: "stats.open", Payload: stats}
}

func MakeChatMessage(playerID, name, message string, ts int64) ServerEvent {
	return ServerEvent{Type: "chat.message", Payload: map[string]any{
		"playerId": playerID,
		"name":     name,
		"message":  message,
		"ts":       ts,
	}}
}

func MakePlayerReady(playerID string, ready bool) ServerEvent {
	return ServerEvent{Type: "player.ready", Payload: map[string]any{
		"playerId": playerID,
		"ready":    ready,
	}}
}

func MakeError(message string) ServerEvent {
	return ServerEvent{Type: "error", Payload: map[string]any{"message": message}}
}

func MakePong() ServerEvent {
	return ServerEvent{Type: "pong", Payload: map[string]any{}}
}

func MakeLeft() ServerEvent {
	return ServerEvent{Type: "left", Payload: map[string]any{}}
}
