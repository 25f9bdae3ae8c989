package game

import (
	"context"
	"time"

	"github.com/Ohjackson/Aj-ruKaisen/hint"
)

// Game modes. Classic has the host typing each round's secret and strict
// turn order; AI mode lets the hint provider pick secrets and opens the
// submission window to everyone at once.
const (
	ModeClassic = "classic"
	ModeAI      = "ai"
)

type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseReady       Phase = "ready"
	PhaseSecretSetup Phase = "secret_setup"
	PhaseSubmission  Phase = "submission"
	PhaseResolution  Phase = "resolution"
	PhaseDiscussion  Phase = "discussion"
	PhaseTransition  Phase = "transition"
	PhaseEnd         Phase = "end"
)

const chatLogMax = 200

// Settings is the static configuration of a room.
type Settings struct {
	Mode       string
	MaxRounds  int
	MaxPlayers int
	MinPlayers int

	SubmissionDuration time.Duration
	DiscussionDuration time.Duration
	TransitionDuration time.Duration

	// ResolutionTimeout caps the whole hint/secret generation of a round;
	// past it the fallback chain must already have answered locally.
	ResolutionTimeout time.Duration

	ForbiddenFloor       int
	ResetScoresOnRematch bool
}

// Player is a roster record. It survives disconnects: the reconnection
// token maps back to the same record, keeping score and host status.
type Player struct {
	ID        string
	Name      string
	Host      bool
	Ready     bool
	Connected bool
	Score     int
	LastWord  string
	JoinedAt  time.Time
}

// Submission is one player's word for one round. Immutable once scored;
// while the round is open a resubmission overwrites it in place.
type Submission struct {
	PlayerID string
	Round    int
	Word     string
	At       time.Time

	Flags       []string
	ScoreDelta  int
	Hint        string
	HintSource  string
	AdviceScore int
}

type ChatEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Message  string `json:"message"`
	Ts       int64  `json:"ts"`
}

// Hinter is the hint-generation capability as seen by the room: it always
// answers (the fallback chain absorbs provider faults).
type Hinter interface {
	GenerateHint(ctx context.Context, req hint.Request) hint.Result
	ChooseSecret(ctx context.Context, round int, used []string) (hint.SecretChoice, error)
}

// TokenIssuer issues and verifies reconnection tokens.
type TokenIssuer interface {
	Generate(id string, now time.Time) (string, error)
	Verify(token string) (string, error)
}

type UniqueIdGenerator interface {
	Generate() string
}

type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}

type envelope struct {
	from *client
	evt  ClientEvent
}

// sendTask is one queued outbound frame. Handlers only collect tasks; the
// game loop flushes them, which keeps handlers synchronous and testable.
type sendTask struct {
	to   *client
	toID string
	data []byte
}

// Room owns all mutable game state. Every mutation happens on the GameLoop
// goroutine; the channels below are the only way in.
type Room struct {
	settings Settings
	hinter   Hinter
	filter   *WordFilter
	tokens   TokenIssuer
	ids      UniqueIdGenerator

	phase         Phase
	round         int
	pendingSecret string
	secrets       map[int]string
	submissions   map[int]map[string]*Submission
	players       []*Player
	byID          map[string]*Player
	turnOrder     []string
	turnIdx       int
	nextTick      time.Time
	chatLog       []ChatEntry

	// connection-to-player-identity mapping, mutated only by join/leave/
	// detach handlers on the loop goroutine
	sessions map[string]*client
	bound    map[*client]string

	pending []sendTask

	inbox     chan envelope
	ticks     chan time.Time
	detach    chan *client
	debugReqs chan chan DebugSnapshot
	done      chan struct{}
}

func NewRoom(settings Settings, hinter Hinter, filter *WordFilter, tokens TokenIssuer, ids UniqueIdGenerator) *Room {
	return &Room{
		settings:    settings,
		hinter:      hinter,
		filter:      filter,
		tokens:      tokens,
		ids:         ids,
		phase:       PhaseLobby,
		secrets:     make(map[int]string),
		submissions: make(map[int]map[string]*Submission),
		byID:        make(map[string]*Player),
		sessions:    make(map[string]*client),
		bound:       make(map[*client]string),
		inbox:       make(chan envelope, 1024),
		ticks:       make(chan time.Time, 24),
		detach:      make(chan *client, 64),
		debugReqs:   make(chan chan DebugSnapshot, 16),
		done:        make(chan struct{}),
	}
}

// Tick pushes one clock tick into the serialized queue. Non-blocking: a
// stalled loop just coalesces ticks.
func (r *Room) Tick(now time.Time) {
	select {
	case r.ticks <- now:
	default:
	}
}

// DetachClient reports a dead connection to the loop.
func (r *Room) DetachClient(c *client) {
	select {
	case r.detach <- c:
	case <-r.done:
	}
}

// DebugState asks the loop for a redacted state snapshot.
func (r *Room) DebugState(ctx context.Context) (DebugSnapshot, error) {
	resp := make(chan DebugSnapshot, 1)
	select {
	case r.debugReqs <- resp:
	case <-ctx.Done():
		return DebugSnapshot{}, ctx.Err()
	case <-r.done:
		return DebugSnapshot{}, context.Canceled
	}
	select {
	case snapshot := <-resp:
		return snapshot, nil
	case <-ctx.Done():
		return DebugSnapshot{}, ctx.Err()
	}
}

func (r *Room) CloseAndRelease() {
	close(r.done)
}

func (r *Room) takePending() []sendTask {
	tasks := r.pending
	r.pending = nil
	return tasks
}

func (r *Room) flush() {
	for _, task := range r.takePending() {
		if task.to != nil {
			task.to.send(task.data)
		}
	}
}

func (r *Room) sendToClient(c *client, evt ServerEvent) {
	r.pending = append(r.pending, sendTask{to: c, toID: r.bound[c], data: evt.Encode()})
}

func (r *Room) unicast(playerID string, evt ServerEvent) {
	c := r.sessions[playerID]
	if c == nil {
		return
	}
	r.pending = append(r.pending, sendTask{to: c, toID: playerID, data: evt.Encode()})
}

func (r *Room) broadcast(evt ServerEvent) {
	data := evt.Encode()
	for _, p := range r.players {
		c := r.sessions[p.ID]
		if !p.Connected || c == nil {
			continue
		}
		r.pending = append(r.pending, sendTask{to: c, toID: p.ID, data: data})
	}
}
