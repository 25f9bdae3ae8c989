package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ohjackson/Aj-ruKaisen/hint"
)

func testSettings(mode string) Settings {
	return Settings{
		Mode:               mode,
		MaxRounds:          3,
		MaxPlayers:         5,
		MinPlayers:         2,
		SubmissionDuration: 45 * time.Second,
		DiscussionDuration: 45 * time.Second,
		TransitionDuration: 12 * time.Second,
		ResolutionTimeout:  time.Second,
	}
}

func testRules() *hint.Rules {
	return &hint.Rules{
		Forbidden: []string{"욕설"},
		Spoilers:  []string{"정답"},
	}
}

func newTestRoom(mode string) *Room {
	filter := NewWordFilter(testRules(), allKnown{})
	return NewRoom(testSettings(mode), &fakeHinter{}, filter, fakeTokens{}, &seqIds{})
}

// joinPlayer drives a fresh join through the handler and returns the new
// connection plus its roster ID.
func joinPlayer(t *testing.T, r *Room, name string) (*client, string) {
	t.Helper()
	c := &client{socket: noopSession{}, outbox: make(chan []byte, 16), done: make(chan struct{})}
	r.handleJoin(c, JoinPayload{Name: name})
	id, ok := r.bound[c]
	require.True(t, ok, "join did not bind the connection")
	return c, id
}

func TestRoom_Tick(t *testing.T) {
	r := newTestRoom(ModeClassic)
	now := time.Now()

	r.Tick(now)

	select {
	case val := <-r.ticks:
		assert.Equal(t, now, val)
	default:
		assert.Fail(t, "time signal was not sent to ticks channel")
	}
}

func TestRoom_Tick_DoesNotBlockWhenFull(t *testing.T) {
	r := newTestRoom(ModeClassic)
	for i := 0; i < cap(r.ticks)+10; i++ {
		r.Tick(time.Now())
	}
}

func TestRoom_FirstJoinBecomesHost(t *testing.T) {
	r := newTestRoom(ModeClassic)

	_, hostID := joinPlayer(t, r, "민수")
	_, otherID := joinPlayer(t, r, "영희")

	assert.True(t, r.byID[hostID].Host)
	assert.False(t, r.byID[otherID].Host)
	assert.Equal(t, 2, r.connectedCount())
}

func TestRoom_JoinDefaultsEmptyName(t *testing.T) {
	r := newTestRoom(ModeClassic)
	_, id := joinPlayer(t, r, "   ")
	assert.Equal(t, "플레이어", r.byID[id].Name)
}

func TestRoom_RoomFull(t *testing.T) {
	r := newTestRoom(ModeClassic)
	for i := 0; i < r.settings.MaxPlayers; i++ {
		joinPlayer(t, r, "플레이어")
	}
	r.takePending()

	c := &client{}
	r.handleJoin(c, JoinPayload{Name: "늦은사람"})

	_, bound := r.bound[c]
	assert.False(t, bound)
	tasks := r.takePending()
	require.Len(t, tasks, 1)
	assert.Contains(t, string(tasks[0].data), ErrRoomFull.Error())
}

func TestRoom_DuplicateJoinRejected(t *testing.T) {
	r := newTestRoom(ModeClassic)
	c, _ := joinPlayer(t, r, "민수")
	r.takePending()

	r.handleJoin(c, JoinPayload{Name: "민수"})

	tasks := r.takePending()
	require.Len(t, tasks, 1)
	assert.Contains(t, string(tasks[0].data), ErrAlreadyJoined.Error())
}

func TestRoom_ReconnectRestoresIdentity(t *testing.T) {
	r := newTestRoom(ModeClassic)
	c1, id := joinPlayer(t, r, "민수")
	joinPlayer(t, r, "영희")
	r.byID[id].Score = 4
	r.takePending()

	// connection drops: host moves on, record stays
	r.handleDetach(c1)
	assert.False(t, r.byID[id].Connected)
	assert.False(t, r.byID[id].Host)
	r.takePending()

	c2 := &client{}
	r.handleJoin(c2, JoinPayload{Name: "민수", Token: "tok-" + id})

	player := r.byID[id]
	assert.True(t, player.Connected)
	assert.Equal(t, 4, player.Score)
	assert.Equal(t, id, r.bound[c2])
	assert.Equal(t, 2, r.connectedCount())
	assert.Len(t, r.players, 2, "no duplicate roster record on reconnect")
}

func TestRoom_ReconnectWithStaleTokenJoinsFresh(t *testing.T) {
	r := newTestRoom(ModeClassic)
	joinPlayer(t, r, "민수")
	r.takePending()

	c := &client{}
	r.handleJoin(c, JoinPayload{Name: "수상한사람", Token: "garbage"})

	id, bound := r.bound[c]
	require.True(t, bound)
	assert.Len(t, r.players, 2)
	assert.False(t, r.byID[id].Host)
}

func TestRoom_ReconnectRegainsVacantHost(t *testing.T) {
	r := newTestRoom(ModeClassic)
	c1, id := joinPlayer(t, r, "민수")

	r.handleDetach(c1)
	r.takePending()

	c2 := &client{}
	r.handleJoin(c2, JoinPayload{Token: "tok-" + id})
	assert.True(t, r.byID[id].Host, "sole returning player takes the vacant host role")
}

func TestRoom_HostTransferOnDisconnect(t *testing.T) {
	r := newTestRoom(ModeClassic)
	c1, id1 := joinPlayer(t, r, "민수")
	_, id2 := joinPlayer(t, r, "영희")

	r.handleDetach(c1)

	assert.False(t, r.byID[id1].Host)
	assert.True(t, r.byID[id2].Host)
}

func TestRoom_LeaveAcksThenDisconnects(t *testing.T) {
	r := newTestRoom(ModeClassic)
	_, id := joinPlayer(t, r, "민수")
	r.takePending()

	r.handleLeave(id)

	tasks := r.takePending()
	require.NotEmpty(t, tasks)
	assert.Contains(t, string(tasks[0].data), `"left"`)
	assert.False(t, r.byID[id].Connected)
}

func TestRoom_UnboundEventRejected(t *testing.T) {
	r := newTestRoom(ModeClassic)
	c := &client{}

	r.handleEnvelope(envelope{from: c, evt: ClientEvent{Type: EvtSubmitWord}})

	tasks := r.takePending()
	require.Len(t, tasks, 1)
	assert.Contains(t, string(tasks[0].data), ErrNotJoined.Error())
}

func TestRoom_UnknownEventRejected(t *testing.T) {
	r := newTestRoom(ModeClassic)
	c, _ := joinPlayer(t, r, "민수")
	r.takePending()

	r.handleEnvelope(envelope{from: c, evt: ClientEvent{Type: "no.such.event"}})

	tasks := r.takePending()
	require.Len(t, tasks, 1)
	assert.Contains(t, string(tasks[0].data), ErrUnknownEvent.Error())
}

func TestRoom_PingPong(t *testing.T) {
	r := newTestRoom(ModeClassic)
	c, _ := joinPlayer(t, r, "민수")
	r.takePending()

	r.handleEnvelope(envelope{from: c, evt: ClientEvent{Type: EvtPing}})

	tasks := r.takePending()
	require.Len(t, tasks, 1)
	assert.Contains(t, string(tasks[0].data), `"pong"`)
}

func TestRoom_DebugStateRedactsSecrets(t *testing.T) {
	r := newTestRoom(ModeClassic)
	joinPlayer(t, r, "민수")
	joinPlayer(t, r, "영희")
	r.pendingSecret = "고양이"
	require.NoError(t, r.beginRound(time.Now()))
	r.takePending()

	snapshot := r.debugSnapshot()

	require.Contains(t, snapshot.Secrets, 1)
	assert.True(t, snapshot.Secrets[1].Stored)
	assert.Equal(t, 3, snapshot.Secrets[1].Length)
	assert.NotContains(t, string(MakeStatsOpen(r.statsSnapshot()).Encode()), "고양이")
}
