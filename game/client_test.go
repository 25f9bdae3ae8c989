package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReadPump(t *testing.T) {
	t.Parallel()

	t.Run("read error releases and detaches", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockNetworkSession{}
		mockSocket.On("Read").Return([]byte{}, assert.AnError)

		r := newTestRoom(ModeClassic)
		c := newClient(mockSocket, r)

		wg := sync.WaitGroup{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.ReadPump()
		}()
		wg.Wait()

		select {
		case detached := <-r.detach:
			assert.Equal(t, c, detached)
		default:
			assert.Fail(t, "dead connection was not reported to the room")
		}
		mockSocket.AssertExpectations(t)
	})

	t.Run("good frame lands in the room inbox", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockNetworkSession{}
		frame := []byte(`{"type":"ping"}`)
		mockSocket.On("Read").Return(frame, nil).Once()
		mockSocket.On("Read").Return([]byte{}, assert.AnError).Once()

		r := newTestRoom(ModeClassic)
		c := newClient(mockSocket, r)
		c.ReadPump()

		select {
		case env := <-r.inbox:
			assert.Equal(t, EvtPing, env.evt.Type)
			assert.Equal(t, c, env.from)
		default:
			assert.Fail(t, "frame was not forwarded to the inbox")
		}
		mockSocket.AssertExpectations(t)
	})

	t.Run("garbage frame answers an error and keeps reading", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockNetworkSession{}
		mockSocket.On("Read").Return([]byte(`not json`), nil).Once()
		mockSocket.On("Read").Return([]byte{}, assert.AnError).Once()

		r := newTestRoom(ModeClassic)
		c := newClient(mockSocket, r)
		c.ReadPump()

		assert.Empty(t, r.inbox)
		select {
		case data := <-c.outbox:
			assert.Contains(t, string(data), ErrBadPayload.Error())
		default:
			assert.Fail(t, "no error frame was queued")
		}
		mockSocket.AssertExpectations(t)
	})

	t.Run("rate limit drops the frame, not the connection", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockNetworkSession{}
		frame := []byte(`{"type":"ping"}`)
		// burst is 10: the 11th immediate frame must be rejected
		mockSocket.On("Read").Return(frame, nil).Times(11)
		mockSocket.On("Read").Return([]byte{}, assert.AnError).Once()

		r := newTestRoom(ModeClassic)
		c := newClient(mockSocket, r)
		c.ReadPump()

		assert.Len(t, r.inbox, 10)
		require.NotEmpty(t, c.outbox)
		mockSocket.AssertExpectations(t)
	})
}

func TestWritePump(t *testing.T) {
	t.Parallel()

	t.Run("writes queued frames", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockNetworkSession{}
		written := make(chan []byte, 1)
		mockSocket.On("Write", []byte("hello")).Run(func(args mock.Arguments) {
			written <- args.Get(0).([]byte)
		}).Return(nil)

		r := newTestRoom(ModeClassic)
		c := newClient(mockSocket, r)
		go c.WritePump()
		defer func() {
			mockSocket.On("Close", "").Return()
			c.shutdown()
		}()

		c.send([]byte("hello"))
		select {
		case data := <-written:
			assert.Equal(t, []byte("hello"), data)
		case <-time.After(time.Second):
			assert.Fail(t, "frame was never written")
		}
	})

	t.Run("write error closes the connection", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockNetworkSession{}
		mockSocket.On("Write", []byte("hello")).Return(assert.AnError)
		mockSocket.On("Close", "").Return()

		r := newTestRoom(ModeClassic)
		c := newClient(mockSocket, r)
		c.send([]byte("hello"))

		done := make(chan struct{})
		go func() {
			c.WritePump()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			assert.Fail(t, "pump did not stop on write error")
		}
		select {
		case <-c.done:
		default:
			assert.Fail(t, "connection was not shut down")
		}
		mockSocket.AssertExpectations(t)
	})

	t.Run("shutdown releases the pump", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockNetworkSession{}
		mockSocket.On("Close", "").Return()

		r := newTestRoom(ModeClassic)
		c := newClient(mockSocket, r)

		done := make(chan struct{})
		go func() {
			c.WritePump()
			close(done)
		}()
		c.shutdown()

		select {
		case <-done:
		case <-time.After(time.Second):
			assert.Fail(t, "pump did not stop on shutdown")
		}
		mockSocket.AssertExpectations(t)
	})
}
