package game

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const pingInterval = 30 * time.Second

// NetworkSession abstracts the duplex connection so that pumps and room
// logic can be tested against fake sockets.
type NetworkSession interface {
	Close(errCode string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// client is one live connection. Identity lives in the Player roster
// record; a client only shuttles frames between the socket and the room.
type client struct {
	socket      NetworkSession
	room        *Room
	rateLimiter *rate.Limiter
	outbox      chan []byte
	done        chan struct{}
	closeOnce   sync.Once
}

func newClient(socket NetworkSession, room *Room) *client {
	return &client{
		socket:      socket,
		room:        room,
		rateLimiter: rate.NewLimiter(5, 10),
		outbox:      make(chan []byte, 256),
		done:        make(chan struct{}),
	}
}

// send enqueues a frame without blocking the game loop. A client whose
// outbox is full is falling behind; dropping is preferable to stalling
// the whole room.
func (c *client) send(data []byte) {
	select {
	case c.outbox <- data:
	default:
	}
}

func (c *client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.socket.Close("")
	})
}

func (c *client) ReadPump() {
	defer c.room.DetachClient(c)

	for {
		data, err := c.socket.Read()
		if err != nil {
			return
		}

		if !c.rateLimiter.Allow() {
			c.send(MakeError("요청이 너무 많습니다. 잠시 후 다시 시도해주세요.").Encode())
			continue
		}

		evt, err := DecodeClientEvent(data)
		if err != nil {
			c.send(MakeError(ErrBadPayload.Error()).Encode())
			continue
		}

		select {
		case c.room.inbox <- envelope{from: c, evt: evt}:
		case <-c.done:
			return
		}
	}
}

func (c *client) WritePump() {
	pinger := time.NewTicker(pingInterval)
	defer pinger.Stop()

	for {
		select {
		case data := <-c.outbox:
			if err := c.socket.Write(data); err != nil {
				c.shutdown()
				return
			}
		case <-pinger.C:
			if err := c.socket.Ping(); err != nil {
				c.shutdown()
				return
			}
		case <-c.done:
			return
		}
	}
}
