package wsinterface

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kspr-network/kspr-daemon/internal/core/domain"
)

const writeTimeout = 2 * time.Second

type client struct {
	id        string
	conn      *websocket.Conn
	updates   <-chan []domain.Account
	responses chan Message

	ctx       context.Context
	cancel    context.CancelFunc
	quit      chan struct{}
	closeOnce *sync.Once
	wg        *sync.WaitGroup
}

func newClient(
	ctx context.Context,
	id string,
	conn *websocket.Conn,
	updates <-chan []domain.Account,
) *client {
	ctx, cancel := context.WithCancel(ctx)
	return &client{
		id:        id,
		conn:      conn,
		updates:   updates,
		responses: make(chan Message),
		ctx:       ctx,
		cancel:    cancel,
		quit:      make(chan struct{}),
		closeOnce: &sync.Once{},
		wg:        &sync.WaitGroup{},
	}
}

// send queues msg to be written, unless the client is disconnected.
func (c *client) send(msg Message) {
	select {
	case c.responses <- msg:
	case <-c.quit:
	}
}

func (c *client) write(msg Message) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// close cancels the pending requests of the client and closes the
// connection.
func (c *client) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.quit)
		c.conn.Close()
	})
}

func (c *client) isClosed() bool {
	select {
	case <-c.quit:
		return true
	default:
		return false
	}
}
