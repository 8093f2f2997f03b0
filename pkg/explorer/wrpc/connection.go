package wrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	log "github.com/sirupsen/logrus"
)

// connection multiplexes requests over a single websocket. Responses are
// matched to their request by id.
type connection struct {
	ws        *websocket.Conn
	writeLock *sync.Mutex
	lock      *sync.Mutex
	pending   map[uint64]chan *response
	closed    bool
	done      chan struct{}
}

func dial(ctx context.Context, endpoint string) (*connection, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", explorer.ErrNodeUnavailable, err)
	}

	c := &connection{
		ws:        ws,
		writeLock: &sync.Mutex{},
		lock:      &sync.Mutex{},
		pending:   make(map[uint64]chan *response),
		done:      make(chan struct{}),
	}
	go c.listen()
	return c, nil
}

func (c *connection) listen() {
	defer c.shutdown()

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
			) {
				log.WithError(err).Warn("wrpc: connection dropped unexpectedly")
			}
			return
		}

		resp := &response{}
		if err := json.Unmarshal(msg, resp); err != nil {
			log.WithError(err).Debug("wrpc: discarding malformed message")
			continue
		}
		// Notifications carry no id and are not subscribed to.
		if resp.ID == nil {
			continue
		}

		c.lock.Lock()
		ch, ok := c.pending[*resp.ID]
		delete(c.pending, *resp.ID)
		c.lock.Unlock()

		if ok {
			ch <- resp
		}
	}
}

func (c *connection) shutdown() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	close(c.done)
}

func (c *connection) close() error {
	c.writeLock.Lock()
	// nolint
	c.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	c.writeLock.Unlock()

	err := c.ws.Close()
	c.shutdown()
	return err
}

func (c *connection) isClosed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.closed
}

func (c *connection) roundTrip(
	ctx context.Context, id uint64, method string, params interface{},
) (*response, error) {
	buf, err := json.Marshal(request{id, method, params})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}

	ch := make(chan *response, 1)
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return nil, explorer.ErrNotConnected
	}
	c.pending[id] = ch
	c.lock.Unlock()

	defer func() {
		c.lock.Lock()
		delete(c.pending, id)
		c.lock.Unlock()
	}()

	c.writeLock.Lock()
	if deadline, ok := ctx.Deadline(); ok {
		// nolint
		c.ws.SetWriteDeadline(deadline)
	}
	err = c.ws.WriteMessage(websocket.TextMessage, buf)
	c.writeLock.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", explorer.ErrNodeUnavailable, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("%w: connection closed", explorer.ErrNodeUnavailable)
		}
		return resp, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", explorer.ErrNodeUnavailable, ctx.Err())
	}
}
