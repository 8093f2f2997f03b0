package wsinterface

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kspr-network/kspr-daemon/internal/core/application"
	interfaces "github.com/kspr-network/kspr-daemon/internal/interfaces"
	"github.com/kspr-network/kspr-daemon/pkg/stats"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	// WebsocketPath is where clients connect to exchange messages.
	WebsocketPath = "/ws"
	// MetricsPath is where prometheus metrics are served, if enabled.
	MetricsPath = "/metrics"

	shutdownTimeout = 5 * time.Second
)

type ServiceOpts struct {
	Port          int
	EnableMetrics bool
	WalletSvc     application.WalletService
}

func (o ServiceOpts) validate() error {
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	if o.WalletSvc == nil {
		return fmt.Errorf("wallet app service must not be null")
	}
	return nil
}

type service struct {
	opts     ServiceOpts
	handler  *Handler
	upgrader websocket.Upgrader
	server   *http.Server

	lock    *sync.Mutex
	clients map[string]*client

	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

// NewService returns the websocket interface of the wallet service.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	return newService(opts)
}

func newService(opts ServiceOpts) (*service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	svc := &service{
		opts:    opts,
		handler: NewHandler(opts.WalletSvc),
		upgrader: websocket.Upgrader{
			// Only local clients are expected.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		lock:    &sync.Mutex{},
		clients: make(map[string]*client),
		ctx:     ctx,
		cancel:  cancel,
		wg:      &sync.WaitGroup{},
	}
	svc.server = &http.Server{
		Handler:           svc.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return svc, nil
}

func (s *service) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.opts.Port))
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("ws: server stopped unexpectedly")
		}
	}()

	log.Infof("ws interface is listening on %s", listener.Addr())
	return nil
}

func (s *service) Stop() {
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("ws: failed to shutdown server")
	}

	// hijacked connections are not closed by Shutdown.
	s.lock.Lock()
	for _, c := range s.clients {
		c.close()
	}
	s.lock.Unlock()

	s.wg.Wait()
	log.Info("stopped ws interface")
}

func (s *service) router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(WebsocketPath, s.serveWs)
	if s.opts.EnableMetrics {
		mux.Handle(MetricsPath, promhttp.HandlerFor(
			stats.Gatherer(), promhttp.HandlerOpts{},
		))
	}
	return mux
}

func (s *service) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("ws: failed to upgrade connection")
		return
	}

	id, updates := s.opts.WalletSvc.AccountsUpdates()
	c := newClient(s.ctx, id, conn, updates)

	s.lock.Lock()
	s.clients[id] = c
	s.lock.Unlock()

	log.Debugf("ws: new client %s from %s", id, r.RemoteAddr)

	s.wg.Add(2)
	go s.clientRead(c)
	go s.clientWrite(c)
}

// clientRead serves the requests of the client concurrently until it
// disconnects.
func (s *service) clientRead(c *client) {
	defer s.wg.Done()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if _, ok := err.(*websocket.CloseError); !ok && !c.isClosed() {
				log.WithError(err).Debugf("ws: failed to read from client %s", c.id)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.send(newMessage("", "", ErrorReply{
				fmt.Sprintf("%s: %s", ErrInvalidPayload, err),
			}))
			continue
		}

		c.wg.Add(1)
		go func(msg Message) {
			defer c.wg.Done()
			c.send(s.handler.Handle(c.ctx, msg))
		}(msg)
	}

	c.close()
	c.wg.Wait()

	s.lock.Lock()
	delete(s.clients, c.id)
	s.lock.Unlock()
	s.opts.WalletSvc.Unsubscribe(c.id)

	log.Debugf("ws: client %s disconnected", c.id)
}

// clientWrite writes responses and account updates to the client.
func (s *service) clientWrite(c *client) {
	defer s.wg.Done()
	defer c.close()

	updates := c.updates
	for {
		var msg Message
		select {
		case msg = <-c.responses:
		case accounts, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			msg = newMessage("", AccountsUpdated, toAccountsReply(accounts))
		case <-c.quit:
			return
		}

		if err := c.write(msg); err != nil {
			log.WithError(err).Debugf("ws: failed to write to client %s", c.id)
			return
		}
	}
}
