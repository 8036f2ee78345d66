// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/api/utils"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/co"
	"github.com/cactusfi/cactus/log"
	"github.com/cactusfi/cactus/staking"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	writeWait  = 10 * time.Second

	defaultBacklog = 64
)

// Subscriptions streams committed pool events over websocket.
//
// One hub goroutine drains the pool feed and fans out to clients, so a slow client
// never holds up the pool; a client whose backlog fills up is disconnected.
type Subscriptions struct {
	upgrader *websocket.Upgrader
	backlog  int

	mu      sync.Mutex
	clients map[*client]struct{}

	done chan struct{}
	goes co.Goes
}

type client struct {
	user  *cactus.Address
	kinds map[staking.EventKind]bool
	send  chan []byte
	once  sync.Once
	gone  chan struct{} // closed when the hub drops the client
}

func (c *client) drop() {
	c.once.Do(func() { close(c.gone) })
}

func (c *client) wants(ev *staking.Event) bool {
	if c.user != nil && *c.user != ev.User {
		return false
	}
	return len(c.kinds) == 0 || c.kinds[ev.Kind]
}

// New subscribes to pool and starts the hub. backlog is the number of messages buffered
// per client, 0 means the default.
func New(pool *staking.Pool, allowedOrigins []string, backlog int) *Subscriptions {
	if backlog <= 0 {
		backlog = defaultBacklog
	}
	s := &Subscriptions{
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		backlog: backlog,
		clients: make(map[*client]struct{}),
		done:    make(chan struct{}),
	}

	ch := make(chan *staking.Event, backlog)
	sub := pool.Subscribe(ch)
	s.goes.Go(func() {
		defer sub.Unsubscribe()
		for {
			select {
			case <-s.done:
				return
			case err := <-sub.Err():
				if err != nil {
					logger.Warn("event subscription failed", "err", err)
				}
				return
			case ev := <-ch:
				s.dispatch(ev)
			}
		}
	})
	return s
}

func (s *Subscriptions) dispatch(ev *staking.Event) {
	var msg []byte
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if !c.wants(ev) {
			continue
		}
		if msg == nil {
			var err error
			if msg, err = json.Marshal(ev); err != nil {
				logger.Error("failed to encode event", "err", err)
				return
			}
		}
		select {
		case c.send <- msg:
		default:
			logger.Debug("dropping slow subscriber")
			delete(s.clients, c)
			c.drop()
		}
	}
}

func (s *Subscriptions) register(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Subscriptions) unregister(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

func parseClient(req *http.Request, backlog int) (*client, error) {
	query := req.URL.Query()
	c := &client{
		send: make(chan []byte, backlog),
		gone: make(chan struct{}),
	}
	if s := query.Get("user"); s != "" {
		user, err := utils.ParseAddress("user", s)
		if err != nil {
			return nil, err
		}
		c.user = &user
	}
	if s := query.Get("kind"); s != "" {
		c.kinds = make(map[staking.EventKind]bool)
		for _, name := range strings.Split(s, ",") {
			kind, err := staking.ParseEventKind(strings.TrimSpace(name))
			if err != nil {
				return nil, utils.BadRequest(errors.WithMessage(err, "kind"))
			}
			c.kinds[kind] = true
		}
	}
	return c, nil
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	c, err := parseClient(req, s.backlog)
	if err != nil {
		return err
	}
	select {
	case <-s.done:
		return utils.HTTPError(errors.New("service closed"), http.StatusServiceUnavailable)
	default:
	}

	// registered before the upgrade so nothing committed after the handshake is missed
	s.register(c)
	defer s.unregister(c)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already replied
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	if err := s.pipe(conn, c); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	return nil
}

// pipe writes queued messages and pings until the peer leaves, the client is dropped
// or the service closes.
func (s *Subscriptions) pipe(conn *websocket.Conn, c *client) error {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return errors.Wrap(err, "write")
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return errors.Wrap(err, "ping")
			}
		case <-c.gone:
			return closeWith(conn, websocket.ClosePolicyViolation, "subscriber too slow")
		case <-s.done:
			return closeWith(conn, websocket.CloseGoingAway, "service closed")
		case <-closed:
			return nil
		}
	}
}

func closeWith(conn *websocket.Conn, code int, text string) error {
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text),
		time.Now().Add(writeWait))
}

// Close stops the hub and disconnects every subscriber.
func (s *Subscriptions) Close() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)
	s.goes.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
