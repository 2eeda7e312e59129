// Package ws adapts a WebSocket/JSON transport to the session/transport
// core: an upgrade handler with an origin check, a read deadline
// refreshed by the pong handler, and a ticker-driven ping in the write
// goroutine, routed through this core's per-session Registry queues
// instead of a single broadcast.
package ws

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kreid06/brigantine-core/session"
	"github.com/kreid06/brigantine-core/transport"
)

const (
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	pingPeriod    = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

// isValidOrigin allows same-origin, localhost, and originless (non-
// browser) connections.
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == originURL.Host {
		return true
	}
	host := originURL.Host
	return strings.HasPrefix(host, "localhost:") || strings.HasPrefix(host, "127.0.0.1:") ||
		host == "localhost" || host == "127.0.0.1"
}

// Adapter upgrades incoming HTTP connections to WebSocket, wiring each
// one to a new session and a Registry peer the tick loop writes
// through.
type Adapter struct {
	Sessions *session.Manager
	Registry *transport.Registry
	MaxInbox int
}

// NewAdapter builds a ws.Adapter sharing sessions and registry with the
// rest of the server.
func NewAdapter(sessions *session.Manager, registry *transport.Registry) *Adapter {
	return &Adapter{Sessions: sessions, Registry: registry, MaxInbox: 32}
}

// HandleWebSocket is the http.HandlerFunc to register for the
// WebSocket endpoint that browser clients connect to.
func (a *Adapter) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade error: %v", err)
		return
	}

	sess := a.Sessions.Create(time.Now())
	peer := transport.NewPeer(transport.EncodingJSON)
	a.Registry.Register(sess.ID, peer)

	c := &conn_{ws: conn, sessionID: sess.ID, sess: sess, registry: a.Registry, maxInbox: a.MaxInbox}
	go c.writePump(peer)
	go c.readPump()
}

// conn_ pairs one websocket.Conn with the session it feeds. The
// trailing underscore avoids shadowing the gorilla package name within
// the file.
type conn_ struct {
	ws        *websocket.Conn
	sessionID uint32
	sess      *session.Session
	registry  *transport.Registry
	maxInbox  int
}

func (c *conn_) readPump() {
	defer func() {
		c.sess.MarkTransportClosed()
		c.registry.Unregister(c.sessionID)
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(readDeadline))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read error on session %d: %v", c.sessionID, err)
			}
			return
		}
		msg, err := session.ParseClientMessage(raw)
		if err != nil {
			// Malformed frame: dropped, but counted toward the session's
			// protocol-error threshold on its next Drain.
			c.sess.NoteProtocolError()
			continue
		}
		c.sess.Enqueue(msg)
	}
}

func (c *conn_) writePump(peer *transport.Peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-peer.Reliable.C():
			if !ok {
				return
			}
			c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case data, ok := <-peer.Snapshots.C():
			if !ok {
				return
			}
			c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
