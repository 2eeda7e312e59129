// Package udp implements a native binary transport: a connectionless,
// msgpack-framed datagram protocol for clients that skip the
// browser/WebSocket stack. The read/write-goroutine split and registry
// wiring follow transport/ws's shape, and the wire codec reuses the
// same msgpack choice already established for the native snapshot
// encoding.
package udp

import (
	"encoding/json"
	"log"
	"net"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kreid06/brigantine-core/session"
	"github.com/kreid06/brigantine-core/transport"
)

const maxDatagramSize = 2048

// Adapter listens for UDP datagrams, mapping each source address to a
// session after its first packet (a handshake). Out-of-band since UDP
// has no connect/accept: Peer lookups for outbound delivery go through
// addrBySession instead of the socket itself.
type Adapter struct {
	Sessions *session.Manager
	Registry *transport.Registry
	MaxInbox int

	conn *net.UDPConn

	mu           chan struct{} // binary semaphore guarding addrBySession/sessionByAddr
	addrBySession map[uint32]*net.UDPAddr
	sessionByAddr map[string]uint32
}

// NewAdapter builds a udp.Adapter sharing sessions and registry with
// the rest of the server.
func NewAdapter(sessions *session.Manager, registry *transport.Registry) *Adapter {
	return &Adapter{
		Sessions:      sessions,
		Registry:      registry,
		MaxInbox:      32,
		mu:            make(chan struct{}, 1),
		addrBySession: make(map[uint32]*net.UDPAddr),
		sessionByAddr: make(map[string]uint32),
	}
}

func (a *Adapter) lock()   { a.mu <- struct{}{} }
func (a *Adapter) unlock() { <-a.mu }

// ListenAndServe opens the UDP socket and runs the read loop until addr
// fails to bind or the listener errors; it is meant to run in its own
// goroutine, mirroring how transport/ws's readPump/writePump run apart
// from the HTTP server's own goroutine.
func (a *Adapter) ListenAndServe(addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	a.conn = conn
	go a.writeLoop()

	buf := make([]byte, maxDatagramSize)
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			log.Printf("udp: read error: %v", err)
			return err
		}
		a.handleDatagram(buf[:n], src)
	}
}

func (a *Adapter) handleDatagram(data []byte, src *net.UDPAddr) {
	a.lock()
	sessionID, known := a.sessionByAddr[src.String()]
	a.unlock()

	if !known {
		sessionID = a.acceptNew(src)
	}

	sess := a.Sessions.Lookup(sessionID)
	if sess == nil {
		return
	}

	raw, err := decodeToJSON(data)
	if err != nil {
		sess.NoteProtocolError()
		return
	}
	msg, err := session.ParseClientMessage(raw)
	if err != nil {
		sess.NoteProtocolError()
		return
	}
	sess.Enqueue(msg)
}

func (a *Adapter) acceptNew(src *net.UDPAddr) uint32 {
	sess := a.Sessions.Create(time.Now())
	peer := transport.NewPeer(transport.EncodingMsgpack)
	a.Registry.Register(sess.ID, peer)

	a.lock()
	a.addrBySession[sess.ID] = src
	a.sessionByAddr[src.String()] = sess.ID
	a.unlock()
	return sess.ID
}

// decodeToJSON converts a msgpack-encoded datagram into the JSON bytes
// session.ParseClientMessage expects, so ingress validation logic stays
// transport-agnostic: the wire-format difference is resolved entirely
// inside this adapter.
func decodeToJSON(data []byte) ([]byte, error) {
	var fields map[string]interface{}
	if err := msgpack.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// writeLoop drains every registered peer's queues and writes datagrams
// to its last known address. A single goroutine serves every session
// since net.UDPConn's WriteToUDP is safe for concurrent use from one
// writer without per-peer goroutines.
func (a *Adapter) writeLoop() {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		a.lock()
		targets := make(map[uint32]*net.UDPAddr, len(a.addrBySession))
		for id, addr := range a.addrBySession {
			targets[id] = addr
		}
		a.unlock()

		for id, addr := range targets {
			peer := a.Registry.Get(id)
			if peer == nil {
				continue
			}
			a.drainOnce(peer.Reliable, addr)
			a.drainOnce(peer.Snapshots, addr)
		}
	}
}

func (a *Adapter) drainOnce(q *transport.OutboundQueue, addr *net.UDPAddr) {
	select {
	case data := <-q.C():
		if _, err := a.conn.WriteToUDP(data, addr); err != nil {
			log.Printf("udp: write error to %s: %v", addr, err)
		}
	default:
	}
}

// Forget drops a session's address mapping, called once the tick loop
// has torn the session down (CLOSING→CLOSED).
func (a *Adapter) Forget(sessionID uint32) {
	a.lock()
	if addr, ok := a.addrBySession[sessionID]; ok {
		delete(a.sessionByAddr, addr.String())
		delete(a.addrBySession, sessionID)
	}
	a.unlock()
	a.Registry.Unregister(sessionID)
}
