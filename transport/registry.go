package transport

import "sync"

// Encoding selects the wire codec a peer's transport speaks: JSON for
// the WebSocket browser path, msgpack for the native binary path using
// an equivalent binary encoding.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingMsgpack
)

// Peer is the pair of outbound queues a connected session writes
// through: Snapshots carries GAME_STATE frames (drop-oldest), Reliable
// carries handshake/interaction/pong replies (drop-newest).
type Peer struct {
	Encoding  Encoding
	Snapshots *OutboundQueue
	Reliable  *OutboundQueue
}

// NewPeer builds a Peer with a small, fixed buffered-channel depth,
// split into the two eviction policies snapshots and reliable replies
// each need.
func NewPeer(enc Encoding) *Peer {
	return &Peer{
		Encoding:  enc,
		Snapshots: NewOutboundQueue(4, true),
		Reliable:  NewOutboundQueue(32, false),
	}
}

// Registry maps a live session id to its Peer. The tick loop is the
// only writer into a Peer's queues; each adapter's write goroutine is
// the only reader. Registry itself only guards the map.
type Registry struct {
	mu    sync.Mutex
	peers map[uint32]*Peer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{peers: make(map[uint32]*Peer)}
}

// Register associates a session id with its Peer, called once a
// transport adapter has accepted (or, for UDP, identified) a
// connection.
func (r *Registry) Register(sessionID uint32, p *Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[sessionID] = p
}

// Unregister removes a session's peer, called once its transport
// connection has closed.
func (r *Registry) Unregister(sessionID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, sessionID)
}

// Get returns the peer for sessionID, or nil if none is registered.
func (r *Registry) Get(sessionID uint32) *Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peers[sessionID]
}

// SendSnapshot pushes an already-encoded GAME_STATE frame to sessionID,
// a no-op if the session has no registered peer (already disconnected).
func (r *Registry) SendSnapshot(sessionID uint32, data []byte) {
	if p := r.Get(sessionID); p != nil {
		p.Snapshots.Push(data)
	}
}

// SendReliable pushes an already-encoded control reply to sessionID.
func (r *Registry) SendReliable(sessionID uint32, data []byte) {
	if p := r.Get(sessionID); p != nil {
		p.Reliable.Push(data)
	}
}
