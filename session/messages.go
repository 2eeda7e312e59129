package session

// ClientMessage is the tagged-variant envelope every ingress message
// arrives in: Raw holds the complete message bytes (JSON from the
// WebSocket transport, an equivalent decode from the native transport),
// Type is sniffed from it first, and the same Raw bytes are then
// re-decoded into the payload struct for that type. Every field lives
// at the top level rather than nested under a "data" key, so there is
// nothing to carve out but the type tag.
type ClientMessage struct {
	Type string
	Raw  []byte
}

// Ingress message type strings.
const (
	MsgHandshake      = "handshake"
	MsgInputFrame     = "input_frame"
	MsgCannonAim      = "cannon_aim"
	MsgCannonFire     = "cannon_fire"
	MsgModuleInteract = "module_interact"
	MsgPing           = "ping"
)

// Egress message type strings.
const (
	MsgHandshakeResponse     = "handshake_response"
	MsgModuleInteractSuccess = "module_interact_success"
	MsgModuleInteractFailure = "module_interact_failure"
	MsgPong                  = "pong"
)

// HandshakePayload is the "hello" message: a displayable name, truncated
// to MaxNameBytes. It carries no protocol version, and none is checked.
type HandshakePayload struct {
	PlayerName string `json:"playerName"`
}

// Vec2Payload is the wire shape of a 2D vector field.
type Vec2Payload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InputFramePayload is one tick's movement/rotation/action input.
type InputFramePayload struct {
	Tick     uint32      `json:"tick"`
	Rotation float64     `json:"rotation"`
	Movement Vec2Payload `json:"movement"`
	Actions  uint32      `json:"actions"`
}

// CannonAimPayload updates the occupied cannon's ship-local aim angle.
type CannonAimPayload struct {
	AimAngle float64 `json:"aim_angle"`
}

// CannonFirePayload requests firing the occupied cannon(s).
type CannonFirePayload struct {
	FireAll   bool     `json:"fire_all"`
	CannonIDs []uint32 `json:"cannon_ids,omitempty"`
}

// ModuleInteractPayload names the module the player wants to interact
// with; Timestamp is client-supplied and advisory only.
type ModuleInteractPayload struct {
	ModuleID  uint32 `json:"module_id"`
	Timestamp uint64 `json:"timestamp"`
}

// HandshakeResponse is the egress reply completing HANDSHAKING→ACTIVE.
type HandshakeResponse struct {
	Type         string `json:"type" msgpack:"type"`
	PlayerID     uint32 `json:"player_id" msgpack:"player_id"`
	Status       string `json:"status" msgpack:"status"`
	ServerTimeMs uint64 `json:"server_time" msgpack:"server_time"`
}

// Handshake status values.
const (
	HandshakeConnected   = "connected"
	HandshakeReconnected = "reconnected"
	HandshakeRejected    = "rejected"
)

// ModuleInteractResult is the typed success/failure reply to a
// module_interact request.
type ModuleInteractResult struct {
	Type     string `json:"type" msgpack:"type"`
	ModuleID uint32 `json:"module_id" msgpack:"module_id"`
	Reason   string `json:"reason,omitempty" msgpack:"reason,omitempty"`
}

// Pong answers a ping with both the echoed client timestamp and the
// server's own clock, so the client can estimate round-trip latency.
type Pong struct {
	Type         string `json:"type" msgpack:"type"`
	Timestamp    uint64 `json:"timestamp" msgpack:"timestamp"`
	ServerTimeMs uint64 `json:"server_time" msgpack:"server_time"`
}
