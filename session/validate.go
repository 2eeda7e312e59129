package session

import (
	"encoding/json"
	"time"
	"unicode"

	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/sim"
	"github.com/kreid06/brigantine-core/world"
)

// ParseClientMessage sniffs the "type" tag out of raw for tagged-variant
// decoding. An unknown or missing type is a protocol error: the caller
// drops the message and counts it toward the session's protocol-error
// rate.
func ParseClientMessage(raw []byte) (ClientMessage, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return ClientMessage{}, err
	}
	switch head.Type {
	case MsgHandshake, MsgInputFrame, MsgCannonAim, MsgCannonFire, MsgModuleInteract, MsgPing:
		return ClientMessage{Type: head.Type, Raw: raw}, nil
	default:
		return ClientMessage{}, errUnknownType
	}
}

var errUnknownType = protocolError("unknown message type")

type protocolError string

func (e protocolError) Error() string { return string(e) }

// InteractionRequest is a module_interact event the tick loop applies
// against world.World via sim.Interact, since the session layer itself
// never mutates world state.
type InteractionRequest struct {
	PlayerID world.EntityID
	ModuleID uint32
}

// FireRequest is a cannon_fire event, carrying either explicit cannon
// module ids or a broadside (fire_all) request.
type FireRequest struct {
	PlayerID  world.EntityID
	FireAll   bool
	CannonIDs []uint32
}

// Drain validates and applies every message enqueued since the last
// tick, in arrival order: inputs from a single session are applied in
// strictly increasing sequence order within one tick, and the latest
// replaces the pending intent. It returns the egress replies to send
// (handshake_response/module_interact_*/pong) and any events that
// require world mutation the tick loop performs itself: interaction
// requests and fire requests. w is read-only here except for
// handshake's CreatePlayer, which the session layer performs directly.
func (s *Session) Drain(w *world.World, now time.Time, serverTimeMs uint64, maxInbox int) (replies []interface{}, interactions []InteractionRequest, fires []FireRequest) {
	inbox := s.takeInbox(maxInbox)

	for n := s.pendingProtocolErrors.Swap(0); n > 0; n-- {
		s.noteProtocolError(now)
	}

	if len(inbox) > 0 {
		// Any parseable message keeps the heartbeat alive (ping included)
		// and moves a NEW session into HANDSHAKING.
		s.lastInputAt = now
		if s.State == StateNew {
			s.State = StateHandshaking
		}
	}

	for _, msg := range inbox {
		switch msg.Type {
		case MsgHandshake:
			if reply, ok := s.handleHandshake(w, msg, now, serverTimeMs); ok {
				replies = append(replies, reply)
			}
		case MsgInputFrame:
			s.handleInputFrame(msg, now)
		case MsgCannonAim:
			s.handleCannonAim(msg)
		case MsgCannonFire:
			if fr, ok := s.handleCannonFire(msg); ok {
				fires = append(fires, fr)
			}
		case MsgModuleInteract:
			if req, ok := s.handleModuleInteract(msg); ok {
				interactions = append(interactions, req)
			}
		case MsgPing:
			replies = append(replies, s.handlePing(msg, serverTimeMs))
		}
	}
	return replies, interactions, fires
}

// takeInbox pops up to maxInbox queued messages, bounding per-tick drain
// cost per session so one flooding client can't starve the others.
func (s *Session) takeInbox(maxInbox int) []ClientMessage {
	s.inboxMu.Lock()
	defer s.inboxMu.Unlock()
	if len(s.inbox) <= maxInbox {
		out := s.inbox
		s.inbox = nil
		return out
	}
	out := s.inbox[:maxInbox]
	s.inbox = s.inbox[maxInbox:]
	return out
}

func (s *Session) handleHandshake(w *world.World, msg ClientMessage, now time.Time, serverTimeMs uint64) (HandshakeResponse, bool) {
	if s.State != StateNew && s.State != StateHandshaking {
		return HandshakeResponse{}, false
	}
	var payload HandshakePayload
	if err := json.Unmarshal(msg.Raw, &payload); err != nil {
		s.noteProtocolError(now)
		return HandshakeResponse{}, false
	}

	name := sanitizeName(payload.PlayerName, s.cfg.MaxNameBytes)

	p, err := w.CreatePlayer(fixedpoint.Vec2{}, world.Carrier{})
	if err != nil {
		return HandshakeResponse{
			Type:         MsgHandshakeResponse,
			Status:       HandshakeRejected,
			ServerTimeMs: serverTimeMs,
		}, true
	}
	_ = name // the player's displayable name is a transport/UI concern outside this core's data model

	s.Player = p.ID
	s.State = StateActive
	s.lastInputAt = now

	return HandshakeResponse{
		Type:         MsgHandshakeResponse,
		PlayerID:     uint32(p.ID),
		Status:       HandshakeConnected,
		ServerTimeMs: serverTimeMs,
	}, true
}

func sanitizeName(name string, maxBytes int) string {
	clean := make([]rune, 0, len(name))
	for _, r := range name {
		if unicode.IsPrint(r) {
			clean = append(clean, r)
		}
	}
	out := string(clean)
	if len(out) > maxBytes {
		out = out[:maxBytes]
	}
	return out
}

func (s *Session) handleInputFrame(msg ClientMessage, now time.Time) {
	if s.State != StateActive {
		return
	}
	if !s.limiter.AllowN(now, 1) {
		return // rate-limited: dropped, session stays open
	}
	var payload InputFramePayload
	if err := json.Unmarshal(msg.Raw, &payload); err != nil {
		s.noteProtocolError(now)
		return
	}
	if s.pending.HasSequence && payload.Tick <= s.pending.LastSequence {
		return // sequence regression: dropped
	}

	movement := fixedpoint.Vec2{X: fixedpoint.FromFloat(payload.Movement.X), Y: fixedpoint.FromFloat(payload.Movement.Y)}
	movement = fixedpoint.ClampLength(movement, fixedpoint.FromInt(1))

	s.pending.Movement = movement
	s.pending.Facing = fixedpoint.NormalizeAngle(fixedpoint.FromFloat(payload.Rotation))
	s.pending.Actions = sim.ActionBits(payload.Actions)
	s.pending.LastSequence = payload.Tick
	s.pending.HasSequence = true
	s.pending.LastInputAt = now
	s.lastInputAt = now
}

func (s *Session) handleCannonAim(msg ClientMessage) {
	if s.State != StateActive {
		return
	}
	var payload CannonAimPayload
	if err := json.Unmarshal(msg.Raw, &payload); err != nil {
		return
	}
	s.pending.CannonAim = fixedpoint.NormalizeAngle(fixedpoint.FromFloat(payload.AimAngle))
	s.pending.HasCannonAim = true
}

func (s *Session) handleCannonFire(msg ClientMessage) (FireRequest, bool) {
	if s.State != StateActive || s.Player == world.NoEntity {
		return FireRequest{}, false
	}
	var payload CannonFirePayload
	if err := json.Unmarshal(msg.Raw, &payload); err != nil {
		return FireRequest{}, false
	}
	return FireRequest{PlayerID: s.Player, FireAll: payload.FireAll, CannonIDs: payload.CannonIDs}, true
}

func (s *Session) handleModuleInteract(msg ClientMessage) (InteractionRequest, bool) {
	if s.State != StateActive || s.Player == world.NoEntity {
		return InteractionRequest{}, false
	}
	var payload ModuleInteractPayload
	if err := json.Unmarshal(msg.Raw, &payload); err != nil {
		return InteractionRequest{}, false
	}
	return InteractionRequest{PlayerID: s.Player, ModuleID: payload.ModuleID}, true
}

func (s *Session) handlePing(msg ClientMessage, serverTimeMs uint64) Pong {
	var payload struct {
		Timestamp uint64 `json:"timestamp"`
	}
	_ = json.Unmarshal(msg.Raw, &payload)
	return Pong{Type: MsgPong, Timestamp: payload.Timestamp, ServerTimeMs: serverTimeMs}
}

// noteProtocolError counts malformed messages within a rolling one-
// minute window; exceeding the threshold closes the session.
const protocolErrorThreshold = 20

func (s *Session) noteProtocolError(now time.Time) {
	if now.Sub(s.protocolErrorWindowStart) > time.Minute {
		s.protocolErrorWindowStart = now
		s.protocolErrorCount = 0
	}
	s.protocolErrorCount++
	if s.protocolErrorCount > protocolErrorThreshold {
		s.State = StateClosing
	}
}
