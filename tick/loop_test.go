package tick

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kreid06/brigantine-core/config"
	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/session"
	"github.com/kreid06/brigantine-core/snapshot"
	"github.com/kreid06/brigantine-core/transport"
	"github.com/kreid06/brigantine-core/world"
)

func newTestLoop(t *testing.T) (*Loop, *session.Manager, *transport.Registry, *world.World) {
	t.Helper()
	cfg := config.Default()
	w := world.New()
	if _, err := world.SpawnBrigantine(w, fixedpoint.Vec2{}, 0); err != nil {
		t.Fatalf("SpawnBrigantine: %v", err)
	}
	sessions := session.NewManager(session.DefaultConfig)
	registry := transport.NewRegistry()
	return NewLoop(w, sessions, registry, cfg), sessions, registry, w
}

func connect(t *testing.T, sessions *session.Manager, registry *transport.Registry, now time.Time) (*session.Session, *transport.Peer) {
	t.Helper()
	sess := sessions.Create(now)
	peer := transport.NewPeer(transport.EncodingJSON)
	registry.Register(sess.ID, peer)
	return sess, peer
}

func enqueue(t *testing.T, sess *session.Session, raw string) {
	t.Helper()
	msg, err := session.ParseClientMessage([]byte(raw))
	if err != nil {
		t.Fatalf("ParseClientMessage(%s): %v", raw, err)
	}
	sess.Enqueue(msg)
}

func drainQueue(q *transport.OutboundQueue) [][]byte {
	var out [][]byte
	for {
		select {
		case data := <-q.C():
			out = append(out, data)
		default:
			return out
		}
	}
}

// The first tick after a handshake must send a handshake_response on the
// reliable queue followed by a baseline GAME_STATE containing the
// session's own player and the pre-existing ship.
func TestHandshakeProducesResponseThenBaseline(t *testing.T) {
	loop, sessions, registry, _ := newTestLoop(t)
	now := time.Unix(5000, 0)
	sess, peer := connect(t, sessions, registry, now)
	enqueue(t, sess, `{"type":"handshake","playerName":"Calico Jack"}`)

	loop.runOnce(now)

	reliable := drainQueue(peer.Reliable)
	if len(reliable) != 1 {
		t.Fatalf("expected 1 reliable message after handshake, got %d", len(reliable))
	}
	var resp session.HandshakeResponse
	if err := json.Unmarshal(reliable[0], &resp); err != nil {
		t.Fatalf("decoding handshake_response: %v", err)
	}
	if resp.Type != session.MsgHandshakeResponse || resp.Status != session.HandshakeConnected {
		t.Errorf("handshake reply = %+v, want connected handshake_response", resp)
	}
	if resp.PlayerID == 0 {
		t.Errorf("handshake reply has no player id")
	}

	frames := drainQueue(peer.Snapshots)
	if len(frames) != 1 {
		t.Fatalf("expected 1 snapshot after first tick, got %d", len(frames))
	}
	var frame snapshot.Frame
	if err := json.Unmarshal(frames[0], &frame); err != nil {
		t.Fatalf("decoding GAME_STATE: %v", err)
	}
	if !frame.Baseline || frame.BaselineID != frame.SnapshotID {
		t.Errorf("first frame should be a baseline with baselineId == snapshotId, got %+v", frame)
	}
	if len(frame.Ships) != 1 {
		t.Errorf("baseline ships = %d, want the pre-existing brigantine", len(frame.Ships))
	}
	foundSelf := false
	for _, p := range frame.Players {
		if p.ID == resp.PlayerID {
			foundSelf = true
		}
	}
	if !foundSelf {
		t.Errorf("baseline players %+v missing the session's own player %d", frame.Players, resp.PlayerID)
	}
}

func TestSnapshotIDsIncreaseAcrossTicks(t *testing.T) {
	loop, sessions, registry, _ := newTestLoop(t)
	now := time.Unix(5000, 0)
	sess, peer := connect(t, sessions, registry, now)
	enqueue(t, sess, `{"type":"handshake","playerName":"x"}`)

	var last uint64
	for i := 0; i < 5; i++ {
		loop.runOnce(now.Add(time.Duration(i) * 33 * time.Millisecond))
		for _, data := range drainQueue(peer.Snapshots) {
			var frame snapshot.Frame
			if err := json.Unmarshal(data, &frame); err != nil {
				t.Fatalf("decoding frame: %v", err)
			}
			if frame.SnapshotID <= last {
				t.Fatalf("snapshotId %d did not strictly increase past %d", frame.SnapshotID, last)
			}
			last = frame.SnapshotID
		}
	}
	if last == 0 {
		t.Fatalf("no snapshots were produced")
	}
}

// A handshake that never arrives closes the session after the handshake
// timeout and removes every trace of it.
func TestHandshakeTimeoutTearsDownSession(t *testing.T) {
	loop, sessions, registry, _ := newTestLoop(t)
	now := time.Unix(5000, 0)
	sess, _ := connect(t, sessions, registry, now)

	loop.runOnce(now.Add(session.DefaultConfig.HandshakeTimeout + time.Second))

	if got := sessions.Lookup(sess.ID); got != nil {
		t.Errorf("session %d still present after handshake timeout", sess.ID)
	}
	if registry.Get(sess.ID) != nil {
		t.Errorf("registry still holds a peer for session %d", sess.ID)
	}
}

func TestDisconnectRemovesPlayerFromWorld(t *testing.T) {
	loop, sessions, registry, w := newTestLoop(t)
	now := time.Unix(5000, 0)
	sess, _ := connect(t, sessions, registry, now)
	enqueue(t, sess, `{"type":"handshake","playerName":"x"}`)
	loop.runOnce(now)

	playerID := sess.Player
	if playerID == world.NoEntity {
		t.Fatalf("handshake did not assign a player")
	}

	sess.MarkTransportClosed()
	loop.runOnce(now.Add(33 * time.Millisecond))

	if _, err := w.LookupPlayer(playerID); err == nil {
		t.Errorf("player %d still in world after transport close", playerID)
	}
}

// Scenario: a player at the helm aims the broadside with cannon_aim and
// fires a single gun; the projectile's velocity direction must be
// ship.rotation + aim plus the carrier velocity.
func TestAimedSingleCannonFireThroughLoop(t *testing.T) {
	loop, sessions, registry, w := newTestLoop(t)
	now := time.Unix(5000, 0)
	sess, _ := connect(t, sessions, registry, now)
	enqueue(t, sess, `{"type":"handshake","playerName":"gunner"}`)
	loop.runOnce(now)

	// Rotate the ship to pi/2 and put the player at its helm directly.
	ship := &w.Ships()[0]
	ship.Rotation = fixedpoint.Div(fixedpoint.Pi, fixedpoint.FromInt(2))
	var helm world.EntityID
	for _, mod := range w.ModulesOf(ship.ID) {
		if mod.Kind == world.ModuleHelm {
			helm = mod.ID
		}
	}
	p, _ := w.LookupPlayer(sess.Player)
	p.Position = ship.Position
	p.State = world.PlayerMounted
	p.Carrier = world.Carrier{Ship: ship.ID, Module: helm}

	before := len(w.Projectiles())
	enqueue(t, sess, `{"type":"cannon_aim","aim_angle":-1.5707963}`)
	enqueue(t, sess, `{"type":"cannon_fire","fire_all":false}`)
	loop.runOnce(now.Add(33 * time.Millisecond))

	projectiles := w.Projectiles()
	if len(projectiles) != before+1 {
		t.Fatalf("expected exactly one projectile, got %d new", len(projectiles)-before)
	}
	pr := projectiles[len(projectiles)-1]
	// World angle = pi/2 + (-pi/2) = 0: velocity points east.
	if pr.Velocity.X <= 0 {
		t.Errorf("projectile velocity %+v, want +X (world east)", pr.Velocity)
	}
	if fixedpoint.Abs(pr.Velocity.Y) > fixedpoint.FromFloat(2.0) {
		t.Errorf("projectile velocity %+v has a large Y component, want roughly east", pr.Velocity)
	}
}
