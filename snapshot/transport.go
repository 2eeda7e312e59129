package snapshot

import (
	"encoding/binary"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// checksumPayload serializes the parts of frame the checksum covers into
// a stable byte sequence: the header ids, tick, timestamp, baseline flag
// and cell, each full record's id, position and rotation (and a ship's
// health), each ship delta's id, change mask, position and rotation,
// each player delta's id, change mask and position, each projectile's id
// and position, and the removed ids. Other fields, such
// as velocities, are not covered. Both transports send the checksum
// computed here and neither recomputes it from its own encoding, so this
// canonical form only needs to be consistent with itself across calls.
func checksumPayload(f Frame) []byte {
	buf := make([]byte, 0, 64)
	buf = binary.BigEndian.AppendUint64(buf, f.SnapshotID)
	buf = binary.BigEndian.AppendUint64(buf, f.BaselineID)
	buf = binary.BigEndian.AppendUint64(buf, f.Tick)
	buf = binary.BigEndian.AppendUint64(buf, f.ServerTimeMs)
	if f.Baseline {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(f.CellX))
	buf = binary.BigEndian.AppendUint32(buf, uint32(f.CellY))
	for _, s := range f.Ships {
		buf = appendShipRecord(buf, s)
	}
	for _, d := range f.ShipDeltas {
		buf = binary.BigEndian.AppendUint32(buf, d.ID)
		buf = binary.BigEndian.AppendUint16(buf, uint16(d.Changed))
		buf = binary.BigEndian.AppendUint16(buf, d.X)
		buf = binary.BigEndian.AppendUint16(buf, d.Y)
		buf = binary.BigEndian.AppendUint16(buf, d.Rotation)
	}
	for _, p := range f.Players {
		buf = appendPlayerRecord(buf, p)
	}
	for _, d := range f.PlayerDeltas {
		buf = binary.BigEndian.AppendUint32(buf, d.ID)
		buf = binary.BigEndian.AppendUint16(buf, uint16(d.Changed))
		buf = binary.BigEndian.AppendUint16(buf, d.WorldX)
		buf = binary.BigEndian.AppendUint16(buf, d.WorldY)
	}
	for _, p := range f.Projectiles {
		buf = binary.BigEndian.AppendUint32(buf, p.ID)
		buf = binary.BigEndian.AppendUint16(buf, p.X)
		buf = binary.BigEndian.AppendUint16(buf, p.Y)
	}
	for _, id := range f.Removed {
		buf = binary.BigEndian.AppendUint32(buf, id)
	}
	return buf
}

func appendShipRecord(buf []byte, s ShipRecord) []byte {
	buf = binary.BigEndian.AppendUint32(buf, s.ID)
	buf = binary.BigEndian.AppendUint16(buf, s.X)
	buf = binary.BigEndian.AppendUint16(buf, s.Y)
	buf = binary.BigEndian.AppendUint16(buf, s.Rotation)
	buf = append(buf, s.Health)
	return buf
}

func appendPlayerRecord(buf []byte, p PlayerRecord) []byte {
	buf = binary.BigEndian.AppendUint32(buf, p.ID)
	buf = binary.BigEndian.AppendUint16(buf, p.WorldX)
	buf = binary.BigEndian.AppendUint16(buf, p.WorldY)
	buf = binary.BigEndian.AppendUint16(buf, p.Rotation)
	return buf
}

// EncodeJSON marshals frame for the browser/WebSocket transport, which
// always frames as JSON text.
func EncodeJSON(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

// EncodeNative marshals frame with msgpack for the binary/native
// transport.
func EncodeNative(f Frame) ([]byte, error) {
	return msgpack.Marshal(f)
}

// DecodeNative is the inverse of EncodeNative, used by tests and by any
// native-transport peer that needs to read back a frame it just wrote.
func DecodeNative(data []byte) (Frame, error) {
	var f Frame
	err := msgpack.Unmarshal(data, &f)
	return f, err
}
