// Package transport defines the bounded queue and connection-registry
// machinery shared by every concrete adapter (transport/ws,
// transport/udp): the core only ever reaches these types, never a
// websocket.Conn or net.UDPConn directly — everything above those is
// outside the core's concern.
package transport

// OutboundQueue is a bounded single-producer/single-consumer byte-slice
// queue between the tick goroutine (producer) and one adapter's write
// goroutine (consumer), with non-blocking enqueue. Two eviction
// policies exist because the two kinds of
// outbound traffic tolerate loss differently: snapshots drop the
// oldest queued frame on overflow (a lost snapshot is recovered by the
// next baseline), while reliability-wrapped control replies drop the
// newest arrival instead, keeping the replies already queued; a dropped
// reply is not resent.
type OutboundQueue struct {
	ch         chan []byte
	dropOldest bool
}

// NewOutboundQueue creates a queue of the given capacity. dropOldest
// selects the snapshot eviction policy; false selects drop-newest.
func NewOutboundQueue(capacity int, dropOldest bool) *OutboundQueue {
	return &OutboundQueue{ch: make(chan []byte, capacity), dropOldest: dropOldest}
}

// Push enqueues data, applying this queue's overflow policy rather than
// blocking the tick goroutine.
func (q *OutboundQueue) Push(data []byte) {
	select {
	case q.ch <- data:
		return
	default:
	}
	if !q.dropOldest {
		return // drop-newest: data is simply discarded
	}
	select {
	case <-q.ch:
	default:
	}
	select {
	case q.ch <- data:
	default:
	}
}

// C returns the receive side of the queue, for the adapter's write
// goroutine to drain.
func (q *OutboundQueue) C() <-chan []byte { return q.ch }
