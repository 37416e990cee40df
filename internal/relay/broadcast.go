package relay

import (
	"log/slog"
)

// Broadcaster fans one event out to every current member of a room. It takes
// a membership snapshot at call time and delivers to each member
// independently: one slow or dead member never blocks the others.
type Broadcaster struct {
	rooms   *RoomRegistry
	conns   *ConnRegistry
	log     *slog.Logger
	metrics *Metrics

	// onFailure receives connections whose delivery failed. The relay wires
	// it to the disconnect path: a failed send is an implicit disconnect.
	onFailure func(*Conn)
}

func newBroadcaster(rooms *RoomRegistry, conns *ConnRegistry, log *slog.Logger, metrics *Metrics) *Broadcaster {
	return &Broadcaster{
		rooms:   rooms,
		conns:   conns,
		log:     log,
		metrics: metrics,
	}
}

// Broadcast encodes the event once and queues it to every member of the
// room. Delivery is fire-and-forget: no acknowledgment, no retry. A member
// whose queue refuses the frame is handed to onFailure after the fan-out
// loop completes, so cleanup never perturbs the snapshot being walked.
// Broadcasting to a room with no members is a silent no-op.
func (b *Broadcaster) Broadcast(room RoomID, event string, args ...any) {
	payload, err := EncodeFrame(event, args...)
	if err != nil {
		b.log.Error("encoding broadcast frame", "room", room, "event", event, "error", err)
		return
	}

	members := b.rooms.Members(room)
	b.metrics.Broadcasts.Inc()
	if len(members) == 0 {
		return
	}

	var failed []*Conn
	for _, id := range members {
		c, ok := b.conns.Get(id)
		if !ok {
			// Left between snapshot and delivery; late removal is fine.
			continue
		}
		if c.enqueue(payload) {
			b.metrics.FramesDelivered.Inc()
		} else {
			b.metrics.FramesDropped.Inc()
			failed = append(failed, c)
		}
	}

	b.log.Debug("broadcast", "room", room.String(), "event", event, "members", len(members))

	for _, c := range failed {
		b.onFailure(c)
	}
}
