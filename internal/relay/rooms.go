// Package relay tracks room membership. A room is either a user's personal
// notification channel or a two-party conversation channel; both live in one
// registry and are created lazily and deleted as soon as they empty out.
package relay

import (
	"sync"

	"github.com/samber/lo"
)

// RoomKind distinguishes the two room namespaces. The wire protocol never
// carries the kind; it is inferred from the event that triggered the join.
type RoomKind uint8

const (
	// UserChannel is the room holding all of one user's active devices.
	UserChannel RoomKind = iota + 1
	// ConversationChannel is the room holding both participants of a chat.
	ConversationChannel
)

func (k RoomKind) String() string {
	switch k {
	case UserChannel:
		return "user"
	case ConversationChannel:
		return "conversation"
	default:
		return "unknown"
	}
}

// RoomID names one room: a kind plus the opaque key clients use on the wire
// (a user id, or a sorted-pair conversation key).
type RoomID struct {
	Kind RoomKind
	Key  string
}

// UserRoom names the personal channel of one user.
func UserRoom(userID string) RoomID {
	return RoomID{Kind: UserChannel, Key: userID}
}

// ConversationRoom names the channel of one two-party conversation. chatID
// must already be a sorted-pair key (see ConversationKey).
func ConversationRoom(chatID string) RoomID {
	return RoomID{Kind: ConversationChannel, Key: chatID}
}

func (r RoomID) String() string {
	return r.Kind.String() + "/" + r.Key
}

// RoomRegistry owns both sides of the room-to-connection relation. Keeping
// the forward and reverse maps under one mutex is what makes the membership
// bidirectionally consistent: a connection is in a room's member set exactly
// when the room is in that connection's joined set.
type RoomRegistry struct {
	mu      sync.RWMutex
	members map[RoomID]map[ConnID]struct{}
	joined  map[ConnID]map[RoomID]struct{}
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		members: make(map[RoomID]map[ConnID]struct{}),
		joined:  make(map[ConnID]map[RoomID]struct{}),
	}
}

// Join adds the connection to the room, creating the room on first join.
// Joining a room twice is a no-op.
func (rr *RoomRegistry) Join(room RoomID, id ConnID) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	set, ok := rr.members[room]
	if !ok {
		set = make(map[ConnID]struct{})
		rr.members[room] = set
	}
	set[id] = struct{}{}

	rooms, ok := rr.joined[id]
	if !ok {
		rooms = make(map[RoomID]struct{})
		rr.joined[id] = rooms
	}
	rooms[room] = struct{}{}
}

// Leave removes the connection from the room. The last member leaving deletes
// the room outright; rooms are bounded by current activity, never by history.
// Leaving a room the connection is not in is a no-op.
func (rr *RoomRegistry) Leave(room RoomID, id ConnID) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.leaveLocked(room, id)
}

// LeaveAll removes the connection from every room it joined and reports the
// rooms it left. Used by the disconnect path before the connection registry
// forgets the connection.
func (rr *RoomRegistry) LeaveAll(id ConnID) []RoomID {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rooms := lo.Keys(rr.joined[id])
	for _, room := range rooms {
		rr.leaveLocked(room, id)
	}
	return rooms
}

func (rr *RoomRegistry) leaveLocked(room RoomID, id ConnID) {
	if set, ok := rr.members[room]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(rr.members, room)
		}
	}
	if rooms, ok := rr.joined[id]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(rr.joined, id)
		}
	}
}

// Members returns a snapshot of the room's member set, empty if the room does
// not exist. The snapshot is what the broadcast engine fans out to; members
// joining or leaving afterwards do not affect an in-flight broadcast.
func (rr *RoomRegistry) Members(room RoomID) []ConnID {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return lo.Keys(rr.members[room])
}

// RoomsOf returns a snapshot of the rooms the connection currently belongs to.
func (rr *RoomRegistry) RoomsOf(id ConnID) []RoomID {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return lo.Keys(rr.joined[id])
}

// Len reports the number of currently live rooms.
func (rr *RoomRegistry) Len() int {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return len(rr.members)
}
