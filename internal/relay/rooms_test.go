package relay

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinThenMembers(t *testing.T) {
	rr := NewRoomRegistry()
	room := ConversationRoom("alice--bob")

	rr.Join(room, "c1")
	assert.ElementsMatch(t, []ConnID{"c1"}, rr.Members(room))

	rr.Leave(room, "c1")
	assert.Empty(t, rr.Members(room))
}

// TestJoinIdempotent verifies joining the same pair twice yields the same
// membership as joining once.
func TestJoinIdempotent(t *testing.T) {
	rr := NewRoomRegistry()
	room := UserRoom("alice")

	rr.Join(room, "c1")
	rr.Join(room, "c1")

	assert.ElementsMatch(t, []ConnID{"c1"}, rr.Members(room))
	assert.ElementsMatch(t, []RoomID{room}, rr.RoomsOf("c1"))
}

func TestMembersOfUnknownRoom(t *testing.T) {
	rr := NewRoomRegistry()
	assert.Empty(t, rr.Members(UserRoom("nobody")))
}

func TestLeaveNonMemberIsNoOp(t *testing.T) {
	rr := NewRoomRegistry()
	room := UserRoom("alice")
	rr.Join(room, "c1")

	rr.Leave(room, "c2")
	rr.Leave(UserRoom("ghost"), "c1")

	assert.ElementsMatch(t, []ConnID{"c1"}, rr.Members(room))
}

// TestEmptyRoomGarbageCollection verifies the last leave deletes the room
// from internal storage, not just its membership.
func TestEmptyRoomGarbageCollection(t *testing.T) {
	rr := NewRoomRegistry()
	room := ConversationRoom("alice--bob")

	rr.Join(room, "c1")
	rr.Join(room, "c2")
	rr.Leave(room, "c1")
	require.Equal(t, 1, rr.Len())

	rr.Leave(room, "c2")
	assert.Equal(t, 0, rr.Len())

	rr.mu.RLock()
	_, exists := rr.members[room]
	rr.mu.RUnlock()
	assert.False(t, exists, "empty room must be deleted from storage")
}

// TestNoResidualGrowth verifies many join/leave cycles leave no state
// behind: memory is bounded by active rooms, not historical totals.
func TestNoResidualGrowth(t *testing.T) {
	rr := NewRoomRegistry()

	for i := 0; i < 1000; i++ {
		room := ConversationRoom(fmt.Sprintf("u%d--v%d", i, i))
		rr.Join(room, "c1")
		rr.Leave(room, "c1")
	}

	assert.Equal(t, 0, rr.Len())

	rr.mu.RLock()
	defer rr.mu.RUnlock()
	assert.Empty(t, rr.members)
	assert.Empty(t, rr.joined)
}

func TestLeaveAll(t *testing.T) {
	rr := NewRoomRegistry()
	r1 := UserRoom("alice")
	r2 := ConversationRoom("alice--bob")

	rr.Join(r1, "c1")
	rr.Join(r2, "c1")
	rr.Join(r2, "c2")

	left := rr.LeaveAll("c1")
	assert.ElementsMatch(t, []RoomID{r1, r2}, left)

	assert.Empty(t, rr.Members(r1), "user room should be gone")
	assert.ElementsMatch(t, []ConnID{"c2"}, rr.Members(r2))
	assert.Empty(t, rr.RoomsOf("c1"))
}

// TestRoomKindsAreDistinct verifies a user channel and a conversation
// channel with the same key are different rooms.
func TestRoomKindsAreDistinct(t *testing.T) {
	rr := NewRoomRegistry()
	rr.Join(UserRoom("x"), "c1")
	rr.Join(ConversationRoom("x"), "c2")

	assert.ElementsMatch(t, []ConnID{"c1"}, rr.Members(UserRoom("x")))
	assert.ElementsMatch(t, []ConnID{"c2"}, rr.Members(ConversationRoom("x")))
	assert.Equal(t, 2, rr.Len())
}

func TestRoomIDString(t *testing.T) {
	assert.Equal(t, "user/alice", UserRoom("alice").String())
	assert.Equal(t, "conversation/alice--bob", ConversationRoom("alice--bob").String())
}
