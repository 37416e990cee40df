// Package relay defines the wire protocol shared with the browser clients:
// JSON event frames with positional arguments and the conversation key rule.
package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Event names accepted from clients. Names and argument order are part of the
// client contract and must not change.
const (
	EventSetUserRoom    = "setUserIdOwnRoom"
	EventRevokeUserRoom = "revokeUserIdOwnRoom"
	EventJoinRoom       = "join-room"
	EventLeaveRoom      = "leave-room"
	EventSendMessage    = "send-message"
	EventSendToast      = "sendToast"
	EventFriendRequest  = "sendFriendRequest"
	EventRefreshFriends = "refreshFriendList"
)

// Event names emitted to clients.
const (
	EventNewMessage           = "new-message"
	EventToastClient          = "sendToastClient"
	EventFriendRequestClient  = "sendFriendRequestClient"
	EventRefreshFriendsClient = "refreshFriendListClient"
)

// ConversationKeySeparator joins the sorted pair of user ids into a
// conversation room key. Clients compute the same key independently, so the
// separator is fixed forever.
const ConversationKeySeparator = "--"

var (
	// ErrEmptyEvent marks a frame whose event name is missing or blank.
	ErrEmptyEvent = errors.New("frame has no event name")
	// ErrBadArity marks a frame whose argument count does not match the event.
	ErrBadArity = errors.New("wrong argument count")
	// ErrBadArgument marks an argument that failed to decode as its declared type.
	ErrBadArgument = errors.New("malformed argument")
)

// Frame is one wire-level event: a name plus positional JSON arguments.
// Arguments are kept raw so values the relay only forwards (timestamps in
// particular) survive the round trip without re-encoding.
type Frame struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args"`
}

// ParseFrame decodes a single inbound text message into a Frame.
func ParseFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decoding frame: %w", err)
	}
	if strings.TrimSpace(f.Event) == "" {
		return Frame{}, ErrEmptyEvent
	}
	return f, nil
}

// EncodeFrame marshals an outbound event. A zero-argument event is encoded
// with an empty args array, never null, matching what the clients expect.
func EncodeFrame(event string, args ...any) ([]byte, error) {
	if args == nil {
		args = []any{}
	}
	return json.Marshal(struct {
		Event string `json:"event"`
		Args  []any  `json:"args"`
	}{Event: event, Args: args})
}

func arityError(got, want int) error {
	return fmt.Errorf("%w: got %d, want %d", ErrBadArity, got, want)
}

// stringArgs validates exact arity and decodes every argument as a string.
func stringArgs(args []json.RawMessage, want int) ([]string, error) {
	if len(args) != want {
		return nil, arityError(len(args), want)
	}
	out := make([]string, want)
	for i, raw := range args {
		s, err := stringArg(raw, i)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func stringArg(raw json.RawMessage, pos int) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w at position %d: %v", ErrBadArgument, pos, err)
	}
	return s, nil
}

// ConversationKey derives the room key for a two-party conversation. The pair
// is unordered: both participants compute the same key regardless of argument
// order. The key doubles as the conversation's resource path in the web app.
func ConversationKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ConversationKeySeparator + b
}
