// Package relay routes inbound events. Every supported event name maps to
// one handler in a fixed dispatch table; there is no per-connection listener
// wiring. Unknown names and malformed arguments are dropped and logged, and
// never affect the connection that sent them or anyone else.
package relay

import (
	"encoding/json"
	"log/slog"
)

type eventHandler func(c *Conn, args []json.RawMessage) error

// Router dispatches decoded frames to the relay's event handlers.
type Router struct {
	log      *slog.Logger
	metrics  *Metrics
	handlers map[string]eventHandler
}

func newRouter(log *slog.Logger, metrics *Metrics) *Router {
	return &Router{
		log:      log,
		metrics:  metrics,
		handlers: make(map[string]eventHandler),
	}
}

func (rt *Router) handle(event string, h eventHandler) {
	rt.handlers[event] = h
}

// Dispatch decodes one raw inbound message and runs its handler. Every
// failure mode here is a protocol error: counted, logged, dropped.
func (rt *Router) Dispatch(c *Conn, raw []byte) {
	frame, err := ParseFrame(raw)
	if err != nil {
		rt.metrics.ProtocolErrors.Inc()
		rt.log.Warn("dropping undecodable frame", "conn", c.id, "error", err)
		return
	}

	h, ok := rt.handlers[frame.Event]
	if !ok {
		rt.metrics.ProtocolErrors.Inc()
		rt.log.Warn("dropping unknown event", "conn", c.id, "event", frame.Event)
		return
	}

	rt.metrics.EventsReceived.WithLabelValues(frame.Event).Inc()
	if err := h(c, frame.Args); err != nil {
		rt.metrics.ProtocolErrors.Inc()
		rt.log.Warn("dropping malformed event", "conn", c.id, "event", frame.Event, "error", err)
	}
}

// registerEvents installs the full event catalogue. Names, argument order,
// and the relayed client event names are a compatibility contract with the
// deployed web clients.
func (r *Relay) registerEvents() {
	r.router.handle(EventSetUserRoom, r.handleSetUserRoom)
	r.router.handle(EventRevokeUserRoom, r.handleRevokeUserRoom)
	r.router.handle(EventJoinRoom, r.handleJoinRoom)
	r.router.handle(EventLeaveRoom, r.handleLeaveRoom)
	r.router.handle(EventSendMessage, r.handleSendMessage)
	r.router.handle(EventSendToast, r.handleSendToast)
	r.router.handle(EventFriendRequest, r.handleFriendRequest)
	r.router.handle(EventRefreshFriends, r.handleRefreshFriends)
}

// setUserIdOwnRoom(userId) joins the sender into the user's personal
// channel; every device the user has open joins the same room.
func (r *Relay) handleSetUserRoom(c *Conn, args []json.RawMessage) error {
	vals, err := stringArgs(args, 1)
	if err != nil {
		return err
	}
	r.join(c, UserRoom(vals[0]))
	return nil
}

// revokeUserIdOwnRoom(userId) removes the sender from the user's personal
// channel, typically on sign-out without closing the socket.
func (r *Relay) handleRevokeUserRoom(c *Conn, args []json.RawMessage) error {
	vals, err := stringArgs(args, 1)
	if err != nil {
		return err
	}
	r.leave(c, UserRoom(vals[0]))
	return nil
}

// join-room(chatId) joins the sender into a conversation channel. chatId is
// already the sorted-pair key; the client computed it.
func (r *Relay) handleJoinRoom(c *Conn, args []json.RawMessage) error {
	vals, err := stringArgs(args, 1)
	if err != nil {
		return err
	}
	r.join(c, ConversationRoom(vals[0]))
	return nil
}

// leave-room(chatId) removes the sender from a conversation channel.
func (r *Relay) handleLeaveRoom(c *Conn, args []json.RawMessage) error {
	vals, err := stringArgs(args, 1)
	if err != nil {
		return err
	}
	r.leave(c, ConversationRoom(vals[0]))
	return nil
}

// send-message(chatId, senderId, content, createdAt) relays new-message to
// every member of the conversation, the sender's own devices included. The
// surrounding application has already stored the message durably; the relay
// only fans out the live notification. createdAt passes through verbatim.
func (r *Relay) handleSendMessage(c *Conn, args []json.RawMessage) error {
	if len(args) != 4 {
		return arityError(len(args), 4)
	}
	chatID, err := stringArg(args[0], 0)
	if err != nil {
		return err
	}
	senderID, err := stringArg(args[1], 1)
	if err != nil {
		return err
	}
	content, err := stringArg(args[2], 2)
	if err != nil {
		return err
	}
	createdAt := args[3]

	r.caster.Broadcast(ConversationRoom(chatID), EventNewMessage, senderID, content, createdAt)
	return nil
}

// sendToast(receiverId, senderId, message) relays sendToastClient to all of
// the receiver's devices.
func (r *Relay) handleSendToast(c *Conn, args []json.RawMessage) error {
	vals, err := stringArgs(args, 3)
	if err != nil {
		return err
	}
	receiverID, senderID, message := vals[0], vals[1], vals[2]

	r.caster.Broadcast(UserRoom(receiverID), EventToastClient, senderID, message)
	return nil
}

// sendFriendRequest(receiverId) relays a payload-free sendFriendRequestClient.
func (r *Relay) handleFriendRequest(c *Conn, args []json.RawMessage) error {
	vals, err := stringArgs(args, 1)
	if err != nil {
		return err
	}

	r.caster.Broadcast(UserRoom(vals[0]), EventFriendRequestClient)
	return nil
}

// refreshFriendList(receiverId) relays a payload-free refreshFriendListClient.
func (r *Relay) handleRefreshFriends(c *Conn, args []json.RawMessage) error {
	vals, err := stringArgs(args, 1)
	if err != nil {
		return err
	}

	r.caster.Broadcast(UserRoom(vals[0]), EventRefreshFriendsClient)
	return nil
}
