// Package relay implements the real-time event relay for the Nexus chat
// application: it tracks live WebSocket connections, groups them into user
// and conversation rooms, and fans chat messages, toasts, and friend-list
// signals out to exactly the members of a target room.
//
// The relay offers no durability: persistence and authentication happen in
// the surrounding application before an event ever reaches it. The
// implementation is organized into small files per concern - registries,
// router, broadcaster, connection pumps, HTTP surface - to keep the core
// testable in isolation.
package relay
