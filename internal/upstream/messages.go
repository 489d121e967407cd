package upstream

// TargetEveryone is the sentinel target the VM uses to mean "every client
// in the room"; the outbound shaping task rewrites it to the sender's own
// public id before handing the frame to the websocket (spec §4.4).
const TargetEveryone = "everyone in room"

// InternReplyKey identifies a pending inbound request this client may
// reply to via send_reply (original_source/system.rs's InternReplyKey).
type InternReplyKey struct {
	SrcID     string
	RequestID string
}

// IncomingMessage is what receive_message hands the VM (spec §4.4, §4.5).
type IncomingMessage struct {
	MsgType  string
	Values   map[string]any
	ReplyKey *InternReplyKey
}

// OutgoingMessage is what send_message/send_reply hand to the sender task.
// Exactly one of the three shapes applies, matching
// original_source/system.rs's OutgoingMessage enum.
type OutgoingMessage struct {
	// Normal: fire-and-forget message, no reply expected.
	// Blocking: same, but tagged with a RequestID so a __reply__ can route
	// back through the ReplyTable.
	// Reply: answers someone else's InternReplyKey.
	Kind      OutgoingKind
	MsgType   string
	Values    map[string]any
	Targets   []string
	RequestID string          // set for Blocking
	ReplyKey  InternReplyKey  // set for Reply
	ReplyBody any             // set for Reply
}

type OutgoingKind int

const (
	Normal OutgoingKind = iota
	Blocking
	Reply
)
