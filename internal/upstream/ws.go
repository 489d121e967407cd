package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"github.com/jangala-dev/nb-esp32-firmware/internal/logx"
)

// WSClient is the one long-lived full-duplex connection to
// `/network/<client_id>/connect` (spec §4.4). It owns two goroutines: the
// inbound reader (dispatches by `type`) and the outbound sender (shapes
// OutgoingMessage into wire JSON and writes it), matching the "outbound-
// websocket task" / "outbound-message-shaping task" split of spec §5.
type WSClient struct {
	conn     *websocket.Conn
	clientID string
	publicID string

	replies  *ReplyTable
	incoming chan IncomingMessage
	outgoing chan OutgoingMessage

	doneOnce sync.Once
	done     chan struct{}
}

func (c *WSClient) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

// WSURL derives the websocket URL from the upstream HTTP(S) base by scheme
// substitution (spec §6: "ws(s)://<base>/network/<client_id>/connect").
func WSURL(base, clientID string) string {
	scheme := "wss"
	rest := base
	if strings.HasPrefix(base, "https://") {
		rest = strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		scheme = "ws"
		rest = strings.TrimPrefix(base, "http://")
	}
	return fmt.Sprintf("%s://%s/network/%s/connect", scheme, rest, clientID)
}

// Dial connects and performs the set-uuid handshake (spec §4.4).
func Dial(ctx context.Context, base, clientID, publicID string, replies *ReplyTable) (*WSClient, error) {
	conn, _, err := websocket.Dial(ctx, WSURL(base, clientID), nil)
	if err != nil {
		return nil, err
	}
	c := &WSClient{
		conn:     conn,
		clientID: clientID,
		publicID: publicID,
		replies:  replies,
		incoming: make(chan IncomingMessage, 32),
		outgoing: make(chan OutgoingMessage, 32),
		done:     make(chan struct{}),
	}
	if err := c.writeJSON(ctx, map[string]any{"type": "set-uuid", "clientId": clientID}); err != nil {
		conn.Close(websocket.StatusInternalError, "handshake failed")
		return nil, err
	}
	go c.readLoop(ctx)
	go c.sendLoop(ctx)
	return c, nil
}

func (c *WSClient) writeJSON(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, b)
}

// readLoop parses inbound text frames as JSON and dispatches by `type`,
// following original_source/system.rs's ws_on_msg closure.
func (c *WSClient) readLoop(ctx context.Context) {
	defer c.markDone()
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			logx.Warnf("websocket read failed: %v", err)
			return
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		typ, _ := msg["type"].(string)
		switch typ {
		case "ping":
			if err := c.writeJSON(ctx, map[string]any{"type": "pong"}); err != nil {
				return
			}
		case "message":
			c.dispatchMessage(msg)
		default:
			// unrecognized frame types are ignored.
		}
	}
}

func (c *WSClient) dispatchMessage(msg map[string]any) {
	msgType, _ := msg["msgType"].(string)
	requestID, _ := msg["requestId"].(string)

	if msgType == "__reply__" {
		content, _ := msg["content"].(map[string]any)
		if requestID == "" {
			return
		}
		var body any
		if content != nil {
			body = content["body"]
		}
		c.replies.Fulfil(requestID, body)
		return
	}

	var replyKey *InternReplyKey
	if requestID != "" {
		srcID, _ := msg["srcId"].(string)
		if srcID == "" {
			return
		}
		replyKey = &InternReplyKey{SrcID: srcID, RequestID: requestID}
	}
	values, _ := msg["content"].(map[string]any)
	select {
	case c.incoming <- IncomingMessage{MsgType: msgType, Values: values, ReplyKey: replyKey}:
	default:
		logx.Warnf("incoming message queue full, dropping %s", msgType)
	}
}

// sendLoop shapes queued OutgoingMessage values into the wire JSON schema
// and writes them, rewriting TargetEveryone to the client's own public id.
func (c *WSClient) sendLoop(ctx context.Context) {
	for {
		select {
		case <-c.done:
			return
		case out := <-c.outgoing:
			targets := make([]string, len(out.Targets))
			for i, t := range out.Targets {
				if t == TargetEveryone {
					t = c.publicID
				}
				targets[i] = t
			}

			var frame map[string]any
			switch out.Kind {
			case Normal:
				frame = map[string]any{
					"type": "message", "dstId": targets, "srcId": c.publicID,
					"msgType": out.MsgType, "content": out.Values,
				}
			case Blocking:
				frame = map[string]any{
					"type": "message", "dstId": targets, "srcId": c.publicID,
					"msgType": out.MsgType, "requestId": out.RequestID, "content": out.Values,
				}
			case Reply:
				frame = map[string]any{
					"type": "message", "dstId": out.ReplyKey.SrcID, "msgType": "__reply__",
					"requestId": out.ReplyKey.RequestID, "content": map[string]any{"body": out.ReplyBody},
				}
			}
			if err := c.writeJSON(ctx, frame); err != nil {
				logx.Warnf("websocket write failed: %v", err)
				return
			}
		}
	}
}

// Send enqueues an OutgoingMessage for the sender task.
func (c *WSClient) Send(msg OutgoingMessage) {
	select {
	case c.outgoing <- msg:
	default:
		logx.Warnf("outgoing message queue full, dropping %s", msg.MsgType)
	}
}

// Receive implements receive_message: a non-blocking poll of the inbound
// queue (spec §4.5).
func (c *WSClient) Receive() (IncomingMessage, bool) {
	select {
	case m := <-c.incoming:
		return m, true
	default:
		return IncomingMessage{}, false
	}
}

// NewRequestID returns a fresh random (v4) UUID string; cmd/firmware uses it
// as the client id. Blocking sends take their request id from
// ReplyTable.Allocate instead.
func NewRequestID() string {
	return uuid.NewString()
}

func (c *WSClient) Close() error {
	c.markDone()
	return c.conn.Close(websocket.StatusNormalClosure, "shutting down")
}
