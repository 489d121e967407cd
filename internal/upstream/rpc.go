package upstream

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// RPCContext is the per-session identity call_rpc (original_source/system.rs)
// closes over: the services base URL, the client's own id, and the
// project/role the client registered under.
type RPCContext struct {
	ServicesBase string
	ClientID     string
	ProjectID    string
	RoleID       string
}

// RPCResult is the coerced outcome of an RPC call, chosen by content type:
// image/* stays raw bytes in Image; every other body goes through
// DecodeRPCResponse into JSON.
type RPCResult struct {
	IsImage bool
	Image   []byte
	JSON    any
}

// CallRPC issues `POST {services_base}/<service>/<rpc>?uuid=...&projectId=...&roleId=...&t=...`
// with a JSON body of named args (spec §6), now(ms) supplied by the caller
// so this stays deterministic under test.
func CallRPC(client *HTTPClient, ctx RPCContext, service, rpc string, args map[string]any, nowMs int64) (RPCResult, error) {
	u := fmt.Sprintf("%s/%s/%s?uuid=%s&projectId=%s&roleId=%s&t=%d",
		strings.TrimRight(ctx.ServicesBase, "/"),
		url.PathEscape(service), url.PathEscape(rpc),
		url.QueryEscape(ctx.ClientID), url.QueryEscape(ctx.ProjectID), url.QueryEscape(ctx.RoleID), nowMs)

	body, err := json.Marshal(args)
	if err != nil {
		return RPCResult{}, fmt.Errorf("failed to convert RPC args to json: %w", err)
	}

	resp, err := client.Do("POST", u, map[string]string{"Content-Type": "application/json"}, body)
	if err != nil {
		return RPCResult{}, err
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return RPCResult{}, fmt.Errorf("%s", string(resp.Body))
	}

	if strings.Contains(resp.ContentType, "image/") {
		return RPCResult{IsImage: true, Image: resp.Body}, nil
	}
	return RPCResult{JSON: DecodeRPCResponse(resp.ContentType, resp.Body)}, nil
}

// DecodeRPCResponse coerces a non-image RPC body by Content-Type: JSON if it
// contains "json", a raw string if it contains "text", and an opaque
// base64-wrapped blob otherwise (e.g. audio/* or any other binary body).
func DecodeRPCResponse(contentType string, body []byte) any {
	switch {
	case strings.Contains(contentType, "json"):
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			return v
		}
		return string(body)
	case strings.Contains(contentType, "text"):
		return string(body)
	default:
		return map[string]any{"$opaque": base64.StdEncoding.EncodeToString(body)}
	}
}
