package upstream

import "testing"

func TestDecodeRPCResponse(t *testing.T) {
	if v := DecodeRPCResponse("application/json", []byte(`{"a":1}`)); v.(map[string]any)["a"] != 1.0 {
		t.Fatalf("json decode = %v", v)
	}
	if v := DecodeRPCResponse("text/plain", []byte("hello")); v != "hello" {
		t.Fatalf("text decode = %v, want %q", v, "hello")
	}
	v := DecodeRPCResponse("audio/wav", []byte{0x01, 0x02})
	m, ok := v.(map[string]any)
	if !ok || m["$opaque"] != "AQI=" {
		t.Fatalf("opaque decode = %v, want {$opaque: AQI=}", v)
	}
}
