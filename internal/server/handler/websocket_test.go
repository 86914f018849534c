package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestSocket(t *testing.T, service *Service) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewWebSocketHandler(service, 1<<16))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// wsReply mirrors WSResponse with a raw payload for decoding in tests
type wsReply struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func readReply(t *testing.T, conn *websocket.Conn) wsReply {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return reply
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if err := conn.WriteJSON(WSMessage{Type: msgType, Payload: raw}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
}

func TestWebSocket_Session(t *testing.T) {
	_, service := newTestHandler(t, Options{})
	conn := dialTestSocket(t, service)

	hello := readReply(t, conn)
	if hello.Type != "hello" {
		t.Fatalf("first message = %q, want hello", hello.Type)
	}
	var session WSHelloPayload
	if err := json.Unmarshal(hello.Payload, &session); err != nil || session.Session == "" {
		t.Errorf("hello payload = %s, want session id", hello.Payload)
	}

	send(t, conn, "ping", nil)
	if reply := readReply(t, conn); reply.Type != "pong" {
		t.Errorf("reply = %q, want pong", reply.Type)
	}

	send(t, conn, "compile", WSCompilePayload{
		ID:             "req-1",
		CompileRequest: CompileRequest{Name: "live.cdl", Source: "page {\n  v: @gone\n}\n"},
	})
	reply := readReply(t, conn)
	if reply.Type != "result" || reply.ID != "req-1" {
		t.Fatalf("reply = %s/%s, want result/req-1", reply.Type, reply.ID)
	}
	var resp CompileResponse
	if err := json.Unmarshal(reply.Payload, &resp); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if resp.OK || len(resp.Diagnostics) != 1 || resp.Diagnostics[0].Kind != "DanglingReference" {
		t.Errorf("diagnostics = %+v, want one dangling reference", resp.Diagnostics)
	}
}

func TestWebSocket_Errors(t *testing.T) {
	_, service := newTestHandler(t, Options{})
	conn := dialTestSocket(t, service)
	readReply(t, conn)

	tests := []struct {
		name    string
		msgType string
		payload interface{}
		code    string
		id      string
	}{
		{"unknown type", "subscribe", nil, "unknown_type", ""},
		{"bad payload", "compile", "not an object", "invalid_payload", ""},
		{"input limit", "compile", WSCompilePayload{ID: "big", CompileRequest: CompileRequest{Source: strings.Repeat("a {}\n", 1000)}}, "INVALID_LENGTH", "big"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.msgType, tt.payload)
			reply := readReply(t, conn)
			if reply.Type != "error" || reply.ID != tt.id {
				t.Fatalf("reply = %s/%s, want error/%s", reply.Type, reply.ID, tt.id)
			}
			var e WSErrorPayload
			if err := json.Unmarshal(reply.Payload, &e); err != nil {
				t.Fatalf("json.Unmarshal() error = %v", err)
			}
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
		})
	}
}
