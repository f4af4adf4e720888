package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"request with number id", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, "request"},
		{"request with string id", `{"jsonrpc":"2.0","id":"abc","method":"ping"}`, "request"},
		{"notification", `{"jsonrpc":"2.0","method":"notifications/initialized"}`, "notification"},
		{"null id is a notification", `{"jsonrpc":"2.0","id":null,"method":"notifications/cancelled"}`, "notification"},
		{"response", `{"jsonrpc":"2.0","id":7,"result":{}}`, "response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseMessage([]byte(tt.data))
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			var got string
			switch msg.(type) {
			case *Request:
				got = "request"
			case *Notification:
				got = "notification"
			case *Response:
				got = "response"
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s (%T)", tt.want, got, msg)
			}
		})
	}
}

func TestParseMessage_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code ErrorCode
	}{
		{"malformed", `{"jsonrpc":`, ParseError},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`, InvalidRequest},
		{"batch", `[{"jsonrpc":"2.0","id":1,"method":"ping"}]`, InvalidRequest},
		{"empty object", `{"jsonrpc":"2.0"}`, InvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage([]byte(tt.data))
			rpcErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("Expected *Error, got %v", err)
			}
			if rpcErr.Code != tt.code {
				t.Errorf("Expected code %d, got %d", tt.code, rpcErr.Code)
			}
		})
	}
}

func TestResponseIDRoundTrip(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"jsonrpc":"2.0","id":"req-42","method":"ping"}`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	req := msg.(*Request)

	data, err := json.Marshal(NewResult(req.ID, nil))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != `{"jsonrpc":"2.0","id":"req-42","result":{}}` {
		t.Errorf("Unexpected response %s", data)
	}

	data, err = json.Marshal(NewErrorResponse(nil, NewError(ParseError, "Parse error", nil)))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}` {
		t.Errorf("Unexpected error response %s", data)
	}
}
