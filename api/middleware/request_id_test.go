package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestIDEchoesCallerID(t *testing.T) {
	handler := RequestID(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "trace-abc.123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if got := resp.Header().Get(requestIDHeader); got != "trace-abc.123" {
		t.Fatalf("expected caller id echoed, got %q", got)
	}
}

func TestRequestIDMintsWhenMissing(t *testing.T) {
	handler := RequestID(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a minted request id")
	}
}

func TestRequestIDReplacesHostileIDs(t *testing.T) {
	cases := map[string]string{
		"newline":   "abc\ndef",
		"spaces":    "abc def",
		"oversized": strings.Repeat("a", maxRequestIDLength+1),
	}
	for name, hostile := range cases {
		t.Run(name, func(t *testing.T) {
			handler := RequestID(nil)(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(requestIDHeader, hostile)
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			got := resp.Header().Get(requestIDHeader)
			if got == "" || got == hostile {
				t.Fatalf("expected hostile id replaced, got %q", got)
			}
		})
	}
}
