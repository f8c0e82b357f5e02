package fakeapi

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Start serves a new fake on IPv4 loopback for the duration of the test.
// Sandboxes that forbid IPv6 listeners still work.
func Start(t testing.TB) (*Server, *httptest.Server) {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("unable to start test server: %v", err)
	}

	fake := New()
	server := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: fake.Handler()},
	}
	server.Start()
	t.Cleanup(server.Close)
	return fake, server
}
