package api

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies no handler leaks goroutines across the package tests.
// Persistent HTTP keep-alive pool goroutines are expected and ignored.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}
