package port

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// occupyPort starts a TCP listener on an OS-assigned port and returns
// the port. The listener is closed when the test ends.
func occupyPort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err, "failed to start test listener")
	t.Cleanup(func() { _ = listener.Close() })

	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	require.True(t, ok)
	return tcpAddr.Port
}

// TestIsAvailable_UsedPort verifies that a port held by another
// listener is reported as unavailable.
func TestIsAvailable_UsedPort(t *testing.T) {
	port := occupyPort(t)

	scanner := NewScanner()
	assert.False(t, scanner.IsAvailable(port), "port %d should be in use (we have a listener on it)", port)
}

// TestIsAvailable_FreePort verifies the happy path. The port is taken
// from a throwaway listener that is closed first, so it is known-free
// rather than hardcoded.
func TestIsAvailable_FreePort(t *testing.T) {
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	require.True(t, ok)
	port := tcpAddr.Port
	require.NoError(t, listener.Close())

	scanner := NewScanner()
	assert.True(t, scanner.IsAvailable(port), "port %d should be available", port)
}

// TestBusy verifies that Busy returns exactly the occupied subset,
// sorted.
func TestBusy(t *testing.T) {
	busy1 := occupyPort(t)
	busy2 := occupyPort(t)

	// A known-free port to mix in.
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	free := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	scanner := NewScanner()
	got := scanner.Busy([]int{busy2, free, busy1})

	expected := []int{busy1, busy2}
	if busy2 < busy1 {
		expected = []int{busy2, busy1}
	}
	assert.Equal(t, expected, got)
}

// TestBusy_AllFree verifies the empty result when nothing is occupied.
func TestBusy_AllFree(t *testing.T) {
	scanner := NewScanner()
	assert.Empty(t, scanner.Busy(nil))
}
