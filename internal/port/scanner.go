// Package port implements host port availability scanning.
//
// Before the stack is started, laraup checks every host port the compose
// file publishes. A port already bound by another process would make
// "compose up" fail with an error that is easy to misread as an image or
// build problem, so the preflight surfaces the real cause up front.
package port

import (
	"fmt"
	"net"
	"sort"
)

// Scanner checks whether specific ports are available on the host.
//
// It asks the OS directly via net.Listen rather than parsing /proc/net/*
// or shelling out to lsof/ss, which may need elevated permissions.
// The struct is stateless; it exists as a type so a bind address or
// timeout can be added later without breaking callers.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsAvailable reports whether a TCP port is free on the host.
//
// It binds to all interfaces (":port" rather than "127.0.0.1:port")
// because the container engines publish ports on 0.0.0.0, so the same
// address space must be checked to avoid false positives.
func (s *Scanner) IsAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	defer func() { _ = listener.Close() }()
	return true
}

// Busy returns the subset of ports that are already in use, sorted.
func (s *Scanner) Busy(ports []int) []int {
	var busy []int
	for _, p := range ports {
		if !s.IsAvailable(p) {
			busy = append(busy, p)
		}
	}
	sort.Ints(busy)
	return busy
}
