package netutil

import (
	"net"
	"time"
)

// WaitForListener tries to connect to the given address and returns nil, or
// the last error from dialing it once the timeout elapses.
func WaitForListener(network string, addr string, timeout time.Duration) error {
	start := time.Now()
	var lastErr error
	for time.Since(start) < timeout {
		if lastErr = tryDial(network, addr); lastErr == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	return lastErr
}

func tryDial(network string, addr string) error {
	conn, err := net.Dial(network, addr)
	if err == nil {
		err = conn.Close()
	}
	return err
}
