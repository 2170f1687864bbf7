package netutil

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForListener(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	addr := l.Addr().String()
	assert.Nil(t, WaitForListener("tcp", addr, time.Second))
	require.Nil(t, l.Close())
	assert.NotNil(t, WaitForListener("tcp", addr, 300*time.Millisecond))
}
