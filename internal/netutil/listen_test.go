package netutil

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenReplacesStaleSocket(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "linemerge")
	stale, err := net.Listen("unix", addr)
	require.Nil(t, err)
	// Leave the socket file behind, as a killed server would.
	stale.(*net.UnixListener).SetUnlinkOnClose(false)
	require.Nil(t, stale.Close())

	l, err := Listen("unix", addr)
	require.Nil(t, err)
	defer func() { _ = l.Close() }()
	assert.True(t, reachable(addr))
}

func TestListenKeepsLiveSocket(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "linemerge")
	live, err := Listen("unix", addr)
	require.Nil(t, err)
	defer func() { _ = live.Close() }()

	_, err = Listen("unix", addr)
	assert.NotNil(t, err)
}
