package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("every key", func(t *testing.T) {
		c, err := load(strings.NewReader(`# comment
listen-net tcp
listen-addr 127.0.0.1:5640
linemergefs-mount /mnt/linemerge
context-lines 5
storage s3
s3-region eu-west-1
s3-bucket documents
s3-profile linemerge
disk-store-dir documents
compress yes
plumb on
`))
		require.Nil(t, err)
		assert.Equal(t, &C{
			ListenNet:    "tcp",
			ListenAddr:   "127.0.0.1:5640",
			MountPoint:   "/mnt/linemerge",
			ContextLines: 5,
			Storage:      "s3",
			S3Region:     "eu-west-1",
			S3Bucket:     "documents",
			S3Profile:    "linemerge",
			DiskStoreDir: "documents",
			Compress:     true,
			Plumb:        true,
		}, c)
	})
	t.Run("defaults", func(t *testing.T) {
		c, err := load(strings.NewReader("\n"))
		require.Nil(t, err)
		assert.Equal(t, defaultContextLines, c.ContextLines)
		assert.Equal(t, "null", c.Storage)
		assert.False(t, c.Compress)
	})
	for _, bad := range []string{
		"listen-net",
		"color blue",
		"context-lines many",
		"context-lines -1",
		"compress maybe",
	} {
		t.Run(bad, func(t *testing.T) {
			if _, err := load(strings.NewReader(bad)); err == nil {
				t.Errorf("got nil, want non-nil error")
			}
		})
	}
}

func TestLoadFromBase(t *testing.T) {
	base := t.TempDir()
	require.Nil(t, Initialize(base))
	c, err := Load(base)
	require.Nil(t, err)
	assert.Equal(t, base, c.Base())
	assert.Equal(t, "tcp", c.ListenNet)
	assert.Equal(t, "disk", c.Storage)
	assert.Equal(t, filepath.Join(base, "documents"), c.DiskStoreDir)
	assert.Equal(t, filepath.Join(base, "linemergefs.log"), c.LogFilePath())

	assert.NotNil(t, Initialize(base), "second initialization must fail")

	require.Nil(t, os.Chmod(filepath.Join(base, "config"), 0644))
	_, err = Load(base)
	assert.NotNil(t, err, "group and world readable config must be rejected")
}

func TestDefault(t *testing.T) {
	t.Setenv("NAMESPACE", "/tmp/ns.test")
	c := Default("/base")
	assert.Equal(t, "unix", c.ListenNet)
	assert.Equal(t, "/tmp/ns.test/linemerge", c.ListenAddr)
	assert.Equal(t, "unix!/tmp/ns.test/linemerge", c.dialString())
	assert.Equal(t, defaultContextLines, c.ContextLines)
}

func TestMountCommands(t *testing.T) {
	c := &C{ListenNet: "tcp", ListenAddr: "127.0.0.1:5640"}
	_, err := c.MountCommands()
	assert.NotNil(t, err, "no mount point")

	got, err := linuxMountCommand("tcp", "127.0.0.1:5640", "/mnt/linemerge")
	require.Nil(t, err)
	assert.Contains(t, got, "sudo mount -t 9p 127.0.0.1 /mnt/linemerge -o trans=tcp,port=5640,")

	_, err = linuxMountCommand("tcp", "localhost", "/mnt/linemerge")
	assert.NotNil(t, err)

	got, err = netbsdMountCommand("tcp", "127.0.0.1:5640", "/mnt/linemerge")
	require.Nil(t, err)
	assert.Equal(t, "sudo mount_9p -p 5640 127.0.0.1 /mnt/linemerge", got)

	assert.Equal(t, "tcp!127.0.0.1!5640", c.dialString())
}
