package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	mathrand "math/rand"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseDirectoryPath is where all linemerge commands store configuration and data.
// It defaults to $LINEMERGE_BASE if it is set, otherwise it defaults to $HOME/lib/linemerge.
// Commands override this via the -base flag.
var DefaultBaseDirectoryPath string

func init() {
	if base := os.Getenv("LINEMERGE_BASE"); base != "" {
		DefaultBaseDirectoryPath = base
	} else {
		// The portable way of doing this is by using the os/user package,
		// but I only intend to run this on Linux or NetBSD.
		DefaultBaseDirectoryPath = os.ExpandEnv("$HOME/lib/linemerge")
	}
}

const defaultContextLines = 3

type C struct {
	// Listen on localhost or a local-only network, e.g., one for
	// containers hosted on your computer.  There is no
	// authentication nor TLS so the file server must not be exposed on a
	// public address.
	ListenNet  string
	ListenAddr string

	MountPoint string

	// Unchanged lines around each hunk in unified diffs.
	ContextLines int

	// Document storage type - can be "disk", "s3", "memory" or "null".
	Storage string

	// These only make sense if the storage type is "s3".
	S3Region  string
	S3Bucket  string
	S3Profile string

	// These only make sense if the storage type is "disk".
	// If the path is relative, it will be assumed relative to the base dir.
	DiskStoreDir string

	// Whether documents are brotli-compressed in the store.
	Compress bool

	// Whether moving among regions sends the location to the plumber.
	Plumb bool

	// Directory holding linemerge config file and other files.
	// Other directories and files are derived from this.
	base string
}

// Default returns the configuration used when no config file exists, rooted
// at the given base directory.
func Default(base string) *C {
	c := &C{
		ContextLines: defaultContextLines,
		Storage:      "null",
		base:         base,
	}
	c.setDefaults()
	return c
}

// Load loads the configuration from the file called "config" in the provided base
// directory.
func Load(base string) (*C, error) {
	filename := filepath.Join(base, "config")
	if fi, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	} else if fi.Mode()&0077 != 0 {
		return nil, fmt.Errorf("config.Load %q: mode is %#o, want at most %#o",
			filename, fi.Mode()&0777, fi.Mode()&0700)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Ignore error closing file opened only for reading.
		_ = f.Close()
	}()
	c, err := load(f)
	if err != nil {
		return nil, err
	}
	c.base = base
	c.setDefaults()
	return c, nil
}

func (c *C) setDefaults() {
	if c.DiskStoreDir != "" && !filepath.IsAbs(c.DiskStoreDir) {
		c.DiskStoreDir = filepath.Clean(filepath.Join(c.base, c.DiskStoreDir))
	}
	if c.ListenNet == "" && c.ListenAddr == "" {
		c.ListenNet = "unix"
	}
	if c.ListenNet == "unix" && c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf("%s/linemerge", clientNamespace())
	}
}

func load(f io.Reader) (*C, error) {
	const method = "load"
	c := C{
		ContextLines: defaultContextLines,
		Storage:      "null",
	}
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		i := strings.IndexAny(line, " 	")
		if i == -1 {
			return nil, errorf(method, "no separator in %q", line)
		}
		switch key, val := line[:i], strings.TrimSpace(line[i:]); key {
		case "compress":
			b, err := parseBool(val)
			if err != nil {
				return nil, errorf(method, "%s: %w", key, err)
			}
			c.Compress = b
		case "context-lines":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return nil, errorf(method, "%s: %q is not a line count", key, val)
			}
			c.ContextLines = n
		case "disk-store-dir":
			c.DiskStoreDir = val
		case "linemergefs-mount":
			c.MountPoint = val
		case "listen-addr":
			c.ListenAddr = val
		case "listen-net":
			c.ListenNet = val
		case "plumb":
			b, err := parseBool(val)
			if err != nil {
				return nil, errorf(method, "%s: %w", key, err)
			}
			c.Plumb = b
		case "s3-bucket":
			c.S3Bucket = val
		case "s3-profile":
			c.S3Profile = val
		case "s3-region":
			c.S3Region = val
		case "storage":
			c.Storage = val
		default:
			return nil, errorf(method, "unknown key %q", key)
		}
	}
	if err := s.Err(); err != nil {
		return nil, errorf(method, "%w", err)
	}
	return &c, nil
}

func parseBool(val string) (bool, error) {
	switch val {
	case "yes", "true", "on":
		return true, nil
	case "no", "false", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%q: want yes or no", val)
	}
}

// Base returns the base directory the configuration was loaded from.
func (c *C) Base() string {
	return c.base
}

// LogFilePath is where linemergefs logs, as it usually runs detached from a
// terminal.
func (c *C) LogFilePath() string {
	return filepath.Join(c.base, "linemergefs.log")
}

// See https://www.kernel.org/doc/Documentation/filesystems/9p.txt.
func linuxMountCommand(net string, addr string, mountpoint string) (string, error) {
	const method = "linuxMountCommand"
	uid, gid := os.Getuid(), os.Getgid()
	switch net {
	case "unix":
		return fmt.Sprintf("sudo mount -t 9p %v %v -o trans=unix,dfltuid=%d,dfltgid=%d,cache=none,noextend,msize=131072", addr, mountpoint, uid, gid), nil
	case "tcp":
		if parts := strings.Split(addr, ":"); len(parts) != 2 {
			return "", errorf(method, "malformed host-port pair: %q", addr)
		} else {
			return fmt.Sprintf("sudo mount -t 9p %v %v -o trans=tcp,port=%v,dfltuid=%d,dfltgid=%d,cache=none,noextend,msize=131072", parts[0], mountpoint, parts[1], uid, gid), nil
		}
	default:
		return "", errorf(method, "unhandled network type: %v", net)
	}
}

// See mount_9p(8).
func netbsdMountCommand(net string, addr string, mountpoint string) (string, error) {
	const method = "netbsdMountCommand"
	if net != "tcp" {
		return "", errorf(method, "unsupported network: %q", net)
	}
	if parts := strings.Split(addr, ":"); len(parts) != 2 {
		return "", errorf(method, "malformed host-port pair: %q", addr)
	} else {
		return fmt.Sprintf("sudo mount_9p -p %v %v %v", parts[1], parts[0], mountpoint), nil
	}
}

func (c *C) MountCommands() ([]string, error) {
	if c.MountPoint == "" {
		return nil, errorf("C.MountCommands", "no linemergefs-mount in configuration")
	}
	switch runtime.GOOS {
	case "linux":
		cmd, err := linuxMountCommand(c.ListenNet, c.ListenAddr, c.MountPoint)
		if err != nil {
			return nil, err
		}
		return []string{cmd, fmt.Sprintf("9pfuse %s %s", c.dialString(), c.MountPoint)}, nil
	case "netbsd":
		cmd, err := netbsdMountCommand(c.ListenNet, c.ListenAddr, c.MountPoint)
		if err != nil {
			return nil, err
		}
		return []string{cmd}, nil
	default:
		return nil, fmt.Errorf("don't know how to mount on %v", runtime.GOOS)
	}
}

func (c *C) UmountCommands() ([]string, error) {
	if c.MountPoint == "" {
		return nil, errorf("C.UmountCommands", "no linemergefs-mount in configuration")
	}
	switch runtime.GOOS {
	case "linux":
		return []string{
			fmt.Sprintf("sudo umount %s", c.MountPoint),
			fmt.Sprintf("fusermount -u %s", c.MountPoint),
		}, nil
	case "netbsd":
		return []string{
			fmt.Sprintf("sudo umount %s", c.MountPoint),
		}, nil
	default:
		return nil, fmt.Errorf("don't know how to umount on %v", runtime.GOOS)
	}
}

// dialString renders the listen address the way plan9port tools want it.
func (c *C) dialString() string {
	if c.ListenNet == "unix" {
		return "unix!" + c.ListenAddr
	}
	return c.ListenNet + "!" + strings.Replace(c.ListenAddr, ":", "!", 1)
}

// Initialize generates an initial configuration at the given directory.
func Initialize(baseDir string) error {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return fmt.Errorf("%q: could not mkdir: %w", baseDir, err)
	}
	path := filepath.Join(baseDir, "config")
	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("%q: already exists", path)
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("%q: could not determine if it exists: %w", path, err)
	}

	var buf bytes.Buffer
	rnd := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	port := 49152 + rnd.Intn(65535-49152)
	buf.WriteString("listen-net tcp\n")
	fmt.Fprintf(&buf, "listen-addr 127.0.0.1:%d\n", port)
	buf.WriteString("linemergefs-mount /mnt/linemerge\n")
	fmt.Fprintf(&buf, "context-lines %d\n", defaultContextLines)
	buf.WriteString("storage disk\n")
	buf.WriteString("disk-store-dir documents\n")
	buf.WriteString("compress no\n")
	buf.WriteString("plumb no\n")
	err = os.WriteFile(path, buf.Bytes(), 0600)
	if err != nil {
		return fmt.Errorf("config.Initialize %q: %w", path, err)
	}
	return nil
}

var dotZero = regexp.MustCompile(`\A(.*:\d+)\.0\z`)

// clientNamespace returns the path to the name space directory.
func clientNamespace() string {
	ns := os.Getenv("NAMESPACE")
	if ns != "" {
		return ns
	}

	disp := os.Getenv("DISPLAY")
	if disp == "" {
		// No $DISPLAY? Use :0.0 for non-X11 GUI (OS X).
		disp = ":0.0"
	}

	// Canonicalize: xxx:0.0 => xxx:0.
	if m := dotZero.FindStringSubmatch(disp); m != nil {
		disp = m[1]
	}

	// Turn /tmp/launch/:0 into _tmp_launch_:0 (OS X 10.5).
	disp = strings.Replace(disp, "/", "_", -1)

	// NOTE: plan9port creates this directory on demand.
	// Maybe someday we'll need to do that.

	return fmt.Sprintf("/tmp/ns.%s.%s", os.Getenv("USER"), disp)
}
