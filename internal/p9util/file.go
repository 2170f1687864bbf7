package p9util

import (
	"os/user"
	"time"

	"github.com/lionkov/go9p/p"
	log "github.com/sirupsen/logrus"
)

var (
	FileUID string
	FileGID string
)

func init() {
	u, err := user.Current()
	if err != nil {
		log.Fatalf("could not get current user: %v", err)
	}
	FileUID = u.Username
	g, err := user.LookupGroupId(u.Gid)
	if err != nil {
		log.Fatalf("could not get group %v: %v", u.Gid, err)
	}
	FileGID = g.Name
}

// File describes a file served from memory. Its contents are produced by
// the server, File only carries what stat(5) reports.
type File struct {
	Name    string
	Path    uint64
	Version uint32
	Mode    uint32
	Length  uint64
	Mtime   uint32
}

func NewFile(name string, path uint64, mode uint32) *File {
	return &File{
		Name:  name,
		Path:  path,
		Mode:  mode,
		Mtime: uint32(time.Now().Unix()),
	}
}

func (f *File) IsDir() bool {
	return f.Mode&p.DMDIR != 0
}

// Touch records a modification, which bumps the qid version.
func (f *File) Touch(length int) {
	f.Version++
	f.Length = uint64(length)
	f.Mtime = uint32(time.Now().Unix())
}

func FileQID(f *File) (qid p.Qid) {
	FileQIDVar(f, &qid)
	return
}

func FileQIDVar(f *File, qid *p.Qid) {
	qid.Path = f.Path
	qid.Version = f.Version
	if f.IsDir() {
		qid.Type = p.QTDIR
	} else {
		qid.Type = 0
	}
}

func FileDir(f *File) (dir p.Dir) {
	FileDirVar(f, &dir)
	return
}

func FileDirVar(f *File, dir *p.Dir) {
	FileQIDVar(f, &dir.Qid)
	dir.Uid = FileUID
	dir.Gid = FileGID
	dir.Muid = FileUID
	dir.Length = f.Length
	dir.Mode = f.Mode
	dir.Mtime = f.Mtime
	dir.Atime = f.Mtime
	dir.Name = f.Name
}
