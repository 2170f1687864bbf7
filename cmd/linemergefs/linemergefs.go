package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/lionkov/go9p/p"
	"github.com/lionkov/go9p/p/srv"
	"github.com/nicolagi/linemerge/internal/config"
	"github.com/nicolagi/linemerge/internal/netutil"
	"github.com/nicolagi/linemerge/internal/p9util"
	"github.com/nicolagi/linemerge/internal/plumbing"
	"github.com/nicolagi/linemerge/internal/session"
	"github.com/nicolagi/linemerge/internal/storage"
	log "github.com/sirupsen/logrus"
)

// fsFid is the per-fid state. Reads of generated files and of the
// documents are served from a snapshot taken at open time; writes to the
// documents accumulate in contents until the fid is clunked.
type fsFid struct {
	kind     fileKind
	contents []byte
	dirty    bool
	// Whether the fid has written since it was opened.
	written bool
	dirb    p9util.DirBuffer
}

// Reads and writes beyond this offset are refused.
const maxDocumentSize = 64 << 20

type ops struct {
	// Serializes access to the session.
	mu    sync.Mutex
	sess  *session.Session
	store storage.Store

	files   map[fileKind]*p9util.File
	c       *ctl
	writers *writeLocks

	contextLines int
	plumb        bool
}

var (
	_ srv.ReqOps = (*ops)(nil)

	Eperm     = "permission denied"
	Enotfound = "file not found"
	Enotdir   = "not a directory"
	Etoobig   = "file too big"
)

func newOps(cfg *config.C, sess *session.Session, store storage.Store, plumber *plumbing.Plumber) *ops {
	ops := &ops{
		sess:         sess,
		store:        store,
		files:        newFileTable(),
		writers:      newWriteLocks(),
		contextLines: cfg.ContextLines,
		plumb:        cfg.Plumb,
	}
	ops.c = &ctl{f: ops.files[ctlFile]}
	if plumber != nil {
		follow := plumber.Follow(sess)
		sess.Observe(func(e session.Event) {
			if ops.plumb {
				follow(e)
			}
		})
	}
	sess.Observe(func(session.Event) {
		for _, kind := range []fileKind{leftFile, rightFile} {
			side, _ := kind.side()
			ops.files[kind].Length = uint64(len(sess.Text(side)))
		}
	})
	return ops
}

func logRespondError(r *srv.Req, err string) {
	log.Printf("Rerror: %s", err)
	r.RespondError(err)
}

func (ops *ops) Attach(r *srv.Req) {
	ops.mu.Lock()
	defer ops.mu.Unlock()
	r.Fid.Aux = &fsFid{kind: rootFile}
	qid := p9util.FileQID(ops.files[rootFile])
	r.RespondRattach(&qid)
}

func (ops *ops) Walk(r *srv.Req) {
	ops.mu.Lock()
	defer ops.mu.Unlock()
	from := r.Fid.Aux.(*fsFid)
	if len(r.Tc.Wname) == 0 {
		r.Newfid.Aux = &fsFid{kind: from.kind}
		r.RespondRwalk(nil)
		return
	}
	if from.kind != rootFile {
		logRespondError(r, Enotdir)
		return
	}
	var qids []p.Qid
	at := rootFile
	for _, name := range r.Tc.Wname {
		if at != rootFile {
			break
		}
		kind, ok := rootFile, true
		if name != ".." && name != "." {
			kind, ok = lookup(name)
		}
		if !ok {
			break
		}
		at = kind
		qids = append(qids, p9util.FileQID(ops.files[kind]))
	}
	if len(qids) == 0 {
		logRespondError(r, Enotfound)
		return
	}
	if len(qids) == len(r.Tc.Wname) {
		r.Newfid.Aux = &fsFid{kind: at}
	}
	r.RespondRwalk(qids)
}

func (ops *ops) Open(r *srv.Req) {
	ops.mu.Lock()
	defer ops.mu.Unlock()
	if r.Tc.Mode&p.ORCLOSE != 0 {
		logRespondError(r, Eperm)
		return
	}
	fid := r.Fid.Aux.(*fsFid)
	writing := r.Tc.Mode&3 == p.OWRITE || r.Tc.Mode&3 == p.ORDWR || r.Tc.Mode&p.OTRUNC != 0
	if writing && !fid.kind.writable() {
		logRespondError(r, Eperm)
		return
	}
	switch fid.kind {
	case rootFile:
		fid.dirb.Reset()
		var dir p.Dir
		for _, c := range children {
			p9util.FileDirVar(ops.files[c.kind], &dir)
			fid.dirb.Write(&dir)
		}
	case leftFile, rightFile:
		side, _ := fid.kind.side()
		if writing && !ops.writers.acquire(int(side), r.Fid) {
			logRespondError(r, Eexcl)
			return
		}
		fid.written = false
		if r.Tc.Mode&p.OTRUNC != 0 {
			fid.contents = nil
			fid.dirty = true
		} else {
			fid.contents = []byte(ops.sess.Text(side))
		}
	case regionsFile:
		fid.contents = formatRegions(ops.sess)
	case currentFile:
		fid.contents = formatCurrent(ops.sess)
	case unifiedFile:
		b, err := formatUnified(ops.sess, ops.contextLines)
		if err != nil {
			logRespondError(r, err.Error())
			return
		}
		fid.contents = b
	}
	qid := p9util.FileQID(ops.files[fid.kind])
	r.RespondRopen(&qid, 0)
}

func (ops *ops) Create(r *srv.Req) {
	logRespondError(r, Eperm)
}

func (ops *ops) Read(r *srv.Req) {
	ops.mu.Lock()
	defer ops.mu.Unlock()
	if err := p.InitRread(r.Rc, r.Tc.Count); err != nil {
		logRespondError(r, err.Error())
		return
	}
	fid := r.Fid.Aux.(*fsFid)
	if r.Tc.Offset > maxDocumentSize {
		p.SetRreadCount(r.Rc, 0)
		r.Respond()
		return
	}
	var count int
	switch fid.kind {
	case rootFile:
		var err error
		count, err = fid.dirb.Read(r.Rc.Data[:r.Tc.Count], int(r.Tc.Offset))
		if err != nil {
			logRespondError(r, err.Error())
			return
		}
	case ctlFile:
		count = ops.c.read(r.Rc.Data[:r.Tc.Count], r.Tc.Offset)
	default:
		if r.Tc.Offset < uint64(len(fid.contents)) {
			count = copy(r.Rc.Data[:r.Tc.Count], fid.contents[r.Tc.Offset:])
		}
	}
	p.SetRreadCount(r.Rc, uint32(count))
	r.Respond()
}

func (ops *ops) Write(r *srv.Req) {
	ops.mu.Lock()
	defer ops.mu.Unlock()
	fid := r.Fid.Aux.(*fsFid)
	switch fid.kind {
	case ctlFile:
		// Assumption: One Twrite per command.
		if err := runCommand(ops, string(r.Tc.Data)); err != nil {
			logRespondError(r, err.Error())
			return
		}
	case leftFile, rightFile:
		if r.Tc.Offset > maxDocumentSize || r.Tc.Offset+uint64(len(r.Tc.Data)) > maxDocumentSize {
			logRespondError(r, Etoobig)
			return
		}
		// The first write at offset 0 starts a new text.
		if !fid.written && r.Tc.Offset == 0 {
			fid.contents = nil
		}
		fid.written = true
		end := int(r.Tc.Offset) + len(r.Tc.Data)
		if end > len(fid.contents) {
			grown := make([]byte, end)
			copy(grown, fid.contents)
			fid.contents = grown
		}
		copy(fid.contents[r.Tc.Offset:], r.Tc.Data)
		fid.dirty = true
	default:
		logRespondError(r, Eperm)
		return
	}
	r.RespondRwrite(uint32(len(r.Tc.Data)))
}

func (ops *ops) Clunk(r *srv.Req) {
	ops.mu.Lock()
	defer ops.mu.Unlock()
	fid := r.Fid.Aux.(*fsFid)
	if side, ok := fid.kind.side(); ok {
		defer ops.writers.release(int(side), r.Fid)
	}
	if side, ok := fid.kind.side(); ok && fid.dirty {
		if err := ops.sess.SetText(side, string(fid.contents)); err != nil {
			logRespondError(r, err.Error())
			return
		}
		ops.sess.Compare()
		ops.files[fid.kind].Touch(len(fid.contents))
		log.WithFields(log.Fields{
			"side":   side,
			"length": len(fid.contents),
			"status": ops.sess.Status(),
		}).Info("Committed document")
		fid.dirty = false
	}
	r.RespondRclunk()
}

func (ops *ops) Remove(r *srv.Req) {
	logRespondError(r, Eperm)
}

func (ops *ops) Stat(r *srv.Req) {
	ops.mu.Lock()
	defer ops.mu.Unlock()
	fid := r.Fid.Aux.(*fsFid)
	dir := p9util.FileDir(ops.files[fid.kind])
	r.RespondRstat(&dir)
}

// Wstat only allows truncating the documents, which some clients do
// instead of opening with OTRUNC, and setting times, which is ignored.
func (ops *ops) Wstat(r *srv.Req) {
	ops.mu.Lock()
	defer ops.mu.Unlock()
	fid := r.Fid.Aux.(*fsFid)
	dir := r.Tc.Dir
	if dir.ChangeLength() {
		side, ok := fid.kind.side()
		if !ok || dir.Length != 0 {
			logRespondError(r, Eperm)
			return
		}
		if err := ops.sess.SetText(side, ""); err != nil {
			logRespondError(r, err.Error())
			return
		}
		ops.sess.Compare()
		ops.files[fid.kind].Touch(0)
	}
	if dir.ChangeName() || dir.ChangeMode() || dir.ChangeGID() {
		logRespondError(r, Eperm)
		return
	}
	r.RespondRwstat()
}

func serve(ops *ops, listener net.Listener, debug bool) error {
	fs := &srv.Srv{}
	fs.Dotu = false
	fs.Id = "linemerge"
	if debug {
		fs.Debuglevel = srv.DbgPrintFcalls
	}
	if !fs.Start(ops) {
		return errorf("serve", "go9p/p/srv.Srv.Start returned false")
	}
	return fs.StartListener(listener)
}

func main() {
	base := flag.String("base", config.DefaultBaseDirectoryPath, "Base directory for configuration, logs and documents")
	debug := flag.Bool("D", false, "Print 9P dialogs.")
	var logLevel string
	var levels []string
	for _, l := range log.AllLevels {
		levels = append(levels, l.String())
	}
	flag.StringVar(&logLevel, "verbosity", "info", "sets the log `level`, among "+strings.Join(levels, ", "))
	flag.Parse()

	if err := agent.Listen(agent.Options{}); err != nil {
		log.Printf("Could not start gops agent: %v", err)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load(*base)
	if err != nil {
		log.Fatalf("Could not load config from %q: %v", *base, err)
	}
	f, err := os.OpenFile(cfg.LogFilePath(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		log.Fatalf("Could not open log file %q: %v", cfg.LogFilePath(), err)
	}
	defer f.Close()
	log.SetOutput(f)
	log.SetFormatter(&log.JSONFormatter{})
	if err := setLevel(logLevel); err != nil {
		log.Fatalf("Could not parse log level %q: %v", logLevel, err)
	}

	store, err := storage.NewStore(cfg)
	if err != nil {
		log.Fatalf("Could not create document store: %v", err)
	}

	ops := newOps(cfg, session.New(), store, plumbing.New(plumbing.SendPort))

	go func() {
		if listener, err := netutil.Listen(cfg.ListenNet, cfg.ListenAddr); err != nil {
			log.Fatalf("Could not start net listener: %v", err)
		} else if err := serve(ops, listener, *debug); err != nil {
			log.Fatalf("Could not start 9P listener: %v", err)
		}
	}()

	log.WithFields(log.Fields{
		"net":     cfg.ListenNet,
		"addr":    cfg.ListenAddr,
		"context": cfg.ContextLines,
	}).Info("Serving")
	sig := <-sigc
	log.Printf("Got signal %q, quitting.", sig)
	agent.Close()
}
