package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nicolagi/linemerge/internal/diff"
	"github.com/nicolagi/linemerge/internal/p9util"
	"github.com/nicolagi/linemerge/internal/session"
	"github.com/nicolagi/linemerge/internal/storage"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type ctl struct {
	f        *p9util.File
	contents []byte
}

func (f *ctl) read(target []byte, offset uint64) int {
	if offset >= uint64(len(f.contents)) {
		return 0
	}
	return copy(target, f.contents[offset:])
}

func setLevel(level string) error {
	ll, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(ll)
	return nil
}

func sideArg(args []string, usage string) (session.Side, error) {
	if len(args) == 0 {
		return 0, errors.Errorf("usage: %s", usage)
	}
	return session.ParseSide(args[0])
}

func runCommand(ops *ops, cmd string) error {
	args := strings.Fields(cmd)
	if len(args) == 0 {
		return nil
	}
	cmd = args[0]
	args = args[1:]

	outputBuffer := bytes.NewBuffer(nil)

	// A helper function to return an error, and also add it to the output.
	output := func(err error) error {
		_, _ = fmt.Fprintf(outputBuffer, "%v\n", err)
		return err
	}

	// Ensure the output is available even in the case of an early error return.
	defer func() {
		ops.c.contents = outputBuffer.Bytes()
		ops.c.f.Touch(len(ops.c.contents))
	}()

	log.WithFields(log.Fields{
		"command": cmd,
		"args":    args,
	}).Debug("Running command")

	sess := ops.sess
	switch cmd {
	case "compare":
		sess.Compare()
	case "next":
		sess.Next()
	case "prev":
		sess.Prev()
	case "merge":
		if len(args) != 1 {
			return output(errors.New("usage: merge right|left"))
		}
		dir, err := diff.ParseDirection(args[0])
		if err != nil {
			return output(err)
		}
		if !sess.Merge(dir) {
			_, _ = fmt.Fprintln(outputBuffer, "nothing to merge")
		}
	case "get":
		side, err := sideArg(args, "get left|right KEY")
		if err != nil {
			return output(err)
		}
		if len(args) != 2 {
			return output(errors.New("usage: get left|right KEY"))
		}
		key := storage.Key(args[1])
		value, err := ops.store.Get(key)
		if err != nil {
			return output(errors.Wrapf(err, "get %v", key))
		}
		if err := sess.SetText(side, string(value)); err != nil {
			return output(err)
		}
		_ = sess.SetName(side, args[1])
		sess.Compare()
	case "put":
		side, err := sideArg(args, "put left|right [KEY]")
		if err != nil {
			return output(err)
		}
		key := storage.Key(sess.Name(side))
		if len(args) > 1 {
			key = storage.Key(args[1])
		}
		if err := ops.store.Put(key, storage.Value(sess.Text(side))); err != nil {
			return output(errors.Wrapf(err, "put %v", key))
		}
		_ = sess.SetName(side, string(key))
	case "name":
		side, err := sideArg(args, "name left|right NAME")
		if err != nil {
			return output(err)
		}
		if len(args) != 2 {
			return output(errors.New("usage: name left|right NAME"))
		}
		_ = sess.SetName(side, args[1])
	case "level":
		if len(args) != 1 {
			return output(errors.New("usage: level LEVEL"))
		}
		if err := setLevel(args[0]); err != nil {
			return output(err)
		}
	case "plumb":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return output(errors.New("usage: plumb on|off"))
		}
		ops.plumb = args[0] == "on"
	default:
		return output(errorf("runCommand", "command not recognized: %q", cmd))
	}
	_, _ = fmt.Fprintln(outputBuffer, sess.Status())
	return nil
}
