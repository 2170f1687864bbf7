package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/nicolagi/linemerge/internal/config"
	"github.com/nicolagi/linemerge/internal/diff"
	"github.com/nicolagi/linemerge/internal/nvimhost"
	"github.com/nicolagi/linemerge/internal/session"
	"github.com/nicolagi/linemerge/internal/storage"
	"github.com/nicolagi/linemerge/internal/tui"
	log "github.com/sirupsen/logrus"
)

var (
	// To set this at build time, use go build -ldflags '-X main.version=something'.
	version = "unknown"

	// Flag sets are associated with the fields of a corresponding context struct. The global context is for flags
	// that are part of all flag sets, that is, all sub-commands.
	globalContext struct {
		base     string
		logLevel string
		// Whether positional arguments are keys in the document store.
		stored bool
	}

	diffContext struct {
		context int
	}

	mergeContext struct {
		to     string
		index  int
		output string
	}
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&globalContext.base, "base", config.DefaultBaseDirectoryPath, "`directory` for configuration, logs, documents, etc.")
	var levels []string
	for _, l := range log.AllLevels {
		levels = append(levels, l.String())
	}
	fs.StringVar(&globalContext.logLevel, "verbosity", "warning", "sets the log `level`, among "+strings.Join(levels, ", "))
	return fs
}

// For the commands comparing two documents.
func newPairFlagSet(name string) *flag.FlagSet {
	fs := newFlagSet(name)
	fs.BoolVar(&globalContext.stored, "s", false, "arguments are keys in the document store rather than paths")
	return fs
}

func exitUsage(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	_, _ = fmt.Fprintf(os.Stderr, `Usage: %s COMMAND [ARGS]

Commands:

	diff [-U lines] [-s] LEFT RIGHT: unified diff, exits with status 1 if the documents differ
	regions [-s] LEFT RIGHT: list the regions where the documents differ
	merge [-s] -to right|left -n INDEX [-o FILE] LEFT RIGHT: merge one region, print the updated document
	tui [-s] LEFT RIGHT: compare and merge in the terminal
	nvim: serve Neovim over standard input and output

	get KEY: print a document from the store
	put KEY: store standard input as a document
	rm KEY: remove a document from the store
	list: list the keys in the document store

	init: initializes configuration given the base directory
	mount: print commands to mount linemergefs
	umount: print commands to unmount linemergefs
	version: show version information

With -s, LEFT and RIGHT are keys in the configured document store.
`, os.Args[0])
	os.Exit(2)
}

func main() {
	diffFlags := newPairFlagSet("diff")
	diffFlags.IntVar(&diffContext.context, "U", -1, "number of unified context `lines` (default from configuration)")

	regionsFlags := newPairFlagSet("regions")

	mergeFlags := newPairFlagSet("merge")
	mergeFlags.StringVar(&mergeContext.to, "to", "", "merge `direction`, right or left")
	mergeFlags.IntVar(&mergeContext.index, "n", -1, "0-based `index` of the region to merge")
	mergeFlags.StringVar(&mergeContext.output, "o", "", "write the updated document to `file` rather than standard output")

	tuiFlags := newPairFlagSet("tui")

	keyFlags := newFlagSet("key")

	// For all commands that don't take flags.
	emptyFlags := newFlagSet("empty")

	if len(os.Args) < 2 {
		exitUsage("Command name required")
	}

	// Ignoring errors from Parse because we configure flag sets to exit on error.
	var args []string
	switch cmd := os.Args[1]; cmd {
	case "diff", "regions", "tui":
		set := map[string]*flag.FlagSet{"diff": diffFlags, "regions": regionsFlags, "tui": tuiFlags}[cmd]
		_ = set.Parse(os.Args[2:])
		if narg := set.NArg(); narg != 2 {
			exitUsage(fmt.Sprintf("%s: 2 args expected, got %d", cmd, narg))
		}
		args = set.Args()
	case "merge":
		_ = mergeFlags.Parse(os.Args[2:])
		if narg := mergeFlags.NArg(); narg != 2 {
			exitUsage(fmt.Sprintf("merge: 2 args expected, got %d", narg))
		}
		if mergeContext.index < 0 {
			exitUsage("merge: -n INDEX required")
		}
		if _, err := diff.ParseDirection(mergeContext.to); err != nil {
			exitUsage(fmt.Sprintf("merge: -to: %v", err))
		}
		args = mergeFlags.Args()
	case "get", "put", "rm":
		_ = keyFlags.Parse(os.Args[2:])
		if narg := keyFlags.NArg(); narg != 1 {
			exitUsage(fmt.Sprintf("%s: 1 arg expected, got %d", cmd, narg))
		}
		args = keyFlags.Args()
	case "init", "list", "mount", "nvim", "umount", "version":
		_ = emptyFlags.Parse(os.Args[2:])
		if narg := emptyFlags.NArg(); narg != 0 {
			exitUsage(fmt.Sprintf("%s: no args expected, got %d", cmd, narg))
		}
	default:
		exitUsage(fmt.Sprintf("%q: command not recognized", cmd))
	}

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.JSONFormatter{})
	ll, err := log.ParseLevel(globalContext.logLevel)
	if err != nil {
		log.Fatalf("Could not parse log level %q: %v", globalContext.logLevel, err)
	}
	log.SetLevel(ll)

	// These run without configuration; init must create it, not use it.
	switch os.Args[1] {
	case "init":
		if err := config.Initialize(globalContext.base); err != nil {
			log.Fatalf("Could not initialize config in %q: %v", globalContext.base, err)
		}
		return
	case "version":
		fmt.Println(version)
		return
	case "nvim":
		if err := nvimhost.Serve(os.Stdin, os.Stdout, os.Stdout); err != nil {
			log.Fatalf("Could not serve Neovim: %v", err)
		}
		return
	}

	cfg, err := loadConfig(globalContext.base, needsConfig(os.Args[1]))
	if err != nil {
		log.Fatalf("Could not load config from %q: %v", globalContext.base, err)
	}

	// Sub-commands mount and umount only require the configuration.
	switch os.Args[1] {
	case "mount", "umount":
		f := cfg.MountCommands
		if os.Args[1] == "umount" {
			f = cfg.UmountCommands
		}
		commands, err := f()
		if err != nil {
			log.Fatalf("Could not generate commands: %v", err)
		}
		fmt.Println("# Sweep and send as appropriate:")
		for _, c := range commands {
			fmt.Println(c)
		}
		return
	}

	var store storage.Store
	if needsConfig(os.Args[1]) {
		store, err = storage.NewStore(cfg)
		if err != nil {
			log.Fatalf("Could not create document store: %v", err)
		}
	}

	switch cmd := os.Args[1]; cmd {
	case "get":
		if err := runGet(os.Stdout, store, storage.Key(args[0])); err != nil {
			log.Fatalf("Could not get %q: %v", args[0], err)
		}
	case "put":
		if err := runPut(os.Stdin, store, storage.Key(args[0])); err != nil {
			log.Fatalf("Could not put %q: %v", args[0], err)
		}
	case "rm":
		if err := runRemove(store, storage.Key(args[0])); err != nil {
			log.Fatalf("Could not remove %q: %v", args[0], err)
		}
	case "list":
		if err := runList(os.Stdout, store); err != nil {
			log.Fatalf("Could not list documents: %v", err)
		}
	case "diff", "regions", "merge", "tui":
		cmdlog := log.WithField("op", cmd)
		leftDoc, rightDoc, err := newDocuments(store, args[0], args[1])
		if err != nil {
			cmdlog.WithField("cause", err).Fatal("Bad arguments")
		}
		left, right, err := loadPair(context.Background(), leftDoc, rightDoc)
		if err != nil {
			cmdlog.WithField("cause", err).Fatal("Could not load documents")
		}
		switch cmd {
		case "diff":
			n := diffContext.context
			if n < 0 {
				n = cfg.ContextLines
			}
			different, err := runDiff(os.Stdout, leftDoc.name(), rightDoc.name(), left, right, n)
			if err != nil {
				cmdlog.WithField("cause", err).Fatal("Could not write diff")
			}
			if different {
				os.Exit(1)
			}
		case "regions":
			if err := runRegions(os.Stdout, left, right); err != nil {
				cmdlog.WithField("cause", err).Fatal("Could not write regions")
			}
		case "merge":
			dir, _ := diff.ParseDirection(mergeContext.to)
			merged, err := runMerge(left, right, dir, mergeContext.index)
			if err != nil {
				cmdlog.WithField("cause", err).Fatal("Could not merge")
			}
			if mergeContext.output == "" {
				fmt.Print(merged)
			} else if err := (fileDocument{path: mergeContext.output}).write(merged); err != nil {
				cmdlog.WithField("cause", err).Fatal("Could not write merged document")
			}
		case "tui":
			sess := session.New(
				session.WithNames(leftDoc.name(), rightDoc.name()),
				session.WithText(left, right),
			)
			save := func(side session.Side, text string) error {
				if side == session.Left {
					return leftDoc.write(text)
				}
				return rightDoc.write(text)
			}
			if err := tui.Run(sess, save); err != nil {
				cmdlog.WithField("cause", err).Fatal("Terminal interface failed")
			}
		}
	default:
		panic("not reached")
	}
}

// needsConfig tells whether a command can only run with a configuration
// file, as it uses the document store.
func needsConfig(cmd string) bool {
	switch cmd {
	case "get", "put", "rm", "list", "mount", "umount":
		return true
	case "diff", "regions", "merge", "tui":
		return globalContext.stored
	default:
		return false
	}
}

// loadConfig loads the configuration from base, falling back to defaults
// when there is no configuration file and the command can do without.
func loadConfig(base string, required bool) (*config.C, error) {
	c, err := config.Load(base)
	if err == nil {
		return c, nil
	}
	if !required && errors.Is(err, fs.ErrNotExist) {
		log.WithField("base", base).Debug("No configuration, using defaults")
		return config.Default(base), nil
	}
	return nil, err
}
