// Package main is a thin CLI wrapper over package walktree, for manual
// smoke-testing (spec.md §1 lists a CLI front-end as out of scope for
// the library itself; this binary exists only to exercise Walk/MakeTree
// by hand, mirroring the teacher's cmd/ layout).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fulmenhq/walktree"
	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/foundry"
	"github.com/fulmenhq/walktree/tree"
	"github.com/fulmenhq/walktree/walkerr"
	"github.com/fulmenhq/walktree/wtlog"
)

const usageText = `walktree - recursively list a filesystem, descending into archives

Usage:
  walktree [options] <path>

Options:
  --max-depth int
        0 means root only; archives count as directories (default: unbounded)
  --no-archives
        Do not recurse into archive/compression containers
  --follow-links
        Follow filesystem symlinks
  --unix-attributes
        Read host uid/gid/mode metadata
  --dos-attributes
        Read host DOS attribute bits
  --include string
        Glob pattern to include (repeatable via comma-separation)
  --exclude string
        Glob pattern to exclude (repeatable via comma-separation)
  --checksum string
        Compute a checksum per leaf entry: "xxh3-128" or "sha256"
  --tree
        Materialize and print a tree instead of a flat listing
  --log-level string
        debug|info|warn|error (default: info)
  --help
        Show this help message

Exit Codes:
  0  - Success
  1  - Unclassified failure
  40 - Invalid arguments/configuration
  41 - Required external tool missing
  60 - Archive could not be opened or read
  70 - Internal re-entrant failure (tree materialization)
`

type cliOptions struct {
	path           string
	maxDepth       int
	maxDepthSet    bool
	noArchives     bool
	followLinks    bool
	unixAttributes bool
	dosAttributes  bool
	include        string
	exclude        string
	checksum       string
	tree           bool
	logLevel       string
	help           bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	opts, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fmt.Fprint(stderr, usageText)
		return foundry.ExitInvalidArgument
	}

	if opts.help {
		fmt.Fprint(stdout, usageText)
		return foundry.ExitSuccess
	}

	if opts.path == "" {
		fmt.Fprintf(stderr, "Error: a path argument is required\n\n")
		fmt.Fprint(stderr, usageText)
		return foundry.ExitInvalidArgument
	}

	logger := wtlog.MustNew(&wtlog.Config{Level: opts.logLevel})
	defer logger.Sync() //nolint:errcheck

	w := walktree.New().
		RecurseIntoArchives(!opts.noArchives).
		FollowLinks(opts.followLinks).
		UnixAttributes(opts.unixAttributes).
		DosAttributes(opts.dosAttributes).
		WithLogger(logger)

	if opts.maxDepthSet {
		w = w.MaxDepth(opts.maxDepth)
	}
	for _, g := range splitList(opts.include) {
		w = w.Include(g)
	}
	for _, g := range splitList(opts.exclude) {
		w = w.Exclude(g)
	}
	if opts.checksum != "" {
		w = w.WithChecksum(opts.checksum)
	}

	if opts.tree {
		return runTree(w, opts.path, stdout, stderr)
	}
	return runFlat(w, opts.path, stdout, stderr)
}

func runFlat(w *walktree.Walker, path string, stdout, stderr *os.File) int {
	err := w.Walk(path, func(displayPath string, _ walktree.Supplier, attrs *walktree.Bundle) error {
		fmt.Fprintf(stdout, "%s\t%s\n", displayPath, describe(attrs))
		return nil
	})
	return exitFor(err, stderr)
}

func runTree(w *walktree.Walker, path string, stdout, stderr *os.File) int {
	root, errs, err := w.MakeTree(path)
	for _, rec := range errs {
		fmt.Fprintf(stderr, "warning: %s: %s: %v\n", rec.DisplayPath, rec.Message, rec.Cause)
	}
	if err != nil {
		return exitFor(err, stderr)
	}
	printNode(stdout, root, 0)
	return foundry.ExitSuccess
}

func printNode(stdout *os.File, n *tree.Node, depth int) {
	if depth > 0 {
		fmt.Fprintf(stdout, "%s%s\n", strings.Repeat("  ", depth-1)+"- ", n.Name)
	}
	for _, child := range n.OrderedChildren() {
		printNode(stdout, child, depth+1)
	}
}

func exitFor(err error, stderr *os.File) int {
	if err == nil {
		return foundry.ExitSuccess
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	var walkErr *walkerr.WalkError
	if errors.As(err, &walkErr) {
		return walkErr.ExitCode()
	}
	return foundry.ExitFailure
}

func describe(attrs *walktree.Bundle) string {
	t, _ := attr.Get(attrs, attr.TYPE)
	size, hasSize := attr.Get(attrs, attr.SIZE)
	parts := []string{string(t)}
	if hasSize {
		parts = append(parts, fmt.Sprintf("%d bytes", size))
	}
	if in, ok := attr.Get(attrs, attr.InArchive); ok {
		parts = append(parts, "in:"+in)
	}
	if sum, ok := attr.Get(attrs, attr.Checksum); ok {
		parts = append(parts, sum)
	}
	return strings.Join(parts, " ")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("walktree", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.IntVar(&opts.maxDepth, "max-depth", 0, "")
	fs.BoolVar(&opts.noArchives, "no-archives", false, "")
	fs.BoolVar(&opts.followLinks, "follow-links", false, "")
	fs.BoolVar(&opts.unixAttributes, "unix-attributes", false, "")
	fs.BoolVar(&opts.dosAttributes, "dos-attributes", false, "")
	fs.StringVar(&opts.include, "include", "", "")
	fs.StringVar(&opts.exclude, "exclude", "", "")
	fs.StringVar(&opts.checksum, "checksum", "", "")
	fs.BoolVar(&opts.tree, "tree", false, "")
	fs.StringVar(&opts.logLevel, "log-level", "info", "")
	fs.BoolVar(&opts.help, "help", false, "")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.maxDepthSet = flagWasSet(fs, "max-depth")

	if fs.NArg() > 0 {
		opts.path = fs.Arg(0)
	}
	return opts, nil
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

