package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/logicossoftware/go-beheader"
)

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: beheader <output> <image> <video|audio> [flags] [appendable ...]

Generates a polyglot file that is an ICO and an MP4 at once, optionally
also a PDF, an HTML page and a ZIP.

flags:
  -h, -html file     hypertext payload hidden in the media view
  -p, -pdf file      document appended with a relocated xref table
  -z, -zip file      archive merged into the trailing zip (repeatable)
  -e, -extra file    file whose bytes are spliced into the header free region
  -patch-chunk-offsets
                     shift stco/co64 tables for the new layout
  -q                 errors only

Remaining arguments are appended to the file verbatim. -h is taken by the
hypertext flag; use -help for this text.
`)
}

// invocation is everything the command line determines about a run.
type invocation struct {
	job        beheader.Job
	patchChunk bool
	quiet      bool
}

// parseInvocation maps the positionals and flags onto a job. The extra flag
// names a file; its contents are what end up spliced into the header.
func parseInvocation(args []string) (invocation, error) {
	var inv invocation
	inv.job.Output, inv.job.Image, inv.job.Media = args[0], args[1], args[2]

	fs := flag.NewFlagSet("beheader", flag.ExitOnError)
	fs.Usage = usage
	var (
		extraPath string
		archives  stringList
	)
	fs.StringVar(&inv.job.HTML, "h", "", "hypertext payload")
	fs.StringVar(&inv.job.HTML, "html", "", "hypertext payload")
	fs.StringVar(&inv.job.Document, "p", "", "document payload")
	fs.StringVar(&inv.job.Document, "pdf", "", "document payload")
	fs.Var(&archives, "z", "archive source")
	fs.Var(&archives, "zip", "archive source")
	fs.StringVar(&extraPath, "e", "", "extra bytes file")
	fs.StringVar(&extraPath, "extra", "", "extra bytes file")
	fs.BoolVar(&inv.patchChunk, "patch-chunk-offsets", false, "shift chunk offset tables")
	fs.BoolVar(&inv.quiet, "q", false, "errors only")
	fs.Parse(args[3:])

	inv.job.Archives = archives
	inv.job.Appendables = fs.Args()
	if extraPath != "" {
		b, err := os.ReadFile(extraPath)
		if err != nil {
			return invocation{}, fmt.Errorf("extra: %w", err)
		}
		inv.job.Extra = b
	}
	return inv, nil
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 && (args[0] == "-help" || args[0] == "--help") {
		usage()
		return
	}
	if len(args) < 3 {
		usage()
		os.Exit(2)
	}
	inv, err := parseInvocation(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "beheader: %v\n", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if inv.quiet {
		level = slog.LevelError
	}
	if v := os.Getenv("BEHEADER_LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			fmt.Fprintf(os.Stderr, "bad BEHEADER_LOG_LEVEL %q: %v\n", v, err)
			os.Exit(2)
		}
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = beheader.Build(ctx, inv.job,
		beheader.WithLogger(logger),
		beheader.WithChunkOffsetPatch(inv.patchChunk),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Error("interrupted")
			os.Exit(130)
		}
		logger.Error("build failed", "err", err)
		os.Exit(1)
	}
	logger.Info("wrote polyglot", "path", inv.job.Output)
}
