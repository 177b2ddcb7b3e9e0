// Command arconv converts cheat codes between pseudocode and the encoded
// "XXXXXXXX YYYYYYYY" form.
//
//	arconv -mode encode -in code.txt
//	arconv -mode decode < codes.txt
//	arconv -serve :8080
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/sarchlab/arconv/api"
	"github.com/sarchlab/arconv/config"
	"github.com/sarchlab/arconv/core"
	"github.com/sarchlab/arconv/server"
	"github.com/sarchlab/arconv/verify"
	"github.com/tebeka/atexit"
	"golang.design/x/clipboard"
)

const (
	exitOK = iota
	exitConversion
	exitUsage
)

var errUsage = errors.New("usage error")

type options struct {
	mode      string
	in, out   string
	serve     string
	report    bool
	dumpTree  bool
	clipboard bool
	file      config.File
}

func main() {
	atexit.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}

	logger := newLogger(opts.file.Log, stderr)
	slog.SetDefault(logger)

	if opts.serve != "" {
		logger.Info("Listening", "Addr", opts.serve)
		err := http.ListenAndServe(opts.serve, server.New(opts.file.Options, logger))
		fmt.Fprintln(stderr, err)
		return exitConversion
	}

	src, err := readInput(opts.in, stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	converter := api.ConverterBuilder{}.
		WithOptions(opts.file.Options).
		WithLogger(logger).
		Build()

	convert := converter.Encode
	if opts.mode == "decode" {
		convert = converter.Decode
	}
	res, convErr := convert(src)

	if opts.dumpTree && res.Program != nil {
		core.PrintProgram(stderr, res.Program)
	}
	if opts.report {
		r := &verify.ConversionReport{
			Mode:   opts.mode,
			Lines:  res.Lines,
			Issues: res.Issues,
			Err:    convErr,
		}
		r.WriteReport(stderr)
	}
	if convErr != nil {
		return exitConversion
	}

	if err := writeOutput(opts.out, res.Text, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return exitConversion
	}

	if opts.clipboard {
		copyToClipboard(res.Text)
	}

	return exitOK
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var (
		opts       options
		configPath string
		logLevel   string
		logFormat  string
		noZero     bool
		quietRept  bool
		quietEnd   bool
	)

	fs := flag.NewFlagSet("arconv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.mode, "mode", "", "conversion direction: encode or decode")
	fs.StringVar(&opts.in, "in", "", "input file (default stdin)")
	fs.StringVar(&opts.out, "out", "", "output file (default stdout)")
	fs.StringVar(&opts.serve, "serve", "", "serve conversions over HTTP on this address instead")
	fs.StringVar(&configPath, "config", "", "YAML configuration file")
	fs.StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	fs.StringVar(&logFormat, "log-format", "", "log format: text or json")
	fs.BoolVar(&opts.report, "report", false, "print a conversion report to stderr")
	fs.BoolVar(&opts.dumpTree, "dump-tree", false, "print the code tree to stderr")
	fs.BoolVar(&opts.clipboard, "clipboard", false, "also copy the output to the clipboard")
	fs.BoolVar(&noZero, "no-zero-filler", false, "render unused encoded columns as ?")
	fs.BoolVar(&quietRept, "quiet-rept", false, "do not warn about zero-length repeats")
	fs.BoolVar(&quietEnd, "quiet-endall", false, "do not warn about a missing final EndAll")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected argument %q: %w", fs.Arg(0), errUsage)
	}
	if opts.serve == "" && opts.mode != "encode" && opts.mode != "decode" {
		return opts, fmt.Errorf("-mode must be encode or decode, got %q: %w", opts.mode, errUsage)
	}

	opts.file = config.DefaultFile()
	if configPath != "" {
		f, err := config.Load(configPath)
		if err != nil {
			return opts, err
		}
		opts.file = f
	}

	if logLevel != "" {
		opts.file.Log.Level = logLevel
	}
	if logFormat != "" {
		opts.file.Log.Format = logFormat
	}
	if err := opts.file.Log.Validate(); err != nil {
		return opts, err
	}

	if noZero {
		opts.file.Options.RenderFillerAsZero = false
	}
	if quietRept {
		opts.file.Options.SuppressZeroRepeatWarning = true
	}
	if quietEnd {
		opts.file.Options.SuppressMissingEndAllWarning = true
	}

	return opts, nil
}

func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	level, _ := cfg.SlogLevel()
	handlerOpts := &slog.HandlerOptions{Level: level}

	if cfg.JSON() {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return string(data), nil
	}

	if isTerminal(stdin) {
		le := NewLineEditor(stdin)
		defer le.Close()
		return le.ReadProgram("> ")
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

func writeOutput(path, text string, stdout io.Writer) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func copyToClipboard(text string) {
	if err := clipboard.Init(); err != nil {
		slog.Warn("Clipboard unavailable", "Error", err)
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	slog.Info("Copied output to clipboard")
}
