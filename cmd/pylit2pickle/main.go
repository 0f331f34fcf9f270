// Command pylit2pickle transcodes a Python-literal-like text file directly
// into a pickle protocol 3 byte stream, without ever building a value tree.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"go-simpler.org/env"

	"github.com/kosyak/pylit2pickle"
	"github.com/kosyak/pylit2pickle/internal/diag"
	"github.com/kosyak/pylit2pickle/unpickle"
)

// config holds the environment-tunable defaults for the tool. None of
// these change the pickle wire format itself (protocol 3 is not
// configurable); they only govern how much memory the CLI is willing to
// spend and how loud it is.
type config struct {
	BoundBytes int64 `env:"PYLIT2PICKLE_BOUND_BYTES" default:"0" usage:"cap the in-memory output buffer to this many bytes (0 = write straight to the output file)"`
	Color      bool  `env:"PYLIT2PICKLE_COLOR" default:"true" usage:"colorize diagnostic output"`
}

var args struct {
	Input  string `arg:"positional" help:"input file holding the literal (defaults to stdin)"`
	Output string `arg:"positional" help:"output file to receive the pickle (defaults to stdout)"`
	Bound  int64  `arg:"--bound" help:"override PYLIT2PICKLE_BOUND_BYTES for this run"`
	Verify bool   `arg:"--verify" help:"decode the produced pickle back and report whether it round-trips"`
	PyDict bool   `arg:"--pydict" help:"decode dicts with Python key equivalence during --verify (1 and 1.0 are the same key)"`
	Debug  bool   `arg:"--debug" help:"enable debug diagnostics"`
	Trace  bool   `arg:"--trace" help:"enable trace diagnostics, including a dump of the verified value"`
}

func main() {
	arg.MustParse(&args)

	var cfg config
	if err := env.Load(&cfg, nil); err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrap(err, "pylit2pickle: loading configuration"))
		os.Exit(2)
	}
	if args.Bound != 0 {
		cfg.BoundBytes = args.Bound
	}

	level := diag.Info
	switch {
	case args.Trace:
		level = diag.Trace
	case args.Debug:
		level = diag.Debug
	}
	if !cfg.Color {
		color.NoColor = true
	}
	log := diag.NewStderr(level)

	if err := run(log, &cfg); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}

func run(log *diag.Logger, cfg *config) error {
	if args.Bound != 0 {
		cfg.BoundBytes = args.Bound
	}
	if args.Verify && args.Output == "" && cfg.BoundBytes <= 0 {
		return fmt.Errorf("pylit2pickle: --verify needs an output file or --bound to re-read the produced pickle")
	}

	in, closeIn, err := openInput(args.Input)
	if err != nil {
		return errors.Wrap(err, "pylit2pickle: opening input")
	}
	defer closeIn()

	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "pylit2pickle: reading input")
	}
	reader := pylit.NewMemReader(data)

	out, closeOut, finalize, err := openOutput(args.Output, cfg.BoundBytes)
	if err != nil {
		return errors.Wrap(err, "pylit2pickle: opening output")
	}
	defer closeOut()

	log.Debugf("transcoding %d bytes", len(data))
	if err := pylit.TranscodeWithLogger(reader, out, log); err != nil {
		return errors.Wrap(err, "pylit2pickle: transcode")
	}
	pickled, err := finalize()
	if err != nil {
		return errors.Wrap(err, "pylit2pickle: writing output")
	}
	log.Infof("wrote %d bytes of pickle", out.Pos())

	if args.Verify {
		dec := unpickle.NewDecoderConfig(bytes.NewReader(pickled), unpickle.DecoderConfig{PyDict: args.PyDict})
		obj, err := dec.Decode()
		if err != nil {
			return errors.Wrap(err, "pylit2pickle: verify: decoding produced pickle")
		}
		log.Debugf("verify: decoded as %s", describe(obj))
		log.Dump("decoded value", obj)
		log.Infof("verify: ok")
	}
	return nil
}

// describe renders a decoded scalar back in the input grammar's own
// notation, so a user comparing --trace output against the source literal
// is reading the same quoting convention on both sides. Non-scalars print
// with their Go %v form, which is good enough for spot-checking.
func describe(obj any) string {
	if s, err := unpickle.AsString(obj); err == nil {
		return unpickle.Quote(s)
	}
	if i, err := unpickle.AsInt64(obj); err == nil {
		return fmt.Sprintf("%d", i)
	}
	return fmt.Sprintf("%v", obj)
}

func openInput(path string) (r io.Reader, closeFn func() error, err error) {
	if path == "" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// openOutput returns a pylit.Writer targeting either the requested file or
// stdout, plus a finalize func that returns the accumulated bytes (for
// --verify) once transcoding has finished. A positive bound switches to an
// in-memory BoundedWriter, matching the fixed-capacity MemWriter path
// described for constrained environments; a named file gets a FileWriter
// backed directly by the open *os.File's WriteAt. Stdout gets a
// StreamWriter instead of a FileWriter: stdout is frequently a pipe or
// terminal, and WriteAt on a non-seekable file descriptor fails, which
// would make the documented no-argument stdout default error on every run.
func openOutput(path string, bound int64) (w pylit.Writer, closeFn func() error, finalize func() ([]byte, error), err error) {
	if bound > 0 {
		bw := pylit.NewBoundedWriter(int(bound))
		return bw, func() error { return nil }, func() ([]byte, error) {
			if !bw.Valid() {
				return nil, fmt.Errorf("output exceeded bound of %d bytes", bound)
			}
			return bw.Bytes(), nil
		}, nil
	}

	if path == "" {
		sw := pylit.NewStreamWriter()
		return sw, func() error { return nil }, func() ([]byte, error) {
			b := sw.Bytes()
			if _, err := os.Stdout.Write(b); err != nil {
				return nil, err
			}
			return b, nil
		}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, nil, err
	}
	fw := pylit.NewFileWriter(f)
	finalize = func() ([]byte, error) {
		if !fw.Valid() {
			return nil, fmt.Errorf("output writer reported a failure")
		}
		return os.ReadFile(path)
	}
	return fw, f.Close, finalize, nil
}
