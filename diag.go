package pylit

// DiagLogger is the diagnostic channel: a place parse errors are reported
// as human-readable text when the monotone error flag is set. It is
// deliberately narrow (one method) so that callers who don't care about
// diagnostics (most tests)
// can pass nil to TranscodeWithLogger and get discardLogger, and callers
// who do (cmd/pylit2pickle) can supply a colorized implementation without
// the core importing a terminal-color library itself.
type DiagLogger interface {
	Diag(msg string)
}

// discardLogger is the default DiagLogger: it drops every message,
// matching a writer with no diagnostic channel wired up. Tests that want
// to assert on diagnostic text use a logger that records instead.
type discardLogger struct{}

func (discardLogger) Diag(string) {}
