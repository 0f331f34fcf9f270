// Package pylit transcodes a textual subset of Python's literal notation for
// composite values directly into a pickle protocol 3 byte stream, in a
// single forward pass, without building an intermediate AST.
package pylit

import "fmt"

// SyntaxError reports an unexpected byte encountered in a given parse
// context, along with the byte offset it was read from.
//
// Context strings mirror the ones used by the original C++ implementation
// this package was ported from (parse_error(ctx, c) in py-to-pickle.cpp),
// so that diagnostics stay comparable across re-implementations.
type SyntaxError struct {
	Context string
	Char    int // the offending byte, or -1 at end-of-input
	Pos     int
}

func (e *SyntaxError) Error() string {
	if e.Char < 0 {
		return fmt.Sprintf("parse error: %s: got EOF at pos %d", e.Context, e.Pos)
	}
	return fmt.Sprintf("parse error: %s: char %q at pos %d", e.Context, byte(e.Char), e.Pos)
}

// StringError reports a failure while decoding the escape-sequence state
// machine of a quoted string literal.
type StringError struct {
	Reason string // "str escaped", "str hex escaped", "str, got EOF"
	Char   int
	Pos    int
}

func (e *StringError) Error() string {
	if e.Char < 0 {
		return fmt.Sprintf("%s at pos %d", e.Reason, e.Pos)
	}
	return fmt.Sprintf("%s: char %q at pos %d", e.Reason, byte(e.Char), e.Pos)
}

// NumberError reports a numeric literal that could not be converted to an
// int64 or float64 once its digit run was fully consumed.
type NumberError struct {
	Text string
	Pos  int
	Err  error
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("numeric conversion error: %q at pos %d: %s", e.Text, e.Pos, e.Err)
}

func (e *NumberError) Unwrap() error { return e.Err }

// OverflowError reports that the writer's bounded sink rejected a write.
type OverflowError struct {
	Pos int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("output overflow at writer pos %d", e.Pos)
}
