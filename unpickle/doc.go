// Package unpickle decodes the pickle protocol 3 byte stream pylit's own
// encoder produces, back into the Go value the original input literal
// described.
//
// It exists to close the loop on github.com/kosyak/pylit2pickle's testable
// property that a transcoded pickle round-trips back to the described
// value, and to back cmd/pylit2pickle's --verify flag. It is not a
// general-purpose pickle decoder: it understands only the opcode subset
// the root package's opcode.go can ever emit (PROTO, STOP, MARK, the three
// binary-int opcodes, BINFLOAT, the three unicode-string opcodes, and the
// list/dict/set header-footer pairs). A stream using any other pickle
// opcode — protocol-0 text opcodes, GLOBAL/REDUCE/BUILD, persistent
// references, memoization, framing — is rejected with an OpcodeError.
//
//	d := unpickle.NewDecoder(r)
//	obj, err := d.Decode() // obj is interface{} representing the decoded value
//
// The mapping of the supported literal types:
//
//	literal   Go
//	-------   --
//	int       int64
//	float     float64
//	string    string
//	list      []interface{}
//	dict      map[interface{}]interface{} (or Dict, see below)
//	set       unpickle.Set
//
// By default dict keys compare with Go's built-in map equality, under which
// int64(1) and float64(1.0) are distinct keys. A stream built from
// {1: "a", 1.0: "b"} would decode to a two-entry map even though a
// conforming Python unpickler collapses it to one entry (last value wins).
// NewDecoderConfig with DecoderConfig.PyDict set decodes dicts into Dict
// instead, a github.com/aristanetworks/gomap-backed type whose custom
// hash/equal functions match Python's own key equivalence.
package unpickle
