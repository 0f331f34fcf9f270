// Package pylit transcodes a textual subset of Python's literal notation
// for composite values — strings, ints, floats, lists, dicts, sets —
// directly into a pickle protocol 3 byte stream, in a single forward pass
// over the input, without ever building an intermediate representation.
//
// Use Transcode to run a full pass from a Reader to a Writer:
//
//	r := pylit.NewMemReader([]byte(`{1, 2, 3}`))
//	w := pylit.NewBoundedWriter(256)
//	err := pylit.Transcode(r, w)
//	// w.Bytes() now holds a protocol-3 pickle of the Python set {1, 2, 3}
//
// The pickle this package emits can be read back by any protocol-4-capable
// unpickler, including this module's own unpickle package (see
// github.com/kosyak/pylit2pickle/unpickle), which this repository also
// uses to round-trip test pylit's own output.
//
// This package does not reconstruct arbitrary Python objects, parse
// exponent/underscore/radix-prefixed/complex numeric literals, recognize
// bool/null keyword literals, or support multi-line strings — see
// SPEC_FULL.md for the full list of non-goals this grammar subset
// deliberately excludes.
package pylit
