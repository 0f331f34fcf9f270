package pylit

import "io"

// Writer is the positional byte sink the opcode encoder and parser append
// to. It supports absolute seek for the one backpatch the mapping/set
// disambiguation needs, and exposes whether it is still usable.
//
// Mirrors py-to-pickle.cpp's Writer interface.
type Writer interface {
	// WriteChar appends one byte at the current position.
	WriteChar(b byte)

	// WriteData appends a contiguous byte run at the current position.
	WriteData(p []byte)

	// Pos returns the current append offset.
	Pos() int

	// Seek repositions the append cursor to an earlier offset. Writes
	// after Seek overwrite at that offset; the caller is responsible for
	// seeking back to the previous end before appending again.
	Seek(pos int)

	// Valid reports whether the writer is still usable. A bounded writer
	// that has overflowed returns false; a streaming writer may always
	// return true.
	Valid() bool
}

// FileWriter is a Writer over an io.WriterAt, typically an *os.File.
// Every write goes through WriteAt at the current cursor, so Seek is just
// moving the cursor: the next WriteChar/WriteData lands there and then
// resumes append-at-current-offset, exactly like py-to-pickle.cpp's
// FileWriter (fseek + fwrite_unlocked against a stdio FILE*).
type FileWriter struct {
	w    io.WriterAt
	pos  int
	fail bool
}

// NewFileWriter returns a FileWriter appending to w.
func NewFileWriter(w io.WriterAt) *FileWriter {
	return &FileWriter{w: w}
}

// WriteChar implements Writer.
func (f *FileWriter) WriteChar(b byte) {
	f.WriteData([]byte{b})
}

// WriteData implements Writer.
func (f *FileWriter) WriteData(p []byte) {
	if f.fail {
		return
	}
	if _, err := f.w.WriteAt(p, int64(f.pos)); err != nil {
		f.fail = true
		return
	}
	f.pos += len(p)
}

// Pos implements Writer.
func (f *FileWriter) Pos() int { return f.pos }

// Seek implements Writer.
func (f *FileWriter) Seek(pos int) { f.pos = pos }

// Valid implements Writer.
func (f *FileWriter) Valid() bool { return !f.fail }

// BoundedWriter is a Writer over a fixed-capacity byte slice. Once a write
// would exceed capacity, BoundedWriter sets its overflow flag and drops
// that write (and every subsequent write) silently, matching
// py-to-pickle.cpp's MemWriter::write_char/write_data: the C++ original
// logs to stderr and keeps going rather than aborting, so a caller who
// forgets to check Valid ends up with a truncated, unusable stream. This
// is a known and deliberately preserved behavior
// rather than "fixed" into a hard stop.
type BoundedWriter struct {
	data     []byte
	pos      int
	end      int // one past the furthest byte written
	overflow bool
}

// NewBoundedWriter returns a BoundedWriter with the given fixed capacity.
func NewBoundedWriter(capacity int) *BoundedWriter {
	return &BoundedWriter{data: make([]byte, capacity)}
}

// WriteChar implements Writer.
func (m *BoundedWriter) WriteChar(b byte) {
	if m.overflow || m.pos >= len(m.data) {
		m.overflow = true
		return
	}
	m.data[m.pos] = b
	m.pos++
	if m.pos > m.end {
		m.end = m.pos
	}
}

// WriteData implements Writer.
func (m *BoundedWriter) WriteData(p []byte) {
	if m.overflow || m.pos+len(p) > len(m.data) {
		m.overflow = true
		return
	}
	copy(m.data[m.pos:], p)
	m.pos += len(p)
	if m.pos > m.end {
		m.end = m.pos
	}
}

// Pos implements Writer.
func (m *BoundedWriter) Pos() int { return m.pos }

// Seek implements Writer. As with FileWriter, seeking only moves the
// cursor within the backing array.
func (m *BoundedWriter) Seek(pos int) { m.pos = pos }

// Valid implements Writer. Once true has flipped to false it never flips
// back: the overflow flag is monotone, matching the invariant on the
// writer cursor.
func (m *BoundedWriter) Valid() bool { return !m.overflow }

// Bytes returns the bytes written so far, up to the furthest position ever
// written; a Seek back does not shorten it.
// The caller must check Valid before trusting this as a complete stream.
func (m *BoundedWriter) Bytes() []byte { return m.data[:m.end] }

// StreamWriter is a Writer over a growable in-memory buffer, meant for
// append-only destinations that cannot support WriteAt — a pipe or
// terminal on the other end of stdout, say. The single mid-stream backpatch
// the dict/set disambiguation needs is resolved against the in-memory
// buffer; the accumulated bytes reach the real sink in one append-only
// write once transcoding finishes, so the destination never sees a Seek.
type StreamWriter struct {
	data []byte
	pos  int
}

// NewStreamWriter returns an empty StreamWriter.
func NewStreamWriter() *StreamWriter {
	return &StreamWriter{}
}

// WriteChar implements Writer.
func (s *StreamWriter) WriteChar(b byte) {
	s.WriteData([]byte{b})
}

// WriteData implements Writer.
func (s *StreamWriter) WriteData(p []byte) {
	end := s.pos + len(p)
	if end > len(s.data) {
		grown := make([]byte, end, end*2+1)
		copy(grown, s.data)
		s.data = grown
	}
	copy(s.data[s.pos:end], p)
	s.pos = end
}

// Pos implements Writer.
func (s *StreamWriter) Pos() int { return s.pos }

// Seek implements Writer. The backing array already holds every byte
// written so far, so seeking backward is just moving the cursor, the same
// as BoundedWriter.
func (s *StreamWriter) Seek(pos int) { s.pos = pos }

// Valid implements Writer. A StreamWriter grows without bound, so it is
// always usable.
func (s *StreamWriter) Valid() bool { return true }

// Bytes returns the bytes written so far.
func (s *StreamWriter) Bytes() []byte { return s.data[:s.pos] }
