package pylit

import (
	"bytes"
	"os"
	"testing"
)

func TestBoundedWriterOverflowIsSticky(t *testing.T) {
	w := NewBoundedWriter(2)
	w.WriteChar('a')
	if !w.Valid() {
		t.Fatal("should still be valid after fitting write")
	}
	w.WriteData([]byte{'b', 'c'}) // exceeds capacity of 2
	if w.Valid() {
		t.Fatal("expected overflow")
	}
	// further writes are dropped but do not panic, and the flag stays set.
	w.WriteChar('d')
	if w.Valid() {
		t.Fatal("overflow flag should stay set")
	}
	if !bytes.Equal(w.Bytes(), []byte{'a'}) {
		t.Errorf("got %q, want %q", w.Bytes(), "a")
	}
}

func TestBoundedWriterSeek(t *testing.T) {
	w := NewBoundedWriter(4)
	w.WriteData([]byte{0, 0, 0, 0})
	w.Seek(1)
	w.WriteChar('X')
	if w.Pos() != 2 {
		t.Errorf("pos after seek+write = %d, want 2", w.Pos())
	}
	want := []byte{0, 'X', 0, 0}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("got % x, want % x", w.Bytes(), want)
	}
}

func TestFileWriter(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "pylit-writer-*")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := NewFileWriter(f)
	w.WriteData([]byte("hello"))
	headerPos := 0
	w.Seek(headerPos)
	w.WriteChar('H')
	w.Seek(5)
	w.WriteChar('!')

	if !w.Valid() {
		t.Fatal("expected writer to stay valid")
	}

	got := make([]byte, 6)
	if _, err := f.ReadAt(got, 0); err != nil {
		t.Fatal(err)
	}
	want := []byte("Hello!")
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}
