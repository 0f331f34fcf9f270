package unpickle

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Opcodes this decoder understands: exactly the subset pylit's own encoder
// (see the root package's opcode.go) can ever emit. Every other pickle
// opcode — the protocol-0 text opcodes, GLOBAL/REDUCE/BUILD, persistent
// references, memoization, framing, protocol-4 BYTEARRAY8/NEXT_BUFFER — is
// out of scope; a stream that uses one reports an OpcodeError.
const (
	opProto byte = '\x80' // protocol prologue; 1-byte protocol number follows
	opStop  byte = '.'    // every pickle ends with STOP
	opMark  byte = '('    // push mark, to delimit container contents

	opBinint1  byte = 'K' // push 1-byte unsigned int
	opBinint2  byte = 'M' // push 2-byte unsigned int (LE)
	opBinint   byte = 'J' // push 4-byte signed int (LE)
	opBinfloat byte = 'G' // push 8-byte IEEE-754 double (BE)

	opShortBinUnicode byte = '\x8c' // push str; 1-byte length, then UTF-8 bytes
	opBinunicode      byte = 'X'    // push str; 4-byte LE length, then UTF-8 bytes
	opBinunicode8     byte = '\x8d' // push str; 8-byte LE length, then UTF-8 bytes

	opEmptyList byte = ']' // push empty list
	opAppends   byte = 'e' // extend list below mark by mark..top slice

	opEmptyDict byte = '}' // push empty dict
	opSetitems  byte = 'u' // add mark..top key/value pairs to dict below mark

	opEmptySet byte = '\x8f' // push empty set
	opAddItems byte = '\x90' // add mark..top items to set below mark
)

var (
	errNoMarker       = errors.New("pickle: no marker in stack")
	errNoMarkUse      = errors.New("pickle: MARK object cannot be exposed")
	errStackUnderflow = errors.New("pickle: stack underflow")
)

// OpcodeError is the error Decode returns when it sees an opcode outside
// the supported subset. Pos is the 1-based index of that opcode among the
// opcodes read.
type OpcodeError struct {
	Key byte
	Pos int
}

func (e OpcodeError) Error() string {
	return fmt.Sprintf("pickle: unsupported opcode %d (%q) at position %d", e.Key, e.Key, e.Pos)
}

// mark is the sentinel MARK pushes onto the stack.
type mark struct{}

// Set represents a decoded Python set. Pylit's own grammar treats set
// members as an unordered comma list, so Set preserves only the members
// the stream carried, in the order ADDITEMS assigned them.
type Set []interface{}

// DecoderConfig configures optional decode behavior.
type DecoderConfig struct {
	// PyDict decodes dicts into a gomap-backed Dict that compares keys the
	// way Python does (int64(1) and float64(1.0) are the same key) instead
	// of a plain map[interface{}]interface{}, which treats them as
	// distinct. Without this, {1: "a", 1.0: "b"} decodes to a two-entry Go
	// map even though a real Python unpickler collapses it to one entry,
	// last value wins.
	PyDict bool
}

// Decoder decodes a pickle protocol 3 stream produced by pylit's own
// encoder back into the Go value it described.
type Decoder struct {
	r      *bufio.Reader
	stack  []interface{}
	buf    bytes.Buffer
	pyDict bool
}

// NewDecoder constructs a Decoder reading from r, decoding dicts into
// plain map[interface{}]interface{} values.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// NewDecoderConfig constructs a Decoder reading from r with the given
// configuration.
func NewDecoderConfig(r io.Reader, cfg DecoderConfig) *Decoder {
	return &Decoder{r: bufio.NewReader(r), pyDict: cfg.PyDict}
}

// Decode reads one pickled value from the stream and returns it as one of:
// int64, float64, string, []interface{} (list), map[interface{}]interface{}
// or Dict (dict, depending on DecoderConfig.PyDict), or Set.
func (d *Decoder) Decode() (interface{}, error) {
	insn := 0
loop:
	for {
		key, err := d.r.ReadByte()
		if err != nil {
			if err == io.EOF && insn != 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		insn++

		switch key {
		case opProto:
			_, err = d.r.ReadByte() // protocol number; this decoder accepts any

		case opMark:
			d.push(mark{})

		case opStop:
			break loop

		case opBinint1:
			err = d.loadBinInt1()
		case opBinint2:
			err = d.loadBinInt2()
		case opBinint:
			err = d.loadBinInt()
		case opBinfloat:
			err = d.loadBinFloat()

		case opShortBinUnicode:
			err = d.loadShortBinUnicode()
		case opBinunicode:
			err = d.loadBinUnicode()
		case opBinunicode8:
			err = d.loadBinUnicode8()

		case opEmptyList:
			d.push([]interface{}{})
		case opAppends:
			err = d.loadAppends()

		case opEmptyDict:
			if d.pyDict {
				d.push(NewDict())
			} else {
				d.push(make(map[interface{}]interface{}))
			}
		case opSetitems:
			err = d.loadSetItems()

		case opEmptySet:
			d.push(Set{})
		case opAddItems:
			err = d.loadAddItems()

		default:
			return nil, OpcodeError{key, insn}
		}

		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}

	return d.popUser()
}

func (d *Decoder) push(v interface{}) {
	d.stack = append(d.stack, v)
}

func (d *Decoder) pop() (interface{}, error) {
	ln := len(d.stack) - 1
	if ln < 0 {
		return nil, errStackUnderflow
	}
	v := d.stack[ln]
	d.stack = d.stack[:ln]
	return v, nil
}

// popUser pops the final stack value and rejects a bare mark.
func (d *Decoder) popUser() (interface{}, error) {
	v, err := d.pop()
	if err != nil {
		return nil, err
	}
	if _, isMark := v.(mark); isMark {
		return nil, errNoMarkUse
	}
	return v, nil
}

// marker returns the position of the topmost mark on the stack.
func (d *Decoder) marker() (int, error) {
	for k := len(d.stack) - 1; k >= 0; k-- {
		if _, isMark := d.stack[k].(mark); isMark {
			return k, nil
		}
	}
	return 0, errNoMarker
}

func (d *Decoder) loadBinInt1() error {
	b, err := d.r.ReadByte()
	if err != nil {
		return err
	}
	d.push(int64(b))
	return nil
}

func (d *Decoder) loadBinInt2() error {
	var b [2]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return err
	}
	d.push(int64(binary.LittleEndian.Uint16(b[:])))
	return nil
}

func (d *Decoder) loadBinInt() error {
	var b [4]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return err
	}
	v := binary.LittleEndian.Uint32(b[:])
	d.push(int64(int32(v))) // NOTE signed: uint32 -> int32, then -> int64
	return nil
}

func (d *Decoder) loadBinFloat() error {
	var b [8]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return err
	}
	d.push(math.Float64frombits(binary.BigEndian.Uint64(b[:])))
	return nil
}

// bufLoadBytes fetches l bytes of string payload into d.buf.
func (d *Decoder) bufLoadBytes(l uint64) error {
	d.buf.Reset()
	prealloc := l
	if maxgrow := uint64(0x10000); prealloc > maxgrow {
		prealloc = maxgrow
	}
	d.buf.Grow(int(prealloc))
	if l > math.MaxInt64 {
		return fmt.Errorf("pickle: string length %d overflows int64", l)
	}
	_, err := io.CopyN(&d.buf, d.r, int64(l))
	return err
}

func (d *Decoder) loadShortBinUnicode() error {
	b, err := d.r.ReadByte()
	if err != nil {
		return err
	}
	if err := d.bufLoadBytes(uint64(b)); err != nil {
		return err
	}
	d.push(d.buf.String())
	return nil
}

func (d *Decoder) loadBinUnicode() error {
	var b [4]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return err
	}
	if err := d.bufLoadBytes(uint64(binary.LittleEndian.Uint32(b[:]))); err != nil {
		return err
	}
	d.push(d.buf.String())
	return nil
}

func (d *Decoder) loadBinUnicode8() error {
	var b [8]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return err
	}
	if err := d.bufLoadBytes(binary.LittleEndian.Uint64(b[:])); err != nil {
		return err
	}
	d.push(d.buf.String())
	return nil
}

func (d *Decoder) loadAppends() error {
	k, err := d.marker()
	if err != nil {
		return err
	}
	if k < 1 {
		return errStackUnderflow
	}
	switch l := d.stack[k-1].(type) {
	case []interface{}:
		l = append(l, d.stack[k+1:]...)
		d.stack = append(d.stack[:k-1], l)
	default:
		return fmt.Errorf("pickle: loadAppends: expected a list, got %T", l)
	}
	return nil
}

func (d *Decoder) loadAddItems() error {
	k, err := d.marker()
	if err != nil {
		return err
	}
	if k < 1 {
		return errStackUnderflow
	}
	switch s := d.stack[k-1].(type) {
	case Set:
		s = append(s, d.stack[k+1:]...)
		d.stack = append(d.stack[:k-1], s)
	default:
		return fmt.Errorf("pickle: loadAddItems: expected a set, got %T", s)
	}
	return nil
}

func (d *Decoder) loadSetItems() error {
	k, err := d.marker()
	if err != nil {
		return err
	}
	if k < 1 {
		return errStackUnderflow
	}
	switch m := d.stack[k-1].(type) {
	case map[interface{}]interface{}:
		if (len(d.stack)-(k+1))%2 != 0 {
			return fmt.Errorf("pickle: loadSetItems: odd # of elements")
		}
		for i := k + 1; i < len(d.stack); i += 2 {
			key := d.stack[i]
			if !mapTryAssign(m, key, d.stack[i+1]) {
				return fmt.Errorf("pickle: loadSetItems: invalid key type %T", key)
			}
		}
		d.stack = append(d.stack[:k-1], m)
	case Dict:
		if (len(d.stack)-(k+1))%2 != 0 {
			return fmt.Errorf("pickle: loadSetItems: odd # of elements")
		}
		for i := k + 1; i < len(d.stack); i += 2 {
			key := d.stack[i]
			if !dictTryAssign(m, key, d.stack[i+1]) {
				return fmt.Errorf("pickle: loadSetItems: invalid key type %T", key)
			}
		}
		d.stack = append(d.stack[:k-1], m)
	default:
		return fmt.Errorf("pickle: loadSetItems: expected a dict, got %T", m)
	}
	return nil
}

// mapTryAssign assigns m[key] = value, reporting ok=false instead of
// panicking when key is not a comparable (hashable) type. pylit's grammar
// parses dict keys as arbitrary values, including lists and dicts, which
// Python itself would reject as unhashable before ever pickling them; a
// stream that reached this decoder with such a key is malformed input we
// degrade gracefully on rather than crash on.
func mapTryAssign(m map[interface{}]interface{}, key, value interface{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	m[key] = value
	return true
}

// dictTryAssign is mapTryAssign's Dict-mode counterpart: Dict.Set panics via
// pyHash's "unhashable type" when key is a list, dict or set, and this
// converts that into a reported ok=false the same way mapTryAssign does.
func dictTryAssign(d Dict, key, value interface{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	d.Set(key, value)
	return true
}
