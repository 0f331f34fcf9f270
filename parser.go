package pylit

import (
	"strconv"
)

// Parser drives a Reader/Writer pair through one recursive-descent pass
// over a literal-notation value, emitting pickle opcodes as it goes. It
// retains no AST: each recognized leaf is emitted to the Writer
// immediately.
//
// A Parser is not safe for concurrent or repeated use; construct a fresh
// one (via Transcode) per input.
type Parser struct {
	r   Reader
	w   Writer
	log DiagLogger

	// err is the monotone parse-error flag: once set it is never cleared, and every
	// recursive call checks it before doing further work.
	err error
}

// Transcode runs the full pass: write the protocol prologue, parse exactly one value, require
// that a value was parsed, write the stop opcode. It reports success only
// if both the parser's error flag and the writer's Valid() predicate are
// clear at the end of the pass.
func Transcode(r Reader, w Writer) error {
	return TranscodeWithLogger(r, w, nil)
}

// TranscodeWithLogger is Transcode with an explicit DiagLogger; passing
// nil uses discardLogger (diagnostics are swallowed, matching a Writer
// with no diagnostic channel wired up).
func TranscodeWithLogger(r Reader, w Writer, log DiagLogger) error {
	if log == nil {
		log = discardLogger{}
	}
	p := &Parser{r: r, w: w, log: log}

	writeProtoPrologue(w)
	c, parsed := p.parse()
	if p.err != nil {
		return p.err
	}
	if !parsed {
		p.parseError("root", c)
		return p.err
	}
	writeStop(w)

	if !w.Valid() {
		return &OverflowError{Pos: w.Pos()}
	}
	return nil
}

func (p *Parser) parseError(ctx string, c int) {
	err := &SyntaxError{Context: ctx, Char: c, Pos: p.r.Pos()}
	p.log.Diag(err.Error())
	p.err = err
}

func isSpace(c int) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(c int) bool {
	return c >= '0' && c <= '9'
}

// parse consumes input until it has recognized exactly one complete value
// or hit a byte that belongs to an enclosing container. It returns the
// byte that ended recognition (or eof) and whether a value was emitted.
//
// This is the mutually-recursive core: after one
// value has been parsed, the next non-whitespace byte is returned without
// being consumed further (container routines use this to detect `,`, `:`,
// `]`, `}` separators). Inside a container, two consecutive value-position
// literals are a parse error, raised by the container that receives the
// second literal's first byte ("continued strings not supported" in the
// original; here it applies to any leaf, not just strings). At the root the
// second literal is trailing content and is ignored.
func (p *Parser) parse() (c int, parsed bool) {
	for {
		c = p.r.ReadNextChar()
		if p.err != nil {
			return c, parsed
		}
		if c < 0 {
			break
		}
		if isSpace(c) {
			continue
		}

		if parsed {
			// already recognized one value; this byte belongs to
			// whoever called us (a container separator, or trailing
			// garbage at the root).
			break
		}

		switch {
		case c == '\'' || c == '"':
			p.parseString(byte(c))
			parsed = true

		case c == '[':
			p.parseList()
			parsed = true

		case c == '{':
			p.parseDictOrSet()
			parsed = true

		case isDigit(c) || c == '+' || c == '-' || c == '.':
			c = p.parseNumber(byte(c))
			parsed = true
			if p.err != nil {
				return c, parsed
			}
			if c < 0 || !isSpace(c) {
				return c, parsed
			}
			// c was whitespace: consumed already by parseNumber's
			// lookahead read, loop around to find the real
			// terminator the same way a fresh parse() call would.
			continue

		default:
			// unexpected byte in value position; hand it back
			// unconsumed to the caller.
			return c, parsed
		}

		if p.err != nil {
			return c, parsed
		}
	}

	return c, parsed
}

// parseList emits EMPTY_LIST MARK
// child... APPENDS, with "," continuing and "]" finalizing.
func (p *Parser) parseList() {
	listHeader(p.w)

	for {
		c, parsedItem := p.parse()
		if p.err != nil {
			return
		}
		_ = parsedItem
		switch c {
		case ',':
			continue
		case ']':
			listFooter(p.w)
			return
		default:
			p.parseError("list", c)
			return
		}
	}
}

// dictOrSetPosition tracks whether the next child in a {...} container is
// expected in key or value position.
type dictOrSetPosition int

const (
	posKey dictOrSetPosition = iota
	posValue
)

// parseDictOrSet implements the mapping/set disambiguation algorithm of
// Commits to an EMPTY_DICT header optimistically,
// and if exactly one child has been parsed by the time a "," or "}" is
// seen while still in key position, backpatch the header to EMPTY_SET and
// switch to treating subsequent children as set elements rather than
// key/value pairs.
func (p *Parser) parseDictOrSet() {
	headerPos := p.w.Pos()
	dictHeader(p.w)

	isSet := false
	pos := posKey
	count := 0

	demote := func(c int) bool {
		if count != 1 {
			p.parseError("dict after parsing more than one entry", c)
			return false
		}
		demoteDictHeaderToSet(p.w, headerPos)
		isSet = true
		pos = posValue
		return true
	}

	for {
		c, parsedItem := p.parse()
		if p.err != nil {
			return
		}
		if parsedItem {
			count++
		}

		switch c {
		case ',':
			if count == 1 && pos == posKey {
				if !demote(c) {
					return
				}
			}
			if pos == posKey {
				p.parseError("dict after parsing key", c)
				return
			}
			if !isSet {
				pos = posKey
			}

		case ':':
			if pos != posKey {
				p.parseError("dict expected key before", c)
				return
			}
			if isSet {
				p.parseError("set", c)
				return
			}
			pos = posValue

		case '}':
			if count == 1 && pos == posKey {
				if !demote(c) {
					return
				}
			}
			if !isSet && count%2 != 0 {
				p.parseError("dict, uneven count", c)
				return
			}
			if isSet {
				setFooter(p.w)
			} else {
				dictFooter(p.w)
			}
			return

		default:
			p.parseError("dict|set", c)
			return
		}
	}
}

// parseString implements the three-state escape-sequence state machine of
// quote is the byte that opened
// the literal and therefore the one that closes it.
func (p *Parser) parseString(quote byte) {
	const (
		stateDirect = iota
		stateEscapeInit
		stateEscapeHex
	)

	buf := make([]byte, 0, 16)
	state := stateDirect
	hexVal := 0
	hexDigits := 0

	for {
		c := p.r.ReadNextChar()
		if c < 0 {
			p.err = &StringError{Reason: "str, got EOF", Char: c, Pos: p.r.Pos()}
			p.log.Diag(p.err.Error())
			return
		}

		switch state {
		case stateDirect:
			if c == int(quote) {
				encodeString(p.w, string(buf))
				return
			}
			if c == '\\' {
				state = stateEscapeInit
				continue
			}
			buf = append(buf, byte(c))

		case stateEscapeInit:
			switch c {
			case 'r':
				buf = append(buf, '\r')
				state = stateDirect
			case 't':
				buf = append(buf, '\t')
				state = stateDirect
			case 'n':
				buf = append(buf, '\n')
				state = stateDirect
			case '\\':
				buf = append(buf, '\\')
				state = stateDirect
			case '"':
				buf = append(buf, '"')
				state = stateDirect
			case '\'':
				buf = append(buf, '\'')
				state = stateDirect
			case '\n':
				// line continuation: the escaped newline contributes
				// nothing to the decoded text.
				state = stateDirect
			case 'x':
				state = stateEscapeHex
				hexVal = 0
				hexDigits = 0
			default:
				p.err = &StringError{Reason: "str escaped", Char: c, Pos: p.r.Pos()}
				p.log.Diag(p.err.Error())
				return
			}

		case stateEscapeHex:
			h, ok := lowerHexDigit(c)
			if !ok {
				p.err = &StringError{Reason: "str hex escaped", Char: c, Pos: p.r.Pos()}
				p.log.Diag(p.err.Error())
				return
			}
			hexVal = hexVal*16 + h
			hexDigits++
			if hexDigits == 2 {
				buf = append(buf, byte(hexVal))
				state = stateDirect
			}
		}
	}
}

// lowerHexDigit accepts exactly 0-9 and lower-case a-f; this is a
// documented limitation (upper-case A-F is rejected; it remains an open
// question 1 preserves this as-is rather than "fixing" it).
func lowerHexDigit(c int) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}

// parseNumber accumulates
// digits/sign/dot bytes starting with first, stop at the first byte
// outside that class, and convert the run to int64 or float64 depending
// on whether a '.' was seen. It returns the terminating byte (or eof).
func (p *Parser) parseNumber(first byte) int {
	buf := make([]byte, 0, 24)
	buf = append(buf, first)
	isFloat := first == '.'

	var c int
	for {
		c = p.r.ReadNextChar()
		if c < 0 {
			break
		}
		if isDigit(c) || c == '+' || c == '-' || c == '.' {
			if c == '.' {
				isFloat = true
			}
			buf = append(buf, byte(c))
			continue
		}
		break
	}

	text := string(buf)
	if isFloat {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.err = &NumberError{Text: text, Pos: p.r.Pos(), Err: err}
			p.log.Diag(p.err.Error())
			return c
		}
		encodeFloat(p.w, v)
	} else {
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			p.err = &NumberError{Text: text, Pos: p.r.Pos(), Err: err}
			p.log.Diag(p.err.Error())
			return c
		}
		encodeInt(p.w, v)
	}

	return c
}
