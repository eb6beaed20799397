package json

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"unicode/utf8"

	"github.com/wirepack/wirepack/errors"
	"github.com/wirepack/wirepack/value"
)

// Decode reads one complete value from buf and requires only
// whitespace to remain. Strings in the result alias buf; escaped
// strings are unescaped in place, mutating buf.
func Decode(buf []byte, opts ...DecOption) (value.Value, error) {
	d := NewDecoder(buf, opts...)
	v, err := d.ReadValue()
	if err != nil {
		return value.Nil(), err
	}
	if err := d.expectEnd(); err != nil {
		return value.Nil(), err
	}
	return v, nil
}

// DecodeTail reads one complete value from buf and returns the
// unconsumed remainder, for buffers holding back-to-back frames.
func DecodeTail(buf []byte, opts ...DecOption) (value.Value, []byte, error) {
	d := NewDecoder(buf, opts...)
	v, err := d.ReadValue()
	if err != nil {
		return value.Nil(), nil, err
	}
	return v, buf[d.pos:], nil
}

// Decoder is a cursor over a mutable buffer. Strings it returns are
// views into the buffer and unescaping overwrites buffer contents.
type Decoder struct {
	data []byte
	cfg  decodeConfig
	pos  int
}

// NewDecoder creates a cursor at the start of buf. The hex strategy is
// the default for string-carried byte blobs.
func NewDecoder(buf []byte, opts ...DecOption) *Decoder {
	d := &Decoder{data: buf}
	d.cfg.bytes = ByteHex
	for _, opt := range opts {
		opt(&d.cfg)
	}
	return d
}

// Pos returns the current byte offset
func (d *Decoder) Pos() int {
	return d.pos
}

// Rest returns the unconsumed remainder of the buffer
func (d *Decoder) Rest() []byte {
	return d.data[d.pos:]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (d *Decoder) skipSpace() {
	for d.pos < len(d.data) && isSpace(d.data[d.pos]) {
		d.pos++
	}
}

// peek skips whitespace and returns the next byte without consuming it
func (d *Decoder) peek() (byte, error) {
	d.skipSpace()
	if d.pos >= len(d.data) {
		return 0, errors.EOF(d.pos)
	}
	return d.data[d.pos], nil
}

func (d *Decoder) expect(c byte) error {
	got, err := d.peek()
	if err != nil {
		return err
	}
	if got != c {
		return errors.Syntax(d.pos, "expected '"+string(c)+"'")
	}
	d.pos++
	return nil
}

func (d *Decoder) expectEnd() error {
	d.skipSpace()
	if d.pos != len(d.data) {
		return errors.TrailingData(d.pos)
	}
	return nil
}

func (d *Decoder) literal(lit string) error {
	start := d.pos
	if len(d.data)-d.pos < len(lit) {
		return errors.EOF(len(d.data))
	}
	if string(d.data[d.pos:d.pos+len(lit)]) != lit {
		return errors.Syntax(start, "invalid literal")
	}
	d.pos += len(lit)
	return nil
}

// ReadNull consumes the null literal
func (d *Decoder) ReadNull() error {
	c, err := d.peek()
	if err != nil {
		return err
	}
	if c != 'n' {
		return d.typeError("null")
	}
	return d.literal("null")
}

// ReadBool consumes a boolean literal
func (d *Decoder) ReadBool() (bool, error) {
	c, err := d.peek()
	if err != nil {
		return false, err
	}
	switch c {
	case 't':
		return true, d.literal("true")
	case 'f':
		return false, d.literal("false")
	}
	return false, d.typeError("bool")
}

func (d *Decoder) typeError(want string) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidType).
		Offset(d.pos).
		Detail("expected %s", want).
		Build()
}

// scanNumber consumes one number token per the grammar and reports
// whether it carries a fraction or exponent
func (d *Decoder) scanNumber() ([]byte, bool, error) {
	d.skipSpace()
	start := d.pos
	p := d.pos

	if p < len(d.data) && d.data[p] == '-' {
		p++
	}
	digits := 0
	for p < len(d.data) && d.data[p] >= '0' && d.data[p] <= '9' {
		p++
		digits++
	}
	if digits == 0 {
		return nil, false, errors.New(errors.PhaseDecode, errors.KindInvalidNumber).
			Offset(start).
			Detail("missing digits").
			Build()
	}
	// leading zeros are outside the grammar
	intStart := start
	if d.data[start] == '-' {
		intStart++
	}
	if digits > 1 && d.data[intStart] == '0' {
		return nil, false, errors.New(errors.PhaseDecode, errors.KindInvalidNumber).
			Offset(intStart).
			Detail("leading zero").
			Build()
	}

	isFloat := false
	if p < len(d.data) && d.data[p] == '.' {
		isFloat = true
		p++
		n := 0
		for p < len(d.data) && d.data[p] >= '0' && d.data[p] <= '9' {
			p++
			n++
		}
		if n == 0 {
			return nil, false, errors.New(errors.PhaseDecode, errors.KindInvalidNumber).
				Offset(p).
				Detail("missing fraction digits").
				Build()
		}
	}
	if p < len(d.data) && (d.data[p] == 'e' || d.data[p] == 'E') {
		isFloat = true
		p++
		if p < len(d.data) && (d.data[p] == '+' || d.data[p] == '-') {
			p++
		}
		n := 0
		for p < len(d.data) && d.data[p] >= '0' && d.data[p] <= '9' {
			p++
			n++
		}
		if n == 0 {
			return nil, false, errors.New(errors.PhaseDecode, errors.KindInvalidNumber).
				Offset(p).
				Detail("missing exponent digits").
				Build()
		}
	}

	d.pos = p
	return d.data[start:p], isFloat, nil
}

// ReadInt consumes an integer number token
func (d *Decoder) ReadInt() (int64, error) {
	c, err := d.peek()
	if err != nil {
		return 0, err
	}
	if c != '-' && (c < '0' || c > '9') {
		return 0, d.typeError("integer")
	}
	start := d.pos
	tok, isFloat, err := d.scanNumber()
	if err != nil {
		return 0, err
	}
	if isFloat {
		d.pos = start
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidType).
			Offset(start).
			Detail("number has a fraction or exponent").
			Build()
	}
	i, err := strconv.ParseInt(string(tok), 10, 64)
	if err != nil {
		return 0, errors.OutOfRange(start, string(tok), "int64")
	}
	return i, nil
}

// ReadUint consumes a non-negative integer number token
func (d *Decoder) ReadUint() (uint64, error) {
	c, err := d.peek()
	if err != nil {
		return 0, err
	}
	if c != '-' && (c < '0' || c > '9') {
		return 0, d.typeError("integer")
	}
	start := d.pos
	tok, isFloat, err := d.scanNumber()
	if err != nil {
		return 0, err
	}
	if isFloat {
		d.pos = start
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidType).
			Offset(start).
			Detail("number has a fraction or exponent").
			Build()
	}
	u, err := strconv.ParseUint(string(tok), 10, 64)
	if err != nil {
		return 0, errors.OutOfRange(start, string(tok), "uint64")
	}
	return u, nil
}

// ReadFloat64 consumes any number token
func (d *Decoder) ReadFloat64() (float64, error) {
	c, err := d.peek()
	if err != nil {
		return 0, err
	}
	if c != '-' && (c < '0' || c > '9') {
		return 0, d.typeError("number")
	}
	start := d.pos
	tok, _, err := d.scanNumber()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(string(tok), 64)
	if err != nil {
		return 0, errors.OutOfRange(start, string(tok), "float64")
	}
	return f, nil
}

// ReadFloat32 consumes any number token, narrowing to 32 bits
func (d *Decoder) ReadFloat32() (float32, error) {
	f, err := d.ReadFloat64()
	return float32(f), err
}

// ReadString consumes a quoted string and returns a view into the
// buffer. Escape-free contents are returned as-is; escapes are decoded
// in place, so the view is shorter than the quoted region and the
// buffer is mutated. The result must be valid UTF-8.
func (d *Decoder) ReadString() ([]byte, error) {
	d.skipSpace()
	start := d.pos
	out, err := d.readStringRaw()
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(out) {
		return nil, errors.InvalidUTF8(start, out)
	}
	return out, nil
}

// ReadChar consumes a quoted string holding exactly one rune
func (d *Decoder) ReadChar() (rune, error) {
	d.skipSpace()
	start := d.pos
	b, err := d.ReadString()
	if err != nil {
		return 0, err
	}
	r, size := utf8.DecodeRune(b)
	if size != len(b) || len(b) == 0 {
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidType).
			Offset(start).
			Detail("expected a single character, got %d bytes", len(b)).
			Build()
	}
	return r, nil
}

// readStringRaw is ReadString without the UTF-8 check, for blob
// strategies that carry arbitrary bytes
func (d *Decoder) readStringRaw() ([]byte, error) {
	c, err := d.peek()
	if err != nil {
		return nil, err
	}
	if c != '"' {
		return nil, d.typeError("string")
	}
	d.pos++

	start := d.pos
	w := d.pos
	for {
		if d.pos >= len(d.data) {
			return nil, errors.EOF(d.pos)
		}
		c := d.data[d.pos]
		switch {
		case c == '"':
			d.pos++
			return d.data[start:w:w], nil
		case c < 0x20:
			return nil, errors.New(errors.PhaseDecode, errors.KindControlChar).
				Offset(d.pos).
				Detail("unescaped control byte 0x%02x", c).
				Build()
		case c == '\\':
			n, err := d.unescape(w)
			if err != nil {
				return nil, err
			}
			w += n
		default:
			if w != d.pos {
				d.data[w] = c
			}
			w++
			d.pos++
		}
	}
}

// unescape decodes one escape sequence starting at the backslash under
// the cursor, writing the decoded bytes at w. Decoded bytes never
// outrun the cursor, so writing into the consumed region is safe.
func (d *Decoder) unescape(w int) (int, error) {
	r, err := d.scanEscape()
	if err != nil {
		return 0, err
	}
	return utf8.EncodeRune(d.data[w:d.pos], r), nil
}

// scanEscape parses one escape sequence starting at the backslash under
// the cursor and returns the decoded rune. The buffer is not written.
func (d *Decoder) scanEscape() (rune, error) {
	esc := d.pos
	d.pos++
	if d.pos >= len(d.data) {
		return 0, errors.EOF(d.pos)
	}
	c := d.data[d.pos]
	d.pos++

	switch c {
	case '"', '\\', '/':
		return rune(c), nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
		r, err := d.readHex4(esc)
		if err != nil {
			return 0, err
		}
		if r >= 0xdc00 && r <= 0xdfff {
			return 0, d.invalidEscape(esc, "unpaired low surrogate")
		}
		if r >= 0xd800 && r <= 0xdbff {
			if len(d.data)-d.pos < 2 || d.data[d.pos] != '\\' || d.data[d.pos+1] != 'u' {
				return 0, d.invalidEscape(esc, "unpaired high surrogate")
			}
			d.pos += 2
			lo, err := d.readHex4(esc)
			if err != nil {
				return 0, err
			}
			if lo < 0xdc00 || lo > 0xdfff {
				return 0, d.invalidEscape(esc, "invalid surrogate pair")
			}
			r = 0x10000 + (r-0xd800)<<10 + (lo - 0xdc00)
		}
		return r, nil
	default:
		return 0, d.invalidEscape(esc, "unknown escape character")
	}
}

func (d *Decoder) invalidEscape(offset int, detail string) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidEscape).
		Offset(offset).
		Detail(detail).
		Build()
}

func (d *Decoder) readHex4(esc int) (rune, error) {
	if len(d.data)-d.pos < 4 {
		return 0, errors.EOF(len(d.data))
	}
	var r rune
	for i := 0; i < 4; i++ {
		c := d.data[d.pos]
		var n rune
		switch {
		case c >= '0' && c <= '9':
			n = rune(c - '0')
		case c >= 'a' && c <= 'f':
			n = rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			n = rune(c-'A') + 10
		default:
			return 0, d.invalidEscape(esc, "invalid hex digit")
		}
		r = r<<4 | n
		d.pos++
	}
	return r, nil
}

// ReadBytes consumes a byte blob. The array form is always accepted;
// a string form follows the configured strategy.
func (d *Decoder) ReadBytes() ([]byte, error) {
	c, err := d.peek()
	if err != nil {
		return nil, err
	}
	switch c {
	case '[':
		return d.readByteArray()
	case '"':
		return d.readByteString()
	}
	return nil, d.typeError("bytes")
}

func (d *Decoder) readByteArray() ([]byte, error) {
	d.pos++ // '['
	var out []byte
	c, err := d.peek()
	if err != nil {
		return nil, err
	}
	if c == ']' {
		d.pos++
		return []byte{}, nil
	}
	for {
		start := d.pos
		n, err := d.ReadUint()
		if err != nil {
			return nil, err
		}
		if n > 255 {
			return nil, errors.OutOfRange(start, n, "byte")
		}
		out = append(out, byte(n))

		c, err := d.peek()
		if err != nil {
			return nil, err
		}
		switch c {
		case ',':
			d.pos++
		case ']':
			d.pos++
			return out, nil
		default:
			return nil, errors.Syntax(d.pos, "expected ',' or ']'")
		}
	}
}

func (d *Decoder) readByteString() ([]byte, error) {
	start := d.pos
	if d.cfg.byteFn != nil {
		raw, err := d.readStringRaw()
		if err != nil {
			return nil, err
		}
		out, err := d.cfg.byteFn(raw)
		if err != nil {
			return nil, errors.New(errors.PhaseDecode, errors.KindSyntax).
				Offset(start).
				Detail("byte decoder failed").
				Cause(err).
				Build()
		}
		return out, nil
	}

	switch d.cfg.bytes {
	case ByteHex:
		raw, err := d.readStringRaw()
		if err != nil {
			return nil, err
		}
		n, err := hex.Decode(raw, raw)
		if err != nil {
			return nil, errors.Syntax(start, "invalid hex blob")
		}
		return raw[:n:n], nil
	case ByteBase64:
		raw, err := d.readStringRaw()
		if err != nil {
			return nil, err
		}
		out := make([]byte, base64.StdEncoding.DecodedLen(len(raw)))
		n, err := base64.StdEncoding.Decode(out, raw)
		if err != nil {
			return nil, errors.Syntax(start, "invalid base64 blob")
		}
		return out[:n:n], nil
	case ByteRaw:
		return d.readStringRaw()
	}
	return nil, d.typeError("byte array")
}

// Skip consumes one value without building it. Strings are scanned
// with escapes validated but not decoded, so Skip never mutates the
// buffer.
func (d *Decoder) Skip() error {
	c, err := d.peek()
	if err != nil {
		return err
	}
	switch {
	case c == 'n':
		return d.literal("null")
	case c == 't':
		return d.literal("true")
	case c == 'f':
		return d.literal("false")
	case c == '"':
		return d.skipString()
	case c == '-' || (c >= '0' && c <= '9'):
		_, _, err := d.scanNumber()
		return err
	case c == '[':
		return d.skipComposite(']', func() error { return d.Skip() })
	case c == '{':
		return d.skipComposite('}', func() error {
			if err := d.skipString(); err != nil {
				return err
			}
			if err := d.expect(':'); err != nil {
				return err
			}
			return d.Skip()
		})
	}
	return errors.Syntax(d.pos, "unexpected character")
}

func (d *Decoder) skipString() error {
	if err := d.expect('"'); err != nil {
		return err
	}
	for d.pos < len(d.data) {
		c := d.data[d.pos]
		switch {
		case c == '"':
			d.pos++
			return nil
		case c < 0x20:
			return errors.New(errors.PhaseDecode, errors.KindControlChar).
				Offset(d.pos).
				Detail("unescaped control byte 0x%02x", c).
				Build()
		case c == '\\':
			if _, err := d.scanEscape(); err != nil {
				return err
			}
		default:
			d.pos++
		}
	}
	return errors.EOF(d.pos)
}

func (d *Decoder) skipComposite(close byte, item func() error) error {
	d.pos++ // opening bracket
	c, err := d.peek()
	if err != nil {
		return err
	}
	if c == close {
		d.pos++
		return nil
	}
	for {
		if err := item(); err != nil {
			return err
		}
		c, err := d.peek()
		if err != nil {
			return err
		}
		switch c {
		case ',':
			d.pos++
		case close:
			d.pos++
			return nil
		default:
			return errors.Syntax(d.pos, "expected ',' or '"+string(close)+"'")
		}
	}
}

// ReadValue parses one value into the neutral tree. Integer numbers
// become Int, or Uint above the int64 range; other numbers become
// Float64, or Float32 under the WithFloat32 option.
func (d *Decoder) ReadValue() (value.Value, error) {
	c, err := d.peek()
	if err != nil {
		return value.Nil(), err
	}
	switch {
	case c == 'n':
		return value.Nil(), d.literal("null")
	case c == 't':
		return value.Bool(true), d.literal("true")
	case c == 'f':
		return value.Bool(false), d.literal("false")
	case c == '"':
		b, err := d.ReadString()
		if err != nil {
			return value.Nil(), err
		}
		return value.StringBytes(b), nil
	case c == '-' || (c >= '0' && c <= '9'):
		return d.readNumberValue()
	case c == '[':
		return d.readArrayValue()
	case c == '{':
		return d.readObjectValue()
	}
	return value.Nil(), errors.Syntax(d.pos, "unexpected character")
}

func (d *Decoder) readNumberValue() (value.Value, error) {
	start := d.pos
	tok, isFloat, err := d.scanNumber()
	if err != nil {
		return value.Nil(), err
	}
	if !isFloat {
		if i, err := strconv.ParseInt(string(tok), 10, 64); err == nil {
			return value.Int(i), nil
		}
		if tok[0] != '-' {
			if u, err := strconv.ParseUint(string(tok), 10, 64); err == nil {
				return value.Uint(u), nil
			}
		}
	}
	f, err := strconv.ParseFloat(string(tok), 64)
	if err != nil {
		return value.Nil(), errors.OutOfRange(start, string(tok), "float64")
	}
	if d.cfg.float32 {
		return value.Float32(float32(f)), nil
	}
	return value.Float64(f), nil
}

func (d *Decoder) readArrayValue() (value.Value, error) {
	d.pos++ // '['
	c, err := d.peek()
	if err != nil {
		return value.Nil(), err
	}
	if c == ']' {
		d.pos++
		return value.Array(), nil
	}
	var elems []value.Value
	for {
		el, err := d.ReadValue()
		if err != nil {
			return value.Nil(), err
		}
		elems = append(elems, el)

		c, err := d.peek()
		if err != nil {
			return value.Nil(), err
		}
		switch c {
		case ',':
			d.pos++
		case ']':
			d.pos++
			return value.Array(elems...), nil
		default:
			return value.Nil(), errors.Syntax(d.pos, "expected ',' or ']'")
		}
	}
}

func (d *Decoder) readObjectValue() (value.Value, error) {
	d.pos++ // '{'
	c, err := d.peek()
	if err != nil {
		return value.Nil(), err
	}
	if c == '}' {
		d.pos++
		return value.Map(), nil
	}
	var entries []value.MapEntry
	for {
		key, err := d.ReadString()
		if err != nil {
			return value.Nil(), err
		}
		if err := d.expect(':'); err != nil {
			return value.Nil(), err
		}
		val, err := d.ReadValue()
		if err != nil {
			return value.Nil(), err
		}
		entries = append(entries, value.MapEntry{Key: value.StringBytes(key), Val: val})

		c, err := d.peek()
		if err != nil {
			return value.Nil(), err
		}
		switch c {
		case ',':
			d.pos++
		case '}':
			d.pos++
			return value.Map(entries...), nil
		default:
			return value.Nil(), errors.Syntax(d.pos, "expected ',' or '}'")
		}
	}
}
