package msgpack

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/wirepack/wirepack/errors"
	"github.com/wirepack/wirepack/value"
)

// Decode reads one complete value from data and requires the whole
// buffer to be consumed. It returns the value and the number of bytes
// read; unconsumed bytes fail with a trailing data error.
func Decode(data []byte) (value.Value, int, error) {
	d := NewDecoder(data)
	v, err := d.ReadValue()
	if err != nil {
		return value.Nil(), d.pos, err
	}
	if d.pos != len(data) {
		return value.Nil(), d.pos, errors.TrailingData(d.pos)
	}
	return v, d.pos, nil
}

// DecodeTail reads one complete value from data and returns the
// unconsumed remainder, for buffers holding back-to-back frames.
func DecodeTail(data []byte) (value.Value, []byte, error) {
	d := NewDecoder(data)
	v, err := d.ReadValue()
	if err != nil {
		return value.Nil(), nil, err
	}
	return v, data[d.pos:], nil
}

// Decoder is a cursor over an immutable buffer. Strings and byte blobs
// it returns are sub-slices of the buffer.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder creates a cursor at the start of data
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Pos returns the current byte offset
func (d *Decoder) Pos() int {
	return d.pos
}

// Rest returns the unconsumed remainder of the buffer
func (d *Decoder) Rest() []byte {
	return d.data[d.pos:]
}

// Peek returns the tag byte at the cursor without advancing
func (d *Decoder) Peek() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, errors.EOF(d.pos)
	}
	return d.data[d.pos], nil
}

func (d *Decoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, errors.EOF(d.pos)
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

// take returns the next n bytes as a view and advances past them
func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || n > len(d.data)-d.pos {
		return nil, errors.EOF(d.pos)
	}
	b := d.data[d.pos : d.pos+n : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) readU16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) readU32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) readU64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadNil consumes a nil tag
func (d *Decoder) ReadNil() error {
	start := d.pos
	tag, err := d.readByte()
	if err != nil {
		return err
	}
	if tag != tagNil {
		d.pos = start
		return errors.InvalidTag(start, tag, "nil")
	}
	return nil
}

// ReadBool consumes a boolean
func (d *Decoder) ReadBool() (bool, error) {
	start := d.pos
	tag, err := d.readByte()
	if err != nil {
		return false, err
	}
	switch tag {
	case tagTrue:
		return true, nil
	case tagFalse:
		return false, nil
	}
	d.pos = start
	return false, errors.InvalidTag(start, tag, "bool")
}

// readRawInt consumes any integer tag. The second result reports
// whether the value is an unsigned quantity above the int64 range.
func (d *Decoder) readRawInt() (uint64, bool, error) {
	start := d.pos
	tag, err := d.readByte()
	if err != nil {
		return 0, false, err
	}

	switch {
	case tag <= 0x7f:
		return uint64(tag), false, nil
	case tag >= fixIntN:
		return uint64(int64(int8(tag))), false, nil
	}

	switch tag {
	case tagUint8:
		b, err := d.readByte()
		return uint64(b), false, err
	case tagUint16:
		u, err := d.readU16()
		return uint64(u), false, err
	case tagUint32:
		u, err := d.readU32()
		return uint64(u), false, err
	case tagUint64:
		u, err := d.readU64()
		return u, u > math.MaxInt64, err
	case tagInt8:
		b, err := d.readByte()
		return uint64(int64(int8(b))), false, err
	case tagInt16:
		u, err := d.readU16()
		return uint64(int64(int16(u))), false, err
	case tagInt32:
		u, err := d.readU32()
		return uint64(int64(int32(u))), false, err
	case tagInt64:
		u, err := d.readU64()
		return u, false, err
	}
	d.pos = start
	return 0, false, errors.InvalidTag(start, tag, "integer")
}

// ReadInt consumes any integer tag whose value fits int64
func (d *Decoder) ReadInt() (int64, error) {
	start := d.pos
	u, big, err := d.readRawInt()
	if err != nil {
		return 0, err
	}
	if big {
		return 0, errors.OutOfRange(start, u, "int64")
	}
	return int64(u), nil
}

// ReadUint consumes any integer tag whose value is non-negative
func (d *Decoder) ReadUint() (uint64, error) {
	start := d.pos
	u, big, err := d.readRawInt()
	if err != nil {
		return 0, err
	}
	if !big && int64(u) < 0 {
		return 0, errors.OutOfRange(start, int64(u), "uint64")
	}
	return u, nil
}

// ReadFloat64 consumes a float of either width or any integer tag
func (d *Decoder) ReadFloat64() (float64, error) {
	start := d.pos
	tag, err := d.Peek()
	if err != nil {
		return 0, err
	}
	switch tag {
	case tagFloat32:
		d.pos++
		u, err := d.readU32()
		return float64(math.Float32frombits(u)), err
	case tagFloat64:
		d.pos++
		u, err := d.readU64()
		return math.Float64frombits(u), err
	}
	u, big, err := d.readRawInt()
	if err != nil {
		if errors.IsKind(err, errors.KindInvalidTag) {
			d.pos = start
			return 0, errors.InvalidTag(start, tag, "float")
		}
		return 0, err
	}
	if big {
		return float64(u), nil
	}
	return float64(int64(u)), nil
}

// ReadFloat32 consumes a float of either width or any integer tag,
// narrowing to 32 bits
func (d *Decoder) ReadFloat32() (float32, error) {
	f, err := d.ReadFloat64()
	return float32(f), err
}

// ReadString consumes a str of any length class and returns a view
// into the buffer. The payload must be valid UTF-8.
func (d *Decoder) ReadString() ([]byte, error) {
	start := d.pos
	n, err := d.readStrHeader()
	if err != nil {
		return nil, err
	}
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, errors.InvalidUTF8(start, b)
	}
	return b, nil
}

// ReadChar consumes a str holding exactly one rune
func (d *Decoder) ReadChar() (rune, error) {
	start := d.pos
	b, err := d.ReadString()
	if err != nil {
		return 0, err
	}
	r, size := utf8.DecodeRune(b)
	if size != len(b) || len(b) == 0 {
		d.pos = start
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidType).
			Offset(start).
			Detail("expected a single character, got %d bytes", len(b)).
			Build()
	}
	return r, nil
}

func (d *Decoder) readStrHeader() (int, error) {
	start := d.pos
	tag, err := d.readByte()
	if err != nil {
		return 0, err
	}
	switch {
	case tag >= fixStr && tag <= fixStr|fixStrMax:
		return int(tag & 0x1f), nil
	case tag == tagStr8:
		b, err := d.readByte()
		return int(b), err
	case tag == tagStr16:
		u, err := d.readU16()
		return int(u), err
	case tag == tagStr32:
		u, err := d.readU32()
		return int(u), err
	}
	d.pos = start
	return 0, errors.InvalidTag(start, tag, "string")
}

// ReadBytes consumes a bin of any length class and returns a view into
// the buffer. A str tag is accepted too, without UTF-8 validation.
func (d *Decoder) ReadBytes() ([]byte, error) {
	start := d.pos
	tag, err := d.readByte()
	if err != nil {
		return nil, err
	}

	var n int
	switch {
	case tag == tagBin8:
		b, err := d.readByte()
		if err != nil {
			return nil, err
		}
		n = int(b)
	case tag == tagBin16:
		u, err := d.readU16()
		if err != nil {
			return nil, err
		}
		n = int(u)
	case tag == tagBin32:
		u, err := d.readU32()
		if err != nil {
			return nil, err
		}
		n = int(u)
	default:
		d.pos = start
		n, err = d.readStrHeader()
		if err != nil {
			d.pos = start
			if errors.IsKind(err, errors.KindInvalidTag) {
				return nil, errors.InvalidTag(start, tag, "bytes")
			}
			return nil, err
		}
	}
	return d.take(n)
}

// ReadArrayHeader consumes an array header and returns the element count
func (d *Decoder) ReadArrayHeader() (int, error) {
	start := d.pos
	tag, err := d.readByte()
	if err != nil {
		return 0, err
	}
	switch {
	case tag >= fixArray && tag <= fixArray|fixArrayMax:
		return int(tag & 0x0f), nil
	case tag == tagArray16:
		u, err := d.readU16()
		return int(u), err
	case tag == tagArray32:
		u, err := d.readU32()
		return int(u), err
	}
	d.pos = start
	return 0, errors.InvalidTag(start, tag, "array")
}

// ReadMapHeader consumes a map header and returns the entry count
func (d *Decoder) ReadMapHeader() (int, error) {
	start := d.pos
	tag, err := d.readByte()
	if err != nil {
		return 0, err
	}
	switch {
	case tag >= fixMap && tag < fixArray:
		return int(tag & 0x0f), nil
	case tag == tagMap16:
		u, err := d.readU16()
		return int(u), err
	case tag == tagMap32:
		u, err := d.readU32()
		return int(u), err
	}
	d.pos = start
	return 0, errors.InvalidTag(start, tag, "map")
}

// Skip fully parses and discards one message, including extension
// types, so the cursor lands on the next message.
func (d *Decoder) Skip() error {
	start := d.pos
	tag, err := d.readByte()
	if err != nil {
		return err
	}

	switch {
	case tag <= 0x7f || tag >= fixIntN:
		return nil
	case tag >= fixMap && tag < fixArray:
		return d.skipPairs(int(tag & 0x0f))
	case tag >= fixArray && tag < fixStr:
		return d.skipElems(int(tag & 0x0f))
	case tag >= fixStr && tag < tagNil:
		_, err := d.take(int(tag & 0x1f))
		return err
	}

	switch tag {
	case tagNil, tagFalse, tagTrue:
		return nil
	case tagReserved:
		d.pos = start
		return errors.New(errors.PhaseDecode, errors.KindReservedTag).Offset(start).Build()
	case tagBin8, tagStr8:
		n, err := d.readByte()
		if err != nil {
			return err
		}
		_, err = d.take(int(n))
		return err
	case tagBin16, tagStr16:
		n, err := d.readU16()
		if err != nil {
			return err
		}
		_, err = d.take(int(n))
		return err
	case tagBin32, tagStr32:
		n, err := d.readU32()
		if err != nil {
			return err
		}
		_, err = d.take(int(n))
		return err
	case tagExt8:
		n, err := d.readByte()
		if err != nil {
			return err
		}
		_, err = d.take(int(n) + 1)
		return err
	case tagExt16:
		n, err := d.readU16()
		if err != nil {
			return err
		}
		_, err = d.take(int(n) + 1)
		return err
	case tagExt32:
		n, err := d.readU32()
		if err != nil {
			return err
		}
		_, err = d.take(int(n) + 1)
		return err
	case tagFloat32, tagUint32, tagInt32:
		_, err := d.take(4)
		return err
	case tagFloat64, tagUint64, tagInt64:
		_, err := d.take(8)
		return err
	case tagUint8, tagInt8:
		_, err := d.take(1)
		return err
	case tagUint16, tagInt16:
		_, err := d.take(2)
		return err
	case tagFixExt1:
		_, err := d.take(2)
		return err
	case tagFixExt2:
		_, err := d.take(3)
		return err
	case tagFixExt4:
		_, err := d.take(5)
		return err
	case tagFixExt8:
		_, err := d.take(9)
		return err
	case tagFixExt16:
		_, err := d.take(17)
		return err
	case tagArray16:
		n, err := d.readU16()
		if err != nil {
			return err
		}
		return d.skipElems(int(n))
	case tagArray32:
		n, err := d.readU32()
		if err != nil {
			return err
		}
		return d.skipElems(int(n))
	case tagMap16:
		n, err := d.readU16()
		if err != nil {
			return err
		}
		return d.skipPairs(int(n))
	case tagMap32:
		n, err := d.readU32()
		if err != nil {
			return err
		}
		return d.skipPairs(int(n))
	}
	d.pos = start
	return errors.InvalidTag(start, tag, "any message")
}

func (d *Decoder) skipElems(n int) error {
	for i := 0; i < n; i++ {
		if err := d.Skip(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) skipPairs(n int) error {
	return d.skipElems(2 * n)
}

// ReadValue parses one message into the neutral value tree. Integers
// become Int unless the value is above the int64 range, strings and
// byte blobs are views into the buffer.
func (d *Decoder) ReadValue() (value.Value, error) {
	start := d.pos
	tag, err := d.Peek()
	if err != nil {
		return value.Nil(), err
	}

	switch {
	case tag <= 0x7f, tag >= fixIntN:
		d.pos++
		if tag <= 0x7f {
			return value.Int(int64(tag)), nil
		}
		return value.Int(int64(int8(tag))), nil
	case tag >= fixMap && tag < fixArray,
		tag == tagMap16, tag == tagMap32:
		return d.readMapValue()
	case tag >= fixArray && tag < fixStr,
		tag == tagArray16, tag == tagArray32:
		return d.readArrayValue()
	case tag >= fixStr && tag < tagNil,
		tag == tagStr8, tag == tagStr16, tag == tagStr32:
		b, err := d.ReadString()
		if err != nil {
			return value.Nil(), err
		}
		return value.StringBytes(b), nil
	}

	switch tag {
	case tagNil:
		d.pos++
		return value.Nil(), nil
	case tagFalse:
		d.pos++
		return value.Bool(false), nil
	case tagTrue:
		d.pos++
		return value.Bool(true), nil
	case tagReserved:
		return value.Nil(), errors.New(errors.PhaseDecode, errors.KindReservedTag).Offset(start).Build()
	case tagBin8, tagBin16, tagBin32:
		b, err := d.ReadBytes()
		if err != nil {
			return value.Nil(), err
		}
		return value.Bin(b), nil
	case tagFloat32:
		d.pos++
		u, err := d.readU32()
		if err != nil {
			return value.Nil(), err
		}
		return value.Float32(math.Float32frombits(u)), nil
	case tagFloat64:
		d.pos++
		u, err := d.readU64()
		if err != nil {
			return value.Nil(), err
		}
		return value.Float64(math.Float64frombits(u)), nil
	case tagUint8, tagUint16, tagUint32, tagUint64,
		tagInt8, tagInt16, tagInt32, tagInt64:
		u, big, err := d.readRawInt()
		if err != nil {
			return value.Nil(), err
		}
		if big {
			return value.Uint(u), nil
		}
		return value.Int(int64(u)), nil
	case tagExt8, tagExt16, tagExt32,
		tagFixExt1, tagFixExt2, tagFixExt4, tagFixExt8, tagFixExt16:
		return value.Nil(), errors.New(errors.PhaseDecode, errors.KindUnsupportedExt).
			Offset(start).
			Detail("extension tag 0x%02x", tag).
			Build()
	}
	return value.Nil(), errors.InvalidTag(start, tag, "any message")
}

func (d *Decoder) readArrayValue() (value.Value, error) {
	n, err := d.ReadArrayHeader()
	if err != nil {
		return value.Nil(), err
	}
	if n > len(d.data)-d.pos {
		// each element takes at least one byte
		return value.Nil(), errors.EOF(d.pos)
	}
	elems := make([]value.Value, n)
	for i := range elems {
		if elems[i], err = d.ReadValue(); err != nil {
			return value.Nil(), err
		}
	}
	return value.Array(elems...), nil
}

func (d *Decoder) readMapValue() (value.Value, error) {
	n, err := d.ReadMapHeader()
	if err != nil {
		return value.Nil(), err
	}
	if n > (len(d.data)-d.pos)/2 {
		// each entry takes at least two bytes
		return value.Nil(), errors.EOF(d.pos)
	}
	entries := make([]value.MapEntry, n)
	for i := range entries {
		if entries[i].Key, err = d.ReadValue(); err != nil {
			return value.Nil(), err
		}
		if entries[i].Val, err = d.ReadValue(); err != nil {
			return value.Nil(), err
		}
	}
	return value.Map(entries...), nil
}
