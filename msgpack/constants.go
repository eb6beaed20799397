package msgpack

// Wire format tags
const (
	tagNil      = 0xc0
	tagReserved = 0xc1
	tagFalse    = 0xc2
	tagTrue     = 0xc3

	tagBin8  = 0xc4
	tagBin16 = 0xc5
	tagBin32 = 0xc6

	tagExt8  = 0xc7
	tagExt16 = 0xc8
	tagExt32 = 0xc9

	tagFloat32 = 0xca
	tagFloat64 = 0xcb

	tagUint8  = 0xcc
	tagUint16 = 0xcd
	tagUint32 = 0xce
	tagUint64 = 0xcf

	tagInt8  = 0xd0
	tagInt16 = 0xd1
	tagInt32 = 0xd2
	tagInt64 = 0xd3

	tagFixExt1  = 0xd4
	tagFixExt2  = 0xd5
	tagFixExt4  = 0xd6
	tagFixExt8  = 0xd7
	tagFixExt16 = 0xd8

	tagStr8  = 0xd9
	tagStr16 = 0xda
	tagStr32 = 0xdb

	tagArray16 = 0xdc
	tagArray32 = 0xdd

	tagMap16 = 0xde
	tagMap32 = 0xdf
)

// Fix-family bases. The low bits of the tag byte carry the length or,
// for fixint, the value itself.
const (
	fixMap   = 0x80 // 0x80..0x8f, up to 15 entries
	fixArray = 0x90 // 0x90..0x9f, up to 15 elements
	fixStr   = 0xa0 // 0xa0..0xbf, up to 31 bytes
	fixIntN  = 0xe0 // 0xe0..0xff, values -32..-1

	fixMapMax   = 15
	fixArrayMax = 15
	fixStrMax   = 31
)
