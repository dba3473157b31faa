// Package ieee11073 encodes measurement records in the IEEE-11073 personal
// health data format used by the temperature-measurement attribute: one flags
// byte followed by a 32-bit FLOAT-Type (8-bit signed exponent, 24-bit signed
// mantissa) in little-endian byte order.
package ieee11073

// RecordLen is the size of an encoded measurement record.
const RecordLen = 5

// Record is the wire form of one measurement.
type Record [RecordLen]byte

// Float32 packs mantissa and exponent into a FLOAT-Type word. The mantissa is
// masked to its 24-bit field.
func Float32(mantissa int32, exponent int8) uint32 {
	return uint32(exponent)<<24 | uint32(mantissa)&0xffffff
}

// Encode builds a record from a flags byte and a FLOAT-Type word, least
// significant byte first.
func Encode(flags byte, f uint32) Record {
	return Record{
		flags,
		byte(f),
		byte(f >> 8),
		byte(f >> 16),
		byte(f >> 24),
	}
}

// EncodeCelsius builds the temperature-measurement record for a whole-degree
// Celsius reading: mantissa = degrees × 1000, exponent = −3.
func EncodeCelsius(flags byte, wholeDegrees int32) Record {
	return Encode(flags, Float32(wholeDegrees*1000, -3))
}
