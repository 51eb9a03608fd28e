package classfile

import "strings"

// decodeModifiedUTF8 decodes the JVM's modified UTF-8 encoding (JVMS §4.4.7),
// which differs from standard UTF-8 in two ways: the null code point is
// encoded as the two bytes 0xC0 0x80 instead of a single 0x00 byte, and
// characters beyond the Basic Multilingual Plane are encoded as a pair of
// three-byte sequences representing a UTF-16 surrogate pair rather than a
// single four-byte sequence. Standard UTF-8 decoders reject or mis-decode
// both cases, so this is implemented explicitly rather than delegating to
// the standard library (§9).
func decodeModifiedUTF8(b []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(b))

	i := 0
	for i < len(b) {
		b0 := b[i]
		switch {
		case b0&0x80 == 0:
			// 1-byte: 0xxxxxxx, U+0001..U+007F
			sb.WriteByte(b0)
			i++
		case b0&0xE0 == 0xC0:
			// 2-byte: 110xxxxx 10xxxxxx, covers U+0000 (0xC0 0x80) and U+0080..U+07FF
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", formatErrorf("modified UTF-8: truncated 2-byte sequence at offset %d", i)
			}
			r := (rune(b0&0x1F) << 6) | rune(b[i+1]&0x3F)
			sb.WriteRune(r)
			i += 2
		case b0&0xF0 == 0xE0:
			// 3-byte: 1110xxxx 10xxxxxx 10xxxxxx, covers U+0800..U+FFFF and
			// one half of a surrogate pair (0xED 0xAx/0xBx ..).
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", formatErrorf("modified UTF-8: truncated 3-byte sequence at offset %d", i)
			}
			r1 := (rune(b0&0x0F) << 12) | (rune(b[i+1]&0x3F) << 6) | rune(b[i+2]&0x3F)
			if r1 >= 0xD800 && r1 <= 0xDBFF && i+5 < len(b) &&
				b[i+3] == 0xED && b[i+4]&0xF0 == 0xB0 {
				// high surrogate; decode the following low-surrogate triple and combine
				r2 := (rune(b[i+3]&0x0F) << 12) | (rune(b[i+4]&0x3F) << 6) | rune(b[i+5]&0x3F)
				if r2 >= 0xDC00 && r2 <= 0xDFFF {
					combined := 0x10000 + ((r1 - 0xD800) << 10) + (r2 - 0xDC00)
					sb.WriteRune(combined)
					i += 6
					continue
				}
			}
			sb.WriteRune(r1)
			i += 3
		default:
			return "", formatErrorf("modified UTF-8: invalid leading byte 0x%02X at offset %d", b0, i)
		}
	}
	return sb.String(), nil
}
