package classfile

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// reader wraps a buffered big-endian binary reader over the class-file
// stream. All multi-byte integers in the class-file format are big-endian
// (§6); a bufio.Reader lets the Parser work equally well over a plain
// os.File stream and an archive entry's io.Reader (§4.4 "must support
// little-effort streams and archive entry streams alike").
type reader struct {
	br *bufio.Reader
}

func newReader(r io.Reader) *reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &reader{br: br}
	}
	return &reader{br: bufio.NewReaderSize(r, 4096)}
}

func (r *reader) u8() (uint8, error) {
	return r.br.ReadByte()
}

func (r *reader) u16() (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r.br, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func (r *reader) u32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r.br, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) i64() (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r.br, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *reader) f64() (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r.br, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf[:])), nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *reader) skip(n int) error {
	_, err := io.CopyN(io.Discard, r.br, int64(n))
	return err
}
