package classfile

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/classgraph/scanspec"
)

// cfBuilder assembles a minimal, syntactically valid class file byte-for-byte,
// used to drive the parser through the exact binary layout described in
// spec.md §4.4/§6 without depending on a real javac toolchain.
type cfBuilder struct {
	cpEntries [][]byte // raw bytes of each constant-pool entry, tag-prefixed
}

func newCFBuilder() *cfBuilder { return &cfBuilder{} }

// addUTF8 appends a UTF8 entry and returns its 1-based constant-pool index.
func (b *cfBuilder) addUTF8(s string) uint16 {
	buf := &bytes.Buffer{}
	buf.WriteByte(tagUTF8)
	binary.Write(buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
	b.cpEntries = append(b.cpEntries, buf.Bytes())
	return uint16(len(b.cpEntries))
}

// addClass appends a Class entry referencing the UTF8 at utf8Idx.
func (b *cfBuilder) addClass(utf8Idx uint16) uint16 {
	buf := &bytes.Buffer{}
	buf.WriteByte(tagClass)
	binary.Write(buf, binary.BigEndian, utf8Idx)
	b.cpEntries = append(b.cpEntries, buf.Bytes())
	return uint16(len(b.cpEntries))
}

func (b *cfBuilder) addString(utf8Idx uint16) uint16 {
	buf := &bytes.Buffer{}
	buf.WriteByte(tagString)
	binary.Write(buf, binary.BigEndian, utf8Idx)
	b.cpEntries = append(b.cpEntries, buf.Bytes())
	return uint16(len(b.cpEntries))
}

// addLong appends a Long entry, which (per the JVM spec) reserves the next
// constant-pool index as an unused "ghost" slot.
func (b *cfBuilder) addLong(v int64) uint16 {
	buf := &bytes.Buffer{}
	buf.WriteByte(tagLong)
	binary.Write(buf, binary.BigEndian, v)
	idx := uint16(len(b.cpEntries)) + 1
	b.cpEntries = append(b.cpEntries, buf.Bytes())
	b.cpEntries = append(b.cpEntries, nil) // ghost slot placeholder
	return idx
}

func (b *cfBuilder) addInteger(v int32) uint16 {
	buf := &bytes.Buffer{}
	buf.WriteByte(tagInteger)
	binary.Write(buf, binary.BigEndian, v)
	b.cpEntries = append(b.cpEntries, buf.Bytes())
	return uint16(len(b.cpEntries))
}

// build assembles the full class file: magic, versions, constant pool,
// access_flags, this_class, super_class, interfaces, fields, methods
// (none), and the class attributes given in classAttrs.
func (b *cfBuilder) build(accessFlags uint16, thisClass, superClass uint16, interfaces []uint16, fields []fieldSpec, classAttrs []attrSpec) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint32(0xCAFEBABE))
	binary.Write(buf, binary.BigEndian, uint16(0))  // minor
	binary.Write(buf, binary.BigEndian, uint16(61)) // major

	binary.Write(buf, binary.BigEndian, uint16(len(b.cpEntries)+1))
	for _, e := range b.cpEntries {
		if e == nil {
			continue // ghost slot: not emitted, the index is simply skipped
		}
		buf.Write(e)
	}

	binary.Write(buf, binary.BigEndian, accessFlags)
	binary.Write(buf, binary.BigEndian, thisClass)
	binary.Write(buf, binary.BigEndian, superClass)

	binary.Write(buf, binary.BigEndian, uint16(len(interfaces)))
	for _, i := range interfaces {
		binary.Write(buf, binary.BigEndian, i)
	}

	binary.Write(buf, binary.BigEndian, uint16(len(fields)))
	for _, f := range fields {
		binary.Write(buf, binary.BigEndian, f.accessFlags)
		binary.Write(buf, binary.BigEndian, f.nameIdx)
		binary.Write(buf, binary.BigEndian, f.descIdx)
		binary.Write(buf, binary.BigEndian, uint16(len(f.attrs)))
		for _, a := range f.attrs {
			writeAttr(buf, a)
		}
	}

	binary.Write(buf, binary.BigEndian, uint16(0)) // methods_count

	binary.Write(buf, binary.BigEndian, uint16(len(classAttrs)))
	for _, a := range classAttrs {
		writeAttr(buf, a)
	}

	return buf.Bytes()
}

type fieldSpec struct {
	accessFlags uint16
	nameIdx     uint16
	descIdx     uint16
	attrs       []attrSpec
}

type attrSpec struct {
	nameIdx uint16
	payload []byte
}

func writeAttr(buf *bytes.Buffer, a attrSpec) {
	binary.Write(buf, binary.BigEndian, a.nameIdx)
	binary.Write(buf, binary.BigEndian, uint32(len(a.payload)))
	buf.Write(a.payload)
}

func TestParse_ForwardConstantPoolReference(t *testing.T) {
	b := newCFBuilder()
	classIdx := b.addClass(12) // forward reference: index 12 not yet written
	objUTF8 := b.addUTF8("java/lang/Object")
	// pad so the UTF8 we actually want lands at index 12
	for uint16(len(b.cpEntries)) < 11 {
		b.addUTF8("pad")
	}
	nameUTF8 := b.addUTF8("com/a/B")
	require.EqualValues(t, 12, nameUTF8)

	data := b.build(0, classIdx, 0, nil, nil, nil)
	_ = objUTF8

	rec, err := Parse(bytes.NewReader(data), nil)
	require.NoError(t, err)
	assert.Equal(t, "com.a.B", rec.FQN)
}

func TestParse_StaticFinalStringConstant(t *testing.T) {
	b := newCFBuilder()
	nameUTF8 := b.addUTF8("com/x/K")
	classIdx := b.addClass(nameUTF8)
	fieldNameUTF8 := b.addUTF8("K")
	descUTF8 := b.addUTF8("Ljava/lang/String;")
	valueUTF8 := b.addUTF8("v")
	valueStringIdx := b.addString(valueUTF8)
	cvAttrNameUTF8 := b.addUTF8("ConstantValue")

	payload := make([]byte, 2)
	binary.BigEndian.PutUint16(payload, valueStringIdx)

	fields := []fieldSpec{{
		accessFlags: accStaticFinal,
		nameIdx:     fieldNameUTF8,
		descIdx:     descUTF8,
		attrs:       []attrSpec{{nameIdx: cvAttrNameUTF8, payload: payload}},
	}}

	data := b.build(0, classIdx, 0, nil, fields, nil)

	spec, err := scanspec.NewScanSpec()
	require.NoError(t, err)

	rec, err := Parse(bytes.NewReader(data), spec)
	require.NoError(t, err)
	require.Len(t, rec.StaticFinalConstants, 1)
	assert.Equal(t, "K", rec.StaticFinalConstants[0].Name)
	assert.Equal(t, KindString, rec.StaticFinalConstants[0].Value.Kind)
	assert.Equal(t, "v", rec.StaticFinalConstants[0].Value.Str)
}

func TestParse_LongGhostSlotDoesNotShiftIndices(t *testing.T) {
	b := newCFBuilder()
	nameUTF8 := b.addUTF8("com/x/Y")
	classIdx := b.addClass(nameUTF8)
	_ = b.addLong(42) // consumes two indices
	afterUTF8 := b.addUTF8("after")
	afterClass := b.addClass(afterUTF8)

	data := b.build(0, classIdx, 0, []uint16{afterClass}, nil, nil)

	rec, err := Parse(bytes.NewReader(data), nil)
	require.NoError(t, err)
	assert.Equal(t, "com.x.Y", rec.FQN)
	require.Len(t, rec.InterfaceFQNs, 1)
	assert.Equal(t, "after", rec.InterfaceFQNs[0])
}

func TestParse_NotAClassfile(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte{0, 0, 0, 0}), nil)
	require.Error(t, err)
	var notClass *NotAClassfileError
	assert.ErrorAs(t, err, &notClass)
}

func TestParse_UnknownConstantPoolTag(t *testing.T) {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint32(0xCAFEBABE))
	binary.Write(buf, binary.BigEndian, uint16(0))
	binary.Write(buf, binary.BigEndian, uint16(61))
	binary.Write(buf, binary.BigEndian, uint16(2)) // constant_pool_count
	buf.WriteByte(99)                              // unknown tag

	_, err := Parse(bytes.NewReader(buf.Bytes()), nil)
	require.Error(t, err)
	var fmtErr *FormatError
	assert.ErrorAs(t, err, &fmtErr)
}

func TestParse_InterfaceFlag(t *testing.T) {
	b := newCFBuilder()
	nameUTF8 := b.addUTF8("com/x/I")
	classIdx := b.addClass(nameUTF8)
	data := b.build(accInterface, classIdx, 0, nil, nil, nil)

	rec, err := Parse(bytes.NewReader(data), nil)
	require.NoError(t, err)
	assert.True(t, rec.IsInterface)
}

func TestParse_AnnotationFQN(t *testing.T) {
	b := newCFBuilder()
	nameUTF8 := b.addUTF8("com/x/Y")
	classIdx := b.addClass(nameUTF8)
	annotationDescUTF8 := b.addUTF8("Lcom/x/MyAnno;")
	attrNameUTF8 := b.addUTF8("RuntimeVisibleAnnotations")

	payload := &bytes.Buffer{}
	binary.Write(payload, binary.BigEndian, uint16(1)) // num_annotations
	binary.Write(payload, binary.BigEndian, annotationDescUTF8)
	binary.Write(payload, binary.BigEndian, uint16(0)) // num_element_value_pairs

	classAttrs := []attrSpec{{nameIdx: attrNameUTF8, payload: payload.Bytes()}}
	data := b.build(0, classIdx, 0, nil, nil, classAttrs)

	spec, err := scanspec.NewScanSpec()
	require.NoError(t, err)

	rec, err := Parse(bytes.NewReader(data), spec)
	require.NoError(t, err)
	require.Len(t, rec.AnnotationFQNs, 1)
	assert.Equal(t, "com.x.MyAnno", rec.AnnotationFQNs[0])
}

func TestDecodeModifiedUTF8(t *testing.T) {
	// null code point is encoded as 0xC0 0x80, not a literal 0x00 byte
	s, err := decodeModifiedUTF8([]byte{0xC0, 0x80})
	require.NoError(t, err)
	assert.Equal(t, "\x00", s)

	// ASCII passes through unchanged
	s, err = decodeModifiedUTF8([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	// a character beyond the BMP (U+10400) encoded as a six-byte surrogate pair
	s, err = decodeModifiedUTF8([]byte{0xED, 0xA0, 0x81, 0xED, 0xB0, 0x80})
	require.NoError(t, err)
	assert.Equal(t, "\U00010400", s)
}
