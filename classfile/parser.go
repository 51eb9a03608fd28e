package classfile

import (
	"io"

	"github.com/viant/classgraph/scanspec"
)

const classMagic = 0xCAFEBABE

const (
	accInterface = 0x0200
	accStatic    = 0x0008
	accFinal     = 0x0010
	accStaticFinal = accStatic | accFinal
)

// Parse reads one class file from r and produces a ClassfileRecord, or
// fails with a *NotAClassfileError / *FormatError (§4.4). The parser holds
// no state across calls and is safe to invoke concurrently from multiple
// goroutines, each over its own stream (§5 "Classfile parsing is a pure
// function of its input stream").
func Parse(r io.Reader, spec *scanspec.ScanSpec) (*ClassfileRecord, error) {
	br := newReader(r)

	magic, err := br.u32()
	if err != nil {
		return nil, err
	}
	if magic != classMagic {
		return nil, &NotAClassfileError{Magic: magic}
	}

	if _, err := br.u16(); err != nil { // minor_version, ignored
		return nil, err
	}
	if _, err := br.u16(); err != nil { // major_version, ignored
		return nil, err
	}

	cp, err := parseConstantPool(br)
	if err != nil {
		return nil, err
	}

	accessFlags, err := br.u16()
	if err != nil {
		return nil, err
	}

	thisClassIdx, err := br.u16()
	if err != nil {
		return nil, err
	}
	thisFQN, err := cp.classFQNAt(thisClassIdx)
	if err != nil {
		return nil, err
	}

	superClassIdx, err := br.u16()
	if err != nil {
		return nil, err
	}
	var superFQN string
	if superClassIdx != 0 {
		superFQN, err = cp.classFQNAt(superClassIdx)
		if err != nil {
			return nil, err
		}
	}

	interfacesCount, err := br.u16()
	if err != nil {
		return nil, err
	}
	interfaceFQNs := make([]string, 0, interfacesCount)
	for i := 0; i < int(interfacesCount); i++ {
		idx, err := br.u16()
		if err != nil {
			return nil, err
		}
		fqn, err := cp.classFQNAt(idx)
		if err != nil {
			return nil, err
		}
		interfaceFQNs = append(interfaceFQNs, fqn)
	}

	record := &ClassfileRecord{
		FQN:           thisFQN,
		IsInterface:   accessFlags&accInterface != 0,
		SuperclassFQN: superFQN,
		InterfaceFQNs: interfaceFQNs,
	}

	fieldsCount, err := br.u16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(fieldsCount); i++ {
		constField, err := parseField(br, cp, spec)
		if err != nil {
			return nil, err
		}
		if constField != nil {
			record.StaticFinalConstants = append(record.StaticFinalConstants, *constField)
		}
	}

	methodsCount, err := br.u16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(methodsCount); i++ {
		if err := skipMethod(br); err != nil {
			return nil, err
		}
	}

	attrCount, err := br.u16()
	if err != nil {
		return nil, err
	}
	var annotations []string
	for i := 0; i < int(attrCount); i++ {
		name, payload, err := readAttribute(br, cp)
		if err != nil {
			return nil, err
		}
		if name == "RuntimeVisibleAnnotations" && spec != nil && spec.EnableAnnotationInfo {
			found, err := parseAnnotationsAttribute(payload, cp)
			if err != nil {
				return nil, err
			}
			annotations = appendUnique(annotations, found...)
		}
	}
	record.AnnotationFQNs = annotations

	return record, nil
}

func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			dst = append(dst, v)
		}
	}
	return dst
}

// parseField reads one field_info structure (access_flags, name, descriptor,
// attributes) and, when the field is static-final and static-final constant
// extraction is enabled, resolves its ConstantValue attribute coerced per
// the field's descriptor (§4.4 "Field parsing").
func parseField(br *reader, cp *constantPool, spec *scanspec.ScanSpec) (*ConstantField, error) {
	accessFlags, err := br.u16()
	if err != nil {
		return nil, err
	}
	nameIdx, err := br.u16()
	if err != nil {
		return nil, err
	}
	descIdx, err := br.u16()
	if err != nil {
		return nil, err
	}
	name, err := cp.utf8At(nameIdx)
	if err != nil {
		return nil, err
	}
	descriptor, err := cp.utf8At(descIdx)
	if err != nil {
		return nil, err
	}

	isStaticFinal := accessFlags&accStaticFinal == accStaticFinal
	wantConstant := isStaticFinal && spec != nil && spec.EnableStaticFinalConstants

	attrCount, err := br.u16()
	if err != nil {
		return nil, err
	}

	var result *ConstantField
	for i := 0; i < int(attrCount); i++ {
		attrName, payload, err := readAttribute(br, cp)
		if err != nil {
			return nil, err
		}
		// The JVM spec permits at most one ConstantValue attribute per field;
		// result == nil keeps only the first if a malformed classfile carries more.
		if attrName == "ConstantValue" && wantConstant && result == nil {
			value, err := coerceConstantValue(payload, descriptor, cp)
			if err != nil {
				return nil, err
			}
			result = &ConstantField{Name: name, Descriptor: descriptor, Value: value}
		}
	}
	return result, nil
}

// coerceConstantValue reads the 2-byte CP index held by a ConstantValue
// attribute and narrows it to the Go type implied by descriptor (§4.4's
// coercion table).
func coerceConstantValue(payload []byte, descriptor string, cp *constantPool) (Value, error) {
	if len(payload) != 2 {
		return Value{}, formatErrorf("ConstantValue attribute has unexpected length %d", len(payload))
	}
	idx := uint16(payload[0])<<8 | uint16(payload[1])
	entry, ok := cp.get(idx)
	if !ok {
		return Value{}, formatErrorf("ConstantValue index %d out of range", idx)
	}

	switch descriptor {
	case "B":
		return Value{Kind: KindByte, IntVal: int32(int8(entry.intVal))}, nil
	case "C":
		return Value{Kind: KindChar, IntVal: entry.intVal}, nil
	case "S":
		return Value{Kind: KindShort, IntVal: int32(int16(entry.intVal))}, nil
	case "Z":
		return Value{Kind: KindBoolean, Bool: entry.intVal != 0}, nil
	case "I":
		return Value{Kind: KindInt, IntVal: entry.intVal}, nil
	case "J":
		return Value{Kind: KindLong, LongVal: entry.longVal}, nil
	case "F":
		return Value{Kind: KindFloat, F32: entry.floatVal}, nil
	case "D":
		return Value{Kind: KindDouble, F64: entry.doubleVal}, nil
	case "Ljava/lang/String;":
		s, err := cp.stringConstAt(idx)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: s}, nil
	default:
		return Value{}, formatErrorf("unsupported ConstantValue descriptor %q", descriptor)
	}
}

// readAttribute reads one generic {attribute_name_index, attribute_length,
// info[attribute_length]} structure and returns the resolved name plus the
// raw payload bytes, letting the caller decide whether to interpret it
// (§4.4 "Other attributes are skipped by reading their length and
// advancing").
func readAttribute(br *reader, cp *constantPool) (string, []byte, error) {
	nameIdx, err := br.u16()
	if err != nil {
		return "", nil, err
	}
	length, err := br.u32()
	if err != nil {
		return "", nil, err
	}
	name, err := cp.utf8At(nameIdx)
	if err != nil {
		return "", nil, err
	}
	payload, err := br.bytes(int(length))
	if err != nil {
		return "", nil, err
	}
	return name, payload, nil
}

// skipMethod reads past one method_info structure without interpreting it;
// methods carry no information this scanner's data model needs (§4.4,
// methods row: "Skipped structurally").
func skipMethod(br *reader) error {
	if _, err := br.u16(); err != nil { // access_flags
		return err
	}
	if _, err := br.u16(); err != nil { // name_index
		return err
	}
	if _, err := br.u16(); err != nil { // descriptor_index
		return err
	}
	attrCount, err := br.u16()
	if err != nil {
		return err
	}
	for i := 0; i < int(attrCount); i++ {
		if _, err := br.u16(); err != nil { // attribute_name_index
			return err
		}
		length, err := br.u32()
		if err != nil {
			return err
		}
		if err := br.skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}

// descriptorToFQN peels the 'L' ... ';' affixes from an object-type field
// descriptor and slash-converts the interior, e.g. "Lp/q/R;" -> "p.q.R"
// (§4.4 "Internal->FQN conversion").
func descriptorToFQN(descriptor string) string {
	if len(descriptor) >= 2 && descriptor[0] == 'L' && descriptor[len(descriptor)-1] == ';' {
		return internalToFQN(descriptor[1 : len(descriptor)-1])
	}
	return descriptor
}
