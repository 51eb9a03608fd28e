package classfile

// Constant-pool tag bytes (§4.4 "Constant pool entries"), grounded on the
// tagged-slot scheme jacobin's classloader/CPutils.go uses for its own
// constant pool (CpIndex entries carrying a Type + Slot, with separate
// typed backing arrays) -- adapted here to a single typed-entry slice since
// this parser only needs read-only resolution, not runtime dispatch.
const (
	tagUTF8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagInvokeDynamic      = 18
)

// cpEntry holds one constant-pool slot. Only the fields relevant to the
// entry's tag are populated. indirect holds the as-read index for Class and
// String entries until the second pass of parseConstantPool fills in resolved.
type cpEntry struct {
	tag       byte
	utf8      string
	intVal    int32
	longVal   int64
	floatVal  float32
	doubleVal float64
	indirect  uint16
	resolved  string
	isGhost   bool // the unused second slot reserved by a Long/Double entry
}

// constantPool is the 1-indexed constant pool table (index 0 is unused).
type constantPool struct {
	entries []cpEntry
}

func (cp *constantPool) get(index uint16) (cpEntry, bool) {
	if int(index) <= 0 || int(index) >= len(cp.entries) {
		return cpEntry{}, false
	}
	return cp.entries[index], true
}

// utf8At resolves a UTF8 constant-pool entry to its decoded string.
func (cp *constantPool) utf8At(index uint16) (string, error) {
	e, ok := cp.get(index)
	if !ok {
		return "", formatErrorf("constant pool index %d out of range", index)
	}
	if e.tag != tagUTF8 {
		return "", formatErrorf("constant pool index %d is not UTF8 (tag=%d)", index, e.tag)
	}
	return e.utf8, nil
}

// classFQNAt resolves a Class constant-pool entry (tag 7) to its FQN,
// converting the internal slash form to dotted form (§4.4 "Internal->FQN
// conversion").
func (cp *constantPool) classFQNAt(index uint16) (string, error) {
	if index == 0 {
		return "", nil
	}
	e, ok := cp.get(index)
	if !ok {
		return "", formatErrorf("constant pool index %d out of range", index)
	}
	if e.tag != tagClass {
		return "", formatErrorf("constant pool index %d is not a Class entry (tag=%d)", index, e.tag)
	}
	return internalToFQN(e.resolved), nil
}

func internalToFQN(internal string) string {
	return replaceSlashWithDot(internal)
}

func replaceSlashWithDot(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			out[i] = '.'
		} else {
			out[i] = s[i]
		}
	}
	return string(out)
}

// parseConstantPool reads constant_pool_count and the constant_pool table
// (§4.4). It performs the two-pass resolution the format requires: tags 7
// (Class) and 8 (String) hold an index into the table that may point
// forward, so the first pass only records the raw index and the second
// pass resolves it once every UTF8 entry has been read (§4.4 "Indirect
// resolution"). Long and Double entries consume two constant-pool indices;
// the second index is left as an untyped "ghost" slot per the JVM spec.
func parseConstantPool(r *reader) (*constantPool, error) {
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	cp := &constantPool{entries: make([]cpEntry, count)}

	for i := 1; i < int(count); i++ {
		if cp.entries[i].isGhost {
			continue
		}
		tag, err := r.u8()
		if err != nil {
			return nil, err
		}
		entry := cpEntry{tag: tag}
		switch tag {
		case tagUTF8:
			length, err := r.u16()
			if err != nil {
				return nil, err
			}
			raw, err := r.bytes(int(length))
			if err != nil {
				return nil, err
			}
			decoded, err := decodeModifiedUTF8(raw)
			if err != nil {
				return nil, err
			}
			entry.utf8 = decoded
		case tagInteger:
			v, err := r.i32()
			if err != nil {
				return nil, err
			}
			entry.intVal = v
		case tagFloat:
			v, err := r.f32()
			if err != nil {
				return nil, err
			}
			entry.floatVal = v
		case tagLong:
			v, err := r.i64()
			if err != nil {
				return nil, err
			}
			entry.longVal = v
			if i+1 < int(count) {
				cp.entries[i+1].isGhost = true
			}
		case tagDouble:
			v, err := r.f64()
			if err != nil {
				return nil, err
			}
			entry.doubleVal = v
			if i+1 < int(count) {
				cp.entries[i+1].isGhost = true
			}
		case tagClass, tagString:
			idx, err := r.u16()
			if err != nil {
				return nil, err
			}
			entry.indirect = idx
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType:
			if err := r.skip(4); err != nil {
				return nil, err
			}
		case tagMethodHandle:
			if err := r.skip(3); err != nil {
				return nil, err
			}
		case tagMethodType:
			if err := r.skip(2); err != nil {
				return nil, err
			}
		case tagInvokeDynamic:
			if err := r.skip(4); err != nil {
				return nil, err
			}
		default:
			return nil, formatErrorf("unknown constant pool tag %d at index %d", tag, i)
		}
		cp.entries[i] = entry
	}

	// Second pass: resolve Class/String indirections now that every UTF8
	// entry has a value, regardless of forward/backward reference order.
	for i := 1; i < int(count); i++ {
		e := &cp.entries[i]
		if e.tag != tagClass && e.tag != tagString {
			continue
		}
		utf8, err := cp.utf8At(e.indirect)
		if err != nil {
			return nil, formatErrorf("entry %d: %v", i, err)
		}
		e.resolved = utf8
	}

	return cp, nil
}

// stringConstAt resolves a String constant-pool entry (tag 8) to its value.
func (cp *constantPool) stringConstAt(index uint16) (string, error) {
	e, ok := cp.get(index)
	if !ok {
		return "", formatErrorf("constant pool index %d out of range", index)
	}
	if e.tag != tagString {
		return "", formatErrorf("constant pool index %d is not a String entry (tag=%d)", index, e.tag)
	}
	return e.resolved, nil
}
