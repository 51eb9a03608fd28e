package classfile

import "bytes"

// parseAnnotationsAttribute parses the payload of a RuntimeVisibleAnnotations
// class attribute: num_annotations (u16) followed by that many annotation
// structures (§4.4 "Annotation parsing"). Only the annotation FQNs are
// accumulated into the record; element values are walked (to keep the
// byte-stream position correct) but otherwise discarded, per spec.md's
// minimal-core note.
func parseAnnotationsAttribute(payload []byte, cp *constantPool) ([]string, error) {
	br := newReader(bytes.NewReader(payload))
	numAnnotations, err := br.u16()
	if err != nil {
		return nil, err
	}
	fqns := make([]string, 0, numAnnotations)
	for i := 0; i < int(numAnnotations); i++ {
		fqn, err := parseAnnotation(br, cp)
		if err != nil {
			return nil, err
		}
		fqns = append(fqns, fqn)
	}
	return fqns, nil
}

// parseAnnotation parses one annotation structure and returns its FQN.
func parseAnnotation(br *reader, cp *constantPool) (string, error) {
	typeIdx, err := br.u16()
	if err != nil {
		return "", err
	}
	typeDescriptor, err := cp.utf8At(typeIdx)
	if err != nil {
		return "", err
	}
	fqn := descriptorToFQN(typeDescriptor)

	numPairs, err := br.u16()
	if err != nil {
		return "", err
	}
	for i := 0; i < int(numPairs); i++ {
		if _, err := br.u16(); err != nil { // element_name_index
			return "", err
		}
		if err := skipElementValue(br, cp); err != nil {
			return "", err
		}
	}
	return fqn, nil
}

// skipElementValue consumes one element_value structure, dispatching on its
// tag byte (§4.4's element-value table). An unrecognized tag is a malformed
// classfile: spec.md resolves the source's inconsistent behavior here by
// always treating it as a format error (§9 "Open questions").
func skipElementValue(br *reader, cp *constantPool) error {
	tag, err := br.u8()
	if err != nil {
		return err
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		_, err := br.u16() // const_value_index
		return err
	case 'e':
		if _, err := br.u16(); err != nil { // type_name_index
			return err
		}
		_, err := br.u16() // const_name_index
		return err
	case 'c':
		_, err := br.u16() // class_info_index
		return err
	case '@':
		_, err := parseAnnotation(br, cp)
		return err
	case '[':
		count, err := br.u16()
		if err != nil {
			return err
		}
		for i := 0; i < int(count); i++ {
			if err := skipElementValue(br, cp); err != nil {
				return err
			}
		}
		return nil
	default:
		return formatErrorf("malformed annotation element_value tag 0x%02X", tag)
	}
}
