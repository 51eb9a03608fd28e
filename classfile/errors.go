package classfile

import "fmt"

// NotAClassfileError means the 4-byte magic check failed: the stream is not
// a class file at all. Non-fatal; the caller skips the file (§7).
type NotAClassfileError struct {
	Magic uint32
}

func (e *NotAClassfileError) Error() string {
	return fmt.Sprintf("classfile: not a classfile, magic=0x%08X", e.Magic)
}

// FormatError means the stream started as a classfile but its constant pool
// or attribute structure was inconsistent. Logged by the caller, file
// skipped, scan continues (§7).
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "classfile: format error: " + e.Reason }

func formatErrorf(format string, args ...interface{}) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}
