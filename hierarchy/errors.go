package hierarchy

import "fmt"

// StructuralConflictError reports that a class was assigned two distinct
// direct superclasses — a contradiction between classfiles. This is fatal
// and aborts the scan (§7).
type StructuralConflictError struct {
	ClassFQN string
	First    string
	Second   string
}

func (e *StructuralConflictError) Error() string {
	return fmt.Sprintf("hierarchy: class %s has conflicting direct superclasses %q and %q",
		e.ClassFQN, e.First, e.Second)
}
