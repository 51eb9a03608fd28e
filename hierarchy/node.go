// Package hierarchy assembles the class/interface/annotation graph from
// independently-parsed classfile.ClassfileRecord values: placeholder nodes
// for classes cited only as superclasses, transitive closure of subclasses
// and super-interfaces, and propagation of interface implementation down
// the class hierarchy (§4.6).
//
// Class and interface nodes are arena-allocated records keyed by FQN in the
// Graph's maps; cross-node relationships never hold direct pointer cycles,
// they are expressed as FQN sets resolved back through the maps (§9).
package hierarchy

// ClassNode is one class in the hierarchy graph (§3 "Class node").
type ClassNode struct {
	Name string
	// Encountered is true once a classfile defining this class has been
	// parsed; false means the node exists only because another class cited
	// it as a superclass (a placeholder).
	Encountered bool

	DirectSuperclass string // FQN, empty means absent
	DirectSubclasses []string

	DirectInterfaces map[string]struct{}
	Annotations      map[string]struct{}

	allSuperclasses map[string]struct{}
	allSubclasses   map[string]struct{}
	// subclassesOrdered is computed during Finalize as a deterministic
	// preorder walk of the subclass subtree; since a class has at most one
	// direct superclass the subclass relation forms a tree, so this
	// traversal never revisits a node and needs no de-duplication.
	subclassesOrdered []string
}

// AllSuperclasses returns the transitive set of superclasses, valid only
// after Graph.Finalize has run.
func (c *ClassNode) AllSuperclasses() map[string]struct{} { return c.allSuperclasses }

// AllSubclasses returns the transitive set of subclasses, valid only after
// Graph.Finalize has run.
func (c *ClassNode) AllSubclasses() map[string]struct{} { return c.allSubclasses }

// AllSubclassesOrdered returns the transitive subclasses in deterministic
// preorder, valid only after Graph.Finalize has run.
func (c *ClassNode) AllSubclassesOrdered() []string { return c.subclassesOrdered }

func newClassNode(name string) *ClassNode {
	return &ClassNode{
		Name:             name,
		DirectInterfaces: make(map[string]struct{}),
		Annotations:      make(map[string]struct{}),
		allSuperclasses:  make(map[string]struct{}),
		allSubclasses:    make(map[string]struct{}),
	}
}

func (c *ClassNode) addDirectSubclassOnce(fqn string) {
	for _, existing := range c.DirectSubclasses {
		if existing == fqn {
			return
		}
	}
	c.DirectSubclasses = append(c.DirectSubclasses, fqn)
}

// InterfaceNode is one interface in the hierarchy graph (§3 "Interface node").
type InterfaceNode struct {
	Name            string
	SuperInterfaces []string

	allSuperInterfaces map[string]struct{}
}

// AllSuperInterfaces returns the transitive super-interface set, valid only
// after Graph.Finalize has run.
func (i *InterfaceNode) AllSuperInterfaces() map[string]struct{} { return i.allSuperInterfaces }

func newInterfaceNode(name string) *InterfaceNode {
	return &InterfaceNode{
		Name:               name,
		allSuperInterfaces: make(map[string]struct{}),
	}
}
