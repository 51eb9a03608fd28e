package hierarchy

import (
	"sync"

	"github.com/viant/classgraph/classfile"
)

// Graph is the mutable hierarchy graph owned exclusively by one scan (§3
// "Ownership"). It is safe to call AddClassfile concurrently from multiple
// worker goroutines (§5: "Aggregation ... protected by shared mutation
// behind a mutex"); Finalize must run once, after every classfile for the
// scan has been added, and the graph is read-only from then on.
type Graph struct {
	mu sync.Mutex

	classByName     map[string]*ClassNode
	interfaceByName map[string]*InterfaceNode

	classesByAnnotation map[string][]string
	classesByInterface  map[string][]string

	lastModifiedMillis int64

	classOrder     []string
	interfaceOrder []string

	finalized bool
}

// NewGraph creates an empty hierarchy graph.
func NewGraph() *Graph {
	return &Graph{
		classByName:         make(map[string]*ClassNode),
		interfaceByName:     make(map[string]*InterfaceNode),
		classesByAnnotation: make(map[string][]string),
		classesByInterface:  make(map[string][]string),
	}
}

// ClassByName looks up a class node by FQN (§3 "class_by_name").
func (g *Graph) ClassByName(fqn string) (*ClassNode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.classByName[fqn]
	return n, ok
}

// InterfaceByName looks up an interface node by FQN (§3 "interface_by_name").
func (g *Graph) InterfaceByName(fqn string) (*InterfaceNode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.interfaceByName[fqn]
	return n, ok
}

// ClassesByAnnotation returns the ordered class FQNs for an annotation FQN
// (§3 "classes_by_annotation"), valid only after Finalize.
func (g *Graph) ClassesByAnnotation(annotationFQN string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.classesByAnnotation[annotationFQN]
}

// ClassesByInterface returns the ordered class FQNs implementing an
// interface FQN (§3 "classes_by_interface"), valid only after Finalize.
func (g *Graph) ClassesByInterface(interfaceFQN string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.classesByInterface[interfaceFQN]
}

// LastModifiedMillis returns the max observed modification time (§3
// "last_modified_time").
func (g *Graph) LastModifiedMillis() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastModifiedMillis
}

// ObserveModTime folds a newly observed modification time into the
// monotonic maximum (§5 "a monotonic maximum that can be updated from any
// worker via a max-reduce").
func (g *Graph) ObserveModTime(millis int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if millis > g.lastModifiedMillis {
		g.lastModifiedMillis = millis
	}
}

func (g *Graph) getOrCreateClassLocked(fqn string) *ClassNode {
	if n, ok := g.classByName[fqn]; ok {
		return n
	}
	n := newClassNode(fqn)
	g.classByName[fqn] = n
	return n
}

func (g *Graph) getOrCreateInterfaceLocked(fqn string) *InterfaceNode {
	if n, ok := g.interfaceByName[fqn]; ok {
		return n
	}
	n := newInterfaceNode(fqn)
	g.interfaceByName[fqn] = n
	return n
}

// AddClassfile folds one parsed classfile.ClassfileRecord into the graph.
// The caller (the Classpath Walker, or the scanner's merge step) is responsible for the shadowing rule
// (§4.5, §3 invariant 5): AddClassfile must be called at most once per FQN
// for the whole scan, with the first-in-classpath-order record.
func (g *Graph) AddClassfile(rec *classfile.ClassfileRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rec.IsInterface {
		node := g.getOrCreateInterfaceLocked(rec.FQN)
		node.SuperInterfaces = append([]string(nil), rec.InterfaceFQNs...)
		g.interfaceOrder = append(g.interfaceOrder, rec.FQN)
		return nil
	}

	node := g.getOrCreateClassLocked(rec.FQN)
	if node.Encountered {
		// The Walker's shadowing rule means a second classfile for the same
		// FQN should never reach here; guard defensively instead of
		// silently corrupting state, and surface a genuine contradiction.
		if rec.SuperclassFQN != node.DirectSuperclass {
			return &StructuralConflictError{
				ClassFQN: rec.FQN,
				First:    node.DirectSuperclass,
				Second:   rec.SuperclassFQN,
			}
		}
		return nil
	}
	node.Encountered = true

	if rec.SuperclassFQN != "" {
		node.DirectSuperclass = rec.SuperclassFQN
		superNode := g.getOrCreateClassLocked(rec.SuperclassFQN)
		superNode.addDirectSubclassOnce(rec.FQN)
	}

	for _, iface := range rec.InterfaceFQNs {
		node.DirectInterfaces[iface] = struct{}{}
	}
	for _, anno := range rec.AnnotationFQNs {
		node.Annotations[anno] = struct{}{}
	}

	g.classOrder = append(g.classOrder, rec.FQN)
	return nil
}
