package hierarchy

import "sort"

// Finalize runs the Type Hierarchy Resolver's finalization pass (§4.6)
// exactly once, after every classfile for the scan has been folded in via
// AddClassfile. After Finalize returns successfully the graph is read-only.
// Calling Finalize twice on an unchanged graph is idempotent and produces
// identical tables (§8 "Round-trip / idempotence"): the steps below append
// to the tables, so a second call returns at once on the finalized flag
// instead of running them again.
func (g *Graph) Finalize() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.finalized {
		return nil
	}

	roots := g.findRootsLocked()

	g.propagateSuperclassesLocked(roots)
	g.propagateSubclassesLocked(roots)
	g.buildAnnotationIndexLocked()
	g.closeSuperInterfacesLocked()
	g.buildInterfaceIndexLocked()
	g.inheritInterfaceImplementationLocked()

	g.finalized = true
	return nil
}

// findRootsLocked collects every class node with no direct superclass
// (§4.6 step 1).
func (g *Graph) findRootsLocked() []*ClassNode {
	names := make([]string, 0, len(g.classByName))
	for name := range g.classByName {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic traversal seed, independent of map iteration order

	var roots []*ClassNode
	for _, name := range names {
		n := g.classByName[name]
		if n.DirectSuperclass == "" {
			roots = append(roots, n)
		}
	}
	return roots
}

// propagateSuperclassesLocked is the top-down BFS of §4.6 step 2: for every
// node with a direct superclass, all_superclasses = direct_superclass.all_superclasses
// ∪ {direct_superclass}.
func (g *Graph) propagateSuperclassesLocked(roots []*ClassNode) {
	queue := make([]*ClassNode, 0, len(roots))
	queue = append(queue, roots...)

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, childName := range n.DirectSubclasses {
			child, ok := g.classByName[childName]
			if !ok {
				continue
			}
			for a := range n.allSuperclasses {
				child.allSuperclasses[a] = struct{}{}
			}
			child.allSuperclasses[n.Name] = struct{}{}
			queue = append(queue, child)
		}
	}
}

// propagateSubclassesLocked is the postorder DFS of §4.6 step 3: each
// node's all_subclasses is the union of every child's all_subclasses, plus
// the children themselves. It also builds the deterministic preorder
// sequence used for ordered output (subclassesOrdered).
func (g *Graph) propagateSubclassesLocked(roots []*ClassNode) {
	visited := make(map[string]bool, len(g.classByName))
	var visit func(n *ClassNode)
	visit = func(n *ClassNode) {
		if visited[n.Name] {
			return
		}
		visited[n.Name] = true
		for _, childName := range n.DirectSubclasses {
			child, ok := g.classByName[childName]
			if !ok {
				continue
			}
			visit(child)
			n.subclassesOrdered = append(n.subclassesOrdered, child.Name)
			n.subclassesOrdered = append(n.subclassesOrdered, child.subclassesOrdered...)
			n.allSubclasses[child.Name] = struct{}{}
			for s := range child.allSubclasses {
				n.allSubclasses[s] = struct{}{}
			}
		}
	}
	for _, r := range roots {
		visit(r)
	}
}

// buildAnnotationIndexLocked is §4.6 step 4: for every encountered class,
// for each of its annotation FQNs, append the class FQN to
// classes_by_annotation, in first-encounter (classpath) order, de-duplicated
// at insertion.
func (g *Graph) buildAnnotationIndexLocked() {
	seen := make(map[string]map[string]bool)
	for _, fqn := range g.classOrder {
		n, ok := g.classByName[fqn]
		if !ok || !n.Encountered {
			continue
		}
		annos := make([]string, 0, len(n.Annotations))
		for a := range n.Annotations {
			annos = append(annos, a)
		}
		sort.Strings(annos)
		for _, a := range annos {
			if seen[a] == nil {
				seen[a] = make(map[string]bool)
			}
			if seen[a][fqn] {
				continue
			}
			seen[a][fqn] = true
			g.classesByAnnotation[a] = append(g.classesByAnnotation[a], fqn)
		}
	}
}

// closeSuperInterfacesLocked is §4.6 step 5: each interface's
// all_super_interfaces is the union of its direct super-interfaces'
// closures. Guarded against repeat visits (the graph of interfaces is a
// DAG, not necessarily a tree, so a diamond extension must not be walked
// twice).
func (g *Graph) closeSuperInterfacesLocked() {
	inProgress := make(map[string]bool)
	done := make(map[string]bool)

	var closeInterface func(name string)
	closeInterface = func(name string) {
		if done[name] || inProgress[name] {
			return
		}
		inProgress[name] = true
		n, ok := g.interfaceByName[name]
		if ok {
			for _, super := range n.SuperInterfaces {
				closeInterface(super)
				n.allSuperInterfaces[super] = struct{}{}
				if superNode, ok := g.interfaceByName[super]; ok {
					for a := range superNode.allSuperInterfaces {
						n.allSuperInterfaces[a] = struct{}{}
					}
				}
			}
		}
		inProgress[name] = false
		done[name] = true
	}

	for name := range g.interfaceByName {
		closeInterface(name)
	}
}

// interfaceClosure returns {declared} ∪ each declared interface's transitive
// super-interfaces, for a class's direct interface set.
func (g *Graph) interfaceClosure(direct map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(direct))
	for i := range direct {
		out[i] = struct{}{}
		if n, ok := g.interfaceByName[i]; ok {
			for s := range n.allSuperInterfaces {
				out[s] = struct{}{}
			}
		}
	}
	return out
}

// buildInterfaceIndexLocked is §4.6 step 6: for each class, the union of
// its declared interfaces with each of their transitive super-interfaces;
// for each such interface, append the class FQN to classes_by_interface.
func (g *Graph) buildInterfaceIndexLocked() {
	seen := make(map[string]map[string]bool)
	for _, fqn := range g.classOrder {
		n, ok := g.classByName[fqn]
		if !ok || !n.Encountered {
			continue
		}
		closure := g.interfaceClosure(n.DirectInterfaces)
		ifaces := make([]string, 0, len(closure))
		for i := range closure {
			ifaces = append(ifaces, i)
		}
		sort.Strings(ifaces)
		for _, i := range ifaces {
			if seen[i] == nil {
				seen[i] = make(map[string]bool)
			}
			if seen[i][fqn] {
				continue
			}
			seen[i][fqn] = true
			g.classesByInterface[i] = append(g.classesByInterface[i], fqn)
		}
	}
}

// inheritInterfaceImplementationLocked is §4.6 step 7: interface
// implementation is inherited down the class hierarchy. For each interface
// already in classes_by_interface, append the transitive subclasses of
// every class already mapped to it, in each class's deterministic
// subclassesOrdered sequence, skipping anything already present.
func (g *Graph) inheritInterfaceImplementationLocked() {
	for iface, direct := range g.classesByInterface {
		present := make(map[string]bool, len(direct))
		for _, c := range direct {
			present[c] = true
		}
		expanded := append([]string(nil), direct...)
		for _, c := range direct {
			n, ok := g.classByName[c]
			if !ok {
				continue
			}
			for _, sub := range n.subclassesOrdered {
				if present[sub] {
					continue
				}
				present[sub] = true
				expanded = append(expanded, sub)
			}
		}
		g.classesByInterface[iface] = expanded
	}
}
