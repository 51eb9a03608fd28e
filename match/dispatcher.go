package match

import (
	"bytes"
	"fmt"
	"io"

	"github.com/viant/classgraph/classfile"
	"github.com/viant/classgraph/hierarchy"
	"github.com/viant/classgraph/scanspec"
)

// Dispatcher owns a set of registered Subscriptions and is the single
// switch-on-kind dispatch site §9 asks for. The three class-query kinds
// run once, after the hierarchy graph has been finalized; the other two
// kinds are delivered through HandleFile and HandleConstant instead, and
// Dispatcher.Run does nothing for them.
type Dispatcher struct {
	subscriptions []Subscription
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher { return &Dispatcher{} }

// Register adds a subscription. Returns the Dispatcher for chaining,
// mirroring the functional-options-adjacent builder style used elsewhere
// in this codebase (e.g. scanspec.Option).
func (d *Dispatcher) Register(sub Subscription) *Dispatcher {
	d.subscriptions = append(d.subscriptions, sub)
	return d
}

// Subscriptions returns the registered list. BuildSpecOptions derives only
// the ScanSpec's FileMatchSubscriptions from it; SubclassSubscriptions and
// InterfaceFQNs are not filled in from the Dispatcher.
func (d *Dispatcher) Subscriptions() []Subscription { return d.subscriptions }

// BuildSpecOptions translates the registered FilePath subscriptions into
// scanspec.Option values a caller threads into scanspec.NewScanSpec,
// keeping the Path Filter's FileMatchSubscriptions in sync with whatever
// was registered on the Dispatcher.
func (d *Dispatcher) BuildSpecOptions() []scanspec.Option {
	var fileSubs []scanspec.FileMatchSubscription
	for i, sub := range d.subscriptions {
		if sub.Kind == FilePath && sub.Pattern != nil {
			fileSubs = append(fileSubs, scanspec.FileMatchSubscription{Pattern: sub.Pattern, Handle: i})
		}
	}
	if len(fileSubs) == 0 {
		return nil
	}
	return []scanspec.Option{scanspec.WithFileMatchSubscriptions(fileSubs...)}
}

// Run invokes every SubclassesOf / ClassesImplementing / ClassesWithAnnotation
// subscription against a finalized hierarchy.Graph (§4.7: "invoked only
// once the Resolver finishes"). Calling Run before Finalize has completed
// produces undefined results, same as reading the graph directly would.
func (d *Dispatcher) Run(graph *hierarchy.Graph) error {
	for _, sub := range d.subscriptions {
		switch sub.Kind {
		case SubclassesOf:
			if err := d.runSubclassesOf(graph, sub); err != nil {
				return err
			}
		case ClassesImplementing:
			for _, fqn := range graph.ClassesByInterface(sub.TargetFQN) {
				sub.OnClass(fqn)
			}
		case ClassesWithAnnotation:
			for _, fqn := range graph.ClassesByAnnotation(sub.TargetFQN) {
				sub.OnClass(fqn)
			}
		case StaticFinalConstant, FilePath:
			// delivered during the scan itself; nothing to do at Run time.
		}
	}
	return nil
}

func (d *Dispatcher) runSubclassesOf(graph *hierarchy.Graph, sub Subscription) error {
	if _, isInterface := graph.InterfaceByName(sub.TargetFQN); isInterface {
		return &scanspec.ConfigurationError{Reason: fmt.Sprintf(
			"match_subclasses_of(%q) names an interface; subscribe match_classes_implementing instead", sub.TargetFQN)}
	}
	node, ok := graph.ClassByName(sub.TargetFQN)
	if !ok {
		return nil
	}
	for _, fqn := range node.AllSubclassesOrdered() {
		sub.OnClass(fqn)
	}
	return nil
}

// HandleConstant delivers one extracted static-final constant to every
// matching StaticFinalConstant subscription (§4.7
// match_static_final_constant), synchronously rather than queued for Run.
// Its signature fits walk.ConstantMatchFunc. scanner.Scan does not set it
// as the walker's OnConstantMatch: it calls HandleConstant during its
// sequential merge, after every element has been walked and before
// Finalize, and only for the first-occurrence record of each class; it is
// not called while the class file is being parsed.
func (d *Dispatcher) HandleConstant(classFQN string, field classfile.ConstantField) {
	for _, sub := range d.subscriptions {
		if sub.Kind != StaticFinalConstant {
			continue
		}
		if sub.ClassFQN == classFQN && sub.FieldName == field.Name && sub.OnConstant != nil {
			sub.OnConstant(classFQN, field.Name, field.Value)
		}
	}
}

// HandleFile is wired as the walker's walk.FileMatchFunc: invoked
// synchronously during walking for a non-class entry whose relative path
// matched some registered FilePath subscription's pattern (§4.7
// match_file_path). The walker already tests the pattern before calling
// OnFileMatch; this re-tests per subscription so more than one FilePath
// subscription can independently fire for the same entry.
func (d *Dispatcher) HandleFile(absolutePath, relativePath string, body io.Reader) error {
	var buffered []byte
	for _, sub := range d.subscriptions {
		if sub.Kind != FilePath || sub.Pattern == nil || sub.OnFile == nil {
			continue
		}
		if !sub.Pattern.MatchString(relativePath) {
			continue
		}
		if buffered == nil {
			data, err := io.ReadAll(body)
			if err != nil {
				return err
			}
			buffered = data
		}
		sub.OnFile(absolutePath, relativePath, bytes.NewReader(buffered))
	}
	return nil
}
