// Package match implements the Match Dispatcher (§4.7): registered
// subscriptions over the finished hierarchy graph, plus the two kinds that
// are delivered synchronously during the scan itself (static-final
// constants during parsing, file paths during walking).
//
// Subscriptions are modeled as a closed sum type (§9 "Control flow": tagged
// variants rather than anonymous closures), with exactly one dispatch site
// per kind in Dispatcher.Run / Dispatcher.HandleConstant / Dispatcher.HandleFile.
package match

import (
	"io"
	"regexp"

	"github.com/viant/classgraph/classfile"
)

// Kind tags a Subscription's variant.
type Kind int

const (
	// SubclassesOf matches match_subclasses_of(superclass_fqn) — §4.7.
	SubclassesOf Kind = iota
	// ClassesImplementing matches match_classes_implementing(interface_fqn).
	ClassesImplementing
	// ClassesWithAnnotation matches match_classes_with_annotation(annotation_fqn).
	ClassesWithAnnotation
	// StaticFinalConstant matches match_static_final_constant(class_fqn, field_name).
	StaticFinalConstant
	// FilePath matches match_file_path(regex).
	FilePath
)

// ClassMatchFunc receives class FQNs matched by a subclass/interface/
// annotation subscription, once the Resolver has finished (§4.7: "invoked
// only once the Resolver finishes, except for the two ... delivered during
// traversal").
type ClassMatchFunc func(classFQN string)

// ConstantMatchFunc receives (class_fqn, field_name, value) for a
// match_static_final_constant subscription, delivered during parsing.
type ConstantMatchFunc func(classFQN, fieldName string, value classfile.Value)

// FileMatchFunc receives (absolute_path, relative_path, byte_stream) for a
// match_file_path subscription, delivered during walking; the stream is
// valid only for the callback's duration (§6 "Match callbacks").
type FileMatchFunc func(absolutePath, relativePath string, body io.Reader)

// Subscription is the closed sum type over every subscription kind a
// caller can register. Exactly the fields relevant to Kind are meaningful.
type Subscription struct {
	Kind Kind

	// SubclassesOf / ClassesImplementing / ClassesWithAnnotation
	TargetFQN string
	OnClass   ClassMatchFunc

	// StaticFinalConstant
	ClassFQN   string
	FieldName  string
	OnConstant ConstantMatchFunc

	// FilePath
	Pattern  *regexp.Regexp
	OnFile   FileMatchFunc
}
