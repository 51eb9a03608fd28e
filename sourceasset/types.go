// Package sourceasset implements the supplemental source-asset inspection
// the scanner performs on ".java" classpath entries (see SPEC_FULL.md,
// Classpath Walker expansion). It parses Java source text with tree-sitter
// and produces a lightweight structural summary -- package, imports, type
// declarations and their fields/methods -- rather than a full
// compiler-grade AST.
//
// Unlike the classfile package this is never required for hierarchy
// resolution: it is a read-only enrichment gated behind
// ScanSpec.EnableSourceAssetInspection and fed by the scanner's file-match
// hook, which sees every ".java" entry the walker reaches, before the
// Match Dispatcher gets the same body.
package sourceasset

import "reflect"

// Location is a byte-offset span into the original source buffer.
type Location struct {
	Start int
	End   int
}

// LocationNode pairs extracted text (a doc comment, an annotation list, a
// method body) with the span it came from.
type LocationNode struct {
	Text string
	Location
}

// TypeParam is a generic type parameter, e.g. "<T extends Comparable<T>>".
type TypeParam struct {
	Name       string
	Constraint string
}

// Parameter is a method parameter or result.
type Parameter struct {
	Name string
	Type *TypeRef
}

// TypeRef is a resolved reference to a Java type, simplified to what a
// structural summary needs: its declared name, an approximate reflect.Kind
// for primitives, and the import-resolved package path when known.
type TypeRef struct {
	Name          string
	Kind          reflect.Kind
	PackagePath   string
	ComponentType string
	TypeParams    []TypeParam
}

// Field is a class or interface field declaration.
type Field struct {
	Name       string
	Type       *TypeRef
	Comment    string
	Annotation string
	IsExported bool
	IsStatic   bool
	IsConstant bool
	Location   Location
}

// Method is a method or constructor declaration.
type Method struct {
	Name          string
	Comment       *LocationNode
	Annotation    *LocationNode
	Signature     string
	Parameters    []Parameter
	Results       []Parameter
	TypeParams    []TypeParam
	Body          *LocationNode
	IsExported    bool
	IsStatic      bool
	IsConstructor bool
	Location      Location
}

// TypeDecl is one class_declaration / interface_declaration /
// enum_declaration / annotation_type_declaration found in a file.
type TypeDecl struct {
	Name       string
	Kind       reflect.Kind // Struct (class), Interface, Int (enum)
	IsExported bool
	Comment    *LocationNode
	Annotation *LocationNode
	TypeParams []TypeParam
	Extends    []string
	Implements []string
	Fields     []Field
	Methods    []Method
	Location   Location
}

// Constant is a compile-time constant surfaced either from a
// final-static field or from an enum constant list.
type Constant struct {
	Name  string
	Value string
}

// Import is one import declaration; Name is the simple (or static-member,
// or wildcard "Pkg.*") name and Path the dotted package/class path.
type Import struct {
	Name string
	Path string
}

// Asset is the structural summary produced for one .java file matched by a
// match_file_path subscription.
type Asset struct {
	RelativePath string
	Package      string
	Imports      []Import
	Types        []TypeDecl
	Constants    []Constant

	// Hash is a HighwayHash-64 digest of the raw source bytes, letting a
	// caller cheaply tell whether a previously-inspected asset's content
	// actually changed without re-running the structural parse.
	Hash uint64
}
