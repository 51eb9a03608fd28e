package sourceasset

import (
	"reflect"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// javaPrimitives maps Java primitive type names to the Go reflect.Kind a
// structural summary reports for them (no attempt to also name a Go type:
// this is a Java codebase, not a translation target).
var javaPrimitives = map[string]reflect.Kind{
	"boolean": reflect.Bool,
	"char":    reflect.Int32,
	"byte":    reflect.Uint8,
	"short":   reflect.Int16,
	"int":     reflect.Int32,
	"long":    reflect.Int64,
	"float":   reflect.Float32,
	"double":  reflect.Float64,
}

func parsePackageDeclaration(node *sitter.Node, source []byte) string {
	if node.Type() != "package_declaration" {
		return ""
	}
	nameNode := node.NamedChild(0)
	if nameNode == nil {
		return ""
	}
	return nameNode.Content(source)
}

func parseImportDeclaration(node *sitter.Node, source []byte) (name, path string) {
	if node.Type() != "import_declaration" {
		return "", ""
	}
	importNode := node.NamedChild(0)
	if importNode == nil {
		return "", ""
	}

	if importNode.Type() == "static_import" {
		scopeNode := importNode.ChildByFieldName("scope")
		if scopeNode == nil {
			return "", ""
		}
		full := scopeNode.Content(source)
		if idx := strings.LastIndex(full, "."); idx != -1 {
			return full[idx+1:], full[:idx]
		}
		return "", ""
	}

	scopeNode := importNode.ChildByFieldName("scope")
	nameNode := importNode.ChildByFieldName("name")
	if scopeNode != nil && nameNode != nil {
		return nameNode.Content(source), scopeNode.Content(source)
	}
	if scopeNode != nil {
		full := scopeNode.Content(source)
		if idx := strings.LastIndex(full, "."); idx != -1 {
			return full[idx+1:] + ".*", full[:idx]
		}
	}
	return "", ""
}

func extractSimpleTypeName(qualified string) string {
	if idx := strings.LastIndex(qualified, "."); idx != -1 {
		return qualified[idx+1:]
	}
	return qualified
}

func isNodePublic(node *sitter.Node) bool {
	if node.NamedChildCount() == 0 || node.NamedChild(0).Type() != "modifiers" {
		return false
	}
	modifiers := node.NamedChild(0)
	for i := uint32(0); i < modifiers.NamedChildCount(); i++ {
		if modifiers.NamedChild(int(i)).Type() == "public" {
			return true
		}
	}
	return false
}

func hasModifier(node *sitter.Node, kind string) bool {
	if node.NamedChildCount() == 0 || node.NamedChild(0).Type() != "modifiers" {
		return false
	}
	modifiers := node.NamedChild(0)
	for i := uint32(0); i < modifiers.NamedChildCount(); i++ {
		if modifiers.NamedChild(int(i)).Type() == kind {
			return true
		}
	}
	return false
}

func loc(node *sitter.Node) Location {
	return Location{Start: int(node.StartByte()), End: int(node.EndByte())}
}

// extractDocumentation gathers leading comments (split into javadoc prose vs
// "@Annotation" lines) and sibling annotation modifiers preceding node.
func extractDocumentation(node *sitter.Node, source []byte) (comment, annotation *LocationNode) {
	var comments, annotations []string
	var commentLoc, annotationLoc Location

	cursor := sitter.NewTreeCursor(node)
	if cursor.GoToFirstChild() {
		for {
			current := cursor.CurrentNode()
			if current.Type() == "comment" {
				text := cleanCommentMarkers(strings.TrimSpace(current.Content(source)))
				start, end := int(current.StartByte()), int(current.EndByte())
				if strings.HasPrefix(text, "@") {
					annotations = append(annotations, text)
					annotationLoc = widen(annotationLoc, start, end)
				} else if text != "" {
					comments = append(comments, text)
					commentLoc = widen(commentLoc, start, end)
				}
			}
			if !cursor.GoToNextSibling() {
				break
			}
		}
	}

	if node.NamedChildCount() > 0 && node.NamedChild(0).Type() == "modifiers" {
		modifiers := node.NamedChild(0)
		for i := uint32(0); i < modifiers.NamedChildCount(); i++ {
			m := modifiers.NamedChild(int(i))
			if m.Type() == "marker_annotation" || m.Type() == "annotation" {
				annotations = append(annotations, m.Content(source))
				annotationLoc = widen(annotationLoc, int(m.StartByte()), int(m.EndByte()))
			}
		}
	}

	return &LocationNode{Text: strings.Join(comments, "\n"), Location: commentLoc},
		&LocationNode{Text: strings.Join(annotations, "\n"), Location: annotationLoc}
}

func widen(l Location, start, end int) Location {
	if l.Start == 0 || start < l.Start {
		l.Start = start
	}
	if end > l.End {
		l.End = end
	}
	return l
}

func cleanCommentMarkers(comment string) string {
	if strings.HasPrefix(comment, "/*") && strings.HasSuffix(comment, "*/") {
		comment = comment[2 : len(comment)-2]
	}
	if strings.HasPrefix(comment, "//") {
		comment = comment[2:]
	}
	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		lines[i] = strings.TrimSpace(strings.TrimPrefix(line, "*"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractTypeParameters(node *sitter.Node, source []byte) []TypeParam {
	var typeParamsNode *sitter.Node
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(int(i)); child.Type() == "type_parameters" {
			typeParamsNode = child
			break
		}
	}
	if typeParamsNode == nil {
		return nil
	}

	var params []TypeParam
	for i := uint32(0); i < typeParamsNode.NamedChildCount(); i++ {
		p := typeParamsNode.NamedChild(int(i))
		if p.Type() != "type_parameter" {
			continue
		}
		var name, constraint string
		if p.NamedChildCount() > 0 {
			name = p.NamedChild(0).Content(source)
		}
		for j := uint32(1); j < p.NamedChildCount(); j++ {
			bound := p.NamedChild(int(j))
			if bound.Type() != "type_bound" {
				continue
			}
			if constraint == "" {
				constraint = bound.Content(source)
			} else {
				constraint += " & " + bound.Content(source)
			}
		}
		if constraint == "" {
			constraint = "any"
		}
		params = append(params, TypeParam{Name: name, Constraint: constraint})
	}
	return params
}

// parseJavaType converts a type node into a TypeRef, resolving the simple
// name against importMap when the import list named it explicitly.
func parseJavaType(node *sitter.Node, source []byte, importMap map[string]string) *TypeRef {
	ref := &TypeRef{Name: node.Content(source)}

	switch node.Type() {
	case "integral_type", "floating_point_type":
		if node.NamedChildCount() > 0 {
			if kind, ok := javaPrimitives[node.NamedChild(0).Type()]; ok {
				ref.Kind = kind
			}
		}
	case "boolean_type":
		ref.Kind = reflect.Bool
	case "void_type":
		ref.Name = "void"
	case "array_type":
		if node.NamedChildCount() > 0 {
			elem := parseJavaType(node.NamedChild(0), source, importMap)
			ref.Name = elem.Name + "[]"
			ref.Kind = reflect.Slice
			ref.ComponentType = elem.Name
			ref.PackagePath = elem.PackagePath
		}
	case "type_identifier":
		name := node.Content(source)
		if name == "String" {
			ref.PackagePath = "java.lang"
		} else if path, ok := importMap[name]; ok {
			ref.PackagePath = path
		}
		ref.Kind = reflect.Ptr
	case "scoped_type_identifier":
		ref.Kind = reflect.Interface
		full := node.Content(source)
		if idx := strings.LastIndex(full, "."); idx != -1 {
			ref.PackagePath = full[:idx]
		}
	case "generic_type":
		if node.NamedChildCount() > 0 {
			base := node.NamedChild(0).Content(source)
			ref.Kind = reflect.Ptr
			if path, ok := importMap[base]; ok {
				ref.PackagePath = path
			}
			ref.Name = base
			if argsNode := node.ChildByFieldName("type_arguments"); argsNode != nil {
				for i := uint32(0); i < argsNode.NamedChildCount(); i++ {
					arg := parseJavaType(argsNode.NamedChild(int(i)), source, importMap)
					ref.TypeParams = append(ref.TypeParams, TypeParam{Name: arg.Name, Constraint: "any"})
				}
			}
		}
	}
	return ref
}

func parseFieldDeclaration(node *sitter.Node, source []byte, importMap map[string]string) *Field {
	if node.Type() != "field_declaration" {
		return nil
	}
	typeNode := node.ChildByFieldName("type")
	declaratorNode := node.ChildByFieldName("declarator")
	if typeNode == nil || declaratorNode == nil {
		return nil
	}
	nameNode := declaratorNode.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	comment, annotation := extractDocumentation(node, source)
	isStatic := hasModifier(node, "static")
	isFinal := hasModifier(node, "final")

	return &Field{
		Name:       nameNode.Content(source),
		Type:       parseJavaType(typeNode, source, importMap),
		Comment:    comment.Text,
		Annotation: annotation.Text,
		IsExported: isNodePublic(node),
		IsStatic:   isStatic,
		IsConstant: isStatic && isFinal,
		Location:   loc(node),
	}
}

func formalParameters(node *sitter.Node, source []byte, importMap map[string]string) []Parameter {
	parametersNode := node.ChildByFieldName("parameters")
	if parametersNode == nil {
		return nil
	}
	var params []Parameter
	for i := uint32(0); i < parametersNode.NamedChildCount(); i++ {
		p := parametersNode.NamedChild(int(i))
		switch p.Type() {
		case "formal_parameter":
			typeNode := p.ChildByFieldName("type")
			nameNode := p.ChildByFieldName("name")
			if typeNode != nil && nameNode != nil {
				params = append(params, Parameter{
					Name: nameNode.Content(source),
					Type: parseJavaType(typeNode, source, importMap),
				})
			}
		case "spread_parameter":
			if p.NamedChildCount() >= 2 {
				typeNode := p.NamedChild(0)
				declNode := p.NamedChild(1)
				nameNode := declNode.ChildByFieldName("name")
				if nameNode != nil {
					t := parseJavaType(typeNode, source, importMap)
					t.Name += "..."
					t.Kind = reflect.Slice
					params = append(params, Parameter{Name: nameNode.Content(source), Type: t})
				}
			}
		}
	}
	return params
}

func methodBody(node *sitter.Node, source []byte) *LocationNode {
	bodyNode := node.ChildByFieldName("body")
	if bodyNode == nil {
		return nil
	}
	return &LocationNode{Text: bodyNode.Content(source), Location: loc(bodyNode)}
}

func parseMethodDeclaration(node *sitter.Node, source []byte, importMap map[string]string) *Method {
	if node.Type() != "method_declaration" {
		return nil
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	comment, annotation := extractDocumentation(node, source)

	method := &Method{
		Name:       nameNode.Content(source),
		Comment:    comment,
		Annotation: annotation,
		IsExported: isNodePublic(node),
		IsStatic:   hasModifier(node, "static"),
		Parameters: formalParameters(node, source, importMap),
		TypeParams: extractTypeParameters(node, source),
		Body:       methodBody(node, source),
		Location:   loc(node),
	}
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		method.Results = []Parameter{{Type: parseJavaType(typeNode, source, importMap)}}
	}
	method.Signature = formatSignature(method.Name, method)
	return method
}

func parseConstructorDeclaration(node *sitter.Node, source []byte, className string, importMap map[string]string) *Method {
	if node.Type() != "constructor_declaration" {
		return nil
	}
	comment, annotation := extractDocumentation(node, source)

	method := &Method{
		Name:          className,
		Comment:       comment,
		Annotation:    annotation,
		IsExported:    isNodePublic(node),
		Parameters:    formalParameters(node, source, importMap),
		TypeParams:    extractTypeParameters(node, source),
		Body:          methodBody(node, source),
		IsConstructor: true,
		Location:      loc(node),
		Results:       []Parameter{{Type: &TypeRef{Name: className}}},
	}
	method.Signature = formatSignature(className, method)
	return method
}

func formatSignature(name string, m *Method) string {
	var b strings.Builder
	if len(m.Results) == 1 && m.Results[0].Type != nil && !m.IsConstructor {
		b.WriteString(m.Results[0].Type.Name)
		b.WriteString(" ")
	}
	b.WriteString(name)
	if len(m.TypeParams) > 0 {
		b.WriteString("<")
		for i, tp := range m.TypeParams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(tp.Name)
			if tp.Constraint != "any" {
				b.WriteString(" extends ")
				b.WriteString(tp.Constraint)
			}
		}
		b.WriteString(">")
	}
	b.WriteString("(")
	for i, p := range m.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Type != nil {
			b.WriteString(p.Type.Name)
			b.WriteString(" ")
		}
		b.WriteString(p.Name)
	}
	b.WriteString(")")
	return b.String()
}

func qualify(name string, importMap map[string]string) string {
	if path, ok := importMap[extractSimpleTypeName(name)]; ok {
		return path + "." + extractSimpleTypeName(name)
	}
	return name
}

func parseClassDeclaration(node *sitter.Node, source []byte, importMap map[string]string) *TypeDecl {
	if node.Type() != "class_declaration" {
		return nil
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	className := nameNode.Content(source)
	comment, annotation := extractDocumentation(node, source)

	decl := &TypeDecl{
		Name:       className,
		Kind:       reflect.Struct,
		IsExported: isNodePublic(node),
		Comment:    comment,
		Annotation: annotation,
		TypeParams: extractTypeParameters(node, source),
		Location:   loc(node),
	}

	if superNode := node.ChildByFieldName("superclass"); superNode != nil {
		decl.Extends = append(decl.Extends, qualify(superNode.Content(source), importMap))
	}
	if ifaceNode := node.ChildByFieldName("interfaces"); ifaceNode != nil {
		for i := uint32(0); i < ifaceNode.NamedChildCount(); i++ {
			decl.Implements = append(decl.Implements, qualify(ifaceNode.NamedChild(int(i)).Content(source), importMap))
		}
	}

	if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
		for i := uint32(0); i < bodyNode.NamedChildCount(); i++ {
			child := bodyNode.NamedChild(int(i))
			switch child.Type() {
			case "field_declaration":
				if f := parseFieldDeclaration(child, source, importMap); f != nil {
					decl.Fields = append(decl.Fields, *f)
				}
			case "method_declaration":
				if m := parseMethodDeclaration(child, source, importMap); m != nil {
					decl.Methods = append(decl.Methods, *m)
				}
			case "constructor_declaration":
				if m := parseConstructorDeclaration(child, source, className, importMap); m != nil {
					decl.Methods = append(decl.Methods, *m)
				}
			}
		}
	}
	return decl
}

func parseInterfaceDeclaration(node *sitter.Node, source []byte, importMap map[string]string) *TypeDecl {
	if node.Type() != "interface_declaration" {
		return nil
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	comment, annotation := extractDocumentation(node, source)

	decl := &TypeDecl{
		Name:       nameNode.Content(source),
		Kind:       reflect.Interface,
		IsExported: isNodePublic(node),
		Comment:    comment,
		Annotation: annotation,
		TypeParams: extractTypeParameters(node, source),
		Location:   loc(node),
	}

	if extendsNode := node.ChildByFieldName("interfaces"); extendsNode != nil {
		for i := uint32(0); i < extendsNode.NamedChildCount(); i++ {
			decl.Extends = append(decl.Extends, qualify(extendsNode.NamedChild(int(i)).Content(source), importMap))
		}
	}
	if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
		for i := uint32(0); i < bodyNode.NamedChildCount(); i++ {
			child := bodyNode.NamedChild(int(i))
			if child.Type() == "method_declaration" {
				if m := parseMethodDeclaration(child, source, importMap); m != nil {
					decl.Methods = append(decl.Methods, *m)
				}
			}
		}
	}
	return decl
}

func parseEnumDeclaration(node *sitter.Node, source []byte) (*TypeDecl, []Constant) {
	if node.Type() != "enum_declaration" {
		return nil, nil
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil, nil
	}
	enumName := nameNode.Content(source)
	comment, annotation := extractDocumentation(node, source)

	decl := &TypeDecl{
		Name:       enumName,
		Kind:       reflect.Int,
		IsExported: isNodePublic(node),
		Comment:    comment,
		Annotation: annotation,
		Location:   loc(node),
	}

	var constants []Constant
	if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
		for i := uint32(0); i < bodyNode.NamedChildCount(); i++ {
			child := bodyNode.NamedChild(int(i))
			if child.Type() != "enum_constant" {
				continue
			}
			if cn := child.ChildByFieldName("name"); cn != nil {
				name := cn.Content(source)
				constants = append(constants, Constant{Name: name, Value: enumName + "." + name})
			}
		}
	}
	return decl, constants
}

func parseAnnotationTypeDeclaration(node *sitter.Node, source []byte) *TypeDecl {
	if node.Type() != "annotation_type_declaration" {
		return nil
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	comment, annotation := extractDocumentation(node, source)
	return &TypeDecl{
		Name:       nameNode.Content(source),
		Kind:       reflect.Interface,
		IsExported: isNodePublic(node),
		Comment:    comment,
		Annotation: annotation,
		Location:   loc(node),
	}
}
