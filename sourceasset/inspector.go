package sourceasset

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/highwayhash"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// hashKey is a fixed HighwayHash-64 key; Asset.Hash is a change-detection
// fingerprint, not a security digest, so a constant key is fine.
var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

func contentHash(src []byte) uint64 {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0
	}
	_, _ = h.Write(src)
	return h.Sum64()
}

// Inspect parses a single .java source body and returns its structural
// summary. relativePath is recorded on the Asset verbatim (the walker's
// classpath-relative path, not a filesystem path) so callers can correlate
// the asset back to the match_file_path hit that produced it.
func Inspect(relativePath string, body io.Reader) (*Asset, error) {
	src, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("sourceasset: reading %s: %w", relativePath, err)
	}
	return InspectSource(relativePath, src)
}

// InspectSource parses Java source already held in memory.
func InspectSource(relativePath string, src []byte) (*Asset, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("sourceasset: parsing %s: %w", relativePath, err)
	}

	asset, err := processJavaFile(tree.RootNode(), src, relativePath)
	if err != nil {
		return nil, err
	}
	asset.Hash = contentHash(src)
	return asset, nil
}

func processJavaFile(root *sitter.Node, src []byte, relativePath string) (*Asset, error) {
	asset := &Asset{RelativePath: relativePath}

	var packageNode *sitter.Node
	var importNodes, typeNodes []*sitter.Node
	for i := uint32(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(int(i))
		switch child.Type() {
		case "package_declaration":
			packageNode = child
		case "import_declaration":
			importNodes = append(importNodes, child)
		case "class_declaration", "interface_declaration", "enum_declaration", "annotation_type_declaration":
			typeNodes = append(typeNodes, child)
		}
	}

	if packageNode != nil {
		asset.Package = parsePackageDeclaration(packageNode, src)
	}

	importMap := make(map[string]string)
	for _, n := range importNodes {
		name, path := parseImportDeclaration(n, src)
		if name == "" {
			continue
		}
		importMap[name] = path
		asset.Imports = append(asset.Imports, Import{Name: name, Path: path})
	}

	for _, n := range typeNodes {
		switch n.Type() {
		case "class_declaration":
			if decl := parseClassDeclaration(n, src, importMap); decl != nil {
				asset.Types = append(asset.Types, *decl)
			}
		case "interface_declaration":
			if decl := parseInterfaceDeclaration(n, src, importMap); decl != nil {
				asset.Types = append(asset.Types, *decl)
			}
		case "enum_declaration":
			decl, constants := parseEnumDeclaration(n, src)
			if decl != nil {
				asset.Types = append(asset.Types, *decl)
				asset.Constants = append(asset.Constants, constants...)
			}
		case "annotation_type_declaration":
			if decl := parseAnnotationTypeDeclaration(n, src); decl != nil {
				asset.Types = append(asset.Types, *decl)
			}
		}
	}

	for _, t := range asset.Types {
		for _, f := range t.Fields {
			if f.IsConstant {
				asset.Constants = append(asset.Constants, Constant{Name: f.Name, Value: t.Name + "." + f.Name})
			}
		}
	}

	return asset, nil
}
