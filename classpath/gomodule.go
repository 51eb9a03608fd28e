package classpath

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/viant/classgraph/inspector/repository"
)

// GoModuleClasspathSource locates the nearest go.mod above RootPath, parses
// its require block, and turns each required module's directory inside
// GOMODCACHE into a classpath Directory element — the shape of a runtime
// classloader pulling dependency jars out of a local repository cache
// (Maven's .m2, Gradle's module cache), without being one itself; actual
// JVM class-loader adapters stay out of scope (§1).
//
// Every required module yields an element whether or not its directory is
// present in the cache; Elements does no Stat of its own and leaves it to
// MergeSources to drop the ones that do not exist. When neither GOMODCACHE
// nor GOPATH is set, Elements returns no elements at all.
type GoModuleClasspathSource struct {
	// RootPath is the directory to start searching upward from for a go.mod.
	RootPath string
}

// NewGoModuleClasspathSource creates a Source rooted at rootPath.
func NewGoModuleClasspathSource(rootPath string) *GoModuleClasspathSource {
	return &GoModuleClasspathSource{RootPath: rootPath}
}

// Elements implements Source.
func (s *GoModuleClasspathSource) Elements(ctx context.Context) ([]Element, error) {
	goModPath, err := findGoMod(s.RootPath)
	if err != nil {
		return nil, err
	}
	if goModPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(goModPath)
	if err != nil {
		return nil, fmt.Errorf("classpath: reading %s: %w", goModPath, err)
	}
	mod, err := modfile.Parse(goModPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("classpath: parsing %s: %w", goModPath, err)
	}

	cache := moduleCacheDir()
	if cache == "" {
		return nil, nil
	}

	var elements []Element
	for _, req := range mod.Require {
		dir := filepath.Join(cache, escapedModulePath(req.Mod.Path)+"@"+req.Mod.Version)
		elements = append(elements, Element{Path: dir, Kind: Directory})
	}
	return elements, nil
}

// findGoMod locates the project root above dir using the upward go.mod
// search of the repository project detector, then checks for a go.mod
// there. Reusing the
// detector (rather than a narrower bespoke upward-Stat loop) means a
// go.mod found this way is always the same one a caller's own project-root
// detection would report.
func findGoMod(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("classpath: resolving %s: %w", dir, err)
	}

	detector := repository.New()
	project, err := detector.DetectProject(abs)
	if err != nil {
		return "", fmt.Errorf("classpath: detecting project root above %s: %w", abs, err)
	}

	candidate := filepath.Join(project.RootPath, "go.mod")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", nil
}

func moduleCacheDir() string {
	if v := os.Getenv("GOMODCACHE"); v != "" {
		return v
	}
	if v := os.Getenv("GOPATH"); v != "" {
		return filepath.Join(v, "pkg", "mod")
	}
	return ""
}

// escapedModulePath applies Go's module-cache escaping: every uppercase
// letter in the path is replaced with "!" followed by its lowercase form,
// matching how the go command lays out GOMODCACHE directories.
func escapedModulePath(path string) string {
	out := make([]byte, 0, len(path)+4)
	for _, r := range path {
		if r >= 'A' && r <= 'Z' {
			out = append(out, '!', byte(r-'A'+'a'))
			continue
		}
		out = append(out, string(r)...)
	}
	return string(out)
}
