// Package repository locates the Go module root a given path belongs to,
// the upward marker-file search GoModuleClasspathSource needs to find the
// go.mod whose require block seeds the module-cache classpath elements.
package repository

import (
	"os"
	"path/filepath"
)

// Detector searches upward from a path for the nearest go.mod.
type Detector struct{}

// New creates a project detector.
func New() *Detector {
	return &Detector{}
}

// DetectProject walks upward from filePath looking for a go.mod and returns
// the directory containing it as the project root. If none is found,
// RootPath falls back to filePath's own directory (or filePath itself, if
// it is already a directory).
func (d *Detector) DetectProject(filePath string) (*Project, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}

	startDir := absPath
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	if root := d.findProjectRoot(startDir); root != "" {
		return &Project{RootPath: root}, nil
	}
	return &Project{RootPath: startDir}, nil
}

// findProjectRoot searches up the directory tree for a go.mod.
func (d *Detector) findProjectRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
