package classpath_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/classgraph/classpath"
)

func TestGoModuleClasspathSource_NoGoMod(t *testing.T) {
	dir := t.TempDir()
	src := classpath.NewGoModuleClasspathSource(dir)
	elements, err := src.Elements(context.Background())
	require.NoError(t, err)
	require.Empty(t, elements)
}

func TestGoModuleClasspathSource_ParsesRequireBlock(t *testing.T) {
	dir := t.TempDir()
	goMod := "module example.com/demo\n\ngo 1.23\n\nrequire github.com/stretchr/testify v1.10.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(goMod), 0o644))

	cache := t.TempDir()
	t.Setenv("GOMODCACHE", cache)

	src := classpath.NewGoModuleClasspathSource(dir)
	elements, err := src.Elements(context.Background())
	require.NoError(t, err)
	require.Len(t, elements, 1)
	require.Equal(t, filepath.Join(cache, "github.com/stretchr/testify@v1.10.0"), elements[0].Path)
	require.Equal(t, classpath.Directory, elements[0].Kind)
}

func TestGoModuleClasspathSource_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	goMod := "module example.com/demo\n\ngo 1.23\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte(goMod), 0o644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	src := classpath.NewGoModuleClasspathSource(nested)
	elements, err := src.Elements(context.Background())
	require.NoError(t, err)
	require.Empty(t, elements) // no requires, but go.mod was found without error
}
