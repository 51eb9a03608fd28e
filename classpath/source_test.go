package classpath_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/classgraph/classpath"
)

func TestMergeSources_DedupAndOrder(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	first := classpath.StaticSource{
		{Path: dir1, Kind: classpath.Directory},
		{Path: dir2, Kind: classpath.Directory},
	}
	second := classpath.StaticSource{
		{Path: dir1, Kind: classpath.Directory}, // duplicate, first occurrence wins
	}

	merged, err := classpath.MergeSources(context.Background(), first, second)
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, dir1, merged[0].Path)
	assert.Equal(t, dir2, merged[1].Path)
}

func TestMergeSources_DropsNonExistent(t *testing.T) {
	dir1 := t.TempDir()
	src := classpath.StaticSource{
		{Path: dir1, Kind: classpath.Directory},
		{Path: "/no/such/path/ever", Kind: classpath.Directory},
	}

	merged, err := classpath.MergeSources(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, dir1, merged[0].Path)
}

func TestMergeSources_PropagatesSourceError(t *testing.T) {
	_, err := classpath.MergeSources(context.Background(), erroringSource{})
	assert.Error(t, err)
}

type erroringSource struct{}

func (erroringSource) Elements(ctx context.Context) ([]classpath.Element, error) {
	return nil, assertError
}

var assertError = errStub("boom")

type errStub string

func (e errStub) Error() string { return string(e) }

func TestKind_String(t *testing.T) {
	assert.Equal(t, "directory", classpath.Directory.String())
	assert.Equal(t, "archive", classpath.Archive.String())
	assert.Equal(t, "file", classpath.PlainFile.String())
}
