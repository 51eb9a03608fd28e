package scanner_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/classgraph/classpath"
	"github.com/viant/classgraph/match"
	"github.com/viant/classgraph/scanner"
	"github.com/viant/classgraph/scanspec"
)

const (
	tagUTF8  = 1
	tagClass = 7
)

func toInternal(fqn string) string {
	out := make([]byte, len(fqn))
	for i := 0; i < len(fqn); i++ {
		if fqn[i] == '.' {
			out[i] = '/'
		} else {
			out[i] = fqn[i]
		}
	}
	return string(out)
}

func minimalClassfile(fqn, superFQN string) []byte {
	internal := toInternal(fqn)
	utf8 := func(s string) []byte {
		buf := &bytes.Buffer{}
		buf.WriteByte(tagUTF8)
		binary.Write(buf, binary.BigEndian, uint16(len(s)))
		buf.WriteString(s)
		return buf.Bytes()
	}
	classEntry := func(utf8Idx uint16) []byte {
		buf := &bytes.Buffer{}
		buf.WriteByte(tagClass)
		binary.Write(buf, binary.BigEndian, utf8Idx)
		return buf.Bytes()
	}

	var cp [][]byte
	thisIdx := uint16(0)
	superIdx := uint16(0)

	cp = append(cp, utf8(internal))
	cp = append(cp, classEntry(1))
	thisIdx = 2

	if superFQN != "" {
		cp = append(cp, utf8(toInternal(superFQN)))
		cp = append(cp, classEntry(uint16(len(cp))))
		superIdx = uint16(len(cp))
	}

	out := &bytes.Buffer{}
	binary.Write(out, binary.BigEndian, uint32(0xCAFEBABE))
	binary.Write(out, binary.BigEndian, uint16(0))
	binary.Write(out, binary.BigEndian, uint16(52))
	binary.Write(out, binary.BigEndian, uint16(len(cp)+1))
	for _, e := range cp {
		out.Write(e)
	}
	binary.Write(out, binary.BigEndian, uint16(0x0001))
	binary.Write(out, binary.BigEndian, thisIdx)
	binary.Write(out, binary.BigEndian, superIdx)
	binary.Write(out, binary.BigEndian, uint16(0)) // interfaces_count
	binary.Write(out, binary.BigEndian, uint16(0)) // fields_count
	binary.Write(out, binary.BigEndian, uint16(0)) // methods_count
	binary.Write(out, binary.BigEndian, uint16(0)) // attributes_count
	return out.Bytes()
}

func TestScanner_FullScanBuildsHierarchy(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "Root.class"), minimalClassfile("a.Root", ""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "Child.class"), minimalClassfile("a.Child", "a.Root"), 0o644))

	spec, err := scanspec.NewScanSpec()
	require.NoError(t, err)

	s := scanner.New(afs.New(), spec, nil)
	s.Concurrency = 2

	result, err := s.Scan(context.Background(), []classpath.Element{{Path: root, Kind: classpath.Directory}})
	require.NoError(t, err)

	root2, ok := result.Graph.ClassByName("a.Root")
	require.True(t, ok)
	assert.Contains(t, root2.DirectSubclasses, "a.Child")
}

func TestScanner_ShadowingAcrossElements(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "Y.class"), minimalClassfile("Y", ""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "Y.class"), minimalClassfile("Y", ""), 0o644))

	spec, err := scanspec.NewScanSpec()
	require.NoError(t, err)

	s := scanner.New(afs.New(), spec, nil)
	elements := []classpath.Element{
		{Path: dirA, Kind: classpath.Directory},
		{Path: dirB, Kind: classpath.Directory},
	}
	result, err := s.Scan(context.Background(), elements)
	require.NoError(t, err)

	_, ok := result.Graph.ClassByName("Y")
	require.True(t, ok)
}

func TestScanner_DispatcherRunsAfterFinalize(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.Anno.class"), minimalClassfile("a.Anno", ""), 0o644))

	spec, err := scanspec.NewScanSpec()
	require.NoError(t, err)

	d := match.NewDispatcher()
	var got []string
	d.Register(match.Subscription{
		Kind:      match.ClassesWithAnnotation,
		TargetFQN: "whatever",
		OnClass:   func(fqn string) { got = append(got, fqn) },
	})

	s := scanner.New(afs.New(), spec, d)
	_, err = s.Scan(context.Background(), []classpath.Element{{Path: root, Kind: classpath.Directory}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScanner_SourceAssetInspection(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Root.class"), minimalClassfile("Root", ""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Greeter.java"), []byte(
		"package com.example;\npublic class Greeter {\n    public String greet() { return \"hi\"; }\n}\n"), 0o644))

	spec, err := scanspec.NewScanSpec(scanspec.WithSourceAssetInspection(true))
	require.NoError(t, err)

	s := scanner.New(afs.New(), spec, nil)
	result, err := s.Scan(context.Background(), []classpath.Element{{Path: root, Kind: classpath.Directory}})
	require.NoError(t, err)

	require.Len(t, result.SourceAssets, 1)
	assert.Equal(t, "com.example", result.SourceAssets[0].Package)
	require.Len(t, result.SourceAssets[0].Types, 1)
	assert.Equal(t, "Greeter", result.SourceAssets[0].Types[0].Name)
}

func TestScanner_EmptyClasspath(t *testing.T) {
	spec, err := scanspec.NewScanSpec()
	require.NoError(t, err)
	s := scanner.New(afs.New(), spec, nil)
	result, err := s.Scan(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, result.LastModifiedMillis)
}
