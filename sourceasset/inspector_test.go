package sourceasset_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/classgraph/sourceasset"
)

const personSource = `package com.example;

/**
 * A simple person record.
 */
@SuppressWarnings("unused")
public class Person implements Comparable<Person> {
    private String name;
    public static final int MAX_AGE = 150;

    public Person(String name, int age) {
        this.name = name;
    }

    public String getName() {
        return name;
    }
}
`

func TestInspectSource_ClassDeclaration(t *testing.T) {
	asset, err := sourceasset.InspectSource("com/example/Person.java", []byte(personSource))
	require.NoError(t, err)

	assert.Equal(t, "com.example", asset.Package)
	assert.NotZero(t, asset.Hash)
	require.Len(t, asset.Types, 1)

	person := asset.Types[0]
	assert.Equal(t, "Person", person.Name)
	assert.Equal(t, reflect.Struct, person.Kind)
	assert.True(t, person.IsExported)
	assert.Contains(t, person.Implements, "Comparable<Person>")
	assert.True(t, strings.Contains(person.Annotation.Text, "SuppressWarnings"))
	assert.Contains(t, person.Comment.Text, "simple person record")

	require.Len(t, person.Fields, 2)
	nameField := person.Fields[0]
	assert.Equal(t, "name", nameField.Name)
	assert.Equal(t, "java.lang", nameField.Type.PackagePath)
	assert.False(t, nameField.IsConstant)

	maxAge := person.Fields[1]
	assert.Equal(t, "MAX_AGE", maxAge.Name)
	assert.True(t, maxAge.IsConstant)

	require.Len(t, person.Methods, 2)
	ctor := person.Methods[0]
	assert.True(t, ctor.IsConstructor)
	assert.Equal(t, "Person", ctor.Name)
	require.Len(t, ctor.Parameters, 2)
	assert.Equal(t, "name", ctor.Parameters[0].Name)

	getter := person.Methods[1]
	assert.Equal(t, "getName", getter.Name)
	assert.True(t, getter.IsExported)

	require.Len(t, asset.Constants, 1)
	assert.Equal(t, "Person.MAX_AGE", asset.Constants[0].Value)
}

const shapeSource = `package com.example.shapes;

import java.util.List;

public interface Shape extends Comparable<Shape> {
    double area();
}
`

func TestInspectSource_InterfaceDeclaration(t *testing.T) {
	asset, err := sourceasset.InspectSource("com/example/shapes/Shape.java", []byte(shapeSource))
	require.NoError(t, err)

	require.Len(t, asset.Imports, 1)
	assert.Equal(t, "List", asset.Imports[0].Name)
	assert.Equal(t, "java.util", asset.Imports[0].Path)

	require.Len(t, asset.Types, 1)
	shape := asset.Types[0]
	assert.Equal(t, reflect.Interface, shape.Kind)
	assert.Contains(t, shape.Extends, "Comparable<Shape>")
	require.Len(t, shape.Methods, 1)
	assert.Equal(t, "area", shape.Methods[0].Name)
}

const colorSource = `package com.example;

public enum Color {
    RED,
    GREEN,
    BLUE
}
`

func TestInspectSource_EnumConstants(t *testing.T) {
	asset, err := sourceasset.InspectSource("com/example/Color.java", []byte(colorSource))
	require.NoError(t, err)

	require.Len(t, asset.Types, 1)
	assert.Equal(t, reflect.Int, asset.Types[0].Kind)

	require.Len(t, asset.Constants, 3)
	assert.Equal(t, "Color.RED", asset.Constants[0].Value)
}
