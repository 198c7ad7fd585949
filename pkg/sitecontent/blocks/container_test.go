package blocks_test

import (
	"errors"
	"testing"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/blocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeContainerType(t *testing.T) {
	base := baseSchema(t)

	t.Run("valid options", func(t *testing.T) {
		def, err := blocks.MakeContainerType("columns", "Spalten", base, columnOptions)
		require.NoError(t, err)
		assert.Equal(t, blocks.KindContainer, def.Kind())
		assert.Equal(t, blocks.TypeColumns, def.Type())
		assert.Same(t, base, def.Inner())
		assert.Equal(t, columnOptions, def.ColumnOptions())
	})

	tests := []struct {
		name  string
		inner *blocks.Schema
		opts  blocks.ColumnOptions
	}{
		{name: "nil inner schema", inner: nil, opts: columnOptions},
		{name: "no column counts", inner: base, opts: blocks.ColumnOptions{DefaultColumnCount: 2}},
		{name: "default not allowed", inner: base, opts: blocks.ColumnOptions{AllowedColumnCounts: []int{2, 3}, DefaultColumnCount: 4}},
		{name: "non positive count", inner: base, opts: blocks.ColumnOptions{AllowedColumnCounts: []int{0, 2}, DefaultColumnCount: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := blocks.MakeContainerType("columns", "Spalten", tt.inner, tt.opts)
			assert.True(t, errors.Is(err, blocks.ErrInvalidDefinition))
		})
	}
}

func TestContainerTypesAreIndependent(t *testing.T) {
	base := baseSchema(t)
	headingsOnly := blocks.MustSchema(blocks.NewHeading("h1", "Kopfzeile 1"))

	wide, err := blocks.MakeContainerType("columns", "Spalten", base, columnOptions)
	require.NoError(t, err)
	narrow, err := blocks.MakeContainerType("columns", "Spalten", headingsOnly,
		blocks.ColumnOptions{AllowedColumnCounts: []int{2}, DefaultColumnCount: 2})
	require.NoError(t, err)

	wideSchema := blocks.MustSchema(wide)
	narrowSchema := blocks.MustSchema(narrow)

	doc := blocks.Document{{
		Tag: "columns",
		Value: blocks.Columns{ColumnCount: 3, Content: blocks.Document{
			{Tag: "paragraph", Value: blocks.RichText("<p>x</p>")},
		}},
	}}

	assert.NoError(t, wideSchema.Validate(doc))

	err = narrowSchema.Validate(doc)
	var derr *blocks.DocumentError
	require.ErrorAs(t, err, &derr)
	require.Len(t, derr.Shape, 1)
	assert.Equal(t, "/0/value/content/0", derr.Shape[0].Path)
	assert.Contains(t, derr.Fields["/0"], "columns")
}

func TestRecursiveContainerNesting(t *testing.T) {
	s := pageSchema(t)

	colsDef, ok := s.Lookup("columns")
	require.True(t, ok)
	inner := colsDef.Inner()
	require.NotNil(t, inner)
	innerCols, ok := inner.Lookup("columns")
	require.True(t, ok, "columns must be usable inside columns")
	assert.Same(t, inner, innerCols.Inner())

	// the base schema is not changed by building the recursive container
	_, ok = baseSchema(t).Lookup("columns")
	assert.False(t, ok)

	deep := blocks.Document{{Tag: "h1", Value: blocks.Text("deep")}}
	for i := 0; i < 5; i++ {
		deep = blocks.Document{{Tag: "columns", Value: blocks.Columns{ColumnCount: 2, Content: deep}}}
	}
	assert.NoError(t, s.ValidateShape(deep))
	assert.NoError(t, s.Validate(deep))
}
