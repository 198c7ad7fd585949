package blocks_test

import (
	"testing"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/blocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columnOptions = blocks.ColumnOptions{
	AllowedColumnCounts: []int{2, 3, 4},
	DefaultColumnCount:  2,
}

func baseSchema(t *testing.T) *blocks.Schema {
	t.Helper()
	s, err := blocks.NewSchema(
		blocks.NewHeading("h1", "Kopfzeile 1"),
		blocks.NewHeading("h2", "Kopfzeile 2"),
		blocks.NewHeading("h3", "Kopfzeile 3"),
		blocks.NewRichText("paragraph", "Absatz"),
		blocks.NewImage("image", "Bild"),
		blocks.NewImageWithCaption("image_with_caption", "Bild mit Bildunterschrift"),
		blocks.NewLink("link", "Link"),
	)
	require.NoError(t, err)
	return s
}

// pageSchema is the base schema plus a recursive columns container.
func pageSchema(t *testing.T) *blocks.Schema {
	t.Helper()
	base := baseSchema(t)
	cols, err := blocks.MakeRecursiveContainerType("columns", "Spalten", base, columnOptions)
	require.NoError(t, err)
	s, err := base.Extend(cols)
	require.NoError(t, err)
	return s
}

func TestNewSchema(t *testing.T) {
	t.Run("keeps declaration order", func(t *testing.T) {
		s := baseSchema(t)
		assert.Equal(t, []string{"h1", "h2", "h3", "paragraph", "image", "image_with_caption", "link"}, s.Tags())
		assert.Equal(t, 7, s.Len())
	})

	t.Run("rejects duplicate tags", func(t *testing.T) {
		_, err := blocks.NewSchema(
			blocks.NewHeading("h1", "a"),
			blocks.NewRichText("h1", "b"),
		)
		assert.ErrorIs(t, err, blocks.ErrDuplicateTag)
	})

	t.Run("rejects empty tag", func(t *testing.T) {
		_, err := blocks.NewSchema(blocks.NewHeading("", "a"))
		assert.ErrorIs(t, err, blocks.ErrInvalidDefinition)
	})

	t.Run("rejects zero definition", func(t *testing.T) {
		_, err := blocks.NewSchema(blocks.BlockDefinition{})
		assert.ErrorIs(t, err, blocks.ErrInvalidDefinition)
	})

	t.Run("MustSchema panics on error", func(t *testing.T) {
		assert.Panics(t, func() {
			blocks.MustSchema(blocks.NewHeading("h1", "a"), blocks.NewHeading("h1", "b"))
		})
	})
}

func TestSchemaLookup(t *testing.T) {
	s := baseSchema(t)

	def, ok := s.Lookup("h2")
	require.True(t, ok)
	assert.Equal(t, "h2", def.Tag())
	assert.Equal(t, "Kopfzeile 2", def.Label())
	assert.Equal(t, blocks.TypeText, def.Type())
	assert.Equal(t, blocks.KindLeaf, def.Kind())
	assert.Nil(t, def.Inner())

	_, ok = s.Lookup("video")
	assert.False(t, ok)
}

func TestSchemaExtendDoesNotMutateBase(t *testing.T) {
	base := baseSchema(t)
	choices := []string{"Vortrag", "Ausflug"}

	derived, err := base.Extend(blocks.NewEventList("event_list", "Veranstaltungen", choices))
	require.NoError(t, err)

	assert.Equal(t, 7, base.Len())
	assert.Equal(t, 8, derived.Len())
	_, ok := base.Lookup("event_list")
	assert.False(t, ok)
	_, ok = derived.Lookup("event_list")
	assert.True(t, ok)

	// extending the derived schema again must not leak into either ancestor
	again, err := derived.Extend(blocks.NewRichText("note", "Notiz"))
	require.NoError(t, err)
	assert.Equal(t, 9, again.Len())
	assert.Equal(t, 8, derived.Len())
	assert.Equal(t, 7, base.Len())

	// definitions hand out copies
	defs := derived.Definitions()
	defs[0] = blocks.NewRichText("changed", "x")
	first, _ := derived.Lookup("h1")
	assert.Equal(t, "h1", first.Tag())

	// choices are copied on construction
	choices[0] = "Changed"
	def, _ := derived.Lookup("event_list")
	assert.Equal(t, []string{"Vortrag", "Ausflug"}, def.Choices())
}

func TestSchemaExtendRejectsDuplicate(t *testing.T) {
	base := baseSchema(t)
	_, err := base.Extend(blocks.NewHeading("h1", "again"))
	assert.ErrorIs(t, err, blocks.ErrDuplicateTag)
	assert.Equal(t, 7, base.Len())
}
