//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

func TestDiffMigrations(t *testing.T) {
	t.Parallel()

	t.Run("should return no rows for identical sequences", func(t *testing.T) {
		t.Parallel()

		// when
		rows := entities.DiffMigrations([]string{"a", "b", "c"}, []string{"a", "b", "c"})

		// then
		assert.Empty(t, rows)
	})

	t.Run("should emit every position from the divergence point", func(t *testing.T) {
		t.Parallel()

		// when
		rows := entities.DiffMigrations([]string{"a", "b", "c", "d"}, []string{"a", "x", "c"})

		// then
		assert.Equal(t, []entities.DiffRow{
			{Devel: "b", Release: "x"},
			{Devel: "c", Release: "c"},
			{Devel: "d", Release: ""},
		}, rows)
	})

	t.Run("should flag a devel entry seen on the release side after divergence", func(t *testing.T) {
		t.Parallel()

		// when
		rows := entities.DiffMigrations([]string{"a", "b", "c"}, []string{"a", "c", "b"})

		// then
		assert.Equal(t, []entities.DiffRow{
			{Devel: "b", Release: "c", Superseded: false},
			{Devel: "c", Release: "b", Superseded: true},
		}, rows)
	})

	t.Run("should pad the devel side when the release sequence is longer", func(t *testing.T) {
		t.Parallel()

		// when
		rows := entities.DiffMigrations([]string{"a"}, []string{"a", "b", "c"})

		// then
		assert.Equal(t, []entities.DiffRow{
			{Devel: "", Release: "b"},
			{Devel: "", Release: "c"},
		}, rows)
	})

	t.Run("should keep emitting once diverged even when entries match again", func(t *testing.T) {
		t.Parallel()

		// given
		devel := []string{"a", "b", "c", "d", "e"}
		release := []string{"a", "x", "c", "d", "e"}

		// when
		rows := entities.DiffMigrations(devel, release)

		// then
		require.Len(t, rows, 4)
		for i, row := range rows {
			assert.Equal(t, devel[i+1], row.Devel)
			assert.Equal(t, release[i+1], row.Release)
		}
	})
}

func TestParseChangeLog(t *testing.T) {
	t.Parallel()

	t.Run("should collect the file attribute of every direct child in order", func(t *testing.T) {
		t.Parallel()

		// given
		doc := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<databaseChangeLog xmlns="http://www.liquibase.org/xml/ns/dbchangelog">
  <include file="db/001-init.xml"/>
  <include file="db/002-users.xml">
    <nested file="ignored.xml"/>
  </include>
  <includeAll file="db/003-orders.xml"/>
</databaseChangeLog>`)

		// when
		entries, err := entities.ParseChangeLog(doc)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"db/001-init.xml", "db/002-users.xml", "db/003-orders.xml"}, entries)
	})

	t.Run("should return no entries for an empty root", func(t *testing.T) {
		t.Parallel()

		// when
		entries, err := entities.ParseChangeLog([]byte(`<databaseChangeLog/>`))

		// then
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("should fail when a child has no file attribute", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.ParseChangeLog([]byte(`<root><include path="x.xml"/></root>`))

		// then
		require.ErrorIs(t, err, entities.ErrMalformedChangeLog)
	})

	t.Run("should fail on broken XML", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.ParseChangeLog([]byte(`<root><include file="a.xml">`))

		// then
		require.ErrorIs(t, err, entities.ErrMalformedChangeLog)
	})

	t.Run("should fail on a document without a root element", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.ParseChangeLog([]byte(`   `))

		// then
		require.ErrorIs(t, err, entities.ErrMalformedChangeLog)
	})
}
