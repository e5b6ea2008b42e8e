package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestListCategoriesAndLocations(t *testing.T) {
	path := writeCatalog(t, `[
		{"id":"s1","name":"Feed 1","url":"http://a","categories":["General, Disaster"],"locations":["International"]},
		{"id":"s2","name":"Feed 2","url":"http://b","categories":["general"],"locations":["Local, International"]}
	]`)

	c := New(path)
	assert.Equal(t, []string{"disaster", "general"}, c.ListCategories())
	assert.Equal(t, []string{"international", "local"}, c.ListLocations())
}

func TestMatchIntersects(t *testing.T) {
	path := writeCatalog(t, `[
		{"id":"s1","name":"Feed 1","url":"http://a","categories":["general"],"locations":["international"]},
		{"id":"s2","name":"Feed 2","url":"http://b","categories":["sports"],"locations":["local"]}
	]`)

	c := New(path)
	matches := c.Match([]string{"General"}, []string{" international "})
	require.Len(t, matches, 1)
	assert.Equal(t, "s1", matches[0].ID)

	assert.Empty(t, c.Match([]string{"nonexistent"}, []string{"international"}))
}

func TestMalformedCatalogYieldsEmpty(t *testing.T) {
	path := writeCatalog(t, `not json`)
	c := New(path)
	assert.Empty(t, c.ListCategories())
	assert.Empty(t, c.Match([]string{"general"}, []string{"international"}))
}

func TestReloadSwapsSnapshot(t *testing.T) {
	path := writeCatalog(t, `[{"id":"s1","name":"Feed","url":"http://a","categories":["general"],"locations":["international"]}]`)
	c := New(path)
	require.Len(t, c.Match([]string{"general"}, []string{"international"}), 1)

	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	c.Reload()
	assert.Empty(t, c.Match([]string{"general"}, []string{"international"}))
}
