package lists

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spigell/vkinder/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFileMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()

	l, err := FromFile(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, l.Owners)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	l, err = FromFile(empty)
	require.NoError(t, err)
	assert.Empty(t, l.Owners)
}

func TestFromFileBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := FromFile(path)
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists.json")

	l := New()
	added, err := l.Add(1, Favourites, NewEntry(&profile.Profile{ID: 10, FirstName: "Анна", LastName: "К"}))
	require.NoError(t, err)
	require.True(t, added)
	_, err = l.Add(1, Blacklist, &Entry{ID: 20})
	require.NoError(t, err)
	_, err = l.Add(2, Favourites, &Entry{ID: 30})
	require.NoError(t, err)

	require.NoError(t, l.ToFile(path))

	loaded, err := FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []int64{10}, loaded.IDs(1, Favourites))
	assert.Equal(t, []int64{20}, loaded.IDs(1, Blacklist))
	assert.Equal(t, []int64{30}, loaded.IDs(2, Favourites))

	entries := loaded.Entries(1, Favourites)
	require.Len(t, entries, 1)
	assert.Equal(t, "Анна К", entries[0].Name)
	assert.Equal(t, "https://vk.com/id10", entries[0].URL)
	assert.False(t, entries[0].AddedAt.IsZero())
}

func TestToFileTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists.json")

	l := New()
	for id := int64(1); id <= 20; id++ {
		_, err := l.Add(1, Favourites, &Entry{ID: id, Name: "a rather long name to grow the file"})
		require.NoError(t, err)
	}
	require.NoError(t, l.ToFile(path))

	small := New()
	_, err := small.Add(1, Favourites, &Entry{ID: 1})
	require.NoError(t, err)
	require.NoError(t, small.ToFile(path))

	loaded, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, loaded.IDs(1, Favourites))
}

func TestToFileFailureKeepsExistingData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lists.json")

	// a non-empty directory in place of the file makes the final rename fail
	require.NoError(t, os.Mkdir(path, 0o755))
	keep := filepath.Join(path, "keep.json")
	require.NoError(t, os.WriteFile(keep, []byte(`{"owners": {}}`), 0o644))

	l := New()
	_, err := l.Add(1, Blacklist, &Entry{ID: 5})
	require.NoError(t, err)

	require.Error(t, l.ToFile(path))

	data, err := os.ReadFile(keep)
	require.NoError(t, err)
	assert.Equal(t, `{"owners": {}}`, string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestToFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lists.json")

	l := New()
	_, err := l.Add(1, Favourites, &Entry{ID: 7})
	require.NoError(t, err)
	require.NoError(t, l.ToFile(path))
	require.NoError(t, l.ToFile(path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lists.json", entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestAddIsIdempotent(t *testing.T) {
	l := New()

	added, err := l.Add(1, Favourites, &Entry{ID: 5})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = l.Add(1, Favourites, &Entry{ID: 5})
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, []int64{5}, l.IDs(1, Favourites))
}

func TestBlockRemovesFromFavourites(t *testing.T) {
	l := New()

	_, err := l.Add(1, Favourites, &Entry{ID: 5})
	require.NoError(t, err)
	_, err = l.Add(1, Favourites, &Entry{ID: 6})
	require.NoError(t, err)
	_, err = l.Add(1, Blacklist, &Entry{ID: 5})
	require.NoError(t, err)

	assert.Equal(t, []int64{6}, l.IDs(1, Favourites))
	assert.True(t, l.Has(1, Blacklist, 5))

	_, err = l.Add(1, Favourites, &Entry{ID: 5})
	require.NoError(t, err)
	assert.False(t, l.Has(1, Blacklist, 5))
}

func TestRemove(t *testing.T) {
	l := New()
	_, err := l.Add(1, Blacklist, &Entry{ID: 7})
	require.NoError(t, err)

	assert.True(t, l.Remove(1, Blacklist, 7))
	assert.False(t, l.Remove(1, Blacklist, 7))
	assert.False(t, l.Remove(99, Blacklist, 7))
	assert.Empty(t, l.IDs(1, Blacklist))
}

func TestUnknownKind(t *testing.T) {
	l := New()

	_, err := l.Add(1, Kind("likes"), &Entry{ID: 1})
	require.Error(t, err)
	assert.Nil(t, l.Entries(1, Kind("likes")))
}

func TestListsArePerRequester(t *testing.T) {
	l := New()
	_, err := l.Add(1, Blacklist, &Entry{ID: 7})
	require.NoError(t, err)

	assert.True(t, l.Has(1, Blacklist, 7))
	assert.False(t, l.Has(2, Blacklist, 7))
}
