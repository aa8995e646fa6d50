package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), "test-serial")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Token(t *testing.T) {
	s := setupTestStore(t)

	_, _, err := s.LoadToken()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, s.SaveToken("xyz", "abc"))
	token, secret, err := s.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)
	assert.Equal(t, "abc", secret)

	require.NoError(t, s.ClearToken())
	_, _, err = s.LoadToken()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestStore_TokenWrongSerial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, "serial-one")
	require.NoError(t, err)
	require.NoError(t, s.SaveToken("xyz", "abc"))
	require.NoError(t, s.Close())

	s, err = Open(path, "serial-two")
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.LoadToken()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoToken)
}

func TestStore_Exports(t *testing.T) {
	s := setupTestStore(t)

	ids, err := s.ExportedIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)

	now := time.Now()
	require.NoError(t, s.MarkExported(Export{BookmarkID: 300, Title: "Third", ExportedAt: now}))
	require.NoError(t, s.MarkExported(Export{BookmarkID: 2, Title: "Second", ExportedAt: now.Add(-time.Hour)}))
	require.NoError(t, s.MarkExported(Export{BookmarkID: 10, Title: "Tenth", ExportedAt: now.Add(time.Hour)}))

	ids, err = s.ExportedIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 10, 300}, ids)

	exports, err := s.Exports()
	require.NoError(t, err)
	require.Len(t, exports, 3)
	assert.Equal(t, "Tenth", exports[0].Title)
	assert.Equal(t, "Second", exports[2].Title)
}
