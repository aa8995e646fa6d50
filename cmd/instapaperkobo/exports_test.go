package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instapaperkobo/internal/store"
)

func TestRecentExports(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"), testSerial)
	require.NoError(t, err)
	defer st.Close()

	now := time.Now()
	for i, title := range []string{"Oldest", "Middle", "Newest"} {
		require.NoError(t, st.MarkExported(store.Export{
			BookmarkID: int64(i + 1),
			Title:      title,
			ExportedAt: now.Add(time.Duration(i) * time.Hour),
		}))
	}

	exports, err := recentExports(st, 2)
	require.NoError(t, err)
	require.Len(t, exports, 2)
	assert.Equal(t, "Newest", exports[0].Title)
	assert.Equal(t, "Middle", exports[1].Title)

	exports, err = recentExports(st, 0)
	require.NoError(t, err)
	assert.Len(t, exports, 3)
}
