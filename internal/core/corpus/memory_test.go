package corpus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSnapshotFiltersInvalid(t *testing.T) {
	store := NewMemoryStore([]Document{
		{ID: "1", Title: "番茄炒蛋", Ingredients: []string{"番茄", "蛋"}, Steps: []string{"炒"}},
		{ID: "2", Title: "   ", Ingredients: []string{"x"}},
		{ID: "3", Title: "沒食材", Ingredients: nil},
		{ID: "4", Title: "清蒸魚", Ingredients: []string{"魚"}, Steps: []string{"蒸"}},
	})

	docs, err := store.Snapshot(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 2)
	// 快照保留插入順序
	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, "4", docs[1].ID)
}

func TestMemoryStoreEmpty(t *testing.T) {
	docs, err := NewMemoryStore(nil).Snapshot(context.Background())

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentValid(t *testing.T) {
	assert.True(t, Document{Title: "好菜", Ingredients: []string{"a"}}.Valid())
	assert.False(t, Document{Title: "", Ingredients: []string{"a"}}.Valid())
	assert.False(t, Document{Title: "好菜"}.Valid())
}
