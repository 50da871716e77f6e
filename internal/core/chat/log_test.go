package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLogAppendAndHistory(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, "s1", Entry{Role: RoleUser, Content: "一", At: time.Now()}))
	require.NoError(t, log.Append(ctx, "s1", Entry{Role: RoleAssistant, Content: "二", At: time.Now()}))
	require.NoError(t, log.Append(ctx, "s2", Entry{Role: RoleUser, Content: "別的對話", At: time.Now()}))

	entries, err := log.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "一", entries[0].Content)
	assert.Equal(t, "二", entries[1].Content)
}

func TestMemoryLogHistoryLimit(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	for _, content := range []string{"一", "二", "三"} {
		require.NoError(t, log.Append(ctx, "s1", Entry{Role: RoleUser, Content: content}))
	}

	entries, err := log.History(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// 取最近的兩筆
	assert.Equal(t, "二", entries[0].Content)
	assert.Equal(t, "三", entries[1].Content)
}

func TestMemoryLogUnknownSession(t *testing.T) {
	entries, err := NewMemoryLog().History(context.Background(), "nope", 0)

	require.NoError(t, err)
	assert.Empty(t, entries)
}
