package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fridge-chef/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Entry 對話紀錄中的一筆訊息
type Entry struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Log 只追加的對話紀錄
type Log interface {
	Append(ctx context.Context, sessionID string, entry Entry) error
	History(ctx context.Context, sessionID string, limit int64) ([]Entry, error)
}

// RedisLog Redis 版對話紀錄，跨程序共用
type RedisLog struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLog 創建 Redis 對話紀錄
func NewRedisLog(client *redis.Client, keyPrefix string) *RedisLog {
	return &RedisLog{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (l *RedisLog) key(sessionID string) string {
	return fmt.Sprintf("%s:chat:%s", l.keyPrefix, sessionID)
}

// Append 追加一筆訊息到對話尾端
func (l *RedisLog) Append(ctx context.Context, sessionID string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal chat entry: %w", err)
	}

	if err := l.client.RPush(ctx, l.key(sessionID), data).Err(); err != nil {
		return fmt.Errorf("failed to append chat entry: %w", err)
	}
	return nil
}

// History 取最近 limit 筆訊息，limit <= 0 表示全部
func (l *RedisLog) History(ctx context.Context, sessionID string, limit int64) ([]Entry, error) {
	start := int64(0)
	if limit > 0 {
		start = -limit
	}

	raw, err := l.client.LRange(ctx, l.key(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read chat history: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			// 壞掉的紀錄跳過不影響整段歷史
			common.LogWarn("對話紀錄解析失敗",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// MemoryLog 記憶體版對話紀錄，未設定 Redis 時使用
type MemoryLog struct {
	mu       sync.RWMutex
	sessions map[string][]Entry
}

// NewMemoryLog 創建記憶體對話紀錄
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		sessions: make(map[string][]Entry),
	}
}

// Append 追加一筆訊息到對話尾端
func (l *MemoryLog) Append(_ context.Context, sessionID string, entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions[sessionID] = append(l.sessions[sessionID], entry)
	return nil
}

// History 取最近 limit 筆訊息，limit <= 0 表示全部
func (l *MemoryLog) History(_ context.Context, sessionID string, limit int64) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := l.sessions[sessionID]
	if limit > 0 && int64(len(entries)) > limit {
		entries = entries[int64(len(entries))-limit:]
	}

	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}
