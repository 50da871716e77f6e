package corpus

import (
	"context"
	"fmt"

	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore Redis 後端的語料庫
// 文件以 JSON 存在 <prefix>:recipe:<id>，全部編號收在 <prefix>:recipes 集合
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 建立 Redis 語料庫，連線由呼叫端共用
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// Connect 建立並測試一條 Redis 連線
func Connect(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Snapshot 一次撈出全部食譜文件
// 單筆讀取或解析失敗只跳過該筆，不讓整批失敗
func (s *RedisStore) Snapshot(ctx context.Context) ([]Document, error) {
	ids, err := s.client.SMembers(ctx, s.prefix+":recipes").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus ids: %w", err)
	}

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		raw, err := s.client.Get(ctx, s.prefix+":recipe:"+id).Result()
		if err != nil {
			if err != redis.Nil {
				common.LogWarn("語料庫文件讀取失敗，跳過",
					zap.String("id", id),
					zap.Error(err),
				)
			}
			continue
		}

		var doc Document
		if err := common.ParseJSON(raw, &doc); err != nil {
			common.LogWarn("語料庫文件格式錯誤，跳過",
				zap.String("id", id),
				zap.Error(err),
			)
			continue
		}
		doc.ID = id
		if doc.Valid() {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
