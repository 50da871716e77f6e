package service

import (
	"context"
	"strings"
	"time"

	"fridge-chef/internal/core/ai/cache"
	"fridge-chef/internal/core/ai/openrouter"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"
)

// Service 生成器服務門面
// 統一入口：先查緩存，未命中才打 OpenRouter，成功後回填緩存
type Service struct {
	config       *config.Config
	client       *openrouter.Client
	cacheManager *cache.CacheManager
}

// NewService 創建生成器服務
func NewService(cfg *config.Config, cacheManager *cache.CacheManager) (*Service, error) {
	return &Service{
		config:       cfg,
		client:       openrouter.NewClient(cfg),
		cacheManager: cacheManager,
	}, nil
}

// Generate 送出 prompt 取得文字回覆，實作 provider.Generator
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)

	// 緩存鍵使用壓縮後的 prompt，空白差異不影響命中
	cacheKey := strings.Join(strings.Fields(prompt), " ")

	if s.config.Cache.Enabled && s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, cacheKey); err == nil && val != "" {
			return val, nil
		}
	}

	startTime := time.Now()
	content, err := s.client.Generate(ctx, prompt)
	common.LogGeneratorCall(time.Since(startTime), err)
	if err != nil {
		return "", err
	}

	if s.config.Cache.Enabled && s.cacheManager != nil {
		_ = s.cacheManager.Set(ctx, cacheKey, content)
	}

	return content, nil
}

// Close 關閉生成器服務
func (s *Service) Close() error {
	return s.client.Close()
}
