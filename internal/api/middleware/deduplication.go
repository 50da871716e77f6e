package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"
)

var (
	// 最近請求指紋，用於短窗口內的重複請求攔截
	requestCache = struct {
		sync.Mutex
		requests map[string]time.Time
	}{
		requests: make(map[string]time.Time),
	}

	cleanupOnce sync.Once
)

// startDeduplicationCleanup 啟動過期指紋的清理協程（只啟動一次）
func startDeduplicationCleanup(window time.Duration) {
	cleanupOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(10 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				now := time.Now()
				requestCache.Lock()
				for k, t := range requestCache.requests {
					if now.Sub(t) > 10*window {
						delete(requestCache.requests, k)
					}
				}
				requestCache.Unlock()
			}
		}()
	})
}

// Deduplication 請求去重中間件
// 同一個 POST body 在 dedup_window 內重送視為重複，擋下以免生成器重複扣款
func Deduplication(cfg *config.Config) gin.HandlerFunc {
	window := 1 * time.Second
	if cfg != nil && cfg.DedupWindow > 0 {
		window = cfg.DedupWindow
	}
	startDeduplicationCleanup(window)

	return func(c *gin.Context) {
		// 只攔 POST，健康檢查不處理
		if c.Request.Method != "POST" || isProbePath(c.Request.URL.Path) {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 讀完要放回去，後面的 handler 還要用
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		fingerprint := c.Request.Method + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		// 檢查與寫入要在同一把鎖裡，同指紋的併發請求才不會一起放行
		now := time.Now()
		requestCache.Lock()
		lastTime, exists := requestCache.requests[fingerprint]
		if exists && now.Sub(lastTime) <= window {
			requestCache.Unlock()
			status, payload := common.FormatErrorResponse(common.ErrTooManyRequests)
			c.JSON(status, payload)
			c.Abort()
			return
		}
		requestCache.requests[fingerprint] = now
		requestCache.Unlock()

		c.Next()
	}
}
