package middleware

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fridge-chef/internal/pkg/common"
)

// Logger 請求日誌中間件，結束時依狀態碼分級輸出
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()

		// 探針請求成功時不記錄，健康檢查不用刷版面
		if isProbePath(path) && status < 400 {
			return
		}

		fields := requestFields(c, path, status, time.Since(start))
		switch {
		case status >= 500:
			common.LogError("伺服器錯誤", fields...)
		case status >= 400:
			common.LogWarn("用戶端錯誤", fields...)
		default:
			common.LogInfo("請求完成", fields...)
		}
	}
}

// requestFields 組出單筆請求日誌的欄位
func requestFields(c *gin.Context, path string, status int, latency time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", c.Request.Method),
		zap.String("path", path),
		zap.String("ip", c.ClientIP()),
		zap.Duration("latency", latency),
		zap.String("request_id", requestid.Get(c)),
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
	}
	return fields
}

// Recovery 攔截 panic，回統一格式的 500 錯誤
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				common.LogError("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				status, payload := common.FormatErrorResponse(nil)
				c.AbortWithStatusJSON(status, payload)
			}
		}()

		c.Next()
	}
}
