package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"fridge-chef/internal/infrastructure/config"
)

func newDedupRouter(window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Deduplication(&config.Config{DedupWindow: window}))
	router.POST("/api/v1/chat/message", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestDeduplicationBlocksRepeatWithinWindow(t *testing.T) {
	router := newDedupRouter(time.Minute)
	body := []byte(`{"session_id":"dup-a","message":"來點湯"}`)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest("POST", "/api/v1/chat/message", bytes.NewReader(body)))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest("POST", "/api/v1/chat/message", bytes.NewReader(body)))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestDeduplicationConcurrentIdenticalRequests(t *testing.T) {
	router := newDedupRouter(time.Minute)
	body := []byte(`{"session_id":"dup-b","message":"同時送兩次"}`)

	const workers = 8
	codes := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest("POST", "/api/v1/chat/message", bytes.NewReader(body)))
			codes[i] = recorder.Code
		}(i)
	}
	wg.Wait()

	// 同一指紋在窗口內只會放行一個
	passed := 0
	for _, code := range codes {
		if code == http.StatusOK {
			passed++
		} else {
			assert.Equal(t, http.StatusTooManyRequests, code)
		}
	}
	assert.Equal(t, 1, passed)
}
