package chat

import (
	"net/http"
	"strings"

	chatCore "fridge-chef/internal/core/chat"
	recipeCore "fridge-chef/internal/core/recipe"
	"fridge-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageRequest 一輪對話訊息
type MessageRequest struct {
	SessionID string   `json:"session_id,omitempty"` // 未帶時由伺服器產生
	Message   string   `json:"message" binding:"required"`
	Fridge    []string `json:"fridge,omitempty"` // 冰箱現有食材
	Mode      string   `json:"mode,omitempty"`   // fridge_coverage | discovery
}

// MessageResponse 一輪對話的回覆
type MessageResponse struct {
	SessionID string                `json:"session_id"`
	Category  common.IntentCategory `json:"category"`
	Reply     string                `json:"reply"`
	Recipes   []common.RecipeRecord `json:"recipes,omitempty"`
	Generated bool                  `json:"generated"`
}

// Handler 對話處理程序
type Handler struct {
	session *chatCore.Session
}

// NewHandler 創建對話處理程序
func NewHandler(session *chatCore.Session) *Handler {
	return &Handler{session: session}
}

// HandleMessage 處理一輪使用者訊息
func (h *Handler) HandleMessage(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	common.LogInfo("開始處理對話請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = common.GenerateUUID()
	}

	mode := recipeCore.ModeDiscovery
	if req.Mode == "fridge_coverage" || (req.Mode == "" && len(req.Fridge) > 0) {
		mode = recipeCore.ModeFridgeCoverage
	}

	result, err := h.session.HandleTurn(c.Request.Context(), sessionID, req.Message, req.Fridge, mode)
	if err != nil {
		common.LogError("對話處理失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("session_id", sessionID),
		)
		status, payload := common.FormatErrorResponse(err)
		c.JSON(status, payload)
		return
	}

	common.LogInfo("對話處理完成",
		zap.String("request_id", requestID),
		zap.String("session_id", sessionID),
		zap.String("category", string(result.Category)),
		zap.Int("recipes", len(result.Records)),
	)

	c.JSON(http.StatusOK, MessageResponse{
		SessionID: sessionID,
		Category:  result.Category,
		Reply:     result.Reply,
		Recipes:   result.Records,
		Generated: result.Generated,
	})
}
