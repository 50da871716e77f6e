package recipe

import (
	"net/http"

	"fridge-chef/internal/core/corpus"
	recipeCore "fridge-chef/internal/core/recipe"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MatchRequest 依條件比對語料庫食譜
type MatchRequest struct {
	Include   []string `json:"include,omitempty"`   // 想要出現的食材或關鍵字
	Avoid     []string `json:"avoid,omitempty"`     // 絕對不能出現的食材或關鍵字
	Cuisine   string   `json:"cuisine,omitempty"`   // 菜系提示
	Style     string   `json:"style,omitempty"`     // 飲食風格提示
	Spiciness string   `json:"spiciness,omitempty"` // mild | spicy | unspecified
	Fridge    []string `json:"fridge,omitempty"`    // 冰箱現有食材
	Mode      string   `json:"mode,omitempty"`      // fridge_coverage | discovery
	Limit     int      `json:"limit,omitempty"`     // 回傳筆數上限
}

// MatchResponse 比對結果
type MatchResponse struct {
	Recipes   []common.RecipeRecord           `json:"recipes"`
	Directive *recipeCore.GenerationDirective `json:"generation_directive,omitempty"`
}

// DecodeRequest 將生成器回覆文字解碼為結構化食譜
type DecodeRequest struct {
	Text string `json:"text" binding:"required"`
}

// EncodeRequest 將結構化食譜編碼為儲存文字
type EncodeRequest struct {
	Recipes []common.RecipeRecord `json:"recipes" binding:"required"`
}

// Handler 食譜處理程序
type Handler struct {
	config  *config.Config
	store   corpus.Store
	matcher *recipeCore.Matcher
}

// NewHandler 創建新的食譜處理程序
func NewHandler(cfg *config.Config, store corpus.Store, matcher *recipeCore.Matcher) *Handler {
	return &Handler{
		config:  cfg,
		store:   store,
		matcher: matcher,
	}
}

// HandleMatch 比對語料庫並回傳排序後的食譜
func (h *Handler) HandleMatch(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	common.LogInfo("開始處理食譜比對請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	intent := common.Intent{
		Category:  common.IntentFindRecipe,
		Include:   req.Include,
		Avoid:     req.Avoid,
		Cuisine:   req.Cuisine,
		Style:     req.Style,
		Spiciness: common.Spiciness(req.Spiciness),
	}
	intent.Spiciness = intent.NormalizedSpiciness()

	mode := recipeCore.ModeDiscovery
	if req.Mode == "fridge_coverage" || (req.Mode == "" && len(req.Fridge) > 0) {
		mode = recipeCore.ModeFridgeCoverage
	}

	limit := req.Limit
	if limit <= 0 {
		limit = h.config.Match.DefaultLimit
	}

	docs, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		common.LogError("語料庫讀取失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recipe corpus unavailable"})
		return
	}

	fridge := common.CleanList(req.Fridge)
	records := h.matcher.Match(docs, intent, fridge, mode, limit)

	response := MatchResponse{Recipes: records}
	if len(records) == 0 {
		directive := h.matcher.BuildDirective(intent, fridge, h.config.Match.GenerationTarget)
		response.Directive = &directive
	}

	common.LogInfo("食譜比對完成",
		zap.String("request_id", requestID),
		zap.Int("corpus_size", len(docs)),
		zap.Int("matched", len(records)),
	)

	c.JSON(http.StatusOK, response)
}

// HandleDecode 解碼生成器回覆文字
func (h *Handler) HandleDecode(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	records := recipeCore.Decode(req.Text)

	common.LogInfo("文字解碼完成",
		zap.String("request_id", requestID),
		zap.Int("text_length", len(req.Text)),
		zap.Int("decoded", len(records)),
	)

	c.JSON(http.StatusOK, gin.H{"recipes": records})
}

// HandleEncode 將結構化食譜編碼回儲存格式
func (h *Handler) HandleEncode(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	var req EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	kept := make([]common.RecipeRecord, 0, len(req.Recipes))
	for i := range req.Recipes {
		record := req.Recipes[i]
		if common.SanitizeRecord(&record) {
			kept = append(kept, record)
		}
	}

	text := recipeCore.Encode(kept)

	c.JSON(http.StatusOK, gin.H{
		"text":  text,
		"count": len(kept),
	})
}
