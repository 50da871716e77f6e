package chat

import (
	"context"
	"fmt"
	"strings"

	"fridge-chef/internal/core/ai/provider"
	"fridge-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// Classifier 意圖分類器介面
// 回傳 nil intent 或錯誤時，由上層改走「沒聽懂」的回覆
type Classifier interface {
	Classify(ctx context.Context, userText string) (*common.Intent, error)
}

// AIClassifier 以生成器為後端的意圖分類器
type AIClassifier struct {
	generator provider.Generator
}

// NewAIClassifier 創建意圖分類器
func NewAIClassifier(generator provider.Generator) *AIClassifier {
	return &AIClassifier{generator: generator}
}

// Classify 將使用者文字轉為結構化意圖
func (c *AIClassifier) Classify(ctx context.Context, userText string) (*common.Intent, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, fmt.Errorf("empty user text")
	}

	prompt := buildClassifyPrompt(userText)

	reply, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("classifier generator error: %w", err)
	}

	content := common.StripMarkdownFence(reply)
	content = common.QuoteJSONKeys(content)

	var intent common.Intent
	if err := common.ParseJSON(content, &intent); err != nil {
		common.LogWarn("意圖分類回覆解析失敗",
			zap.Error(err),
			zap.Int("reply_length", len(reply)),
		)
		return nil, fmt.Errorf("failed to parse intent: %w", err)
	}

	// 分類與辣度正規化：未知值退回預設
	intent.Category = intent.NormalizedCategory()
	intent.Spiciness = intent.NormalizedSpiciness()
	intent.Include = common.CleanList(intent.Include)
	intent.Avoid = common.CleanList(intent.Avoid)

	return &intent, nil
}

func buildClassifyPrompt(userText string) string {
	return fmt.Sprintf(`請分析以下使用者訊息，判斷意圖並抽取條件（用繁體中文思考，輸出 JSON）。

使用者訊息：%s

請以以下 JSON 格式返回（僅作為範例，請勿直接複製內容）：
{
    "category": "chat | clarify | find_recipe",
    "include": ["想要出現的食材或關鍵字"],
    "avoid": ["絕對不能出現的食材或關鍵字"],
    "cuisine": "菜系提示，沒有請留空",
    "style": "飲食風格提示，例如清淡、低油，沒有請留空",
    "spiciness": "mild | spicy | unspecified"
}

要求：
1. 閒聊或打招呼填 chat，訊息太模糊需要追問填 clarify，其餘填 find_recipe
2. include 與 avoid 填名詞即可，不要帶數量或形容詞
3. 所有欄位都必須要有不能漏掉，沒有內容請填空字串或空陣列
4. 只回傳一個獨立的 JSON，不要包含其他文字或程式碼區塊標記`, userText)
}
