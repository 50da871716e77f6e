package common

import (
	"strings"
)

// RecipeRecord 統一的食譜輸出單位
// 解碼器與配對器都以此結構輸出，前端顯示層只認得這個格式
type RecipeRecord struct {
	ID          string   `json:"id,omitempty"` // 語料庫文件編號，生成內容沒有
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	ImageRef    string   `json:"image_ref,omitempty"`
	Yield       string   `json:"yield,omitempty"`
	Duration    string   `json:"duration,omitempty"`
}

// 佔位字串：食材或步驟抽取結果為空時一律補上，確保前端永遠有內容可顯示
const (
	PlaceholderIngredients = "暫無食材資訊"
	PlaceholderSteps       = "暫無步驟資訊"
)

// IntentCategory 使用者意圖分類
type IntentCategory string

const (
	IntentChat       IntentCategory = "chat"
	IntentClarify    IntentCategory = "clarify"
	IntentFindRecipe IntentCategory = "find_recipe"
)

// Spiciness 辣度偏好
type Spiciness string

const (
	SpicinessMild        Spiciness = "mild"
	SpicinessSpicy       Spiciness = "spicy"
	SpicinessUnspecified Spiciness = "unspecified"
)

// Intent 使用者請求的結構化表示
// 由意圖分類器產生，每個對話回合建立一次，之後不再修改
type Intent struct {
	Category  IntentCategory `json:"category"`
	Include   []string       `json:"include"`
	Avoid     []string       `json:"avoid"`
	Cuisine   string         `json:"cuisine,omitempty"`
	Style     string         `json:"style,omitempty"`
	Spiciness Spiciness      `json:"spiciness"`
}

// NormalizedCategory 未知分類一律視為 find_recipe
func (i Intent) NormalizedCategory() IntentCategory {
	switch i.Category {
	case IntentChat, IntentClarify, IntentFindRecipe:
		return i.Category
	default:
		return IntentFindRecipe
	}
}

// NormalizedSpiciness 未知辣度一律視為 unspecified
func (i Intent) NormalizedSpiciness() Spiciness {
	switch i.Spiciness {
	case SpicinessMild, SpicinessSpicy:
		return i.Spiciness
	default:
		return SpicinessUnspecified
	}
}

// SanitizeRecord 整理單筆食譜：名稱去空白、移除空白項目、補上佔位字串
// 名稱整理後為空白時回傳 false，該筆應捨棄
func SanitizeRecord(r *RecipeRecord) bool {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return false
	}
	r.Ingredients = CleanList(r.Ingredients)
	r.Steps = CleanList(r.Steps)
	if len(r.Ingredients) == 0 {
		r.Ingredients = []string{PlaceholderIngredients}
	}
	if len(r.Steps) == 0 {
		r.Steps = []string{PlaceholderSteps}
	}
	return true
}

// CleanList 去除每個項目前後空白並移除空白項目
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// FormatFridge 格式化冰箱食材列表（組裝 prompt 用）
func FormatFridge(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}
