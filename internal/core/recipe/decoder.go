package recipe

import (
	"fmt"
	"regexp"
	"strings"

	"fridge-chef/internal/pkg/common"
)

// 緊湊編碼用的保留分隔符，選用多字元序列避免與食譜內文衝突
const (
	RecordSep     = "@@@"
	FieldSep      = "|||"
	IngredientSep = ","
	StepSep       = "~~"
)

// 自然語言段落標記
var (
	nameMarkerPattern       = regexp.MustCompile(`(?:食譜名稱|料理名稱|菜名)\s*[：:]?\s*`)
	nameExtractPattern      = regexp.MustCompile(`^\s*(?:食譜名稱|料理名稱|菜名)\s*[：:]?\s*([^\n]+)`)
	ingredientMarkerPattern = regexp.MustCompile(`食材\s*[：:]?`)
	stepMarkerPattern       = regexp.MustCompile(`(?:步驟|做法|作法)\s*[：:]?`)
	stepEnumPattern         = regexp.MustCompile(`^\s*\d+\s*[.、)．：:]\s*`)
	stepInlineEnumPattern   = regexp.MustCompile(`\s+\d+\s*[.、)．]\s*`)
	durationPattern         = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?`)
)

// Decode 將任意文字轉為食譜列表
// 依序嘗試三種格式（JSON 陣列、分隔符編碼、自然語言），第一個產出非空結果的策略勝出
// 永遠不回傳錯誤：無法解析的輸入退化為空列表或盡力而為的結果
func Decode(text string) []common.RecipeRecord {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if records := decodeStructuredJSON(text); len(records) > 0 {
		return records
	}
	if records := decodeDelimited(text); len(records) > 0 {
		return records
	}
	return decodeFlexible(text)
}

// Encode 以分隔符編碼壓縮食譜列表，供對話紀錄持久化
// 與 decodeDelimited 成對：Decode(Encode(records)) 還原相同內容
func Encode(records []common.RecipeRecord) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, strings.Join([]string{
			r.Name,
			strings.Join(r.Ingredients, IngredientSep),
			strings.Join(r.Steps, StepSep),
		}, FieldSep))
	}
	return strings.Join(parts, RecordSep)
}

// jsonRecipe 生成器 JSON 回覆的中繼結構
type jsonRecipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	ImageURL    string   `json:"imageUrl"`
	Yield       string   `json:"yield"`
	Time        string   `json:"time"`
}

// decodeStructuredJSON 策略一：JSON 陣列
func decodeStructuredJSON(text string) []common.RecipeRecord {
	cleaned := common.StripMarkdownFence(text)

	var items []jsonRecipe
	if err := common.ParseJSON(cleaned, &items); err != nil {
		return nil
	}

	records := make([]common.RecipeRecord, 0, len(items))
	for _, item := range items {
		record := common.RecipeRecord{
			Name:        item.Title,
			Ingredients: item.Ingredients,
			Steps:       item.Steps,
			ImageRef:    item.ImageURL,
			Yield:       item.Yield,
			Duration:    FormatDuration(item.Time),
		}
		if common.SanitizeRecord(&record) {
			records = append(records, record)
		}
	}
	return records
}

// decodeDelimited 策略二：分隔符編碼
// 格式不符的區塊直接跳過，不中斷整批解碼
func decodeDelimited(text string) []common.RecipeRecord {
	if !strings.Contains(text, FieldSep) {
		return nil
	}

	var records []common.RecipeRecord
	for _, block := range strings.Split(text, RecordSep) {
		fields := strings.Split(block, FieldSep)
		if len(fields) != 3 {
			continue
		}
		record := common.RecipeRecord{
			Name:        fields[0],
			Ingredients: strings.Split(fields[1], IngredientSep),
			Steps:       strings.Split(fields[2], StepSep),
		}
		if common.SanitizeRecord(&record) {
			records = append(records, record)
		}
	}
	return records
}

// decodeFlexible 策略三：自然語言（最後手段，非空輸入保證至少一筆）
func decodeFlexible(text string) []common.RecipeRecord {
	segments := splitSegments(text)

	records := make([]common.RecipeRecord, 0, len(segments))
	for i, segment := range segments {
		record := common.RecipeRecord{
			Name:        extractName(segment, i+1),
			Ingredients: extractIngredients(segment),
			Steps:       extractSteps(segment),
		}
		if common.SanitizeRecord(&record) {
			records = append(records, record)
		}
	}
	return records
}

// splitSegments 以名稱標記切出每道食譜的段落；沒有標記時整段視為一筆
func splitSegments(text string) []string {
	locs := nameMarkerPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	var segments []string
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segments = append(segments, text[loc[0]:end])
	}
	return segments
}

// extractName 以標記錨定抽取名稱，抽不到時退回編號佔位名稱
func extractName(segment string, index int) string {
	if m := nameExtractPattern.FindStringSubmatch(segment); m != nil {
		name := strings.TrimSpace(m[1])
		// 名稱行混入其它段落標記時只取標記前的部分
		if loc := ingredientMarkerPattern.FindStringIndex(name); loc != nil {
			name = strings.TrimSpace(name[:loc[0]])
		}
		if name != "" {
			return name
		}
	}
	return fmt.Sprintf("食譜 %d", index)
}

// extractIngredients 抽取食材標記與步驟標記之間的區塊
func extractIngredients(segment string) []string {
	loc := ingredientMarkerPattern.FindStringIndex(segment)
	if loc == nil {
		return nil
	}
	block := segment[loc[1]:]
	if stepLoc := stepMarkerPattern.FindStringIndex(block); stepLoc != nil {
		block = block[:stepLoc[0]]
	}

	items := strings.FieldsFunc(block, func(r rune) bool {
		return r == '，' || r == ',' || r == '、' || r == '\n'
	})
	return common.CleanList(items)
}

// extractSteps 抽取步驟標記之後的區塊並拆成逐條步驟
func extractSteps(segment string) []string {
	loc := stepMarkerPattern.FindStringIndex(segment)
	if loc == nil {
		return nil
	}
	block := normalizeFullWidth(segment[loc[1]:])

	// 先按換行拆行，再拆開同一行內連續的「編號＋標點」條目
	var parts []string
	for _, line := range strings.Split(block, "\n") {
		parts = append(parts, stepInlineEnumPattern.Split(line, -1)...)
	}

	steps := make([]string, 0, len(parts))
	for _, part := range parts {
		part = stepEnumPattern.ReplaceAllString(part, "")
		part = strings.TrimLeft(part, ".、)：:． \t")
		part = strings.TrimSpace(part)
		if part != "" {
			steps = append(steps, part)
		}
	}
	return steps
}

// normalizeFullWidth 全形數字與標點轉半形，讓編號樣式一致
func normalizeFullWidth(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '０' && r <= '９':
			return r - '０' + '0'
		case r == '．':
			return '.'
		case r == '（':
			return '('
		case r == '）':
			return ')'
		case r == '：':
			return ':'
		}
		return r
	}, text)
}

// FormatDuration 將 PT#H#M 樣式的時長轉成中文顯示，不符合樣式時回傳「未指定」
func FormatDuration(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "未指定"
	}
	m := durationPattern.FindStringSubmatch(strings.ToUpper(raw))
	if m == nil || (m[1] == "" && m[2] == "") {
		return "未指定"
	}

	var sb strings.Builder
	if m[1] != "" && m[1] != "0" {
		sb.WriteString(m[1])
		sb.WriteString("小時")
	}
	if m[2] != "" && m[2] != "0" {
		sb.WriteString(m[2])
		sb.WriteString("分鐘")
	}
	if sb.Len() == 0 {
		return "未指定"
	}
	return sb.String()
}
