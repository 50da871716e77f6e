package recipe

import (
	"sort"
	"strings"

	"fridge-chef/internal/core/corpus"
	"fridge-chef/internal/pkg/common"
)

// Mode 配對模式，決定冰箱覆蓋率是硬性過濾還是僅作加分
type Mode string

const (
	// ModeFridgeCoverage 清冰箱模式：覆蓋率不足直接剔除
	ModeFridgeCoverage Mode = "fridge_coverage"
	// ModeDiscovery 探索模式：覆蓋率只影響排序
	ModeDiscovery Mode = "discovery"
)

// 評分權重
const (
	includeTermScore = 2.0 // 每命中一個使用者指定的食材／關鍵字
	spicyWantedScore = 1.5 // 想吃辣且命中辛辣詞庫
	mildWantedScore  = 1.0 // 不吃辣且未命中辛辣詞庫
	lightMethodScore = 1.2 // 清淡偏好且命中清淡烹調詞庫
	notOilyScore     = 1.0 // 清淡偏好且未命中油重詞庫
	cuisineHitScore  = 1.0 // 菜系提示命中
)

// Matcher 食譜配對器，對語料庫做過濾加評分
// 無狀態，單次呼叫即完成一輪過濾與排序，可安全併發使用
type Matcher struct {
	lexicon           *Lexicon
	coverageThreshold float64
}

// NewMatcher 建立配對器
func NewMatcher(lexicon *Lexicon, coverageThreshold float64) *Matcher {
	return &Matcher{
		lexicon:           lexicon,
		coverageThreshold: coverageThreshold,
	}
}

// scoredCandidate 單輪配對過程中的暫態資料，不做持久化
type scoredCandidate struct {
	record common.RecipeRecord
	score  float64
	order  int // 語料庫插入順序，同分時的穩定排序依據
}

// Match 過濾並排序語料庫，回傳前 limit 筆
// 過濾為硬性剔除（排除詞、辣度、覆蓋率），評分為加法式加權
func (m *Matcher) Match(docs []corpus.Document, intent common.Intent, fridge []string, mode Mode, limit int) []common.RecipeRecord {
	spiciness := intent.NormalizedSpiciness()
	lightStyle := IsLightStyle(intent.Style)
	cuisineKeywords := m.lexicon.CuisineKeywords(intent.Cuisine)

	var candidates []scoredCandidate
	for i, doc := range docs {
		if !doc.Valid() {
			continue
		}

		combined := combinedText(doc)
		filterText := strings.ToLower(doc.Title + " " + strings.Join(doc.Ingredients, " "))

		// 硬性過濾：排除詞出現在標題、食材或步驟任何位置
		if hitsAvoidTerm(combined, intent.Avoid) {
			continue
		}
		// 硬性過濾：不吃辣但標題或食材命中辛辣詞庫
		if spiciness == common.SpicinessMild && m.lexicon.MatchesSpicy(filterText) {
			continue
		}

		coverage := fridgeCoverage(doc.Ingredients, fridge)
		// 硬性過濾：清冰箱模式覆蓋率不足
		if mode == ModeFridgeCoverage && coverage < m.coverageThreshold {
			continue
		}

		score := 0.0
		for _, term := range intent.Include {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" && strings.Contains(combined, term) {
				score += includeTermScore
			}
		}
		switch spiciness {
		case common.SpicinessSpicy:
			if m.lexicon.MatchesSpicy(combined) {
				score += spicyWantedScore
			}
		case common.SpicinessMild:
			// 能到這裡代表標題與食材都沒命中辛辣詞庫
			score += mildWantedScore
		}
		if lightStyle {
			if m.lexicon.MatchesLight(combined) {
				score += lightMethodScore
			}
			if !m.lexicon.MatchesOily(combined) {
				score += notOilyScore
			}
		}
		if len(cuisineKeywords) > 0 && containsAny(combined, cuisineKeywords) {
			score += cuisineHitScore
		}
		// 覆蓋率不分模式一律加分，冰箱相關的食譜在探索模式也優先
		score += coverage

		candidates = append(candidates, scoredCandidate{
			record: toRecord(doc),
			score:  score,
			order:  i,
		})
	}

	// 分數高者在前；同分依語料庫順序，結果可重現
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	records := make([]common.RecipeRecord, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, c.record)
	}
	return records
}

// GenerationDirective 語料庫覆蓋不足時發給生成器的請求描述
type GenerationDirective struct {
	TargetCount int              `json:"target_count"`
	Fridge      []string         `json:"fridge"`
	Include     []string         `json:"include"`
	Avoid       []string         `json:"avoid"`
	Cuisine     string           `json:"cuisine,omitempty"`
	Style       string           `json:"style,omitempty"`
	Spiciness   common.Spiciness `json:"spiciness"`
	Language    string           `json:"language"`
}

// BuildDirective 組出補充生成請求描述；由呼叫端決定是否送交生成器
func (m *Matcher) BuildDirective(intent common.Intent, fridge []string, target int) GenerationDirective {
	return GenerationDirective{
		TargetCount: target,
		Fridge:      fridge,
		Include:     intent.Include,
		Avoid:       intent.Avoid,
		Cuisine:     intent.Cuisine,
		Style:       intent.Style,
		Spiciness:   intent.NormalizedSpiciness(),
		Language:    "zh-TW",
	}
}

// fridgeCoverage 食材覆蓋率：食譜食材中包含任一冰箱項目（子字串）的比例
func fridgeCoverage(ingredients []string, fridge []string) float64 {
	if len(ingredients) == 0 || len(fridge) == 0 {
		return 0
	}
	matched := 0
	for _, ingredient := range ingredients {
		ingredient = strings.ToLower(ingredient)
		for _, item := range fridge {
			item = strings.ToLower(strings.TrimSpace(item))
			if item != "" && strings.Contains(ingredient, item) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(ingredients))
}

// hitsAvoidTerm 排除詞比對（不分大小寫的子字串）
func hitsAvoidTerm(combined string, avoid []string) bool {
	for _, term := range avoid {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(combined, term) {
			return true
		}
	}
	return false
}

// combinedText 標題＋食材＋步驟的合併小寫文字，評分比對用
func combinedText(doc corpus.Document) string {
	var sb strings.Builder
	sb.WriteString(doc.Title)
	sb.WriteString(" ")
	sb.WriteString(strings.Join(doc.Ingredients, " "))
	sb.WriteString(" ")
	sb.WriteString(strings.Join(doc.Steps, " "))
	return strings.ToLower(sb.String())
}

// toRecord 語料庫文件轉為統一輸出格式
func toRecord(doc corpus.Document) common.RecipeRecord {
	record := common.RecipeRecord{
		ID:          doc.ID,
		Name:        doc.Title,
		Ingredients: doc.Ingredients,
		Steps:       doc.Steps,
		ImageRef:    doc.ImageURL,
		Yield:       doc.Yield,
		Duration:    FormatDuration(doc.Time),
	}
	common.SanitizeRecord(&record)
	return record
}
