package recipe

import (
	"strings"

	"fridge-chef/internal/infrastructure/config"
)

// Lexicon 評分用關鍵字詞庫
// 詞庫內容由設定檔提供，與評分邏輯分離，方便測試與擴充
type Lexicon struct {
	spicy   []string
	light   []string
	oily    []string
	cuisine map[string][]string
}

// NewLexicon 從設定建立詞庫，關鍵字一律轉小寫比對
func NewLexicon(cfg config.LexiconConfig) *Lexicon {
	cuisine := make(map[string][]string, len(cfg.Cuisine))
	for name, keywords := range cfg.Cuisine {
		cuisine[strings.ToLower(name)] = lowerAll(keywords)
	}
	return &Lexicon{
		spicy:   lowerAll(cfg.Spicy),
		light:   lowerAll(cfg.Light),
		oily:    lowerAll(cfg.Oily),
		cuisine: cuisine,
	}
}

// MatchesSpicy 文字是否命中辛辣詞庫
func (l *Lexicon) MatchesSpicy(text string) bool {
	return containsAny(text, l.spicy)
}

// MatchesLight 文字是否命中清淡烹調詞庫
func (l *Lexicon) MatchesLight(text string) bool {
	return containsAny(text, l.light)
}

// MatchesOily 文字是否命中油重烹調詞庫
func (l *Lexicon) MatchesOily(text string) bool {
	return containsAny(text, l.oily)
}

// CuisineKeywords 將自由文字的菜系提示對應到詞庫條目；對應不到回傳 nil
func (l *Lexicon) CuisineKeywords(hint string) []string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return nil
	}
	if keywords, ok := l.cuisine[hint]; ok {
		return keywords
	}
	// 提示文字包含詞庫鍵也算對應，例如「想吃日式的」→「日式」
	for name, keywords := range l.cuisine {
		if strings.Contains(hint, name) {
			return keywords
		}
	}
	return nil
}

// IsLightStyle 判斷飲食風格提示是否屬於清淡偏好
func IsLightStyle(style string) bool {
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		return false
	}
	for _, keyword := range []string{"清淡", "低油", "低脂", "少油", "健康", "light"} {
		if strings.Contains(style, keyword) {
			return true
		}
	}
	return false
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// containsAny 小寫子字串比對
func containsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
