package recipe

import (
	"testing"

	"fridge-chef/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
)

func TestLexiconMatches(t *testing.T) {
	lex := testLexicon()

	assert.True(t, lex.MatchesSpicy("麻辣鍋底"))
	assert.False(t, lex.MatchesSpicy("番茄炒蛋"))
	assert.True(t, lex.MatchesLight("清蒸鱸魚"))
	assert.True(t, lex.MatchesOily("酥炸雞排"))
	assert.False(t, lex.MatchesOily("涼拌小黃瓜"))
}

func TestLexiconCuisineKeywords(t *testing.T) {
	lex := testLexicon()

	// 完整鍵直接對應
	assert.Equal(t, []string{"味噌", "照燒", "丼"}, lex.CuisineKeywords("日式"))
	// 提示文字包含鍵也算對應
	assert.Equal(t, []string{"味噌", "照燒", "丼"}, lex.CuisineKeywords("想吃日式的"))
	// 對應不到回傳 nil
	assert.Nil(t, lex.CuisineKeywords("義式"))
	assert.Nil(t, lex.CuisineKeywords(""))
}

func TestLexiconCaseInsensitive(t *testing.T) {
	lex := NewLexicon(config.LexiconConfig{
		Spicy: []string{"Chili"},
	})

	assert.True(t, lex.MatchesSpicy("extra CHILI sauce"))
}

func TestIsLightStyle(t *testing.T) {
	assert.True(t, IsLightStyle("清淡"))
	assert.True(t, IsLightStyle("想吃低油的"))
	assert.True(t, IsLightStyle("Light meal"))
	assert.False(t, IsLightStyle("重口味"))
	assert.False(t, IsLightStyle(""))
}
