package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRecord(t *testing.T) {
	record := RecipeRecord{
		Name:        "  番茄炒蛋  ",
		Ingredients: []string{" 番茄 ", "", "蛋"},
		Steps:       []string{"  ", "炒"},
	}

	require.True(t, SanitizeRecord(&record))
	assert.Equal(t, "番茄炒蛋", record.Name)
	assert.Equal(t, []string{"番茄", "蛋"}, record.Ingredients)
	assert.Equal(t, []string{"炒"}, record.Steps)
}

func TestSanitizeRecordBlankName(t *testing.T) {
	record := RecipeRecord{Name: "   "}

	assert.False(t, SanitizeRecord(&record))
}

func TestSanitizeRecordPlaceholders(t *testing.T) {
	record := RecipeRecord{Name: "神秘料理"}

	require.True(t, SanitizeRecord(&record))
	assert.Equal(t, []string{PlaceholderIngredients}, record.Ingredients)
	assert.Equal(t, []string{PlaceholderSteps}, record.Steps)
}

func TestNormalizedCategory(t *testing.T) {
	assert.Equal(t, IntentChat, Intent{Category: IntentChat}.NormalizedCategory())
	assert.Equal(t, IntentClarify, Intent{Category: IntentClarify}.NormalizedCategory())
	// 未知分類一律當找食譜處理
	assert.Equal(t, IntentFindRecipe, Intent{Category: "garbage"}.NormalizedCategory())
	assert.Equal(t, IntentFindRecipe, Intent{}.NormalizedCategory())
}

func TestNormalizedSpiciness(t *testing.T) {
	assert.Equal(t, SpicinessMild, Intent{Spiciness: SpicinessMild}.NormalizedSpiciness())
	assert.Equal(t, SpicinessSpicy, Intent{Spiciness: SpicinessSpicy}.NormalizedSpiciness())
	assert.Equal(t, SpicinessUnspecified, Intent{Spiciness: "超辣"}.NormalizedSpiciness())
	assert.Equal(t, SpicinessUnspecified, Intent{}.NormalizedSpiciness())
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, CleanList([]string{" a ", "", "b", "  "}))
	assert.Empty(t, CleanList(nil))
}
