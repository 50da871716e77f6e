package chat

import (
	"context"
	"errors"
	"testing"

	"fridge-chef/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyParsesIntent(t *testing.T) {
	generator := &scriptedGenerator{replies: []string{
		"```json\n{\"category\":\"find_recipe\",\"include\":[\"雞肉\"],\"avoid\":[\" 花生 \",\"\"],\"cuisine\":\"台式\",\"style\":\"\",\"spiciness\":\"mild\"}\n```",
	}}

	intent, err := NewAIClassifier(generator).Classify(context.Background(), "我想吃不辣的台式雞肉料理，不要花生")

	require.NoError(t, err)
	assert.Equal(t, common.IntentFindRecipe, intent.Category)
	assert.Equal(t, []string{"雞肉"}, intent.Include)
	// 空白項目清掉、前後空白修掉
	assert.Equal(t, []string{"花生"}, intent.Avoid)
	assert.Equal(t, "台式", intent.Cuisine)
	assert.Equal(t, common.SpicinessMild, intent.Spiciness)
}

func TestClassifyNormalizesUnknownValues(t *testing.T) {
	generator := &scriptedGenerator{replies: []string{
		`{"category":"whatever","spiciness":"超辣"}`,
	}}

	intent, err := NewAIClassifier(generator).Classify(context.Background(), "隨便")

	require.NoError(t, err)
	assert.Equal(t, common.IntentFindRecipe, intent.Category)
	assert.Equal(t, common.SpicinessUnspecified, intent.Spiciness)
}

func TestClassifyEmptyText(t *testing.T) {
	_, err := NewAIClassifier(&scriptedGenerator{}).Classify(context.Background(), "   ")

	assert.Error(t, err)
}

func TestClassifyGeneratorError(t *testing.T) {
	generator := &scriptedGenerator{errs: []error{errors.New("down")}}

	_, err := NewAIClassifier(generator).Classify(context.Background(), "嗨")

	assert.Error(t, err)
}

func TestClassifyUnparsableReply(t *testing.T) {
	generator := &scriptedGenerator{replies: []string{"我不會輸出 JSON"}}

	_, err := NewAIClassifier(generator).Classify(context.Background(), "嗨")

	assert.Error(t, err)
}
