package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fridge-chef/internal/core/corpus"
	"fridge-chef/internal/core/recipe"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator 照腳本逐次回覆，記錄收到的 prompt
type scriptedGenerator struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	i := g.calls
	g.calls++
	g.prompts = append(g.prompts, prompt)
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	var reply string
	if i < len(g.replies) {
		reply = g.replies[i]
	}
	return reply, err
}

// fixedClassifier 固定回傳同一個意圖
type fixedClassifier struct {
	intent *common.Intent
	err    error
}

func (c *fixedClassifier) Classify(_ context.Context, _ string) (*common.Intent, error) {
	return c.intent, c.err
}

func testConfig() *config.Config {
	return &config.Config{
		Match: config.MatchConfig{
			CoverageThreshold:  0.5,
			DefaultLimit:       5,
			GenerationAttempts: 3,
			GenerationTarget:   2,
		},
		Lexicon: config.LexiconConfig{
			Spicy: []string{"辣"},
		},
	}
}

func newTestSession(cfg *config.Config, store corpus.Store, classifier Classifier, generator *scriptedGenerator) (*Session, *MemoryLog) {
	log := NewMemoryLog()
	lexicon := recipe.NewLexicon(cfg.Lexicon)
	matcher := recipe.NewMatcher(lexicon, cfg.Match.CoverageThreshold)
	session := NewSession(cfg, store, matcher, classifier, generator, log)
	return session, log
}

func findRecipeIntent() *common.Intent {
	return &common.Intent{Category: common.IntentFindRecipe}
}

func TestHandleTurnEmptyMessage(t *testing.T) {
	session, _ := newTestSession(testConfig(), corpus.NewMemoryStore(nil), &fixedClassifier{}, &scriptedGenerator{})

	_, err := session.HandleTurn(context.Background(), "s1", "   ", nil, recipe.ModeDiscovery)

	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
}

func TestHandleTurnClassifierFailure(t *testing.T) {
	classifier := &fixedClassifier{err: errors.New("boom")}
	session, log := newTestSession(testConfig(), corpus.NewMemoryStore(nil), classifier, &scriptedGenerator{})

	result, err := session.HandleTurn(context.Background(), "s1", "呃", nil, recipe.ModeDiscovery)

	require.NoError(t, err)
	assert.Equal(t, common.IntentClarify, result.Category)
	assert.Equal(t, replyUnclear, result.Reply)

	// 使用者訊息與回覆都要進對話紀錄
	entries, err := log.History(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, RoleUser, entries[0].Role)
	assert.Equal(t, RoleAssistant, entries[1].Role)
}

func TestHandleTurnSmallTalk(t *testing.T) {
	classifier := &fixedClassifier{intent: &common.Intent{Category: common.IntentChat}}
	generator := &scriptedGenerator{replies: []string{"你好呀，今天想吃什麼？"}}
	session, _ := newTestSession(testConfig(), corpus.NewMemoryStore(nil), classifier, generator)

	result, err := session.HandleTurn(context.Background(), "s1", "嗨", nil, recipe.ModeDiscovery)

	require.NoError(t, err)
	assert.Equal(t, common.IntentChat, result.Category)
	assert.Equal(t, "你好呀，今天想吃什麼？", result.Reply)
	assert.Empty(t, result.Records)
}

func TestHandleTurnCorpusHitSkipsGeneration(t *testing.T) {
	store := corpus.NewMemoryStore([]corpus.Document{
		{ID: "1", Title: "番茄炒蛋", Ingredients: []string{"番茄", "蛋"}, Steps: []string{"炒"}},
	})
	classifier := &fixedClassifier{intent: findRecipeIntent()}
	generator := &scriptedGenerator{}
	session, log := newTestSession(testConfig(), store, classifier, generator)

	result, err := session.HandleTurn(context.Background(), "s1", "晚餐吃什麼", nil, recipe.ModeDiscovery)

	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "番茄炒蛋", result.Records[0].Name)
	assert.False(t, result.Generated)
	// 語料庫有命中就不打生成器
	assert.Equal(t, 0, generator.calls)

	// 有食譜時對話紀錄存的是編碼後的文字
	entries, err := log.History(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[1].Content, recipe.FieldSep)
}

func TestHandleTurnGenerationDedupe(t *testing.T) {
	classifier := &fixedClassifier{intent: findRecipeIntent()}
	// 第一次回同一道菜兩份（大小寫不同），第二次補一道新的
	generator := &scriptedGenerator{replies: []string{
		"Soup|||水|||煮" + recipe.RecordSep + "soup|||水|||煮久一點",
		"冬瓜湯|||冬瓜|||切塊~~煮滾",
	}}
	session, _ := newTestSession(testConfig(), corpus.NewMemoryStore(nil), classifier, generator)

	result, err := session.HandleTurn(context.Background(), "s1", "來點湯", nil, recipe.ModeDiscovery)

	require.NoError(t, err)
	assert.True(t, result.Generated)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Soup", result.Records[0].Name)
	assert.Equal(t, "冬瓜湯", result.Records[1].Name)
	// 湊滿目標數量就停，不再打第三次
	assert.Equal(t, 2, generator.calls)
}

func TestHandleTurnGenerationAttemptCap(t *testing.T) {
	classifier := &fixedClassifier{intent: findRecipeIntent()}
	// 每次都回已收集過的同一道菜，補不滿目標也只能試三次
	generator := &scriptedGenerator{replies: []string{
		"老菜|||食材|||做法",
		"老菜|||食材|||做法",
		"老菜|||食材|||做法",
		"老菜|||食材|||做法",
	}}
	session, _ := newTestSession(testConfig(), corpus.NewMemoryStore(nil), classifier, generator)

	result, err := session.HandleTurn(context.Background(), "s1", "找食譜", nil, recipe.ModeDiscovery)

	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, 3, generator.calls)
}

func TestHandleTurnGenerationAllFail(t *testing.T) {
	classifier := &fixedClassifier{intent: findRecipeIntent()}
	generator := &scriptedGenerator{errs: []error{
		errors.New("down"), errors.New("down"), errors.New("down"),
	}}
	session, _ := newTestSession(testConfig(), corpus.NewMemoryStore(nil), classifier, generator)

	result, err := session.HandleTurn(context.Background(), "s1", "找食譜", nil, recipe.ModeDiscovery)

	require.NoError(t, err)
	assert.Equal(t, replyGeneratorDown, result.Reply)
	assert.Empty(t, result.Records)
	assert.Equal(t, 3, generator.calls)
}

// overlapGenerator 記錄同時在途的 Generate 呼叫數
type overlapGenerator struct {
	inFlight    int32
	maxInFlight int32
}

func (g *overlapGenerator) Generate(_ context.Context, _ string) (string, error) {
	current := atomic.AddInt32(&g.inFlight, 1)
	for {
		peak := atomic.LoadInt32(&g.maxInFlight)
		if current <= peak || atomic.CompareAndSwapInt32(&g.maxInFlight, peak, current) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	atomic.AddInt32(&g.inFlight, -1)
	return "冬瓜湯|||冬瓜|||煮" + recipe.RecordSep + "蛤蜊湯|||蛤蜊|||煮", nil
}

func TestHandleTurnSerializesGenerationPerSession(t *testing.T) {
	cfg := testConfig()
	classifier := &fixedClassifier{intent: findRecipeIntent()}
	generator := &overlapGenerator{}
	lexicon := recipe.NewLexicon(cfg.Lexicon)
	matcher := recipe.NewMatcher(lexicon, cfg.Match.CoverageThreshold)
	session := NewSession(cfg, corpus.NewMemoryStore(nil), matcher, classifier, generator, NewMemoryLog())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := session.HandleTurn(context.Background(), "s1", "來點湯", nil, recipe.ModeDiscovery)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// 同一個 session 一次只能有一條生成流程在途
	assert.Equal(t, int32(1), atomic.LoadInt32(&generator.maxInFlight))
}

func TestHandleTurnPreviousSuggestionsInPrompt(t *testing.T) {
	classifier := &fixedClassifier{intent: findRecipeIntent()}
	generator := &scriptedGenerator{replies: []string{
		"冬瓜湯|||冬瓜|||煮" + recipe.RecordSep + "蛤蜊湯|||蛤蜊|||煮",
		"味噌湯|||味噌|||煮" + recipe.RecordSep + "玉米湯|||玉米|||煮",
	}}
	session, _ := newTestSession(testConfig(), corpus.NewMemoryStore(nil), classifier, generator)

	_, err := session.HandleTurn(context.Background(), "s1", "來點湯", nil, recipe.ModeDiscovery)
	require.NoError(t, err)

	_, err = session.HandleTurn(context.Background(), "s1", "再來點別的湯", nil, recipe.ModeDiscovery)
	require.NoError(t, err)

	// 第二輪的 prompt 要帶上一輪推薦過的名稱要求換口味
	require.Equal(t, 2, generator.calls)
	assert.True(t, strings.Contains(generator.prompts[1], "冬瓜湯"))
	assert.True(t, strings.Contains(generator.prompts[1], "蛤蜊湯"))
}
