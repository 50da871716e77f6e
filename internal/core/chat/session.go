package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fridge-chef/internal/core/ai/provider"
	"fridge-chef/internal/core/corpus"
	"fridge-chef/internal/core/recipe"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	// RoleUser 使用者訊息
	RoleUser = "user"
	// RoleAssistant 助手訊息
	RoleAssistant = "assistant"

	replyUnclear        = "抱歉，我沒有聽懂您的需求，可以再說一次嗎？"
	replyGeneratorDown  = "抱歉，目前無法生成食譜，請稍後再試一次。"
	replyNothingFound   = "抱歉，找不到符合條件的食譜，換個條件再試試看？"
	historyLimitPerTurn = 10
)

// TurnResult 一輪對話的處理結果
type TurnResult struct {
	Category  common.IntentCategory `json:"category"`
	Reply     string                `json:"reply"`
	Records   []common.RecipeRecord `json:"recipes,omitempty"`
	Generated bool                  `json:"generated"`
}

// Session 對話協調器：分類意圖、查語料庫、必要時補生成食譜
// 核心套件不寫入對話紀錄，追加一律在這一層
type Session struct {
	config     *config.Config
	store      corpus.Store
	matcher    *recipe.Matcher
	classifier Classifier
	generator  provider.Generator
	log        Log

	// 每個 session 同時只允許一條生成流程
	turnGates sync.Map

	// 上一輪推薦的食譜名稱，生成時用來要求換口味
	lastNames sync.Map
}

// NewSession 創建對話協調器
func NewSession(
	cfg *config.Config,
	store corpus.Store,
	matcher *recipe.Matcher,
	classifier Classifier,
	generator provider.Generator,
	log Log,
) *Session {
	return &Session{
		config:     cfg,
		store:      store,
		matcher:    matcher,
		classifier: classifier,
		generator:  generator,
		log:        log,
	}
}

// HandleTurn 處理一輪使用者訊息
func (s *Session) HandleTurn(ctx context.Context, sessionID, userText string, fridge []string, mode recipe.Mode) (*TurnResult, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, common.NewValidationError("訊息不能為空")
	}

	s.appendEntry(ctx, sessionID, RoleUser, userText)

	intent, err := s.classifier.Classify(ctx, userText)
	if err != nil || intent == nil {
		common.LogWarn("意圖分類失敗，回覆追問",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return s.finishTurn(ctx, sessionID, &TurnResult{
			Category: common.IntentClarify,
			Reply:    replyUnclear,
		}), nil
	}

	switch intent.Category {
	case common.IntentChat, common.IntentClarify:
		return s.handleSmallTalk(ctx, sessionID, userText, intent.Category)
	default:
		return s.handleFindRecipe(ctx, sessionID, intent, fridge, mode)
	}
}

// handleSmallTalk 閒聊與追問都直接讓生成器回話
func (s *Session) handleSmallTalk(ctx context.Context, sessionID, userText string, category common.IntentCategory) (*TurnResult, error) {
	history, err := s.log.History(ctx, sessionID, historyLimitPerTurn)
	if err != nil {
		common.LogWarn("讀取對話紀錄失敗", zap.String("session_id", sessionID), zap.Error(err))
		history = nil
	}

	reply, err := s.generator.Generate(ctx, buildChatPrompt(userText, history))
	if err != nil {
		common.LogError("閒聊回覆生成失敗", zap.String("session_id", sessionID), zap.Error(err))
		reply = replyGeneratorDown
	}

	return s.finishTurn(ctx, sessionID, &TurnResult{
		Category: category,
		Reply:    strings.TrimSpace(reply),
	}), nil
}

// handleFindRecipe 找食譜主流程：先比對語料庫，沒有命中再補生成
func (s *Session) handleFindRecipe(ctx context.Context, sessionID string, intent *common.Intent, fridge []string, mode recipe.Mode) (*TurnResult, error) {
	fridge = common.CleanList(fridge)

	docs, err := s.store.Snapshot(ctx)
	if err != nil {
		common.LogError("語料庫讀取失敗", zap.String("session_id", sessionID), zap.Error(err))
		return nil, common.ErrCorpusUnavailable
	}

	records := s.matcher.Match(docs, *intent, fridge, mode, s.config.Match.DefaultLimit)
	generated := false

	if len(records) == 0 {
		records, err = s.generateSupplement(ctx, sessionID, intent, fridge)
		if err != nil {
			return s.finishTurn(ctx, sessionID, &TurnResult{
				Category: common.IntentFindRecipe,
				Reply:    replyGeneratorDown,
			}), nil
		}
		generated = true
	}

	if len(records) == 0 {
		return s.finishTurn(ctx, sessionID, &TurnResult{
			Category: common.IntentFindRecipe,
			Reply:    replyNothingFound,
		}), nil
	}

	s.rememberNames(sessionID, records)

	result := &TurnResult{
		Category:  common.IntentFindRecipe,
		Reply:     fmt.Sprintf("為您找到 %d 道食譜", len(records)),
		Records:   records,
		Generated: generated,
	}
	return s.finishTurn(ctx, sessionID, result), nil
}

// generateSupplement 語料庫沒命中時的補生成迴圈
// 最多嘗試 generationAttempts 次，每次解碼後按名稱去重，湊滿目標數量就停
func (s *Session) generateSupplement(ctx context.Context, sessionID string, intent *common.Intent, fridge []string) ([]common.RecipeRecord, error) {
	gate := s.gateFor(sessionID)
	gate.Lock()
	defer gate.Unlock()

	target := s.config.Match.GenerationTarget
	attempts := s.config.Match.GenerationAttempts
	directive := s.matcher.BuildDirective(*intent, fridge, target)

	seen := make(map[string]bool)
	var collected []common.RecipeRecord
	var lastErr error

	for attempt := 1; attempt <= attempts && len(collected) < target; attempt++ {
		prompt := buildGenerationPrompt(directive, s.previousNames(sessionID), collected)

		reply, err := s.generator.Generate(ctx, prompt)
		if err != nil {
			lastErr = err
			common.LogWarn("食譜生成失敗",
				zap.String("session_id", sessionID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		for _, record := range recipe.Decode(reply) {
			key := strings.ToLower(strings.TrimSpace(record.Name))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			collected = append(collected, record)
			if len(collected) >= target {
				break
			}
		}
	}

	if len(collected) == 0 && lastErr != nil {
		return nil, fmt.Errorf("generation failed after %d attempts: %w", attempts, lastErr)
	}
	return collected, nil
}

// finishTurn 把助手回覆寫進對話紀錄後回傳結果
func (s *Session) finishTurn(ctx context.Context, sessionID string, result *TurnResult) *TurnResult {
	content := result.Reply
	if len(result.Records) > 0 {
		content = recipe.Encode(result.Records)
	}
	s.appendEntry(ctx, sessionID, RoleAssistant, content)
	return result
}

func (s *Session) appendEntry(ctx context.Context, sessionID, role, content string) {
	entry := Entry{Role: role, Content: content, At: time.Now()}
	if err := s.log.Append(ctx, sessionID, entry); err != nil {
		// 紀錄寫失敗不影響回覆
		common.LogWarn("對話紀錄寫入失敗",
			zap.String("session_id", sessionID),
			zap.String("role", role),
			zap.Error(err),
		)
	}
}

func (s *Session) gateFor(sessionID string) *sync.Mutex {
	gate, _ := s.turnGates.LoadOrStore(sessionID, &sync.Mutex{})
	return gate.(*sync.Mutex)
}

func (s *Session) rememberNames(sessionID string, records []common.RecipeRecord) {
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Name)
	}
	s.lastNames.Store(sessionID, names)
}

func (s *Session) previousNames(sessionID string) []string {
	if value, ok := s.lastNames.Load(sessionID); ok {
		return value.([]string)
	}
	return nil
}

func buildChatPrompt(userText string, history []Entry) string {
	var builder strings.Builder
	builder.WriteString("你是一個友善的料理助手，用繁體中文簡短回覆使用者。\n")
	if len(history) > 0 {
		builder.WriteString("\n最近的對話：\n")
		for _, entry := range history {
			builder.WriteString(fmt.Sprintf("%s: %s\n", entry.Role, entry.Content))
		}
	}
	builder.WriteString(fmt.Sprintf("\n使用者訊息：%s\n", userText))
	builder.WriteString("\n要求：\n1. 回覆保持在三句話以內\n2. 如果使用者需求不清楚，簡短追問一句\n3. 不要輸出 JSON 或程式碼區塊")
	return builder.String()
}

func buildGenerationPrompt(directive recipe.GenerationDirective, previousNames []string, collected []common.RecipeRecord) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("請設計 %d 道家常食譜（繁體中文）。\n", directive.TargetCount))

	if len(directive.Fridge) > 0 {
		builder.WriteString("冰箱現有食材：\n")
		builder.WriteString(common.FormatFridge(directive.Fridge))
	}
	if len(directive.Include) > 0 {
		builder.WriteString(fmt.Sprintf("必須用到：%s\n", common.StringSliceToString(directive.Include)))
	}
	if len(directive.Avoid) > 0 {
		builder.WriteString(fmt.Sprintf("絕對不能出現：%s\n", common.StringSliceToString(directive.Avoid)))
	}
	if directive.Cuisine != "" {
		builder.WriteString(fmt.Sprintf("菜系：%s\n", directive.Cuisine))
	}
	if directive.Style != "" {
		builder.WriteString(fmt.Sprintf("飲食風格：%s\n", directive.Style))
	}
	switch directive.Spiciness {
	case common.SpicinessMild:
		builder.WriteString("口味：不辣，不要使用辣椒等辛辣食材\n")
	case common.SpicinessSpicy:
		builder.WriteString("口味：要辣\n")
	}

	exclude := append([]string{}, previousNames...)
	for _, record := range collected {
		exclude = append(exclude, record.Name)
	}
	if len(exclude) > 0 {
		builder.WriteString(fmt.Sprintf("這些食譜已經推薦過，請提供不同的：%s\n", common.StringSliceToString(exclude)))
	}

	builder.WriteString(`
請以以下 JSON 格式返回（僅作為範例，請勿直接複製內容）：
[
    {
        "title": "食譜名稱",
        "ingredients": ["食材1", "食材2"],
        "steps": ["步驟1", "步驟2"],
        "time": "約20分鐘",
        "yield": "2人份"
    }
]

要求：
1. 每道食譜的食材與步驟都要具體可操作
2. 只回傳一個獨立的 JSON 陣列，不要包含其他文字或程式碼區塊標記`)
	return builder.String()
}
