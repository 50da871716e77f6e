// Package provider 定義自由文字生成器的抽象邊界
// 對核心而言生成器是黑盒子：文字進、文字出、或失敗
package provider

import (
	"context"
)

// Generator 自由文字生成器介面
type Generator interface {
	// Generate 送出 prompt 取得一段文字回覆；失敗由呼叫端轉為使用者可見的道歉訊息
	Generate(ctx context.Context, prompt string) (string, error)
}
