// Package corpus 提供食譜語料庫的唯讀快照存取
// 配對器每次請求取得一份快照，核心邏輯不會回寫語料庫
package corpus

import (
	"context"
	"strings"
)

// Document 語料庫中的一筆食譜文件
type Document struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Time        string   `json:"time,omitempty"`
	Yield       string   `json:"yield,omitempty"`
}

// Valid 缺漏或格式不完整的文件視為不存在，跳過而不失敗
func (d Document) Valid() bool {
	return strings.TrimSpace(d.Title) != "" && len(d.Ingredients) > 0
}

// Store 語料庫快照介面
type Store interface {
	// Snapshot 取得目前全部食譜文件；格式不完整的文件已被濾除
	Snapshot(ctx context.Context) ([]Document, error)
}
