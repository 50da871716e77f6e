package corpus

import (
	"context"
)

// MemoryStore 記憶體語料庫，開發環境與測試用
type MemoryStore struct {
	docs []Document
}

// NewMemoryStore 以固定文件建立記憶體語料庫
func NewMemoryStore(docs []Document) *MemoryStore {
	return &MemoryStore{docs: docs}
}

// Snapshot 回傳語料庫快照，保留插入順序
func (s *MemoryStore) Snapshot(ctx context.Context) ([]Document, error) {
	out := make([]Document, 0, len(s.docs))
	for _, doc := range s.docs {
		if doc.Valid() {
			out = append(out, doc)
		}
	}
	return out, nil
}
