package store

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryStore 进程内文档存储
// 单进程内用互斥锁闭合「查重 + 写入」竞态；不适用于多进程部署，仅测试/开发
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
	}
}

// Close 关闭存储（内存实现无资源可释放）
func (s *MemoryStore) Close() error {
	return nil
}

// Create 分配 uuid 并写入文档
func (s *MemoryStore) Create(collection string, doc Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflictsLocked(collection, doc, "") {
		return nil, ErrConflict
	}

	stored := doc.Clone()
	if stored == nil {
		stored = Document{}
	}
	stored["id"] = uuid.NewString()

	coll := s.collections[collection]
	if coll == nil {
		coll = make(map[string]Document)
		s.collections[collection] = coll
	}
	coll[stored.ID()] = stored
	return stored.Clone(), nil
}

// FindOne 按 id 查询
func (s *MemoryStore) FindOne(collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

// FindOneByFilter 返回首个字段全匹配的文档
func (s *MemoryStore) FindOneByFilter(collection string, filter Document) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.collections[collection] {
		if matchesFilter(doc, filter) {
			return doc.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// GetAll 返回集合全部文档
func (s *MemoryStore) GetAll(collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		docs = append(docs, doc.Clone())
	}
	return docs, nil
}

// Update 合并给定字段，返回更新前快照
func (s *MemoryStore) Update(collection, id string, fields Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.conflictsLocked(collection, fields, id) {
		return nil, ErrConflict
	}

	snapshot := existing.Clone()
	for k, v := range fields {
		if k == "id" {
			continue
		}
		existing[k] = v
	}
	return snapshot, nil
}

// Delete 删除文档
func (s *MemoryStore) Delete(collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

// ExistsWithUsernameEmail 集合内是否已有同用户名或同邮箱的文档
func (s *MemoryStore) ExistsWithUsernameEmail(collection, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.collections[collection] {
		if username != "" && doc.stringField(FieldUsername) == username {
			return true, nil
		}
		if email != "" && doc.stringField(FieldEmail) == email {
			return true, nil
		}
	}
	return false, nil
}

// ExistsWithTitle 集合内是否已有同标题的文档
func (s *MemoryStore) ExistsWithTitle(collection, title string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.collections[collection] {
		if title != "" && doc.stringField(FieldTitle) == title {
			return true, nil
		}
	}
	return false, nil
}

// conflictsLocked 锁内查重，exclude 为写入自身的 id
func (s *MemoryStore) conflictsLocked(collection string, doc Document, exclude string) bool {
	username := doc.stringField(FieldUsername)
	email := doc.stringField(FieldEmail)
	title := doc.stringField(FieldTitle)
	if username == "" && email == "" && title == "" {
		return false
	}
	for id, existing := range s.collections[collection] {
		if id == exclude {
			continue
		}
		if username != "" && existing.stringField(FieldUsername) == username {
			return true
		}
		if email != "" && existing.stringField(FieldEmail) == email {
			return true
		}
		if title != "" && existing.stringField(FieldTitle) == title {
			return true
		}
	}
	return false
}

func matchesFilter(doc, filter Document) bool {
	for k, want := range filter {
		if doc[k] != want {
			return false
		}
	}
	return true
}
