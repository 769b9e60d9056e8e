package store

import "errors"

// 存储层统一错误；驱动细节只进日志，不跨层传播
var (
	ErrNotFound    = errors.New("document not found")
	ErrConflict    = errors.New("unique constraint violated")
	ErrPersistence = errors.New("persistence failure")
)

// 参与唯一约束的文档字段
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldTitle    = "title"
)

// Document 无模式文档，id 由存储层分配
type Document map[string]interface{}

// ID 返回文档 id，缺失时为空串
func (d Document) ID() string {
	if d == nil {
		return ""
	}
	if id, ok := d["id"].(string); ok {
		return id
	}
	return ""
}

// Clone 返回文档的浅拷贝
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func (d Document) stringField(key string) string {
	if d == nil {
		return ""
	}
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// Store 文档持久化契约
// username/email/title 的唯一性由实现层保证（约束为准，见 DocumentStore）
type Store interface {
	Close() error
	// Create 分配唯一 id 并写入文档，返回含 id 的落库结果
	Create(collection string, doc Document) (Document, error)
	// FindOne 按 id 查询，未命中返回 ErrNotFound
	FindOne(collection, id string) (Document, error)
	// FindOneByFilter 返回首个字段全匹配的文档，未命中返回 ErrNotFound
	FindOneByFilter(collection string, filter Document) (Document, error)
	// GetAll 返回集合全部文档，顺序由实现决定
	GetAll(collection string) ([]Document, error)
	// Update 仅合并给定字段，返回更新前快照；id 未知返回 ErrNotFound
	Update(collection, id string, fields Document) (Document, error)
	// Delete 删除文档，无删除发生返回 ErrNotFound
	Delete(collection, id string) error
	// ExistsWithUsernameEmail 集合内是否已有同用户名或同邮箱的文档
	ExistsWithUsernameEmail(collection, username, email string) (bool, error)
	// ExistsWithTitle 集合内是否已有同标题的文档
	ExistsWithTitle(collection, title string) (bool, error)
}
