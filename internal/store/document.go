package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// documentRow 文档落库行
// 唯一性字段冗余成列并建 (collection, 字段) 复合唯一索引，约束即权威冲突信号
type documentRow struct {
	ID         uint    `gorm:"primarykey"`
	Collection string  `gorm:"size:64;not null;index;uniqueIndex:uniq_documents_doc_id;uniqueIndex:uniq_documents_username;uniqueIndex:uniq_documents_email;uniqueIndex:uniq_documents_title"`
	DocID      string  `gorm:"size:36;not null;uniqueIndex:uniq_documents_doc_id"`
	Username   *string `gorm:"size:255;uniqueIndex:uniq_documents_username"`
	Email      *string `gorm:"size:255;uniqueIndex:uniq_documents_email"`
	Title      *string `gorm:"size:255;uniqueIndex:uniq_documents_title"`
	Data       string  `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName 指定表名
func (documentRow) TableName() string {
	return "documents"
}

// DocumentStore 文档库存储，gorm 实现
type DocumentStore struct {
	db *gorm.DB
}

// OpenDocumentStore 按驱动打开文档库并迁移表结构
func OpenDocumentStore(driver, dsn string) (*DocumentStore, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrPersistence, err)
	}
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("%w: migrate documents: %v", ErrPersistence, err)
	}
	return &DocumentStore{db: db}, nil
}

// NewDocumentStore 基于已打开的 gorm 连接创建存储（测试用）
func NewDocumentStore(db *gorm.DB) (*DocumentStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("%w: migrate documents: %v", ErrPersistence, err)
	}
	return &DocumentStore{db: db}, nil
}

// Close 关闭底层连接
func (s *DocumentStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Create 分配 uuid 并写入文档；唯一索引冲突返回 ErrConflict
func (s *DocumentStore) Create(collection string, doc Document) (Document, error) {
	stored := doc.Clone()
	if stored == nil {
		stored = Document{}
	}
	delete(stored, "id")

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: encode document: %v", ErrPersistence, err)
	}

	row := documentRow{
		Collection: collection,
		DocID:      uuid.NewString(),
		Username:   uniqueField(stored, FieldUsername),
		Email:      uniqueField(stored, FieldEmail),
		Title:      uniqueField(stored, FieldTitle),
		Data:       string(data),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return nil, translateErr(err)
	}

	stored["id"] = row.DocID
	return stored, nil
}

// FindOne 按 id 查询
func (s *DocumentStore) FindOne(collection, id string) (Document, error) {
	var row documentRow
	err := s.db.Where("collection = ? AND doc_id = ?", collection, id).First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return decodeRow(&row)
}

// FindOneByFilter 返回首个字段全匹配的文档
// 唯一性字段直接走索引列，其余条件在解码后匹配
func (s *DocumentStore) FindOneByFilter(collection string, filter Document) (Document, error) {
	query := s.db.Where("collection = ?", collection)
	rest := Document{}
	for k, v := range filter {
		switch k {
		case FieldUsername, FieldEmail, FieldTitle:
			query = query.Where(k+" = ?", v)
		default:
			rest[k] = v
		}
	}

	var rows []documentRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateErr(err)
	}
	for i := range rows {
		doc, err := decodeRow(&rows[i])
		if err != nil {
			return nil, err
		}
		if matchesFilter(doc, rest) {
			return doc, nil
		}
	}
	return nil, ErrNotFound
}

// GetAll 返回集合全部文档
func (s *DocumentStore) GetAll(collection string) ([]Document, error) {
	var rows []documentRow
	if err := s.db.Where("collection = ?", collection).Find(&rows).Error; err != nil {
		return nil, translateErr(err)
	}
	docs := make([]Document, 0, len(rows))
	for i := range rows {
		doc, err := decodeRow(&rows[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Update 合并给定字段，返回更新前快照
func (s *DocumentStore) Update(collection, id string, fields Document) (Document, error) {
	var snapshot Document
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var row documentRow
		if err := tx.Where("collection = ? AND doc_id = ?", collection, id).First(&row).Error; err != nil {
			return err
		}

		doc, err := decodeRow(&row)
		if err != nil {
			return err
		}
		snapshot = doc.Clone()

		for k, v := range fields {
			if k == "id" {
				continue
			}
			doc[k] = v
		}
		delete(doc, "id")
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("%w: encode document: %v", ErrPersistence, err)
		}

		row.Data = string(data)
		row.Username = uniqueField(doc, FieldUsername)
		row.Email = uniqueField(doc, FieldEmail)
		row.Title = uniqueField(doc, FieldTitle)
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, translateErr(err)
	}
	return snapshot, nil
}

// Delete 删除文档，id 不可复用（uuid 分配保证）
func (s *DocumentStore) Delete(collection, id string) error {
	result := s.db.Where("collection = ? AND doc_id = ?", collection, id).Delete(&documentRow{})
	if result.Error != nil {
		return translateErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsWithUsernameEmail 集合内是否已有同用户名或同邮箱的文档
func (s *DocumentStore) ExistsWithUsernameEmail(collection, username, email string) (bool, error) {
	var count int64
	err := s.db.Model(&documentRow{}).
		Where("collection = ?", collection).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, translateErr(err)
	}
	return count > 0, nil
}

// ExistsWithTitle 集合内是否已有同标题的文档
func (s *DocumentStore) ExistsWithTitle(collection, title string) (bool, error) {
	var count int64
	err := s.db.Model(&documentRow{}).
		Where("collection = ? AND title = ?", collection, title).
		Count(&count).Error
	if err != nil {
		return false, translateErr(err)
	}
	return count > 0, nil
}

func decodeRow(row *documentRow) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(row.Data), &doc); err != nil {
		return nil, fmt.Errorf("%w: decode document %s: %v", ErrPersistence, row.DocID, err)
	}
	if doc == nil {
		doc = Document{}
	}
	doc["id"] = row.DocID
	return doc, nil
}

// uniqueField 提取唯一性字段；空值落 NULL，不参与约束
func uniqueField(doc Document, key string) *string {
	value := doc.stringField(key)
	if value == "" {
		return nil
	}
	return &value
}

// translateErr 将驱动错误折叠为存储层错误，不泄漏驱动类型
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict), errors.Is(err, ErrPersistence):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isDuplicateMessage(err):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

// isDuplicateMessage 兜底识别未被 gorm 翻译的唯一约束错误
func isDuplicateMessage(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
