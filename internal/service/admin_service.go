package service

import (
	"context"
	"errors"
	"time"

	"github.com/modboard-next/internal/cache"
	"github.com/modboard-next/internal/logger"
	"github.com/modboard-next/internal/models"
	"github.com/modboard-next/internal/store"
)

// AdminRegisterInput 管理员注册输入
type AdminRegisterInput struct {
	Username string
	Email    string
	Password string
}

// AdminService 管理员管理服务
type AdminService struct {
	db   store.Store
	auth *AuthService
}

// NewAdminService 创建管理员管理服务
func NewAdminService(db store.Store, auth *AuthService) *AdminService {
	return &AdminService{
		db:   db,
		auth: auth,
	}
}

// Register 注册管理员
// 先查重给出友好错误，存储层唯一约束兜底并发窗口
func (s *AdminService) Register(input AdminRegisterInput) (*models.Admin, error) {
	exists, err := s.db.ExistsWithUsernameEmail(models.AdminCollection, input.Username, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameEmailInUse
	}

	hash, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	doc := store.Document{
		"username":          input.Username,
		"email":             input.Email,
		"password":          hash,
		"registration_date": time.Now().UTC().Format(time.RFC3339),
	}
	created, err := s.db.Create(models.AdminCollection, doc)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUsernameEmailInUse
		}
		return nil, err
	}

	admin := models.AdminFromDocument(created)
	logger.Infow("admin_registered", "admin_id", admin.ID, "username", admin.Username)
	return &admin, nil
}

// Get 按 id 获取管理员
func (s *AdminService) Get(id string) (*models.Admin, error) {
	doc, err := s.db.FindOne(models.AdminCollection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	admin := models.AdminFromDocument(doc)
	return &admin, nil
}

// List 获取全部管理员，顺序由存储层决定
func (s *AdminService) List() ([]models.Admin, error) {
	docs, err := s.db.GetAll(models.AdminCollection)
	if err != nil {
		return nil, err
	}
	admins := make([]models.Admin, 0, len(docs))
	for _, doc := range docs {
		admins = append(admins, models.AdminFromDocument(doc))
	}
	return admins, nil
}

// Delete 删除管理员；id 未知返回 ErrNotFound
func (s *AdminService) Delete(id string) error {
	if err := s.db.Delete(models.AdminCollection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	_ = cache.DelAdminAuthState(context.Background(), id)
	logger.Infow("admin_deleted", "admin_id", id)
	return nil
}
