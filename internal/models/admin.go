package models

import "github.com/modboard-next/internal/store"

// AdminCollection 管理员集合名
const AdminCollection = "admins"

// Admin 管理员视图（对外永不携带密码哈希）
type Admin struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	RegistrationDate string `json:"registration_date"`
}

// AdminFromDocument 从存储文档还原管理员视图
func AdminFromDocument(doc store.Document) Admin {
	return Admin{
		ID:               stringField(doc, "id"),
		Username:         stringField(doc, "username"),
		Email:            stringField(doc, "email"),
		RegistrationDate: stringField(doc, "registration_date"),
	}
}

func stringField(doc store.Document, key string) string {
	if doc == nil {
		return ""
	}
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}
