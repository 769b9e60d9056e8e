package cache

import (
	"context"
	"time"

	"github.com/modboard-next/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// AdminAuthState 管理员鉴权快照
// 命中时 JWT 中间件可跳过存储层查询
type AdminAuthState struct {
	AdminID   string `json:"admin_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	UpdatedAt int64  `json:"updated_at"`
}

func adminAuthStateKey(adminID string) string {
	return "auth:admin:" + adminID
}

// BuildAdminAuthState 从管理员视图构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:   admin.ID,
		Username:  admin.Username,
		Email:     admin.Email,
		UpdatedAt: time.Now().Unix(),
	}
}

// GetAdminAuthState 获取管理员鉴权快照
func GetAdminAuthState(ctx context.Context, adminID string) (*AdminAuthState, bool, error) {
	if adminID == "" {
		return nil, false, nil
	}
	var state AdminAuthState
	hit, err := GetJSON(ctx, adminAuthStateKey(adminID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAdminAuthState 写入管理员鉴权快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == "" {
		return nil
	}
	return SetJSON(ctx, adminAuthStateKey(state.AdminID), state, authStateCacheTTL)
}

// DelAdminAuthState 删除管理员鉴权快照
func DelAdminAuthState(ctx context.Context, adminID string) error {
	if adminID == "" {
		return nil
	}
	return Del(ctx, adminAuthStateKey(adminID))
}
