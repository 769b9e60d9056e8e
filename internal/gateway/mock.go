package gateway

import (
	"context"
	"sync"

	"github.com/modboard-next/internal/models"
)

// Mock 进程内网关替身，接收注入的用户/选课映射
// 用于测试与本地联调，不依赖真实网关
type Mock struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	enrollments map[string]map[string]*models.Enrollment // userID -> courseID -> enrollment
}

// NewMock 创建网关替身
func NewMock(users map[string]*models.User, enrollments map[string]map[string]*models.Enrollment) *Mock {
	if users == nil {
		users = make(map[string]*models.User)
	}
	if enrollments == nil {
		enrollments = make(map[string]map[string]*models.Enrollment)
	}
	return &Mock{users: users, enrollments: enrollments}
}

// ListUsers 返回注入的全部用户
func (m *Mock) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, *user)
	}
	return users, nil
}

// ListEnrollments 返回注入的全部选课记录
func (m *Mock) ListEnrollments(_ context.Context) ([]models.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var enrollments []models.Enrollment
	for _, byCourse := range m.enrollments {
		for _, enrollment := range byCourse {
			enrollments = append(enrollments, *enrollment)
		}
	}
	return enrollments, nil
}

// SetUserLock 更新用户锁定状态
func (m *Mock) SetUserLock(_ context.Context, userID string, locked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.AccountLockedByAdmins = locked
	return nil
}

// SetEnrollmentRole 更新选课角色
func (m *Mock) SetEnrollmentRole(_ context.Context, courseID, userID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byCourse, ok := m.enrollments[userID]
	if !ok {
		return ErrNotFound
	}
	enrollment, ok := byCourse[courseID]
	if !ok {
		return ErrNotFound
	}
	enrollment.Role = role
	return nil
}
