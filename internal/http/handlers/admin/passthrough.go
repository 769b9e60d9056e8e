package admin

import (
	"errors"

	"github.com/modboard-next/internal/gateway"
	"github.com/modboard-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetUsers 透传获取网关侧用户列表
func (h *Handler) GetUsers(c *gin.Context) {
	users, err := h.Gateway.ListUsers(c.Request.Context())
	if err != nil {
		respondGatewayError(c, err)
		return
	}

	response.Success(c, users)
}

// GetEnrollments 透传获取网关侧选课列表
func (h *Handler) GetEnrollments(c *gin.Context) {
	enrollments, err := h.Gateway.ListEnrollments(c.Request.Context())
	if err != nil {
		respondGatewayError(c, err)
		return
	}

	response.Success(c, enrollments)
}

// LockStatusRequest 用户锁定状态更新请求
type LockStatusRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

// UpdateUserLockStatus 更新网关侧用户锁定状态
func (h *Handler) UpdateUserLockStatus(c *gin.Context) {
	userID := c.Param("uuid")

	var req LockStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if err := h.Gateway.SetUserLock(c.Request.Context(), userID, *req.Locked); err != nil {
		respondGatewayError(c, err)
		return
	}

	requestLog(c).Infow("user_lock_updated", "user_id", userID, "locked", *req.Locked)
	response.SuccessWithMsg(c, "updated", nil)
}

// EnrollmentRoleRequest 选课角色更新请求
type EnrollmentRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateEnrollmentRole 更新网关侧选课角色
func (h *Handler) UpdateEnrollmentRole(c *gin.Context) {
	courseID := c.Param("courseId")
	userID := c.Param("uuid")

	var req EnrollmentRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if err := h.Gateway.SetEnrollmentRole(c.Request.Context(), courseID, userID, req.Role); err != nil {
		respondGatewayError(c, err)
		return
	}

	requestLog(c).Infow("enrollment_role_updated", "user_id", userID, "course_id", courseID, "role", req.Role)
	response.SuccessWithMsg(c, "updated", nil)
}

// respondGatewayError 统一网关错误出口；上游细节只进日志
func respondGatewayError(c *gin.Context, err error) {
	var upstream *gateway.UpstreamError
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		respondError(c, response.CodeNotFound, "resource not found", nil)
	case errors.As(err, &upstream):
		respondError(c, response.CodeBadGateway, "upstream service unavailable", err)
	default:
		respondError(c, response.CodeInternal, "gateway call failed", err)
	}
}
