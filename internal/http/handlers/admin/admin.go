package admin

import (
	"errors"
	"time"

	"github.com/modboard-next/internal/http/response"
	"github.com/modboard-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 管理员注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterAdmin 注册管理员
func (h *Handler) RegisterAdmin(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	admin, err := h.AdminService.Register(service.AdminRegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameEmailInUse) {
			respondError(c, response.CodeConflict, "Username or email already exists", nil)
			return
		}
		respondError(c, response.CodeInternal, "admin create failed", err)
		return
	}

	response.SuccessWithMsg(c, "created", admin)
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	_, token, expiresAt, err := h.AuthService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "Invalid credentials", nil)
			return
		}
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}

	response.Success(c, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	})
}

// GetAdmin 获取管理员详情
func (h *Handler) GetAdmin(c *gin.Context) {
	id := c.Param("id")

	admin, err := h.AdminService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "Admin not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}

	response.Success(c, admin)
}

// GetAdmins 获取管理员列表
func (h *Handler) GetAdmins(c *gin.Context) {
	admins, err := h.AdminService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}

	response.Success(c, admins)
}

// DeleteAdmin 删除管理员
func (h *Handler) DeleteAdmin(c *gin.Context) {
	id := c.Param("id")

	if err := h.AdminService.Delete(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "Admin not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "admin delete failed", err)
		return
	}

	response.SuccessWithMsg(c, "deleted", nil)
}
