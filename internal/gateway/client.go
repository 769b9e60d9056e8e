package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/modboard-next/internal/config"
	"github.com/modboard-next/internal/logger"
	"github.com/modboard-next/internal/models"
)

const defaultTimeout = 5 * time.Second

// ErrNotFound 网关侧资源不存在
var ErrNotFound = errors.New("gateway resource not found")

// UpstreamError 网关调用失败（传输错误、超时或非 2xx 响应）
// Status 为上游状态码，传输层失败时为 0
type UpstreamError struct {
	Status int
	Reason string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return "gateway unreachable: " + e.Reason
	}
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Reason)
}

// Client 网关操作契约
type Client interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListEnrollments(ctx context.Context) ([]models.Enrollment, error)
	SetUserLock(ctx context.Context, userID string, locked bool) error
	SetEnrollmentRole(ctx context.Context, courseID, userID, role string) error
}

// HTTPClient 网关 HTTP 客户端
// 每次调用携带服务间 Bearer 凭证，失败不重试，单次超时即返回
type HTTPClient struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

// NewHTTPClient 创建网关客户端
func NewHTTPClient(cfg config.GatewayConfig) *HTTPClient {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &HTTPClient{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		serviceToken: strings.TrimSpace(cfg.ServiceToken),
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// ListUsers 拉取全部用户
func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.call(ctx, http.MethodGet, "/admin-backend/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// enrollmentListResponse 网关选课列表外层包装
type enrollmentListResponse struct {
	Data []models.Enrollment `json:"data"`
}

// ListEnrollments 拉取全部选课记录
func (c *HTTPClient) ListEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	var resp enrollmentListResponse
	if err := c.call(ctx, http.MethodGet, "/admin-backend/courses/enrollments", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SetUserLock 更新用户锁定状态
func (c *HTTPClient) SetUserLock(ctx context.Context, userID string, locked bool) error {
	path := fmt.Sprintf("/admin-backend/users/%s/lock-status", userID)
	body := map[string]bool{"locked": locked}
	return c.call(ctx, http.MethodPatch, path, body, nil)
}

// SetEnrollmentRole 更新选课角色
func (c *HTTPClient) SetEnrollmentRole(ctx context.Context, courseID, userID, role string) error {
	path := fmt.Sprintf("/admin-backend/courses/%s/enrollments/%s", courseID, userID)
	body := map[string]string{"role": role}
	return c.call(ctx, http.MethodPatch, path, body, nil)
}

// call 统一的请求-检查-翻译流程；所有网关操作复用同一错误翻译
func (c *HTTPClient) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &UpstreamError{Reason: "encode request: " + err.Error()}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &UpstreamError{Reason: "build request: " + err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warnw("gateway_call_failed", "method", method, "path", path, "error", err)
		return &UpstreamError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warnw("gateway_bad_status", "method", method, "path", path, "status", resp.StatusCode)
		return &UpstreamError{Status: resp.StatusCode, Reason: strings.TrimSpace(string(raw))}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &UpstreamError{Status: resp.StatusCode, Reason: "decode response: " + err.Error()}
	}
	return nil
}
