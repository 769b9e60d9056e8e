package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/modboard-next/internal/config"
	"github.com/modboard-next/internal/logger"
	"github.com/modboard-next/internal/models"
)

const dispatchTimeout = 5 * time.Second

// RuleDigest 一次通知的完整规则清单
type RuleDigest struct {
	GeneratedAt string        `json:"generated_at"`
	RuleCount   int           `json:"rule_count"`
	Rules       []models.Rule `json:"rules"`
}

// Notifier 规则通知通道
// 调用方视角为 fire-and-forget，不反馈逐个接收方的投递结果
type Notifier interface {
	DispatchRuleDigest(ctx context.Context, digest RuleDigest) error
}

// New 按配置选择通知实现；未配置通知地址时仅记录日志
func New(cfg config.GatewayConfig) Notifier {
	if strings.TrimSpace(cfg.NotifyURL) == "" {
		return &LogNotifier{}
	}
	return NewHTTPNotifier(cfg)
}

// HTTPNotifier 通过外部通知端点投递规则摘要
type HTTPNotifier struct {
	notifyURL    string
	serviceToken string
	httpClient   *http.Client
}

// NewHTTPNotifier 创建 HTTP 通知器
func NewHTTPNotifier(cfg config.GatewayConfig) *HTTPNotifier {
	timeout := dispatchTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &HTTPNotifier{
		notifyURL:    strings.TrimSpace(cfg.NotifyURL),
		serviceToken: strings.TrimSpace(cfg.ServiceToken),
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// DispatchRuleDigest 投递一个规则摘要包
func (n *HTTPNotifier) DispatchRuleDigest(ctx context.Context, digest RuleDigest) error {
	payload, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("encode digest: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.notifyURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.serviceToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier 仅写日志的通知器（通知地址未配置时的兜底）
type LogNotifier struct{}

// DispatchRuleDigest 将摘要写入结构化日志
func (n *LogNotifier) DispatchRuleDigest(_ context.Context, digest RuleDigest) error {
	logger.Infow("rule_digest_dispatched",
		"rule_count", digest.RuleCount,
		"generated_at", digest.GeneratedAt,
	)
	return nil
}
