package worker

import (
	"context"
	"encoding/json"

	"github.com/modboard-next/internal/logger"
	"github.com/modboard-next/internal/notify"
	"github.com/modboard-next/internal/provider"
	"github.com/modboard-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskRuleNotify, c.handleRuleNotify)
}

func (c *Consumer) handleRuleNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_rule_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.RuleNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_rule_notify_unmarshal_failed", "error", err)
		return err
	}
	if c.Notifier == nil {
		logger.Warnw("worker_rule_notify_skip_notifier_nil", "rule_count", len(payload.Rules))
		return nil
	}

	digest := notify.RuleDigest{
		GeneratedAt: payload.GeneratedAt,
		RuleCount:   len(payload.Rules),
		Rules:       payload.Rules,
	}
	if err := c.Notifier.DispatchRuleDigest(ctx, digest); err != nil {
		logger.Warnw("worker_rule_notify_dispatch_failed", "rule_count", digest.RuleCount, "error", err)
		return err
	}
	logger.Infow("worker_rule_notify_dispatched", "rule_count", digest.RuleCount)
	return nil
}
