package queue

import (
	"encoding/json"

	"github.com/modboard-next/internal/models"

	"github.com/hibiken/asynq"
)

// TaskRuleNotify 规则通知投递任务
const TaskRuleNotify = "rule:notify"

// RuleNotifyPayload 规则通知任务载荷
type RuleNotifyPayload struct {
	GeneratedAt string        `json:"generated_at"`
	Rules       []models.Rule `json:"rules"`
}

// NewRuleNotifyTask 创建规则通知任务
func NewRuleNotifyTask(payload RuleNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRuleNotify, body), nil
}
