package service

import (
	"context"
	"errors"
	"time"

	"github.com/modboard-next/internal/logger"
	"github.com/modboard-next/internal/models"
	"github.com/modboard-next/internal/notify"
	"github.com/modboard-next/internal/queue"
	"github.com/modboard-next/internal/store"
)

// RuleCreateInput 规则创建输入
type RuleCreateInput struct {
	Title                string
	Description          string
	EffectiveDate        string
	ApplicableConditions []string
}

// RuleUpdateInput 规则部分更新输入；nil 字段不触碰
type RuleUpdateInput struct {
	Title                *string
	Description          *string
	EffectiveDate        *string
	ApplicableConditions *[]string
}

// RuleService 审核规则服务
type RuleService struct {
	db          store.Store
	queueClient *queue.Client
	notifier    notify.Notifier
}

// NewRuleService 创建规则服务
func NewRuleService(db store.Store, queueClient *queue.Client, notifier notify.Notifier) *RuleService {
	return &RuleService{
		db:          db,
		queueClient: queueClient,
		notifier:    notifier,
	}
}

// Create 创建规则；标题冲突返回 ErrTitleInUse（约束为准）
func (s *RuleService) Create(input RuleCreateInput) (*models.Rule, error) {
	exists, err := s.db.ExistsWithTitle(models.RuleCollection, input.Title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrTitleInUse
	}

	conditions := input.ApplicableConditions
	if conditions == nil {
		conditions = []string{}
	}
	doc := store.Document{
		"title":                 input.Title,
		"description":           input.Description,
		"effective_date":        input.EffectiveDate,
		"applicable_conditions": conditions,
	}
	created, err := s.db.Create(models.RuleCollection, doc)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrTitleInUse
		}
		return nil, err
	}

	rule := models.RuleFromDocument(created)
	logger.Infow("rule_created", "rule_id", rule.ID, "title", rule.Title)
	return &rule, nil
}

// Get 按 id 获取规则
func (s *RuleService) Get(id string) (*models.Rule, error) {
	doc, err := s.db.FindOne(models.RuleCollection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rule := models.RuleFromDocument(doc)
	return &rule, nil
}

// List 获取全部规则
func (s *RuleService) List() ([]models.Rule, error) {
	docs, err := s.db.GetAll(models.RuleCollection)
	if err != nil {
		return nil, err
	}
	rules := make([]models.Rule, 0, len(docs))
	for _, doc := range docs {
		rules = append(rules, models.RuleFromDocument(doc))
	}
	return rules, nil
}

// Update 部分更新规则并逐字段落审计记录，归属 actor
// 只合并非 nil 字段；空串/空列表同样是有效的新值
func (s *RuleService) Update(id string, input RuleUpdateInput, actor string) (*models.Rule, error) {
	fields := store.Document{}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.EffectiveDate != nil {
		fields["effective_date"] = *input.EffectiveDate
	}
	if input.ApplicableConditions != nil {
		fields["applicable_conditions"] = *input.ApplicableConditions
	}

	snapshot, err := s.db.Update(models.RuleCollection, id, fields)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, store.ErrConflict):
			return nil, ErrTitleInUse
		}
		return nil, err
	}

	before := models.RuleFromDocument(snapshot)
	s.recordChanges(id, before, fields, actor)

	return s.Get(id)
}

// Notify 收集当前全部规则打成一个摘要包交给通知通道
// 队列启用时异步投递，否则就地投递；每次调用恰好一个包
func (s *RuleService) Notify(ctx context.Context) error {
	rules, err := s.List()
	if err != nil {
		return err
	}
	generatedAt := time.Now().UTC().Format(time.RFC3339)

	if s.queueClient.Enabled() {
		payload := queue.RuleNotifyPayload{
			GeneratedAt: generatedAt,
			Rules:       rules,
		}
		if err := s.queueClient.EnqueueRuleNotify(payload); err != nil {
			return err
		}
		logger.Infow("rule_notify_enqueued", "rule_count", len(rules))
		return nil
	}

	digest := notify.RuleDigest{
		GeneratedAt: generatedAt,
		RuleCount:   len(rules),
		Rules:       rules,
	}
	if err := s.notifier.DispatchRuleDigest(ctx, digest); err != nil {
		return err
	}
	logger.Infow("rule_notify_dispatched", "rule_count", len(rules))
	return nil
}

// AuditLog 获取某条规则的变更审计记录
func (s *RuleService) AuditLog(ruleID string) ([]models.RuleAuditEntry, error) {
	docs, err := s.db.GetAll(models.RuleAuditCollection)
	if err != nil {
		return nil, err
	}
	entries := make([]models.RuleAuditEntry, 0)
	for _, doc := range docs {
		entry := models.RuleAuditEntryFromDocument(doc)
		if entry.RuleID == ruleID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// recordChanges 对比更新前后的字段值，逐字段写入审计集合
func (s *RuleService) recordChanges(ruleID string, before models.Rule, fields store.Document, actor string) {
	changedAt := time.Now().UTC().Format(time.RFC3339)
	for field, current := range fields {
		var previous interface{}
		switch field {
		case "title":
			previous = before.Title
		case "description":
			previous = before.Description
		case "effective_date":
			previous = before.EffectiveDate
		case "applicable_conditions":
			previous = before.ApplicableConditions
		default:
			continue
		}
		if equalValue(previous, current) {
			continue
		}

		entry := store.Document{
			"rule_id":    ruleID,
			"field":      field,
			"previous":   previous,
			"current":    current,
			"actor":      actor,
			"changed_at": changedAt,
		}
		if _, err := s.db.Create(models.RuleAuditCollection, entry); err != nil {
			logger.Warnw("rule_audit_write_failed", "rule_id", ruleID, "field", field, "error", err)
			continue
		}
		logger.Infow("rule_field_changed",
			"rule_id", ruleID,
			"field", field,
			"previous", previous,
			"current", current,
			"actor", actor,
		)
	}
}

func equalValue(previous, current interface{}) bool {
	prevList, prevIsList := toStringSlice(previous)
	currList, currIsList := toStringSlice(current)
	if prevIsList && currIsList {
		if len(prevList) != len(currList) {
			return false
		}
		for i := range prevList {
			if prevList[i] != currList[i] {
				return false
			}
		}
		return true
	}
	return previous == current
}

func toStringSlice(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
