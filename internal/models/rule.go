package models

import "github.com/modboard-next/internal/store"

// 规则相关集合名
const (
	RuleCollection      = "rules"
	RuleAuditCollection = "rule_audit_logs"
)

// Rule 审核规则
type Rule struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	EffectiveDate        string   `json:"effective_date"`
	ApplicableConditions []string `json:"applicable_conditions"`
}

// RuleFromDocument 从存储文档还原规则
func RuleFromDocument(doc store.Document) Rule {
	return Rule{
		ID:                   stringField(doc, "id"),
		Title:                stringField(doc, "title"),
		Description:          stringField(doc, "description"),
		EffectiveDate:        stringField(doc, "effective_date"),
		ApplicableConditions: stringSliceField(doc, "applicable_conditions"),
	}
}

// RuleAuditEntry 规则变更审计记录（逐字段）
type RuleAuditEntry struct {
	ID        string      `json:"id"`
	RuleID    string      `json:"rule_id"`
	Field     string      `json:"field"`
	Previous  interface{} `json:"previous"`
	Current   interface{} `json:"current"`
	Actor     string      `json:"actor"`
	ChangedAt string      `json:"changed_at"`
}

// RuleAuditEntryFromDocument 从存储文档还原审计记录
func RuleAuditEntryFromDocument(doc store.Document) RuleAuditEntry {
	return RuleAuditEntry{
		ID:        stringField(doc, "id"),
		RuleID:    stringField(doc, "rule_id"),
		Field:     stringField(doc, "field"),
		Previous:  doc["previous"],
		Current:   doc["current"],
		Actor:     stringField(doc, "actor"),
		ChangedAt: stringField(doc, "changed_at"),
	}
}

// stringSliceField 兼容 JSON 解码出的 []interface{} 形态
func stringSliceField(doc store.Document, key string) []string {
	if doc == nil {
		return nil
	}
	switch v := doc[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
