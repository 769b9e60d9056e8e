package service

import (
	"context"
	"errors"
	"testing"

	"github.com/modboard-next/internal/notify"
	"github.com/modboard-next/internal/store"
)

// captureNotifier 记录收到的摘要包
type captureNotifier struct {
	digests []notify.RuleDigest
}

func (n *captureNotifier) DispatchRuleDigest(_ context.Context, digest notify.RuleDigest) error {
	n.digests = append(n.digests, digest)
	return nil
}

func setupRuleServiceTest(t *testing.T) (*RuleService, *captureNotifier) {
	t.Helper()
	notifier := &captureNotifier{}
	rules := NewRuleService(store.NewMemoryStore(), nil, notifier)
	return rules, notifier
}

func strPtr(s string) *string {
	return &s
}

func TestRuleCreateAndGet(t *testing.T) {
	rules, _ := setupRuleServiceTest(t)

	created, err := rules.Create(RuleCreateInput{
		Title:                "No spoilers",
		Description:          "keep plot points out of titles",
		EffectiveDate:        "2026-09-01",
		ApplicableConditions: []string{"posts", "comments"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}

	got, err := rules.Get(created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Title != "No spoilers" || len(got.ApplicableConditions) != 2 {
		t.Fatalf("unexpected rule: %+v", got)
	}
}

func TestRuleCreateNilConditionsBecomeEmptyList(t *testing.T) {
	rules, _ := setupRuleServiceTest(t)

	created, err := rules.Create(RuleCreateInput{Title: "Bare rule"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ApplicableConditions == nil || len(created.ApplicableConditions) != 0 {
		t.Fatalf("expected empty condition list, got %#v", created.ApplicableConditions)
	}
}

func TestRuleCreateDuplicateTitle(t *testing.T) {
	rules, _ := setupRuleServiceTest(t)

	if _, err := rules.Create(RuleCreateInput{Title: "No spoilers"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := rules.Create(RuleCreateInput{Title: "No spoilers"}); !errors.Is(err, ErrTitleInUse) {
		t.Fatalf("expected ErrTitleInUse, got %v", err)
	}
}

func TestRulePartialUpdateTouchesOnlyGivenFields(t *testing.T) {
	rules, _ := setupRuleServiceTest(t)

	created, err := rules.Create(RuleCreateInput{
		Title:                "No spoilers",
		Description:          "old description",
		EffectiveDate:        "2026-09-01",
		ApplicableConditions: []string{"posts"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := rules.Update(created.ID, RuleUpdateInput{
		Description: strPtr("new description"),
	}, "alice")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Description != "new description" {
		t.Fatalf("description not updated: %q", updated.Description)
	}
	if updated.Title != "No spoilers" || updated.EffectiveDate != "2026-09-01" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
	if len(updated.ApplicableConditions) != 1 || updated.ApplicableConditions[0] != "posts" {
		t.Fatalf("conditions changed: %#v", updated.ApplicableConditions)
	}
}

func TestRuleUpdateEmptyStringIsAValue(t *testing.T) {
	rules, _ := setupRuleServiceTest(t)

	created, err := rules.Create(RuleCreateInput{
		Title:       "No spoilers",
		Description: "old description",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := rules.Update(created.ID, RuleUpdateInput{
		Description: strPtr(""),
	}, "alice")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Description != "" {
		t.Fatalf("empty string should overwrite, got %q", updated.Description)
	}
}

func TestRuleUpdateUnknownID(t *testing.T) {
	rules, _ := setupRuleServiceTest(t)

	if _, err := rules.Update("missing", RuleUpdateInput{Title: strPtr("x")}, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRuleUpdateTitleConflict(t *testing.T) {
	rules, _ := setupRuleServiceTest(t)

	if _, err := rules.Create(RuleCreateInput{Title: "first"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := rules.Create(RuleCreateInput{Title: "second"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := rules.Update(second.ID, RuleUpdateInput{Title: strPtr("first")}, "alice"); !errors.Is(err, ErrTitleInUse) {
		t.Fatalf("expected ErrTitleInUse, got %v", err)
	}
}

func TestRuleUpdateRecordsAuditPerChangedField(t *testing.T) {
	rules, _ := setupRuleServiceTest(t)

	created, err := rules.Create(RuleCreateInput{
		Title:       "No spoilers",
		Description: "old description",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// description 改变、title 原值重写：只有真实变更进入审计
	if _, err := rules.Update(created.ID, RuleUpdateInput{
		Title:       strPtr("No spoilers"),
		Description: strPtr("new description"),
	}, "alice"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	entries, err := rules.AuditLog(created.ID)
	if err != nil {
		t.Fatalf("audit log failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Field != "description" {
		t.Fatalf("unexpected field: %q", entry.Field)
	}
	if entry.Previous != "old description" || entry.Current != "new description" {
		t.Fatalf("unexpected values: %v -> %v", entry.Previous, entry.Current)
	}
	if entry.Actor != "alice" {
		t.Fatalf("unexpected actor: %q", entry.Actor)
	}
	if entry.ChangedAt == "" {
		t.Fatalf("expected changed_at timestamp")
	}
}

func TestRuleAuditLogScopedToRule(t *testing.T) {
	rules, _ := setupRuleServiceTest(t)

	first, err := rules.Create(RuleCreateInput{Title: "first"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := rules.Create(RuleCreateInput{Title: "second"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := rules.Update(first.ID, RuleUpdateInput{Description: strPtr("a")}, "alice"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := rules.Update(second.ID, RuleUpdateInput{Description: strPtr("b")}, "bob"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	entries, err := rules.AuditLog(first.ID)
	if err != nil {
		t.Fatalf("audit log failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Actor != "alice" {
		t.Fatalf("unexpected entries for first rule: %+v", entries)
	}
}

func TestRuleNotifyDispatchesSingleDigest(t *testing.T) {
	rules, notifier := setupRuleServiceTest(t)

	for _, title := range []string{"first", "second", "third"} {
		if _, err := rules.Create(RuleCreateInput{Title: title}); err != nil {
			t.Fatalf("create %s failed: %v", title, err)
		}
	}

	if err := rules.Notify(context.Background()); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	if len(notifier.digests) != 1 {
		t.Fatalf("expected exactly one digest, got %d", len(notifier.digests))
	}
	digest := notifier.digests[0]
	if digest.RuleCount != 3 || len(digest.Rules) != 3 {
		t.Fatalf("unexpected digest: count=%d rules=%d", digest.RuleCount, len(digest.Rules))
	}
	if digest.GeneratedAt == "" {
		t.Fatalf("expected generated_at timestamp")
	}
}

func TestRuleNotifyWithNoRules(t *testing.T) {
	rules, notifier := setupRuleServiceTest(t)

	if err := rules.Notify(context.Background()); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if len(notifier.digests) != 1 {
		t.Fatalf("expected one digest even with no rules, got %d", len(notifier.digests))
	}
	if notifier.digests[0].RuleCount != 0 {
		t.Fatalf("expected zero rule count, got %d", notifier.digests[0].RuleCount)
	}
}
