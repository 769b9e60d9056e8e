package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modboard-next/internal/models"
	"github.com/modboard-next/internal/notify"
	"github.com/modboard-next/internal/provider"
	"github.com/modboard-next/internal/queue"

	"github.com/hibiken/asynq"
)

type captureNotifier struct {
	digests []notify.RuleDigest
}

func (n *captureNotifier) DispatchRuleDigest(_ context.Context, digest notify.RuleDigest) error {
	n.digests = append(n.digests, digest)
	return nil
}

func TestHandleRuleNotify(t *testing.T) {
	notifier := &captureNotifier{}
	consumer := NewConsumer(&provider.Container{Notifier: notifier})

	payload := queue.RuleNotifyPayload{
		GeneratedAt: "2026-08-30T12:00:00Z",
		Rules: []models.Rule{
			{ID: "r1", Title: "No spoilers"},
			{ID: "r2", Title: "Be kind"},
		},
	}
	task, err := queue.NewRuleNotifyTask(payload)
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	if err := consumer.handleRuleNotify(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if len(notifier.digests) != 1 {
		t.Fatalf("expected one digest, got %d", len(notifier.digests))
	}
	digest := notifier.digests[0]
	if digest.RuleCount != 2 || len(digest.Rules) != 2 {
		t.Fatalf("unexpected digest: %+v", digest)
	}
	if digest.GeneratedAt != "2026-08-30T12:00:00Z" {
		t.Fatalf("unexpected generated_at: %q", digest.GeneratedAt)
	}
}

func TestHandleRuleNotifyBadPayload(t *testing.T) {
	notifier := &captureNotifier{}
	consumer := NewConsumer(&provider.Container{Notifier: notifier})

	task := asynq.NewTask(queue.TaskRuleNotify, []byte("{not json"))
	if err := consumer.handleRuleNotify(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error")
	}
	if len(notifier.digests) != 0 {
		t.Fatalf("bad payload must not dispatch, got %d", len(notifier.digests))
	}
}

func TestRuleNotifyTaskPayloadRoundTrip(t *testing.T) {
	payload := queue.RuleNotifyPayload{
		GeneratedAt: "2026-08-30T12:00:00Z",
		Rules:       []models.Rule{{ID: "r1", Title: "No spoilers"}},
	}
	task, err := queue.NewRuleNotifyTask(payload)
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != queue.TaskRuleNotify {
		t.Fatalf("unexpected task type: %q", task.Type())
	}

	var decoded queue.RuleNotifyPayload
	if err := json.Unmarshal(task.Payload(), &decoded); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if len(decoded.Rules) != 1 || decoded.Rules[0].ID != "r1" {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}
