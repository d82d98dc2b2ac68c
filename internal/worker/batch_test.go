package worker

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/normgate/internal/cache"
	"github.com/ppiankov/normgate/internal/citations"
	"github.com/ppiankov/normgate/internal/model"
)

// mockEvaluator implements Evaluator
type mockEvaluator struct {
	shouldError bool
	calls       int32
}

func (m *mockEvaluator) Evaluate(agentMessage openai.ChatCompletionMessage, trajectory []openai.ChatCompletionMessage, grounds []citations.Ground) (model.Judgment, error) {
	atomic.AddInt32(&m.calls, 1)
	time.Sleep(5 * time.Millisecond)
	if m.shouldError {
		return model.Judgment{}, errors.New("evaluation error")
	}
	return model.Judgment{
		Status:        model.StatusAcceptable,
		Licensed:      true,
		Explanation:   "All statements acceptable",
		NumStatements: 1,
		NumAcceptable: 1,
	}, nil
}

func batchRequests(n int) []EvaluationRequest {
	requests := make([]EvaluationRequest, 0, n)
	for i := 0; i < n; i++ {
		requests = append(requests, EvaluationRequest{
			ID: string(rune('a' + i)),
			AgentMessage: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: "You should rotate the credentials.",
			},
		})
	}
	return requests
}

func TestBatchProcessor_ProcessRequests(t *testing.T) {
	evaluator := &mockEvaluator{}
	processor := NewBatchProcessor(evaluator, nil, 2)

	results := processor.ProcessRequests(context.Background(), batchRequests(3))

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.ID, res.Error)
		}
		if res.Index != i {
			t.Errorf("expected results in input order, got index %d at position %d", res.Index, i)
		}
		if res.Judgment.Status != model.StatusAcceptable {
			t.Errorf("expected acceptable judgment, got %s", res.Judgment.Status)
		}
	}
}

func TestBatchProcessor_ProcessRequests_Error(t *testing.T) {
	evaluator := &mockEvaluator{shouldError: true}
	processor := NewBatchProcessor(evaluator, nil, 2)

	results := processor.ProcessRequests(context.Background(), batchRequests(1))

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
}

func TestBatchProcessor_ProcessRequests_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockEvaluator{}, nil, 2)

	results := processor.ProcessRequests(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_CacheHitSkipsEvaluation(t *testing.T) {
	evaluator := &mockEvaluator{}
	store := cache.NewJudgmentStore(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)
	processor := NewBatchProcessor(evaluator, store, 1)

	// Two identical requests: the second must come from the store.
	requests := []EvaluationRequest{
		{ID: "first", AgentMessage: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "You should rotate the credentials."}},
		{ID: "second", AgentMessage: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "You should rotate the credentials."}},
	}

	results := processor.ProcessRequests(context.Background(), requests)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if got := atomic.LoadInt32(&evaluator.calls); got != 1 {
		t.Errorf("expected 1 evaluator call, got %d", got)
	}
	if !results[1].Cached {
		t.Error("expected second result to be served from cache")
	}
	if results[1].Judgment.Status != model.StatusAcceptable {
		t.Errorf("expected cached acceptable judgment, got %s", results[1].Judgment.Status)
	}
}

func writeTempFile(t *testing.T, pattern, content string) string {
	t.Helper()

	tmpfile, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpfile.Name()
}

func TestReadRequestsFromFile(t *testing.T) {
	content := `{"id": "r1", "agent_message": {"role": "assistant", "content": "You should upgrade."}}
# comment
{"id": "r2", "agent_message": {"role": "assistant", "content": "The build is green."}}

`
	path := writeTempFile(t, "requests", content)

	requests, err := ReadRequestsFromFile(path)
	if err != nil {
		t.Fatalf("ReadRequestsFromFile failed: %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	if requests[0].ID != "r1" || requests[1].ID != "r2" {
		t.Errorf("unexpected request ids: %s, %s", requests[0].ID, requests[1].ID)
	}
	if requests[0].AgentMessage.Content != "You should upgrade." {
		t.Errorf("unexpected agent message: %s", requests[0].AgentMessage.Content)
	}
}

func TestReadRequestsFromFile_MalformedLine(t *testing.T) {
	path := writeTempFile(t, "requests_bad", "{not json}\n")

	_, err := ReadRequestsFromFile(path)
	if err == nil {
		t.Error("expected error for malformed line, got nil")
	}
}

func TestReadRequestsFromFile_NonExistent(t *testing.T) {
	_, err := ReadRequestsFromFile("non_existent_file.jsonl")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestEvaluateResult_GetError(t *testing.T) {
	r1 := &EvaluateResult{ID: "ok"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("evaluation failed")
	r2 := &EvaluateResult{ID: "bad", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	content := `{"id": "r1", "agent_message": {"role": "assistant", "content": "You should upgrade."}}
{"id": "r2", "agent_message": {"role": "assistant", "content": "You should downgrade."}}
`
	path := writeTempFile(t, "batch_requests", content)

	processor := NewBatchProcessor(&mockEvaluator{}, nil, 2)

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockEvaluator{}, nil, 2)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.jsonl")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
