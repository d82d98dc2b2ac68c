package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/normgate/internal/cache"
	"github.com/ppiankov/normgate/internal/citations"
	"github.com/ppiankov/normgate/internal/model"
)

// Evaluator judges one agent message against its trajectory and grounds
type Evaluator interface {
	Evaluate(agentMessage openai.ChatCompletionMessage, trajectory []openai.ChatCompletionMessage, grounds []citations.Ground) (model.Judgment, error)
}

// EvaluationRequest is one record in a batch input file
type EvaluationRequest struct {
	ID           string                         `json:"id"`
	AgentMessage openai.ChatCompletionMessage   `json:"agent_message"`
	Trajectory   []openai.ChatCompletionMessage `json:"trajectory,omitempty"`
	Grounds      []citations.Ground             `json:"grounds,omitempty"`
}

// EvaluateJob evaluates one request, consulting the judgment store first
type EvaluateJob struct {
	Index     int
	Request   EvaluationRequest
	Evaluator Evaluator
	Store     *cache.JudgmentStore
}

// Execute runs the evaluation
func (j *EvaluateJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &EvaluateResult{Index: j.Index, ID: j.Request.ID, Error: err}
	}

	key := ""
	if j.Store != nil {
		var err error
		key, err = cache.KeyFor(j.Request.AgentMessage, j.Request.Trajectory, j.Request.Grounds)
		if err == nil {
			if judgment, found := j.Store.Lookup(key); found {
				return &EvaluateResult{Index: j.Index, ID: j.Request.ID, Judgment: judgment, Cached: true}
			}
		}
	}

	judgment, err := j.Evaluator.Evaluate(j.Request.AgentMessage, j.Request.Trajectory, j.Request.Grounds)
	if err != nil {
		return &EvaluateResult{Index: j.Index, ID: j.Request.ID, Error: err}
	}

	if j.Store != nil && key != "" {
		// A failed write only costs the memoization, not the verdict.
		_ = j.Store.Store(key, judgment)
	}

	return &EvaluateResult{Index: j.Index, ID: j.Request.ID, Judgment: judgment}
}

// EvaluateResult is the outcome of one batch evaluation
type EvaluateResult struct {
	Index    int            `json:"-"`
	ID       string         `json:"id,omitempty"`
	Judgment model.Judgment `json:"judgment"`
	Cached   bool           `json:"cached,omitempty"`
	Error    error          `json:"-"`
}

// GetError returns the error from the evaluation result
func (r *EvaluateResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates multiple requests concurrently
type BatchProcessor struct {
	evaluator   Evaluator
	store       *cache.JudgmentStore
	concurrency int
}

// NewBatchProcessor creates a new batch processor. A nil store disables
// memoization.
func NewBatchProcessor(evaluator Evaluator, store *cache.JudgmentStore, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		evaluator:   evaluator,
		store:       store,
		concurrency: concurrency,
	}
}

// ProcessRequests evaluates the requests concurrently. Results come back
// in input order regardless of which worker finished first.
func (b *BatchProcessor) ProcessRequests(ctx context.Context, requests []EvaluationRequest) []*EvaluateResult {
	if len(requests) == 0 {
		return []*EvaluateResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for i, request := range requests {
		pool.Submit(&EvaluateJob{
			Index:     i,
			Request:   request,
			Evaluator: b.evaluator,
			Store:     b.store,
		})
	}

	results := pool.Wait()

	evaluateResults := make([]*EvaluateResult, 0, len(results))
	for _, result := range results {
		evaluateResults = append(evaluateResults, result.(*EvaluateResult))
	}
	sort.Slice(evaluateResults, func(i, j int) bool {
		return evaluateResults[i].Index < evaluateResults[j].Index
	})

	return evaluateResults
}

// ProcessFile reads requests from a JSONL file and evaluates them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*EvaluateResult, error) {
	requests, err := ReadRequestsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}

	return b.ProcessRequests(ctx, requests), nil
}

// ReadRequestsFromFile reads evaluation requests from a file, one JSON
// object per line. Blank lines and #-comments are skipped.
func ReadRequestsFromFile(filePath string) ([]EvaluationRequest, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var requests []EvaluationRequest

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var request EvaluationRequest
		if err := json.Unmarshal([]byte(line), &request); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", lineNo, err)
		}
		requests = append(requests, request)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return requests, nil
}
