package cache

import (
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/normgate/internal/citations"
	"github.com/ppiankov/normgate/internal/model"
)

// JudgmentStore memoizes evaluator verdicts. The pipeline is pure, so a
// judgment keyed by the full evaluation inputs can be replayed verbatim.
type JudgmentStore struct {
	cache Cache
	ttl   time.Duration
}

// NewJudgmentStore creates a judgment store over the given cache
func NewJudgmentStore(c Cache, ttl time.Duration) *JudgmentStore {
	return &JudgmentStore{cache: c, ttl: ttl}
}

// KeyFor derives the memoization key for one evaluation call
func KeyFor(agentMessage openai.ChatCompletionMessage, trajectory []openai.ChatCompletionMessage, grounds []citations.Ground) (string, error) {
	agentJSON, err := json.Marshal(agentMessage)
	if err != nil {
		return "", fmt.Errorf("marshal agent message: %w", err)
	}
	trajectoryJSON, err := json.Marshal(trajectory)
	if err != nil {
		return "", fmt.Errorf("marshal trajectory: %w", err)
	}
	groundsJSON, err := json.Marshal(grounds)
	if err != nil {
		return "", fmt.Errorf("marshal grounds: %w", err)
	}
	return Key(string(agentJSON), string(trajectoryJSON), string(groundsJSON)), nil
}

// Lookup returns a previously stored judgment for the key, if any
func (s *JudgmentStore) Lookup(key string) (model.Judgment, bool) {
	data, found := s.cache.Get(key)
	if !found {
		return model.Judgment{}, false
	}

	var judgment model.Judgment
	if err := json.Unmarshal(data, &judgment); err != nil {
		// A corrupt entry is treated as a miss and overwritten on Store.
		return model.Judgment{}, false
	}
	return judgment, true
}

// Store records a judgment under the key
func (s *JudgmentStore) Store(key string, judgment model.Judgment) error {
	data, err := json.Marshal(judgment)
	if err != nil {
		return fmt.Errorf("marshal judgment: %w", err)
	}
	return s.cache.Set(key, data, s.ttl)
}
