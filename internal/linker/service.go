package linker

import (
	"encoding/json"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/normgate/internal/logging"
	"github.com/ppiankov/normgate/internal/model"
	"go.uber.org/zap"
)

// Run is a recorded conversation artifact as stored on disk.
type Run struct {
	Messages []openai.ChatCompletionMessage `json:"messages"`
}

// Service loads run artifacts and produces candidate link sets.
//
// The service runs before evaluation, offline or as a pipeline step. The
// evaluator consumes a link set as input and never creates links itself,
// which keeps evaluation deterministic and link provenance auditable.
type Service struct {
	matcher *Matcher
}

// NewService returns a link suggestion service.
func NewService() *Service {
	return &Service{matcher: NewMatcher()}
}

// LoadRun reads a run artifact from a JSON file.
func (s *Service) LoadRun(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("reading run file: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return Run{}, fmt.Errorf("parsing run file %s: %w", path, err)
	}
	return run, nil
}

// BuildLinks suggests a candidate link set for a run. Every candidate is
// passed through; precision filtering belongs to the validation step
// that consumes this output.
func (s *Service) BuildLinks(run Run) model.LinkSet {
	candidates := s.matcher.Suggest(run.Messages)

	roleCounts := make(map[model.LinkRole]int)
	for _, link := range candidates {
		roleCounts[link.Role]++
	}
	logging.L().Info("built candidate link set",
		zap.Int("links", len(candidates)),
		zap.Int("supports", roleCounts[model.RoleSupports]))

	return model.LinkSet{Links: candidates}
}

// SaveLinks writes a link set to a JSON file, indented for review.
func (s *Service) SaveLinks(linkSet model.LinkSet, path string) error {
	data, err := json.MarshalIndent(linkSet, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding link set: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing link set: %w", err)
	}
	logging.L().Info("saved link set", zap.String("path", path), zap.Int("links", len(linkSet.Links)))
	return nil
}
