// Package linker suggests candidate evidence-usage links from run
// artifacts.
//
// The linker is an untrusted, offline helper. It suggests candidate
// links, it never validates them: suggestion means "this ground might
// support this statement", and the epistemic firewall (validation before
// evaluation) stays a separate concern. Its output must pass back through
// validation before an evaluation consumes it.
//
// Heuristics are structural only. No LLM similarity, no embeddings, no
// content interpretation: adding any of those would open a semantic
// laundering path from agent output back into its own license.
package linker

import (
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/normgate/internal/extract"
	"github.com/ppiankov/normgate/internal/knowledge"
	"github.com/ppiankov/normgate/internal/logging"
	"github.com/ppiankov/normgate/internal/model"
	"go.uber.org/zap"
)

// Matcher suggests candidate statement-ground links via the entity
// mention heuristic: a tool result that carries an entity key which also
// appears in the statement text yields a candidate supports-link.
//
// Entity mention approximates usage conservatively. False positives are
// expected and acceptable; downstream validation rejects them, and an
// over-full supports set can only over-conserve licensing.
type Matcher struct {
	extractor *extract.StatementExtractor
}

// NewMatcher returns a link matcher sharing the evaluator's statement
// extraction.
func NewMatcher() *Matcher {
	return &Matcher{extractor: extract.NewStatementExtractor()}
}

// Suggest proposes candidate links for the final assistant message in a
// recorded run. Only tool results that precede the final message count:
// a result observed after the statement cannot ground it.
func (m *Matcher) Suggest(messages []openai.ChatCompletionMessage) []model.StatementGroundLink {
	finalIdx := finalAssistantIndex(messages)
	if finalIdx < 0 {
		logging.L().Warn("no final assistant message in run")
		return nil
	}

	statements := m.extractor.Extract(messages[finalIdx].Content)
	if len(statements) == 0 {
		logging.L().Info("no normative content in final message, nothing to link")
		return nil
	}
	statement := statements[0]

	var links []model.StatementGroundLink
	seenEntities := make(map[string]bool)
	now := time.Now().UTC()

	for _, message := range messages[:finalIdx] {
		if message.Role != openai.ChatMessageRoleTool {
			continue
		}
		for _, semanticID := range knowledge.SemanticIDs(message.Content) {
			entityValue := entityValueOf(semanticID)
			if entityValue == "" || !strings.Contains(statement.RawText, entityValue) {
				continue
			}
			if seenEntities[entityValue] {
				continue
			}
			seenEntities[entityValue] = true

			links = append(links, model.StatementGroundLink{
				StatementID: statement.ID,
				GroundID:    semanticID,
				Role:        model.RoleSupports,
				Provenance: model.Provenance{
					Creator:      model.CreatorUpstreamPipeline,
					Timestamp:    now,
					EvidenceType: model.EvidenceStructural,
					EvidenceContent: "Entity mention heuristic: " + entityValue +
						" found in tool output and statement",
				},
			})
		}
	}

	unique := deduplicate(links)
	logging.L().Info("suggested candidate links",
		zap.Int("unique", len(unique)),
		zap.Int("duplicates_removed", len(links)-len(unique)))
	return unique
}

func finalAssistantIndex(messages []openai.ChatCompletionMessage) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == openai.ChatMessageRoleAssistant && messages[i].Content != "" {
			return i
		}
	}
	return -1
}

// entityValueOf strips the entity type prefix: "issue_AGENT-8" → "AGENT-8".
func entityValueOf(semanticID string) string {
	if _, value, ok := strings.Cut(semanticID, "_"); ok {
		return value
	}
	return ""
}

func deduplicate(links []model.StatementGroundLink) []model.StatementGroundLink {
	seen := make(map[string]bool, len(links))
	var unique []model.StatementGroundLink
	for _, link := range links {
		key := link.StatementID + "\x00" + link.GroundID + "\x00" + string(link.Role)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, link)
	}
	return unique
}
