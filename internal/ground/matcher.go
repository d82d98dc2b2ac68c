// Package ground selects candidate knowledge nodes for a statement.
//
// Matching is candidate selection only, never sufficiency. A node passes
// when it could in principle ground a statement of the given modality;
// whether the resulting set suffices is decided by license derivation.
// Matching stays strictly non-semantic: scope filtering only, no
// similarity scoring, no embeddings, no domain heuristics.
package ground

import (
	"github.com/ppiankov/normgate/internal/logging"
	"github.com/ppiankov/normgate/internal/model"
	"go.uber.org/zap"
)

// Matcher filters knowledge nodes by statement modality.
//
// Relevance rules:
//   - descriptive: factual nodes only
//   - assertive and conditional: factual and contextual nodes
//   - refusal: no grounds selected
type Matcher struct{}

// NewMatcher returns a ground set matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match returns the candidate ground set for a statement.
func (m *Matcher) Match(statement model.Statement, nodes []model.KnowledgeNode) model.GroundSet {
	var relevant []model.KnowledgeNode
	for _, node := range nodes {
		if isRelevant(statement.Modality, node) {
			relevant = append(relevant, node)
		}
	}

	logging.L().Debug("matched candidate grounds",
		zap.String("statement", statement.ID),
		zap.String("modality", string(statement.Modality)),
		zap.Int("relevant", len(relevant)),
		zap.Int("available", len(nodes)))
	return model.GroundSet{Nodes: relevant}
}

func isRelevant(modality model.Modality, node model.KnowledgeNode) bool {
	switch modality {
	case model.ModalityDescriptive:
		return node.Scope == model.ScopeFactual
	case model.ModalityAssertive, model.ModalityConditional:
		return node.Scope == model.ScopeFactual || node.Scope == model.ScopeContextual
	default:
		// Refusal needs no grounds.
		return false
	}
}
