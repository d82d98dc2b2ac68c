package model

import "fmt"

// Source classifies how a knowledge node entered the evidential basis
type Source string

const (
	SourceObserved Source = "observed" // tool call result, direct observation
	SourceExplicit Source = "explicit" // user stated directly
	SourceInferred Source = "inferred" // inferred from behavior
	SourceRepeated Source = "repeated" // pattern observed multiple times
)

// Status is the epistemic status of a knowledge node
type Status string

const (
	StatusHypothesis Status = "hypothesis" // inferred, not confirmed
	StatusCandidate  Status = "candidate"  // plausible, awaiting confirmation
	StatusConfirmed  Status = "confirmed"  // validated through observation or explicit evidence
)

// Scope determines which statements a knowledge node can ground.
// Only factual and contextual scopes exist; normative claims are meta-level
// and never a grounding scope.
type Scope string

const (
	ScopeFactual    Scope = "factual"    // observable facts (tool results, operations)
	ScopeContextual Scope = "contextual" // user context: conditions, constraints, motives
)

// Strength distinguishes tool-derived (earned) from memory-derived (borrowed)
// evidence. Only strong factual evidence licenses assertive speech.
type Strength string

const (
	StrengthStrong Strength = "strong"
	StrengthWeak   Strength = "weak"
)

// KnowledgeNode is one admitted evidence atom.
//
// ID naming:
//   - ID is the canonical identifier, derived from a content hash: stable
//     across runs, never from in-process object identity.
//   - SemanticID is an optional domain-meaningful key (e.g. "issue_AGENT-8")
//     used to cross-reference declared usage links.
type KnowledgeNode struct {
	ID         string   `json:"id"`
	Source     Source   `json:"source"`
	Status     Status   `json:"status"`
	Confidence float64  `json:"confidence"`
	Scope      Scope    `json:"scope"`
	Strength   Strength `json:"strength"`
	SemanticID string   `json:"semantic_id,omitempty"`
}

// NewKnowledgeNode validates and constructs a knowledge node.
// Confidence must be within [0,1] and strength one of the two known values.
func NewKnowledgeNode(id string, source Source, status Status, confidence float64, scope Scope, strength Strength, semanticID string) (KnowledgeNode, error) {
	if confidence < 0.0 || confidence > 1.0 {
		return KnowledgeNode{}, fmt.Errorf("confidence must be in [0.0, 1.0], got %v", confidence)
	}
	if strength != StrengthStrong && strength != StrengthWeak {
		return KnowledgeNode{}, fmt.Errorf("strength must be %q or %q, got %q", StrengthStrong, StrengthWeak, strength)
	}
	return KnowledgeNode{
		ID:         id,
		Source:     source,
		Status:     status,
		Confidence: confidence,
		Scope:      scope,
		Strength:   strength,
		SemanticID: semanticID,
	}, nil
}

// GroundSet is the ordered set of knowledge nodes considered candidates for
// grounding one statement. It must be queried through scope-aware methods:
// the licensing rules aggregate strength within a scope, never globally.
type GroundSet struct {
	Nodes []KnowledgeNode
}

// IsEmpty reports whether the set holds no candidate nodes.
func (g GroundSet) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// HasScope reports whether at least one node carries the given scope.
func (g GroundSet) HasScope(scope Scope) bool {
	for _, k := range g.Nodes {
		if k.Scope == scope {
			return true
		}
	}
	return false
}

// ScopeStrength returns the aggregated strength within a scope.
//
// Intra-scope aggregation is "strongest evidence wins": any strong node makes
// the scope strong; only-weak nodes make it weak. The second return value is
// false when the scope is absent entirely.
func (g GroundSet) ScopeStrength(scope Scope) (Strength, bool) {
	present := false
	for _, k := range g.Nodes {
		if k.Scope != scope {
			continue
		}
		present = true
		if k.Strength == StrengthStrong {
			return StrengthStrong, true
		}
	}
	if !present {
		return "", false
	}
	return StrengthWeak, true
}

// HasStrongInScope reports whether the scope holds at least one strong node.
func (g GroundSet) HasStrongInScope(scope Scope) bool {
	for _, k := range g.Nodes {
		if k.Scope == scope && k.Strength == StrengthStrong {
			return true
		}
	}
	return false
}

// NodesByScope returns the nodes carrying the given scope, in admission order.
func (g GroundSet) NodesByScope(scope Scope) []KnowledgeNode {
	var out []KnowledgeNode
	for _, k := range g.Nodes {
		if k.Scope == scope {
			out = append(out, k)
		}
	}
	return out
}

// Resolve finds a node by identifier: canonical id first, then semantic id.
// Declared usage links may reference either form.
func (g GroundSet) Resolve(groundID string) (KnowledgeNode, bool) {
	for _, k := range g.Nodes {
		if k.ID == groundID {
			return k, true
		}
	}
	for _, k := range g.Nodes {
		if k.SemanticID != "" && k.SemanticID == groundID {
			return k, true
		}
	}
	return KnowledgeNode{}, false
}
