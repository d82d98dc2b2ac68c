// Package citations resolves inline citation keys against declared grounds.
//
// Agent output may reference evidence with [@key] markers. A Ground binds a
// citation key to a knowledge-node id plus link provenance; the package
// turns cited text into statement-to-ground links without interpreting the
// text itself.
package citations

import (
	"fmt"
	"regexp"

	"github.com/ppiankov/normgate/internal/model"
)

var citationKeyPattern = regexp.MustCompile(`\[@([A-Za-z][A-Za-z0-9_-]*)\]`)

// Ground is a caller-supplied binding from a citation key to a resolved
// ground id, carrying the provenance used when the key is cited.
type Ground struct {
	CitationKey     string             `json:"citation_key"`
	GroundID        string             `json:"ground_id"`
	Role            model.LinkRole     `json:"role,omitempty"`
	Creator         model.CreatorType  `json:"creator,omitempty"`
	EvidenceType    model.EvidenceType `json:"evidence_type,omitempty"`
	EvidenceContent string             `json:"evidence_content,omitempty"`
	Signature       string             `json:"signature,omitempty"`
}

// Normalize fills zero-valued enum fields with their defaults and reports
// whether the ground carries the required identifiers.
func (g *Ground) Normalize() error {
	if g.CitationKey == "" {
		return fmt.Errorf("ground missing citation_key")
	}
	if g.GroundID == "" {
		return fmt.Errorf("ground %q missing ground_id", g.CitationKey)
	}
	if g.Role == "" {
		g.Role = model.RoleSupports
	}
	if g.Creator == "" {
		g.Creator = model.CreatorUpstreamPipeline
	}
	if g.EvidenceType == "" {
		g.EvidenceType = model.EvidenceObservation
	}
	return nil
}

// ParseGrounds validates a caller-supplied grounds payload.
func ParseGrounds(grounds []Ground) ([]Ground, error) {
	parsed := make([]Ground, 0, len(grounds))
	for i := range grounds {
		g := grounds[i]
		if err := g.Normalize(); err != nil {
			return nil, fmt.Errorf("grounds[%d]: %w", i, err)
		}
		parsed = append(parsed, g)
	}
	return parsed, nil
}

// ExtractCitationKeys returns the [@key] citation keys present in text,
// deduplicated, in first-seen order.
func ExtractCitationKeys(text string) []string {
	if text == "" {
		return nil
	}

	var keys []string
	seen := make(map[string]bool)
	for _, m := range citationKeyPattern.FindAllStringSubmatch(text, -1) {
		key := m[1]
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

// BuildLinksFromGrounds resolves the citation keys in text against the
// declared grounds and emits one link per cited ground. Keys without a
// matching ground produce no link.
func BuildLinksFromGrounds(text string, grounds []Ground, statementID string) model.LinkSet {
	byKey := make(map[string][]Ground)
	for _, g := range grounds {
		byKey[g.CitationKey] = append(byKey[g.CitationKey], g)
	}

	var links []model.StatementGroundLink
	for _, key := range ExtractCitationKeys(text) {
		for _, g := range byKey[key] {
			content := g.EvidenceContent
			if content == "" {
				content = "citation_key=" + key
			}
			links = append(links, model.StatementGroundLink{
				StatementID: statementID,
				GroundID:    g.GroundID,
				Role:        g.Role,
				Provenance: model.Provenance{
					Creator:         g.Creator,
					EvidenceType:    g.EvidenceType,
					EvidenceContent: content,
					Signature:       g.Signature,
				},
			})
		}
	}

	return model.LinkSet{Links: links}
}

// GroundsFromToolCallRefs converts the knowledge builder's tool-call
// reference mapping into grounds, so the agent can cite evidence by tool
// call id directly.
func GroundsFromToolCallRefs(refs []model.ToolCallRef) []Ground {
	var grounds []Ground
	for _, ref := range refs {
		for _, groundID := range ref.GroundIDs {
			grounds = append(grounds, Ground{
				CitationKey:     ref.ToolCallID,
				GroundID:        groundID,
				Role:            model.RoleSupports,
				Creator:         model.CreatorToolObserver,
				EvidenceType:    model.EvidenceObservation,
				EvidenceContent: "tool_call_id=" + ref.ToolCallID,
			})
		}
	}
	return grounds
}
