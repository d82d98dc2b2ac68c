// Package knowledge builds the evidential basis from observed tool results.
//
// Only externally verifiable observer tools may contribute knowledge nodes.
// Personalization and memory artifacts are filtered at the boundary, or the
// agent could launder its own prior output back in as evidence. The builder
// admits or rejects candidate atoms; it never interprets, infers, or
// summarizes.
package knowledge

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/normgate/internal/citations"
	"github.com/ppiankov/normgate/internal/logging"
	"github.com/ppiankov/normgate/internal/model"
	"go.uber.org/zap"
)

var (
	entityKeyField = regexp.MustCompile(`^(\w+)_key$`)
	entityIDField  = regexp.MustCompile(`^(\w+)_id$`)
)

// Builder maps tool results onto knowledge nodes.
//
// Every admitted node is observed, confirmed, factual, and strong: a tool
// result is direct observation of the external world, the strongest
// evidence class this engine recognizes.
type Builder struct{}

// NewBuilder returns a knowledge state builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build converts tool results into knowledge nodes.
func (b *Builder) Build(toolResults []model.ToolResult) []model.KnowledgeNode {
	nodes, _ := b.BuildWithReferences(toolResults)
	return nodes
}

// BuildWithReferences converts tool results into knowledge nodes and
// returns, alongside, the mapping from tool call id to the node ids that
// call produced. The mapping uses semantic ids where available so declared
// usage links can cite domain keys.
func (b *Builder) BuildWithReferences(toolResults []model.ToolResult) ([]model.KnowledgeNode, []model.ToolCallRef) {
	var nodes []model.KnowledgeNode
	var toolCallRefs []model.ToolCallRef

	for _, result := range toolResults {
		produced := b.toolResultToKnowledge(result)
		if len(produced) == 0 {
			continue
		}
		nodes = append(nodes, produced...)

		if result.ToolCallID == "" {
			continue
		}
		refs := make([]string, 0, len(produced))
		for _, node := range produced {
			if node.SemanticID != "" {
				refs = append(refs, node.SemanticID)
			} else {
				refs = append(refs, node.ID)
			}
		}
		toolCallRefs = append(toolCallRefs, model.ToolCallRef{
			ToolCallID: result.ToolCallID,
			GroundIDs:  refs,
		})
	}

	logging.L().Debug("built knowledge nodes from tool results",
		zap.Int("nodes", len(nodes)),
		zap.Int("tool_results", len(toolResults)))
	return nodes, toolCallRefs
}

// MaterializeExternalGrounds injects caller-declared grounds that no tool
// result produced, as observed factual nodes. Grounds already present by
// canonical or semantic id are left alone.
func (b *Builder) MaterializeExternalGrounds(nodes []model.KnowledgeNode, grounds []citations.Ground) []model.KnowledgeNode {
	if len(grounds) == 0 {
		return nodes
	}

	existing := make(map[string]bool, len(nodes)*2)
	for _, node := range nodes {
		existing[node.ID] = true
		if node.SemanticID != "" {
			existing[node.SemanticID] = true
		}
	}

	expanded := append([]model.KnowledgeNode(nil), nodes...)
	for _, ground := range grounds {
		if existing[ground.GroundID] {
			continue
		}
		expanded = append(expanded, model.KnowledgeNode{
			ID:         ground.GroundID,
			Source:     model.SourceObserved,
			Status:     model.StatusConfirmed,
			Confidence: 1.0,
			Scope:      model.ScopeFactual,
			Strength:   model.StrengthStrong,
			SemanticID: ground.GroundID,
		})
	}
	return expanded
}

func (b *Builder) toolResultToKnowledge(result model.ToolResult) []model.KnowledgeNode {
	toolName := result.ToolName
	if toolName == "" {
		toolName = "unknown"
	}
	if isNonEpistemicTool(toolName) {
		logging.L().Debug("filtering non-epistemic tool result", zap.String("tool", toolName))
		return nil
	}

	semanticIDs, isArray := extractSemanticIDs(result.ResultText)

	if isArray {
		nodes := make([]model.KnowledgeNode, 0, len(semanticIDs))
		for idx, semanticID := range semanticIDs {
			stable := stableIDFragment(toolName + ":" + semanticID)
			nodes = append(nodes, model.KnowledgeNode{
				ID:         fmt.Sprintf("tool_%s_item%d_%s", toolName, idx, stable),
				Source:     model.SourceObserved,
				Status:     model.StatusConfirmed,
				Confidence: 1.0,
				Scope:      model.ScopeFactual,
				Strength:   model.StrengthStrong,
				SemanticID: semanticID,
			})
		}
		return nodes
	}

	semanticID := ""
	if len(semanticIDs) > 0 {
		semanticID = semanticIDs[0]
	}
	return []model.KnowledgeNode{{
		ID:         fmt.Sprintf("tool_%s_%s", toolName, stableIDFragment(canonicalResult(toolName, result))),
		Source:     model.SourceObserved,
		Status:     model.StatusConfirmed,
		Confidence: 1.0,
		Scope:      model.ScopeFactual,
		Strength:   model.StrengthStrong,
		SemanticID: semanticID,
	}}
}

// isNonEpistemicTool excludes tools that traffic in personalization,
// memory, or agent state. Conservative name matching until tool
// definitions carry explicit epistemic typing.
func isNonEpistemicTool(toolName string) bool {
	name := strings.ToLower(toolName)

	if name == "get_user_cognitive_context" {
		return true
	}
	if strings.Contains(name, "personalization") || strings.Contains(name, "personal_context") {
		return true
	}
	if strings.Contains(name, "memory") &&
		containsAny(name, "save", "note", "notes", "load", "consolidat", "distill", "state") {
		return true
	}
	if strings.Contains(name, "profile") &&
		containsAny(name, "save", "set", "update", "load", "consolidat") {
		return true
	}
	return containsAny(name, "remember", "preference", "preferences", "setting", "settings")
}

func containsAny(name string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(name, needle) {
			return true
		}
	}
	return false
}

// SemanticIDs returns every domain entity id extractable from a tool
// result payload, whether the payload is a single entity or an array.
// Used by the offline link suggester, which shares the entity-id
// convention with node construction.
func SemanticIDs(resultText string) []string {
	ids, _ := extractSemanticIDs(resultText)
	return ids
}

// extractSemanticIDs pulls domain entity ids out of a JSON tool result.
//
// Convention: entities carry a {entity_type}_key or {entity_type}_id field,
// and the semantic id is "{entity_type}_{value}". The second return value
// is true when the result was a JSON array with at least one extractable
// entity, which makes the caller emit one node per element.
func extractSemanticIDs(resultText string) ([]string, bool) {
	trimmed := strings.TrimSpace(resultText)
	if trimmed == "" {
		return nil, false
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, false
		}
		var ids []string
		for _, item := range items {
			if id := extractEntityID(item); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return nil, false
		}
		return ids, true
	case '{':
		if id := extractEntityID(json.RawMessage(trimmed)); id != "" {
			return []string{id}, false
		}
		return nil, false
	default:
		return nil, false
	}
}

// extractEntityID finds the primary entity id of a JSON object. Any
// *_key field wins over any *_id field, and within a class the first
// field in document order wins, so the object is walked token by token
// rather than decoded into a map.
func extractEntityID(raw json.RawMessage) string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return ""
	}

	keyMatch, idMatch := "", ""
	for dec.More() {
		fieldTok, err := dec.Token()
		if err != nil {
			return ""
		}
		field, ok := fieldTok.(string)
		if !ok {
			return ""
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return ""
		}

		if keyMatch == "" {
			if m := entityKeyField.FindStringSubmatch(field); m != nil {
				if v := renderEntityValue(value); v != "" {
					keyMatch = m[1] + "_" + v
				}
			}
		}
		if idMatch == "" {
			if m := entityIDField.FindStringSubmatch(field); m != nil {
				if v := renderEntityValue(value); v != "" {
					idMatch = m[1] + "_" + v
				}
			}
		}
	}

	if keyMatch != "" {
		return keyMatch
	}
	return idMatch
}

// renderEntityValue formats a scalar field value, rejecting empty and zero
// values so vacuous identifiers never become semantic ids.
func renderEntityValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return fmt.Sprintf("%v", v)
	case bool:
		if !v {
			return ""
		}
		return "true"
	default:
		return ""
	}
}

// canonicalResult renders a tool result as canonical JSON for hashing.
// Map keys sort during marshal, so the rendering is stable across runs.
func canonicalResult(toolName string, result model.ToolResult) string {
	payload := map[string]any{
		"tool": toolName,
		"tool_result": map[string]any{
			"tool_name":    result.ToolName,
			"tool_call_id": result.ToolCallID,
			"arguments":    result.Arguments,
			"result_text":  result.ResultText,
		},
	}
	rendered, err := json.Marshal(payload)
	if err != nil {
		return toolName + ":" + result.ResultText
	}
	return string(rendered)
}

func stableIDFragment(value string) string {
	digest := sha256.Sum256([]byte(value))
	return hex.EncodeToString(digest[:])[:10]
}
