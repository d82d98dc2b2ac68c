package license

import (
	"testing"

	"github.com/ppiankov/normgate/internal/model"
)

func factualNode(id string, strength model.Strength) model.KnowledgeNode {
	return model.KnowledgeNode{
		ID: id, Source: model.SourceObserved, Status: model.StatusConfirmed,
		Confidence: 1.0, Scope: model.ScopeFactual, Strength: strength,
	}
}

func contextualNode(id string) model.KnowledgeNode {
	return model.KnowledgeNode{
		ID: id, Source: model.SourceExplicit, Status: model.StatusConfirmed,
		Confidence: 0.9, Scope: model.ScopeContextual, Strength: model.StrengthWeak,
	}
}

func supportsLink(groundID string) model.StatementGroundLink {
	return model.StatementGroundLink{
		StatementID: "s1", GroundID: groundID, Role: model.RoleSupports,
		Provenance: model.Provenance{
			Creator:      model.CreatorToolObserver,
			EvidenceType: model.EvidenceObservation,
		},
	}
}

func TestDerive_EmptyGroundSetPermitsRefusalOnly(t *testing.T) {
	deriver := NewDeriver()

	lic := deriver.Derive(model.GroundSet{})
	if !lic.Permits(model.ModalityRefusal) {
		t.Error("Expected refusal permitted")
	}
	if lic.Permits(model.ModalityAssertive) || lic.Permits(model.ModalityConditional) {
		t.Errorf("Expected refusal only, got %v", lic.Modalities())
	}
}

func TestDerive_NoFactualGroundingPermitsRefusalOnly(t *testing.T) {
	deriver := NewDeriver()

	lic := deriver.Derive(model.GroundSet{Nodes: []model.KnowledgeNode{contextualNode("k1")}})
	if lic.Permits(model.ModalityAssertive) || lic.Permits(model.ModalityConditional) {
		t.Errorf("Expected refusal only, got %v", lic.Modalities())
	}
}

func TestDerive_StrongFactualPermitsAssertive(t *testing.T) {
	deriver := NewDeriver()

	lic := deriver.Derive(model.GroundSet{Nodes: []model.KnowledgeNode{
		factualNode("k1", model.StrengthWeak),
		factualNode("k2", model.StrengthStrong),
	}})
	if !lic.Permits(model.ModalityAssertive) || !lic.Permits(model.ModalityConditional) ||
		!lic.Permits(model.ModalityRefusal) {
		t.Errorf("Expected full license, got %v", lic.Modalities())
	}
}

func TestDerive_WeakFactualPermitsConditionalOnly(t *testing.T) {
	deriver := NewDeriver()

	lic := deriver.Derive(model.GroundSet{Nodes: []model.KnowledgeNode{
		factualNode("k1", model.StrengthWeak),
	}})
	if lic.Permits(model.ModalityAssertive) {
		t.Error("Weak factual grounding must not permit assertive")
	}
	if !lic.Permits(model.ModalityConditional) || !lic.Permits(model.ModalityRefusal) {
		t.Errorf("Expected conditional and refusal, got %v", lic.Modalities())
	}
}

func TestDeriveWithLinks_NoSupportsLinksPermitsRefusalOnly(t *testing.T) {
	deriver := NewDeriver()
	groundSet := model.GroundSet{Nodes: []model.KnowledgeNode{factualNode("k1", model.StrengthStrong)}}
	links := model.LinkSet{Links: []model.StatementGroundLink{{
		StatementID: "s1", GroundID: "k1", Role: model.RoleContextualizes,
	}}}

	lic := deriver.DeriveWithLinks(groundSet, links)
	if lic.Permits(model.ModalityAssertive) || lic.Permits(model.ModalityConditional) {
		t.Errorf("Expected refusal only without supports links, got %v", lic.Modalities())
	}
}

func TestDeriveWithLinks_ResolvesBySemanticID(t *testing.T) {
	deriver := NewDeriver()
	node := factualNode("tool_get_issue_abc123", model.StrengthStrong)
	node.SemanticID = "issue_PROJ-7"
	groundSet := model.GroundSet{Nodes: []model.KnowledgeNode{node}}
	links := model.LinkSet{Links: []model.StatementGroundLink{supportsLink("issue_PROJ-7")}}

	lic := deriver.DeriveWithLinks(groundSet, links)
	if !lic.Permits(model.ModalityAssertive) {
		t.Errorf("Expected assertive via semantic id resolution, got %v", lic.Modalities())
	}
}

func TestDeriveWithLinks_AllUnresolvedFailsClosed(t *testing.T) {
	deriver := NewDeriver()
	groundSet := model.GroundSet{Nodes: []model.KnowledgeNode{factualNode("k1", model.StrengthStrong)}}
	links := model.LinkSet{Links: []model.StatementGroundLink{supportsLink("missing_ground")}}

	lic := deriver.DeriveWithLinks(groundSet, links)
	if lic.Permits(model.ModalityAssertive) || lic.Permits(model.ModalityConditional) {
		t.Errorf("Expected refusal only for unresolved links, got %v", lic.Modalities())
	}
}

func TestDeriveWithLinks_WeakFactualSubset(t *testing.T) {
	deriver := NewDeriver()
	groundSet := model.GroundSet{Nodes: []model.KnowledgeNode{
		factualNode("k_strong", model.StrengthStrong),
		factualNode("k_weak", model.StrengthWeak),
	}}
	// Only the weak ground is declared as used.
	links := model.LinkSet{Links: []model.StatementGroundLink{supportsLink("k_weak")}}

	lic := deriver.DeriveWithLinks(groundSet, links)
	if lic.Permits(model.ModalityAssertive) {
		t.Error("Undeclared strong ground must not license assertive")
	}
	if !lic.Permits(model.ModalityConditional) {
		t.Errorf("Expected conditional from weak used ground, got %v", lic.Modalities())
	}
}
