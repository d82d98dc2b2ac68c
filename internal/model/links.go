package model

import "time"

// LinkRole is how a statement uses a ground.
//
// Only supports-links affect licensing. Disambiguates-links clarify existing
// grounds without adding scopes; contextualizes-links carry personalization
// and never affect licensing.
type LinkRole string

const (
	RoleSupports       LinkRole = "supports"
	RoleDisambiguates  LinkRole = "disambiguates"
	RoleContextualizes LinkRole = "contextualizes"
)

// CreatorType identifies who created a usage-declaration link.
type CreatorType string

const (
	CreatorHuman            CreatorType = "human"
	CreatorToolObserver     CreatorType = "tool_observer"
	CreatorAgentDeclaration CreatorType = "agent_declaration"
	CreatorUpstreamPipeline CreatorType = "upstream_pipeline"
)

// EvidenceType classifies the evidence behind a link's creation.
type EvidenceType string

const (
	EvidenceObservation EvidenceType = "observation" // direct observation (tool result content)
	EvidenceExplicit    EvidenceType = "explicit"    // user or expert stated
	EvidenceStructural  EvidenceType = "structural"  // syntactic/formal heuristic
	EvidenceValidation  EvidenceType = "validation"  // human reviewer approved a declaration
)

// Provenance records who created a link, when, and on what evidence.
// Mandatory for every link: untraceable links are rejected upstream.
type Provenance struct {
	Creator         CreatorType  `json:"creator"`
	Timestamp       time.Time    `json:"timestamp"`
	EvidenceType    EvidenceType `json:"evidence_type"`
	EvidenceContent string       `json:"evidence_content,omitempty"`
	Signature       string       `json:"signature,omitempty"`
}

// StatementGroundLink is an explicit declaration that a statement uses a
// ground in a given role. Links are declarations made outside the engine,
// never inferences computed by it: the evaluator trusts an already-validated
// link set and derives licenses only from its supports-links.
type StatementGroundLink struct {
	StatementID string     `json:"statement_id"`
	GroundID    string     `json:"ground_id"`
	Role        LinkRole   `json:"role"`
	Provenance  Provenance `json:"provenance"`
}

// LinkSet is the collection of validated links supplied for one evaluation.
type LinkSet struct {
	Links []StatementGroundLink `json:"links"`
}
