package model

// EvaluationStatus is the outcome of axiom checking, for one statement or
// for the aggregated speech act.
//
// Underdetermined and no_normative_content are first-class non-penalizing
// outcomes: the first means the evaluator cannot judge within its rule
// coverage, the second that protocol-only output left it no jurisdiction at
// all. Neither is a violation or a success.
type EvaluationStatus string

const (
	StatusAcceptable              EvaluationStatus = "acceptable"
	StatusConditionallyAcceptable EvaluationStatus = "conditionally_acceptable"
	StatusViolatesNorm            EvaluationStatus = "violates_norm"
	StatusUnsupported             EvaluationStatus = "unsupported"
	StatusIllFormed               EvaluationStatus = "ill_formed"
	StatusUnderdetermined         EvaluationStatus = "underdetermined"
	StatusNoNormativeContent      EvaluationStatus = "no_normative_content"
)

// AxiomResult is the outcome of checking one statement against the axiom set.
type AxiomResult struct {
	Status        EvaluationStatus
	ViolatedAxiom string // "A4", "A5", "A7", or empty
	Explanation   string
}

// GroundRef is one matched evidence node in a statement's grounding trace.
type GroundRef struct {
	ID         string   `json:"id"`
	Scope      Scope    `json:"scope"`
	Source     Source   `json:"source"`
	Status     Status   `json:"status"`
	Confidence float64  `json:"confidence"`
	Strength   Strength `json:"strength"`
	SemanticID string   `json:"semantic_id,omitempty"`
}

// StatementEvaluation is the per-statement evaluation record in a judgment.
type StatementEvaluation struct {
	StatementID    string           `json:"statement_id"`
	Statement      string           `json:"statement"`
	Modality       string           `json:"modality"`
	License        []string         `json:"license"`
	Status         EvaluationStatus `json:"status"`
	ViolatedAxiom  string           `json:"violated_axiom,omitempty"`
	Explanation    string           `json:"explanation"`
	GroundingTrace []GroundRef      `json:"grounding_trace"`
	Subject        string           `json:"subject"`
	Predicate      string           `json:"predicate"`
}

// Judgment is the aggregated admissibility verdict for one agent message.
//
// It is a value: a pure view over the per-statement outcomes, holding no
// reference into evaluator state. CanRetry is advisory output for the caller;
// the engine itself never retries.
type Judgment struct {
	Status               EvaluationStatus      `json:"status"`
	Licensed             bool                  `json:"licensed"`
	CanRetry             bool                  `json:"can_retry"`
	StatementEvaluations []StatementEvaluation `json:"statement_evaluations"`
	FeedbackHint         string                `json:"feedback_hint,omitempty"`
	ViolatedAxioms       []string              `json:"violated_axioms"`
	Explanation          string                `json:"explanation"`
	NumStatements        int                   `json:"num_statements"`
	NumAcceptable        int                   `json:"num_acceptable"`
	GroundsAccepted      int                   `json:"grounds_accepted"`
	GroundsCited         int                   `json:"grounds_cited"`
}
