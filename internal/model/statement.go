package model

// Modality is the logical form of a statement
type Modality string

const (
	ModalityAssertive   Modality = "assertive"   // "X should Y" without condition
	ModalityConditional Modality = "conditional" // "If A, then X should Y"
	ModalityRefusal     Modality = "refusal"     // "Cannot determine X"
	ModalityDescriptive Modality = "descriptive" // "X blocks Y" (factual observation)
)

// IsNormative reports whether the modality makes a claim about what should be.
// Descriptive and refusal statements carry no normative force.
func (m Modality) IsNormative() bool {
	return m == ModalityAssertive || m == ModalityConditional
}

// Statement is the normative portion of one agent message.
//
// The single-statement model treats the agent's final output as one speech
// act: subject and predicate are generic placeholders that guarantee
// structural well-formedness by construction, not semantic content.
// Modality and conditions are filled in by the modality detector.
type Statement struct {
	ID         string   `json:"id"`
	Subject    string   `json:"subject"`   // always "agent" in the single-statement model
	Predicate  string   `json:"predicate"` // "participation", or "refuses" for refusal parts
	RawText    string   `json:"raw_text"`
	Modality   Modality `json:"modality,omitempty"`
	Conditions []string `json:"conditions,omitempty"` // declared condition flags, if conditional
}
