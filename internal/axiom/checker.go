// Package axiom enforces the admissibility axioms over a classified,
// licensed statement.
//
// Evaluation order is fixed and must not be reordered: refusal (A6), then
// the categoricity ban (A5), then conditional admissibility (A7), then the
// grounding requirement (A4). Reordering would punish valid refusals or
// let unlicensed assertive claims through.
//
// The checker enforces license compliance only. Grounding sufficiency is
// the license deriver's job and is never re-derived here; the ground set
// is opaque except for the presence checks A4 needs.
package axiom

import (
	"fmt"
	"strings"

	"github.com/ppiankov/normgate/internal/model"
)

// Checker applies axioms A4 through A7 to one statement.
//
// Underdetermined is an explicit outcome, not a failure: it records that
// the modality and license combination is outside the rules, so the
// checker has no jurisdiction to judge it.
type Checker struct{}

// NewChecker returns an axiom checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Check evaluates a statement against the axioms in fixed order.
func (c *Checker) Check(statement model.Statement, lic model.License, groundSet model.GroundSet) model.AxiomResult {
	// A6: explicit refusal is always admissible.
	if statement.Modality == model.ModalityRefusal {
		return model.AxiomResult{
			Status:      model.StatusAcceptable,
			Explanation: "Explicit refusal is always admissible (A6)",
		}
	}

	// A5: categoricity ban. Checks the license, never the ground set:
	// if the deriver granted assertive, A5 passes.
	if statement.Modality == model.ModalityAssertive && !lic.Permits(model.ModalityAssertive) {
		return model.AxiomResult{
			Status:        model.StatusViolatesNorm,
			ViolatedAxiom: "A5",
			Explanation:   "Assertive statement without sufficient grounding (categoricity ban)",
		}
	}

	// A7: conditional admissibility, before A4.
	if statement.Modality == model.ModalityConditional {
		if lic.Permits(model.ModalityAssertive) {
			// The agent voluntarily chose the weaker form.
			return model.AxiomResult{
				Status:      model.StatusConditionallyAcceptable,
				Explanation: "Conditional form chosen by agent (ASSERTIVE also permitted by grounding)",
			}
		}
		if len(statement.Conditions) > 0 {
			return model.AxiomResult{
				Status: model.StatusConditionallyAcceptable,
				Explanation: fmt.Sprintf("Conditional statement with declared conditions: [%s]",
					strings.Join(statement.Conditions, ", ")),
			}
		}
		return model.AxiomResult{
			Status:        model.StatusUnsupported,
			ViolatedAxiom: "A7",
			Explanation:   "Conditional statement without declared conditions",
		}
	}

	// A4: normative claims require non-empty grounding.
	if statement.Modality.IsNormative() && groundSet.IsEmpty() {
		return model.AxiomResult{
			Status:        model.StatusUnsupported,
			ViolatedAxiom: "A4",
			Explanation:   "Normative claim without grounding",
		}
	}

	// Descriptive statements bypass licensing but still require factual
	// grounding. This is factual admissibility, not normative licensing.
	if statement.Modality == model.ModalityDescriptive {
		if groundSet.HasScope(model.ScopeFactual) {
			return model.AxiomResult{
				Status:      model.StatusAcceptable,
				Explanation: "Descriptive statement grounded in factual knowledge",
			}
		}
		return model.AxiomResult{
			Status:        model.StatusUnsupported,
			ViolatedAxiom: "A4",
			Explanation:   "Descriptive statement without factual grounding",
		}
	}

	if lic.Permits(statement.Modality) {
		return model.AxiomResult{
			Status:      model.StatusAcceptable,
			Explanation: fmt.Sprintf("Statement modality (%s) permitted by license", statement.Modality),
		}
	}

	return model.AxiomResult{
		Status: model.StatusUnderdetermined,
		Explanation: fmt.Sprintf("Cannot determine status (modality=%s, license=%s)",
			statement.Modality, strings.Join(lic.Modalities(), ", ")),
	}
}
