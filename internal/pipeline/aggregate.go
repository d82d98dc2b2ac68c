package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/normgate/internal/logging"
	"github.com/ppiankov/normgate/internal/model"
	"go.uber.org/zap"
)

// aggregate folds per-statement axiom results into one judgment.
//
// Aggregation is lexicographic, worst outcome first:
//
//	violates_norm > ill_formed > underdetermined > unsupported >
//	conditionally_acceptable > acceptable
//
// One illegitimate statement makes the entire act illegitimate; the
// axioms are not additive. Underdetermined aggregates as a neutral
// non-retryable outcome: the evaluator lacks jurisdiction, and a retry
// could not change that.
func aggregate(results []model.AxiomResult, evaluations []model.StatementEvaluation) model.Judgment {
	violations := []string{}
	for _, r := range results {
		if r.ViolatedAxiom != "" {
			violations = append(violations, r.ViolatedAxiom)
		}
	}

	var (
		status       model.EvaluationStatus
		licensed     bool
		canRetry     bool
		feedbackHint string
		explanation  string
	)

	switch {
	case anyStatus(results, model.StatusViolatesNorm):
		status = model.StatusViolatesNorm
		licensed = false
		canRetry = true
		feedbackHint = fmt.Sprintf(
			"Your response violates normative axioms: %s. "+
				"Please revise or refuse to answer if you lack required context.",
			strings.Join(violations, ", "))
		explanation = fmt.Sprintf("Violated axioms: [%s]", strings.Join(violations, ", "))

	case anyStatus(results, model.StatusIllFormed):
		status = model.StatusIllFormed
		licensed = false
		canRetry = true
		feedbackHint = "Your response is structurally ill-formed. " +
			"Please rephrase with clear subject-predicate statements."
		explanation = "Structurally ill-formed statements detected"

	case anyStatus(results, model.StatusUnderdetermined):
		status = model.StatusUnderdetermined
		licensed = false
		canRetry = false
		explanation = "Validator has no jurisdiction to judge"

	case anyStatus(results, model.StatusUnsupported):
		status = model.StatusUnsupported
		licensed = true
		canRetry = true
		feedbackHint = "Your statements lack required grounding. " +
			"Consider asking for more context or using conditional phrasing."
		explanation = "Statements lack required grounding (A4)"

	case allStatus(results, model.StatusConditionallyAcceptable):
		status = model.StatusConditionallyAcceptable
		licensed = true
		canRetry = false
		explanation = "All statements are conditionally acceptable"

	case anyStatus(results, model.StatusConditionallyAcceptable):
		status = model.StatusConditionallyAcceptable
		licensed = true
		canRetry = false
		explanation = "Mix of conditional and acceptable statements"

	default:
		status = model.StatusAcceptable
		licensed = true
		canRetry = false
		explanation = "All statements are normatively acceptable"
	}

	numAcceptable := 0
	for _, r := range results {
		if r.Status == model.StatusAcceptable || r.Status == model.StatusConditionallyAcceptable {
			numAcceptable++
		}
	}

	logging.L().Info("aggregated judgment",
		zap.String("status", string(status)),
		zap.Bool("licensed", licensed),
		zap.Int("acceptable", numAcceptable),
		zap.Int("statements", len(evaluations)),
		zap.Int("violations", len(violations)))

	return model.Judgment{
		Status:               status,
		Licensed:             licensed,
		CanRetry:             canRetry,
		StatementEvaluations: evaluations,
		FeedbackHint:         feedbackHint,
		ViolatedAxioms:       violations,
		Explanation:          explanation,
		NumStatements:        len(evaluations),
		NumAcceptable:        numAcceptable,
	}
}

func anyStatus(results []model.AxiomResult, status model.EvaluationStatus) bool {
	for _, r := range results {
		if r.Status == status {
			return true
		}
	}
	return false
}

func allStatus(results []model.AxiomResult, status model.EvaluationStatus) bool {
	for _, r := range results {
		if r.Status != status {
			return false
		}
	}
	return len(results) > 0
}
