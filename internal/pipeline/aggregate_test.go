package pipeline

import (
	"testing"

	"github.com/ppiankov/normgate/internal/model"
)

func results(statuses ...model.EvaluationStatus) []model.AxiomResult {
	out := make([]model.AxiomResult, 0, len(statuses))
	for _, s := range statuses {
		r := model.AxiomResult{Status: s}
		if s == model.StatusViolatesNorm {
			r.ViolatedAxiom = "A5"
		}
		if s == model.StatusUnsupported {
			r.ViolatedAxiom = "A4"
		}
		out = append(out, r)
	}
	return out
}

func TestAggregate_ViolationDominatesEverything(t *testing.T) {
	judgment := aggregate(
		results(model.StatusAcceptable, model.StatusViolatesNorm, model.StatusUnsupported),
		nil,
	)
	if judgment.Status != model.StatusViolatesNorm {
		t.Errorf("Expected violates_norm, got %s", judgment.Status)
	}
	if judgment.Licensed || !judgment.CanRetry {
		t.Errorf("Expected unlicensed retryable, got %+v", judgment)
	}
}

func TestAggregate_UnderdeterminedBeatsUnsupported(t *testing.T) {
	judgment := aggregate(
		results(model.StatusUnsupported, model.StatusUnderdetermined),
		nil,
	)
	if judgment.Status != model.StatusUnderdetermined {
		t.Errorf("Expected underdetermined, got %s", judgment.Status)
	}
	if judgment.CanRetry {
		t.Error("Underdetermined must not be retryable")
	}
	if judgment.FeedbackHint != "" {
		t.Errorf("No jurisdiction means no feedback hint, got %q", judgment.FeedbackHint)
	}
}

func TestAggregate_UnsupportedIsLicensedAndRetryable(t *testing.T) {
	judgment := aggregate(results(model.StatusUnsupported, model.StatusAcceptable), nil)
	if judgment.Status != model.StatusUnsupported {
		t.Errorf("Expected unsupported, got %s", judgment.Status)
	}
	if !judgment.Licensed || !judgment.CanRetry {
		t.Errorf("Expected licensed retryable, got %+v", judgment)
	}
}

func TestAggregate_AllConditional(t *testing.T) {
	judgment := aggregate(
		results(model.StatusConditionallyAcceptable, model.StatusConditionallyAcceptable),
		nil,
	)
	if judgment.Status != model.StatusConditionallyAcceptable {
		t.Errorf("Expected conditionally_acceptable, got %s", judgment.Status)
	}
	if judgment.Explanation != "All statements are conditionally acceptable" {
		t.Errorf("Unexpected explanation: %q", judgment.Explanation)
	}
}

func TestAggregate_MixedConditionalAndAcceptable(t *testing.T) {
	judgment := aggregate(
		results(model.StatusConditionallyAcceptable, model.StatusAcceptable),
		nil,
	)
	if judgment.Status != model.StatusConditionallyAcceptable {
		t.Errorf("Expected conditionally_acceptable, got %s", judgment.Status)
	}
	if judgment.Explanation != "Mix of conditional and acceptable statements" {
		t.Errorf("Unexpected explanation: %q", judgment.Explanation)
	}
	if judgment.NumAcceptable != 2 {
		t.Errorf("Expected 2 acceptable, got %d", judgment.NumAcceptable)
	}
}

func TestAggregate_AllAcceptable(t *testing.T) {
	judgment := aggregate(results(model.StatusAcceptable), nil)
	if judgment.Status != model.StatusAcceptable {
		t.Errorf("Expected acceptable, got %s", judgment.Status)
	}
	if !judgment.Licensed || judgment.CanRetry {
		t.Errorf("Expected licensed non-retryable, got %+v", judgment)
	}
}
