// Package modality classifies the logical form of a statement.
//
// Modality is a derived property of a statement's textual form, never an
// intrinsic attribute. The detector maps a statement onto one of four
// forms (assertive, conditional, refusal, descriptive) using formal
// indicators only: no semantics, no pragmatics, no content understanding.
//
// Detection is head-driven. Only the core assertion (first paragraph or
// first sentence) determines the form, so supplementary clauses in the
// tail ("...if you tell me more, I can help") cannot flip the
// classification. Conditions, in contrast, are extracted from the full
// text once the form is known to be conditional.
package modality

import (
	"regexp"
	"strings"

	"github.com/ppiankov/normgate/internal/logging"
	"github.com/ppiankov/normgate/internal/model"
	"go.uber.org/zap"
)

// Refusal indicators detect an explicit admission of inability to
// determine. Polite uncertainty (maybe, possibly, likely) deliberately
// does not count and falls through to the assertive default.
var refusalFormIndicators = compileAll(
	`cannot\s+(?:determine|decide|choose)`,
	`(?:need|require)\s+(?:more|additional)`,
	`insufficient`,
	`please\s+(?:provide|clarify|check)`,
	`i\s+don'?t\s+(?:know|have)`,
	`hard\s+to\s+(?:say|determine)`,
	`^i\s+(?:would|will)\s+not\s+\w+`,
	`^i\s+(?:wouldn't|won't)\s+\w+`,
)

var conditionalFormIndicators = compileAll(
	`\b(?:if|unless|assuming|given\s+that|provided)\s+`,
	`depends\s+on`,
	`(?:would|could|might)\s+\w+\s+(?:if|when|unless)`,
)

// Goal-conditional framing ("If your goal is X, do Y") forces the
// conditional form even when recommendation markers are present in the
// consequent. Deontic advice conditioned on the user's objective is not a
// categorical claim about the world.
var goalConditionalFormIndicators = compileAll(
	`^if\s+(?:your\s+)?goal\s+is`,
	`^if\s+you\s+(?:want|care|optimize|aim)`,
	`^assuming\s+you\s+(?:want|care|optimize|aim)`,
	`^if\s+you'?re\s+(?:optimizing|aiming|trying)`,
)

// Personalization framing ("X is better for you", "given your
// preferences") is context-relative, not epistemic. It is classified as
// conditional so that personal context cannot license a categorical
// assertive claim.
var personalizationFormIndicators = compileAll(
	`\bfor\s+you\b`,
	`\bgiven\s+your\b`,
	`\bbased\s+on\s+your\b`,
	`\baccording\s+to\s+your\b`,
	`\bwith\s+your\s+(?:preferences|constraints)\b`,
)

var descriptiveFormIndicators = compileAll(
	`\bblocks?\b`,
	`\bis\s+blocked\s+by\b`,
	`\bdepends?\s+on\b`,
	`\bhas\s+status\b`,
	`\bis\s+(?:in\s+progress|blocked|done|to\s+do)`,
	`\bdue\s+date\s+is\b`,
)

var normativeFormIndicators = compileAll(
	`\bshould\b`,
	`\bmust\b`,
	`\bneeds?\s+to\b`,
	`\brecommend`,
	`\bsuggest`,
	`\badvise`,
)

// Recommendation markers in the core assertion classify the statement as
// assertive even when conditional markers appear later in the text.
var recommendationFormIndicators = compileAll(
	`\b(?:is|are)\s+(?:the\s+)?better\b`,
	`\bshould\s+(?:be\s+)?(?:prioritiz|focus|pick|choose)`,
	`\brecommend\s+\w+`,
	`\bsuggest\s+(?:you\s+)?(?:pick|choose|start)`,
	`\bbest\s+(?:place|choice|option)`,
	`\bprioritize\s+(?:the\s+)?\w+`,
	`\b(?:finish|complete)\s+\w+\s+first\b`,
)

var (
	firstSentenceRe = regexp.MustCompile(`(?s)^(.+?\.)\s`)

	ifClauseRe        = regexp.MustCompile(`(?i)\bif\s+([^,]+)`)
	unlessClauseRe    = regexp.MustCompile(`(?i)\bunless\s+([^,]+)`)
	assumingClauseRe  = regexp.MustCompile(`(?i)\b(?:assuming|given\s+that)\s+([^,]+)`)
	givenYourClauseRe = regexp.MustCompile(`(?i)\bgiven\s+your\s+([^,.;]+)`)
	basedOnYourRe     = regexp.MustCompile(`(?i)\bbased\s+on\s+your\s+([^,.;]+)`)
	forYouRe          = regexp.MustCompile(`(?i)\bfor\s+you\b`)
)

const coreFallbackLength = 500

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

func anyMatch(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Detector determines statement modality from formal indicators.
//
// Determination order is fixed and must not be reordered:
//
//	refusal > goal-conditional > personalization-conditional >
//	assertive (recommendation) > conditional > descriptive >
//	assertive (default)
//
// The assertive default is an anti-evasion policy choice, not a logical
// necessity. If no explicit refusal or condition is present, the
// statement is treated as categorical.
type Detector struct{}

// NewDetector returns a modality detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect classifies the modality of a statement text.
//
// Only the core assertion counts for classification. The split priority
// for the core is paragraph break, first sentence, first line, then a
// 500-character fallback.
func (d *Detector) Detect(text string) model.Modality {
	lowered := strings.ToLower(text)
	core := extractCoreAssertion(lowered)

	switch {
	case anyMatch(refusalFormIndicators, core):
		logging.L().Debug("modality: refusal", zap.String("core", core))
		return model.ModalityRefusal

	case anyMatch(goalConditionalFormIndicators, core):
		logging.L().Debug("modality: conditional (goal framing)", zap.String("core", core))
		return model.ModalityConditional

	case anyMatch(personalizationFormIndicators, core):
		logging.L().Debug("modality: conditional (personalization framing)", zap.String("core", core))
		return model.ModalityConditional

	case anyMatch(recommendationFormIndicators, core):
		logging.L().Debug("modality: assertive (recommendation in core)", zap.String("core", core))
		return model.ModalityAssertive

	case anyMatch(conditionalFormIndicators, core):
		logging.L().Debug("modality: conditional", zap.String("core", core))
		return model.ModalityConditional

	case anyMatch(descriptiveFormIndicators, core) && !anyMatch(normativeFormIndicators, core):
		logging.L().Debug("modality: descriptive", zap.String("core", core))
		return model.ModalityDescriptive

	default:
		logging.L().Debug("modality: assertive (default policy)", zap.String("core", core))
		return model.ModalityAssertive
	}
}

// DetectWithConditions classifies the statement and, when the result is
// conditional, extracts declared conditions from the full text.
//
// The asymmetry is deliberate: modality comes from the core assertion
// only, conditions come from the full text. An assertive statement with a
// supplementary "if" in the tail therefore gets no conditions at all.
func (d *Detector) DetectWithConditions(statement model.Statement) model.Statement {
	statement.Modality = d.Detect(statement.RawText)
	if statement.Modality == model.ModalityConditional {
		statement.Conditions = extractConditions(statement.RawText)
	}
	return statement
}

func extractCoreAssertion(text string) string {
	if idx := strings.Index(text, "\n\n"); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	if m := firstSentenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if idx := strings.Index(text, "\n"); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	if len(text) > coreFallbackLength {
		return strings.TrimSpace(text[:coreFallbackLength])
	}
	return strings.TrimSpace(text)
}

// extractConditions collects declared condition clauses.
//
// Conditions are declarative flags, not logical premises. Nothing here
// evaluates truth, satisfiability, or coherence; "unless X" becomes
// "NOT X" as a textual marker only. When the statement is conditional
// but no clause can be extracted, the sentinel "unspecified" records
// that conditionality was declared without naming the condition.
func extractConditions(text string) []string {
	var conditions []string

	if m := ifClauseRe.FindStringSubmatch(text); m != nil {
		conditions = append(conditions, strings.TrimSpace(m[1]))
	}
	if m := unlessClauseRe.FindStringSubmatch(text); m != nil {
		conditions = append(conditions, "NOT "+strings.TrimSpace(m[1]))
	}
	if m := assumingClauseRe.FindStringSubmatch(text); m != nil {
		conditions = append(conditions, strings.TrimSpace(m[1]))
	}
	if m := givenYourClauseRe.FindStringSubmatch(text); m != nil {
		conditions = append(conditions, "given your "+strings.TrimSpace(m[1]))
	}
	if m := basedOnYourRe.FindStringSubmatch(text); m != nil {
		conditions = append(conditions, "based on your "+strings.TrimSpace(m[1]))
	}
	if forYouRe.MatchString(text) {
		conditions = append(conditions, "for you")
	}

	if len(conditions) == 0 {
		return []string{"unspecified"}
	}
	return conditions
}
