// Package extract isolates normative utterances from raw agent output.
//
// Agent output carries two layers: protocol speech (greetings, offers,
// capability lists) and normative speech (assertions, recommendations,
// refusals). Protocol speech is conversation management and is not subject
// to the admissibility axioms, so it is stripped before evaluation. The
// filtering is boundary detection over formal textual indicators only: no
// semantic interpretation, fully deterministic.
//
// An empty result means the evaluator has no jurisdiction to judge the
// output, not that the output is bad.
package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/normgate/internal/logging"
	"github.com/ppiankov/normgate/internal/model"
	"go.uber.org/zap"
)

// Normative indicators signal potential normative content. Conservative by
// construction: only patterns with low false-positive risk.
//
// Invariant shared with the modality detector: any indicator the detector
// uses to classify participation must be sufficient here to keep the
// utterance, or normative speech gets dropped before classification runs.
var normativeIndicators = compileAll(
	// strong normative markers
	`\b(?:should|must|recommend|prioritize)\b`,
	`\bblock(?:s|ed|ing)?\b`,
	`\bdepends\s+on\b`,
	`\bis\s+(?:blocked|required|dependent)\b`,

	// recommendation framing that may omit "should/must"
	`\bis\s+better\b`,
	`\bbetter\s+for\s+you\b`,
	`\bbest\s+(?:choice|option)\b`,
	`\bprefer(?:s|red)?\b`,

	// conditional structures
	`\bif\s+.+\s+then\b`,

	// refusal markers
	`\b(?:cannot|can't|unable\s+to)\s+determine\b`,
	`\bnot\s+enough\s+(?:info|information|context)\b`,
	`\b(?:need|require)\s+(?:more|additional)\b`,
)

// Personalization framing counts as normative participation even without
// should/must, so personalization claims survive until modality detection.
var personalizationIndicators = compileAll(
	`\bfor\s+you\b`,
	`\bgiven\s+your\b`,
	`\bbased\s+on\s+your\b`,
	`\baccording\s+to\s+your\b`,
	`\bwith\s+your\s+(?:preferences|constraints)\b`,
)

// Protocol tails are cut from the end with anchored patterns only: if the
// pattern does not match the end of the text, nothing is cut.
var protocolSuffixPatterns = compileAllDotAll(
	// parenthetical examples/capabilities: "(e.g., find issue, check status, ...)"
	`\s*\([^)]*(?:e\.g\.|for example|such as|find|check|status|comment|assign|move|create|pull|help|assist|transition|workflow)[^)]*\)\s*$`,

	// capability offers at the end: "I can help with...", "Let me know if..."
	`\s*(?:i\s+can\s+(?:help|assist|pull|check|find)|let\s+me\s+know\s+if|feel\s+free\s+to\s+ask).*$`,

	// question tail, only with help/assist keywords, so normative
	// questions like "Should we prioritize X?" survive
	`\s*[^.!?]*(?:help|assist|can\s+i|would\s+you\s+like)\s*[^.!?]*\?\s*$`,
)

// Remaining greeting tokens, removed in a single anchored pass.
var protocolPrefixPattern = regexp.MustCompile(
	`(?i)^(?:hello|hi|hey|greetings|good\s+(?:morning|afternoon|evening)|thanks\s+for\s+asking|i'?m\s+doing\s+(?:well|fine|good|great|okay|ok)|i'?m\s+(?:here|ready|available)|hope\s+you'?re\s+doing\s+well)[!,.\s—-]*`)

// Self-referential, open-ended sentence markers.
var protocolSentenceMarkers = compileAll(
	`\bi\s+can\b`,
	`\bhow\s+can\s+i\b`,
	`\bwhat\s+can\s+i\b`,
	`\bthanks\s+for\b`,
	`\blet\s+me\s+know\b`,
	`\bfeel\s+free\b`,
	`\bhope\s+you\b`,
)

const maxSuffixIterations = 5

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(`(?i)` + p)
	}
	return res
}

func compileAllDotAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(`(?is)` + p)
	}
	return res
}

// StatementExtractor extracts normative participation from agent output.
//
// Single-statement model: the agent's final response is one speech act,
// yielding at most one Statement with generic subject/predicate. Modality is
// determined separately by the modality detector.
type StatementExtractor struct{}

// NewStatementExtractor creates a new statement extractor.
func NewStatementExtractor() *StatementExtractor {
	return &StatementExtractor{}
}

// Extract returns zero or one statement from agent output.
//
// An empty result means only protocol speech was found; the evaluator must
// report no normative content rather than judge.
func (e *StatementExtractor) Extract(text string) []model.Statement {
	if strings.TrimSpace(text) == "" {
		logging.L().Warn("statement extractor: empty text provided")
		return nil
	}

	cleaned := e.stripProtocol(text)
	if strings.TrimSpace(cleaned) == "" {
		logging.L().Info("statement extractor: protocol-only output, no normative content")
		return nil
	}

	return []model.Statement{{
		ID:        "final_response",
		Subject:   "agent",
		Predicate: "participation",
		RawText:   cleaned,
	}}
}

// stripProtocol removes protocol speech via boundary-based filtering.
//
// 1. Early exit: no normative indicators at all means protocol-only output.
// 2. Strip protocol suffix (capability lists, examples, offers), iteratively
//    since tails cascade.
// 3. Strip protocol prefix sentences (greetings, small talk preambles).
// 4. Strip any remaining greeting tokens in one pass.
// 5. Final guard: a remaining core that ends in "?" and carries no normative
//    indicator is a continuation invite, not participation. Questions that
//    do carry indicators ("Should we prioritize X?") are kept: stripping
//    them would make "add a question mark" an evasion channel.
func (e *StatementExtractor) stripProtocol(text string) string {
	cleaned := strings.TrimSpace(text)
	originalLen := len(cleaned)

	if !containsNormativeIndicator(cleaned) {
		logging.L().Debug("statement extractor: no normative indicators, likely protocol-only")
		return ""
	}

	cleaned = stripProtocolSuffix(cleaned)
	cleaned = stripProtocolPrefixSentences(cleaned)
	cleaned = strings.TrimSpace(protocolPrefixPattern.ReplaceAllString(cleaned, ""))

	if strings.HasSuffix(cleaned, "?") && !containsNormativeIndicator(cleaned) {
		logging.L().Debug("statement extractor: core ends with '?' without indicators, rejecting")
		return ""
	}

	if len(cleaned) < originalLen {
		logging.L().Debug("statement extractor: stripped protocol speech",
			zap.Int("original_chars", originalLen),
			zap.Int("cleaned_chars", len(cleaned)))
	}
	return cleaned
}

func containsNormativeIndicator(text string) bool {
	for _, re := range normativeIndicators {
		if re.MatchString(text) {
			return true
		}
	}
	for _, re := range personalizationIndicators {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// containsStrongNormativeIndicator excludes pure personalization framing, so
// personalization phrasing alone cannot turn a protocol offer into
// normative participation.
func containsStrongNormativeIndicator(text string) bool {
	for _, re := range normativeIndicators {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func looksLikeProtocolSentence(sentence string) bool {
	for _, re := range protocolSentenceMarkers {
		if re.MatchString(sentence) {
			return true
		}
	}
	trimmed := strings.TrimSpace(sentence)
	if strings.HasSuffix(trimmed, "?") && !containsNormativeIndicator(trimmed) {
		return true
	}
	return false
}

func stripProtocolSuffix(text string) string {
	current := strings.TrimSpace(text)
	prev := ""

	for i := 0; prev != current && i < maxSuffixIterations; i++ {
		prev = current
		for _, re := range protocolSuffixPatterns {
			current = strings.TrimSpace(re.ReplaceAllString(current, ""))
		}
	}
	return current
}

// stripProtocolPrefixSentences walks sentences from the start, discarding
// protocol-looking sentences that lack a strong normative indicator, and
// keeps everything from the first normative sentence onward verbatim.
func stripProtocolPrefixSentences(text string) string {
	sentences := splitSentences(text)

	var kept []string
	for i, sentence := range sentences {
		hasStrong := containsStrongNormativeIndicator(sentence)
		hasAny := containsNormativeIndicator(sentence)

		if looksLikeProtocolSentence(sentence) && !hasStrong {
			continue
		}

		// first normative sentence: keep it and everything after
		if hasAny {
			kept = append(kept, sentences[i:]...)
			break
		}

		// neither clearly protocol nor clearly normative: keep it,
		// it might be normative without indicators
		kept = append(kept, sentence)
	}

	return strings.TrimSpace(strings.Join(kept, " "))
}

// splitSentences splits on sentence terminators followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
		}
	}

	if tail := strings.TrimSpace(current.String()); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
