// Package pipeline orchestrates the admissibility evaluation of one agent
// speech act.
//
// Evaluation flow:
//  1. Collect externally observable tool results from the trajectory
//  2. Construct the knowledge state exclusively from those observations
//  3. Extract normative speech acts from agent output
//  4. Per statement: detect modality, match grounds, derive license,
//     check axioms
//  5. Aggregate into a single admissibility judgment
package pipeline

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/normgate/internal/axiom"
	"github.com/ppiankov/normgate/internal/citations"
	"github.com/ppiankov/normgate/internal/conversation"
	"github.com/ppiankov/normgate/internal/extract"
	"github.com/ppiankov/normgate/internal/ground"
	"github.com/ppiankov/normgate/internal/knowledge"
	"github.com/ppiankov/normgate/internal/license"
	"github.com/ppiankov/normgate/internal/logging"
	"github.com/ppiankov/normgate/internal/modality"
	"github.com/ppiankov/normgate/internal/model"
	"go.uber.org/zap"
)

// Evaluator wires the evaluation components into the fixed pipeline.
// Construction is cheap and an Evaluator is safe for concurrent use:
// all components are stateless after initialization.
type Evaluator struct {
	extractor        *extract.StatementExtractor
	modalityDetector *modality.Detector
	knowledgeBuilder *knowledge.Builder
	groundMatcher    *ground.Matcher
	licenseDeriver   *license.Deriver
	axiomChecker     *axiom.Checker
}

// NewEvaluator creates an evaluator with all components initialized.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		extractor:        extract.NewStatementExtractor(),
		modalityDetector: modality.NewDetector(),
		knowledgeBuilder: knowledge.NewBuilder(),
		groundMatcher:    ground.NewMatcher(),
		licenseDeriver:   license.NewDeriver(),
		axiomChecker:     axiom.NewChecker(),
	}
}

// Evaluate judges a single agent message against its trajectory.
//
// The trajectory supplies the evidential basis (tool results only); the
// optional grounds bind citation keys to external evidence. The returned
// judgment is deterministic: same inputs, byte-identical output.
func (e *Evaluator) Evaluate(
	agentMessage openai.ChatCompletionMessage,
	trajectory []openai.ChatCompletionMessage,
	grounds []citations.Ground,
) (model.Judgment, error) {
	return e.EvaluateWithLinks(agentMessage, trajectory, grounds, model.LinkSet{})
}

// EvaluateWithLinks additionally accepts usage-declaration links built
// offline, for example by the link suggester. Supplied links are merged
// with citation-derived links; any usable link switches license
// derivation into usage mode.
func (e *Evaluator) EvaluateWithLinks(
	agentMessage openai.ChatCompletionMessage,
	trajectory []openai.ChatCompletionMessage,
	grounds []citations.Ground,
	declaredLinks model.LinkSet,
) (model.Judgment, error) {
	toolResults := conversation.ExtractToolResults(trajectory)
	knowledgeNodes, toolCallRefs := e.knowledgeBuilder.BuildWithReferences(toolResults)

	speechAct, err := conversation.ToSpeechAct(agentMessage)
	if err != nil {
		return model.Judgment{}, fmt.Errorf("invalid agent message: %w", err)
	}

	providedGrounds, err := citations.ParseGrounds(grounds)
	if err != nil {
		return model.Judgment{}, fmt.Errorf("invalid grounds: %w", err)
	}
	knowledgeNodes = e.knowledgeBuilder.MaterializeExternalGrounds(knowledgeNodes, providedGrounds)

	combinedGrounds := append(providedGrounds, citations.GroundsFromToolCallRefs(toolCallRefs)...)

	statementID := "final_response"
	if speechAct.Refusal {
		statementID = "refusal"
	}
	links := citations.BuildLinksFromGrounds(speechAct.Text, combinedGrounds, statementID)
	links.Links = append(links.Links, declaredLinks.Links...)
	groundsAccepted := countDistinctGroundIDs(combinedGrounds)
	groundsCited := countDistinctLinkTargets(links)

	var judgment model.Judgment
	if speechAct.Refusal {
		judgment = e.evaluateRefusal(speechAct.Text, knowledgeNodes, links)
	} else {
		judgment = e.evaluateCore(speechAct.Text, knowledgeNodes, links)
	}
	judgment.GroundsAccepted = groundsAccepted
	judgment.GroundsCited = groundsCited
	return judgment, nil
}

// EvaluateText judges bare agent output without a surrounding
// conversation. No tool results exist, so the knowledge state is empty
// unless external grounds are supplied.
func (e *Evaluator) EvaluateText(agentOutput string, grounds []citations.Ground) (model.Judgment, error) {
	return e.Evaluate(
		openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: agentOutput,
		},
		nil,
		grounds,
	)
}

func (e *Evaluator) evaluateCore(agentOutput string, knowledgeNodes []model.KnowledgeNode, links model.LinkSet) model.Judgment {
	if agentOutput == "" {
		return model.Judgment{
			Status:               model.StatusUnderdetermined,
			Licensed:             false,
			CanRetry:             false,
			StatementEvaluations: []model.StatementEvaluation{},
			Explanation:          "No content to validate",
			ViolatedAxioms:       []string{},
		}
	}

	statements := e.extractor.Extract(agentOutput)
	if len(statements) == 0 {
		// Protocol-only output. Not underdetermined (cannot judge) but
		// no jurisdiction: zero normative claims, so no axioms apply.
		logging.L().Info("no normative utterances extracted, protocol-only output")
		return model.Judgment{
			Status:               model.StatusNoNormativeContent,
			Licensed:             false,
			CanRetry:             false,
			StatementEvaluations: []model.StatementEvaluation{},
			Explanation:          "Protocol-only output (greetings/offers) - no normative claims to evaluate",
			ViolatedAxioms:       []string{},
		}
	}
	logging.L().Info("extracted statements", zap.Int("count", len(statements)))

	evaluations := make([]model.StatementEvaluation, 0, len(statements))
	results := make([]model.AxiomResult, 0, len(statements))
	for _, statement := range statements {
		statement = e.modalityDetector.DetectWithConditions(statement)
		groundSet := e.groundMatcher.Match(statement, knowledgeNodes)

		// Descriptive statements are factual observation, not normative
		// claims: they bypass licensing and get an empty license.
		var lic model.License
		if statement.Modality == model.ModalityDescriptive {
			lic = model.NewLicense()
		} else if len(links.Links) > 0 {
			lic = e.licenseDeriver.DeriveWithLinks(groundSet, links)
		} else {
			lic = e.licenseDeriver.Derive(groundSet)
		}

		result := e.axiomChecker.Check(statement, lic, groundSet)
		results = append(results, result)
		evaluations = append(evaluations, buildStatementEvaluation(statement, lic, groundSet, result))

		logging.L().Info("evaluated statement",
			zap.String("statement_id", statement.ID),
			zap.String("modality", string(statement.Modality)),
			zap.Strings("license", lic.Modalities()),
			zap.String("status", string(result.Status)),
			zap.String("violated_axiom", result.ViolatedAxiom))
	}

	return aggregate(results, evaluations)
}

// evaluateRefusal judges an explicit refusal part with the same axioms.
// The statement is constructed directly: refusal needs no extraction or
// modality detection.
func (e *Evaluator) evaluateRefusal(refusalText string, knowledgeNodes []model.KnowledgeNode, links model.LinkSet) model.Judgment {
	statement := model.Statement{
		ID:        "refusal",
		Subject:   "agent",
		Predicate: "refuses",
		RawText:   refusalText,
		Modality:  model.ModalityRefusal,
	}
	groundSet := e.groundMatcher.Match(statement, knowledgeNodes)

	var lic model.License
	if len(links.Links) > 0 {
		lic = e.licenseDeriver.DeriveWithLinks(groundSet, links)
	} else {
		lic = e.licenseDeriver.Derive(groundSet)
	}

	result := e.axiomChecker.Check(statement, lic, groundSet)
	return aggregate(
		[]model.AxiomResult{result},
		[]model.StatementEvaluation{buildStatementEvaluation(statement, lic, groundSet, result)},
	)
}

func buildStatementEvaluation(statement model.Statement, lic model.License, groundSet model.GroundSet, result model.AxiomResult) model.StatementEvaluation {
	trace := make([]model.GroundRef, 0, len(groundSet.Nodes))
	for _, node := range groundSet.Nodes {
		trace = append(trace, model.GroundRef{
			ID:         node.ID,
			Scope:      node.Scope,
			Source:     node.Source,
			Status:     node.Status,
			Confidence: node.Confidence,
			Strength:   node.Strength,
			SemanticID: node.SemanticID,
		})
	}

	modalityName := "unknown"
	if statement.Modality != "" {
		modalityName = string(statement.Modality)
	}
	return model.StatementEvaluation{
		StatementID:    statement.ID,
		Statement:      statement.RawText,
		Modality:       modalityName,
		License:        lic.Modalities(),
		Status:         result.Status,
		ViolatedAxiom:  result.ViolatedAxiom,
		Explanation:    result.Explanation,
		GroundingTrace: trace,
		Subject:        statement.Subject,
		Predicate:      statement.Predicate,
	}
}

func countDistinctGroundIDs(grounds []citations.Ground) int {
	seen := make(map[string]bool, len(grounds))
	for _, g := range grounds {
		seen[g.GroundID] = true
	}
	return len(seen)
}

func countDistinctLinkTargets(links model.LinkSet) int {
	seen := make(map[string]bool, len(links.Links))
	for _, link := range links.Links {
		seen[link.GroundID] = true
	}
	return len(seen)
}
