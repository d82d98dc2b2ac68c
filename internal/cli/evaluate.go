package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/ppiankov/normgate/internal/citations"
	"github.com/ppiankov/normgate/internal/model"
	"github.com/ppiankov/normgate/internal/pipeline"
)

// ErrInadmissible signals a completed evaluation whose verdict is
// violates_norm. The judgment has already been printed; main maps this
// to a non-zero exit without an extra error line.
var ErrInadmissible = errors.New("judgment: violates_norm")

var (
	agentOutput      string
	conversationJSON string
	groundsJSON      string
	linksFile        string
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one agent message for normative admissibility",
	Long: `Evaluate judges a single agent message:
- Extract normative statements from the message text
- Detect each statement's modality (assertive, conditional, refusal, ...)
- Derive the license from tool-call evidence and declared grounds
- Check the modality against the license and the axiom set
- Print the aggregated judgment as JSON

Example:
  normgate evaluate --agent-output "You should restart the service."
  normgate evaluate --conversation trajectory.json
  normgate evaluate --conversation trajectory.json --grounds grounds.json
  normgate evaluate --agent-output "Use Postgres. [@bench1]" --grounds grounds.json`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&agentOutput, "agent-output", "", "agent output text")
	evaluateCmd.Flags().StringVar(&conversationJSON, "conversation", "", "path to conversation history (JSON array, last item must be an assistant message)")
	evaluateCmd.Flags().StringVar(&groundsJSON, "grounds", "", "path to declared grounds (JSON array)")
	evaluateCmd.Flags().StringVar(&linksFile, "links", "", "path to usage-declaration links (.links.json from suggest-links)")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if agentOutput == "" && conversationJSON == "" {
		return fmt.Errorf("evaluate requires --agent-output or --conversation")
	}

	agentMessage, trajectory, err := resolveConversation()
	if err != nil {
		return err
	}

	var grounds []citations.Ground
	if groundsJSON != "" {
		data, err := os.ReadFile(groundsJSON)
		if err != nil {
			return fmt.Errorf("reading grounds file: %w", err)
		}
		if err := json.Unmarshal(data, &grounds); err != nil {
			return fmt.Errorf("parsing grounds JSON: %w", err)
		}
	}

	evaluator := pipeline.NewEvaluator()

	var judgment model.Judgment
	if linksFile != "" {
		linkSet, err := loadLinkSet(linksFile)
		if err != nil {
			return err
		}
		judgment, err = evaluator.EvaluateWithLinks(agentMessage, trajectory, grounds, linkSet)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
	} else {
		judgment, err = evaluator.Evaluate(agentMessage, trajectory, grounds)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
	}

	output, err := json.MarshalIndent(judgment, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding judgment: %w", err)
	}
	fmt.Println(string(output))

	if judgment.Status == model.StatusViolatesNorm {
		return ErrInadmissible
	}
	return nil
}

// resolveConversation builds the agent message and trajectory from the
// evaluate flags. When both are given, the agent output must match the
// final assistant content so the caller cannot evaluate one text while
// declaring another.
func resolveConversation() (openai.ChatCompletionMessage, []openai.ChatCompletionMessage, error) {
	if conversationJSON == "" {
		agentMessage := openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: agentOutput,
		}
		return agentMessage, []openai.ChatCompletionMessage{agentMessage}, nil
	}

	data, err := os.ReadFile(conversationJSON)
	if err != nil {
		return openai.ChatCompletionMessage{}, nil, fmt.Errorf("reading conversation file: %w", err)
	}

	var trajectory []openai.ChatCompletionMessage
	if err := json.Unmarshal(data, &trajectory); err != nil {
		return openai.ChatCompletionMessage{}, nil, fmt.Errorf("parsing conversation JSON: %w", err)
	}
	if len(trajectory) == 0 {
		return openai.ChatCompletionMessage{}, nil, fmt.Errorf("conversation must be a non-empty JSON array")
	}

	agentMessage := trajectory[len(trajectory)-1]
	if agentMessage.Role != openai.ChatMessageRoleAssistant {
		return openai.ChatCompletionMessage{}, nil, fmt.Errorf("last conversation item must be an assistant message")
	}
	if agentOutput != "" && agentMessage.Content != agentOutput {
		return openai.ChatCompletionMessage{}, nil, fmt.Errorf("--agent-output must match the last assistant content in --conversation")
	}

	return agentMessage, trajectory, nil
}

func loadLinkSet(path string) (model.LinkSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.LinkSet{}, fmt.Errorf("reading links file: %w", err)
	}

	var linkSet model.LinkSet
	if err := json.Unmarshal(data, &linkSet); err != nil {
		return model.LinkSet{}, fmt.Errorf("parsing links file %s: %w", path, err)
	}
	return linkSet, nil
}
