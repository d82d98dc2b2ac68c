// Test program to demonstrate the admissibility verdict classes
// This shows grounded, ungrounded, hedged, and refusal outputs side by side
package main

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/normgate/internal/pipeline"
)

type scenario struct {
	name       string
	agent      openai.ChatCompletionMessage
	trajectory []openai.ChatCompletionMessage
}

func main() {
	fmt.Println("=== Admissibility Verdict Scenarios ===")
	fmt.Println()

	groundedTrajectory := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "Which ticket should I pick up?"},
		{
			Role: openai.ChatMessageRoleAssistant,
			ToolCalls: []openai.ToolCall{{
				ID:   "call_1",
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      "get_issue",
					Arguments: `{"key": "AGENT-8"}`,
				},
			}},
		},
		{
			Role:       openai.ChatMessageRoleTool,
			ToolCallID: "call_1",
			Content:    `{"issue_key": "AGENT-8", "status": "Blocked", "priority": "High"}`,
		},
	}

	scenarios := []scenario{
		{
			name: "grounded recommendation",
			agent: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: "You should unblock AGENT-8 first.",
			},
			trajectory: groundedTrajectory,
		},
		{
			name: "ungrounded recommendation",
			agent: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: "You should migrate everything to Kubernetes.",
			},
		},
		{
			name: "hedged without evidence",
			agent: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: "If your team already runs containers, you could consider Kubernetes.",
			},
		},
		{
			name: "refusal",
			agent: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: "I cannot recommend a rollout plan without access to your deployment history.",
			},
		},
		{
			name: "protocol only",
			agent: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: "Hello! How can I help you today?",
			},
		},
	}

	evaluator := pipeline.NewEvaluator()

	for _, s := range scenarios {
		fmt.Printf("Scenario: %s\n", s.name)
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("  Agent: %s\n", s.agent.Content)

		judgment, err := evaluator.Evaluate(s.agent, s.trajectory, nil)
		if err != nil {
			fmt.Printf("  Evaluation error: %v\n", err)
			fmt.Println()
			continue
		}

		fmt.Printf("  Status:    %s\n", judgment.Status)
		fmt.Printf("  Licensed:  %v\n", judgment.Licensed)
		fmt.Printf("  Retryable: %v\n", judgment.CanRetry)
		if len(judgment.ViolatedAxioms) > 0 {
			fmt.Printf("  Violated:  %s\n", strings.Join(judgment.ViolatedAxioms, ", "))
		}
		if judgment.FeedbackHint != "" {
			fmt.Printf("  Hint:      %s\n", judgment.FeedbackHint)
		}
		fmt.Printf("  %s\n", judgment.Explanation)
		fmt.Println()
	}
}
