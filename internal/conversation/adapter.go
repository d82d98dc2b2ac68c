// Package conversation adapts OpenAI chat-completion messages into the
// evaluator's internal speech acts.
//
// The boundary rule: OpenAI types stop here. Everything downstream works
// on internal models only, so a transport format change touches this
// package and nothing else.
package conversation

import (
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/normgate/internal/logging"
	"github.com/ppiankov/normgate/internal/model"
	"go.uber.org/zap"
)

// SpeechAct is the normalized form of an assistant message: either plain
// text or an explicit refusal. A message may not be both.
type SpeechAct struct {
	Text    string
	Refusal bool
}

// ToSpeechAct converts an assistant message into a text or refusal speech
// act. Mixing text content with a refusal is a hard error: the evaluator
// must not guess which half the agent meant.
func ToSpeechAct(message openai.ChatCompletionMessage) (SpeechAct, error) {
	text := extractTextContent(message.Content, message.MultiContent)
	refusal := strings.TrimSpace(message.Refusal)

	if refusal != "" && text != "" {
		return SpeechAct{}, fmt.Errorf("assistant content cannot mix text and refusal parts")
	}
	if refusal != "" {
		return SpeechAct{Text: refusal, Refusal: true}, nil
	}
	return SpeechAct{Text: text}, nil
}

// ExtractToolResults collects tool call results from the trajectory.
//
// Results appear in two forms: tool-role messages correlated to an
// assistant tool call by id, and legacy function-role messages that carry
// the tool name inline. Both are normalized to ToolResult; tool messages
// whose call id has no matching assistant tool call keep the name
// "unknown".
func ExtractToolResults(trajectory []openai.ChatCompletionMessage) []model.ToolResult {
	type callMeta struct {
		name string
		args map[string]any
	}
	callByID := make(map[string]callMeta)
	for _, message := range trajectory {
		if message.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		for _, toolCall := range message.ToolCalls {
			if toolCall.Type != openai.ToolTypeFunction {
				continue
			}
			callByID[toolCall.ID] = callMeta{
				name: toolCall.Function.Name,
				args: parseToolArgs(toolCall.Function.Arguments),
			}
		}
	}

	var results []model.ToolResult
	for _, message := range trajectory {
		switch message.Role {
		case openai.ChatMessageRoleTool:
			meta, ok := callByID[message.ToolCallID]
			if !ok {
				meta = callMeta{name: "unknown"}
			}
			results = append(results, model.ToolResult{
				ToolName:   meta.name,
				ToolCallID: message.ToolCallID,
				Arguments:  meta.args,
				ResultText: extractTextContent(message.Content, message.MultiContent),
			})
		case openai.ChatMessageRoleFunction:
			if message.Name == "" {
				continue
			}
			results = append(results, model.ToolResult{
				ToolName:   message.Name,
				ResultText: extractTextContent(message.Content, message.MultiContent),
			})
		}
	}

	logging.L().Debug("extracted tool results from trajectory",
		zap.Int("results", len(results)),
		zap.Int("messages", len(trajectory)))
	return results
}

// extractTextContent normalizes message content to a plain string. Only
// text parts contribute; image and audio parts are skipped.
func extractTextContent(content string, parts []openai.ChatMessagePart) string {
	if content != "" {
		return content
	}
	var b strings.Builder
	for _, part := range parts {
		if part.Type == openai.ChatMessagePartTypeText {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// parseToolArgs decodes the tool call argument payload. Malformed JSON
// yields no arguments rather than an error: arguments feed node id
// hashing only, never evaluation logic.
func parseToolArgs(arguments string) map[string]any {
	if arguments == "" {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		logging.L().Debug("unparseable tool call arguments", zap.Error(err))
		return nil
	}
	return args
}
