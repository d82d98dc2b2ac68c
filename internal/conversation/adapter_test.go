package conversation

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestToSpeechAct_PlainText(t *testing.T) {
	act, err := ToSpeechAct(openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: "Prioritize the login fix.",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if act.Refusal {
		t.Error("Expected text act, got refusal")
	}
	if act.Text != "Prioritize the login fix." {
		t.Errorf("Unexpected text: %q", act.Text)
	}
}

func TestToSpeechAct_MultiContentTextParts(t *testing.T) {
	act, err := ToSpeechAct(openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleAssistant,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: "Prioritize "},
			{Type: openai.ChatMessagePartTypeText, Text: "the login fix."},
		},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if act.Text != "Prioritize the login fix." {
		t.Errorf("Unexpected joined text: %q", act.Text)
	}
}

func TestToSpeechAct_Refusal(t *testing.T) {
	act, err := ToSpeechAct(openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Refusal: "I cannot determine that without more context.",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !act.Refusal {
		t.Error("Expected refusal act")
	}
}

func TestToSpeechAct_MixedTextAndRefusalRejected(t *testing.T) {
	_, err := ToSpeechAct(openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: "Some text",
		Refusal: "and a refusal",
	})
	if err == nil {
		t.Error("Expected error for mixed text and refusal content")
	}
}

func TestToSpeechAct_EmptyMessage(t *testing.T) {
	act, err := ToSpeechAct(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if act.Text != "" || act.Refusal {
		t.Errorf("Expected empty text act, got %+v", act)
	}
}

func TestExtractToolResults_CorrelatesToolCallsByID(t *testing.T) {
	trajectory := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "What blocks PROJ-1?"},
		{
			Role: openai.ChatMessageRoleAssistant,
			ToolCalls: []openai.ToolCall{{
				ID:   "call_1",
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      "get_issue",
					Arguments: `{"issue": "PROJ-1"}`,
				},
			}},
		},
		{
			Role:       openai.ChatMessageRoleTool,
			ToolCallID: "call_1",
			Content:    `{"issue_key": "PROJ-1", "status": "Blocked"}`,
		},
	}

	results := ExtractToolResults(trajectory)
	if len(results) != 1 {
		t.Fatalf("Expected 1 tool result, got %d", len(results))
	}
	r := results[0]
	if r.ToolName != "get_issue" || r.ToolCallID != "call_1" {
		t.Errorf("Unexpected tool result: %+v", r)
	}
	if r.Arguments["issue"] != "PROJ-1" {
		t.Errorf("Expected parsed arguments, got %v", r.Arguments)
	}
}

func TestExtractToolResults_UnmatchedToolCallIDKeepsUnknownName(t *testing.T) {
	trajectory := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleTool, ToolCallID: "call_x", Content: "{}"},
	}

	results := ExtractToolResults(trajectory)
	if len(results) != 1 {
		t.Fatalf("Expected 1 tool result, got %d", len(results))
	}
	if results[0].ToolName != "unknown" {
		t.Errorf("Expected unknown tool name, got %s", results[0].ToolName)
	}
}

func TestExtractToolResults_LegacyFunctionMessages(t *testing.T) {
	trajectory := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleFunction, Name: "get_weather", Content: "sunny"},
		{Role: openai.ChatMessageRoleFunction, Content: "nameless, skipped"},
	}

	results := ExtractToolResults(trajectory)
	if len(results) != 1 {
		t.Fatalf("Expected 1 tool result, got %d", len(results))
	}
	if results[0].ToolName != "get_weather" || results[0].ResultText != "sunny" {
		t.Errorf("Unexpected result: %+v", results[0])
	}
}

func TestExtractToolResults_MalformedArgumentsIgnored(t *testing.T) {
	trajectory := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleAssistant,
			ToolCalls: []openai.ToolCall{{
				ID:       "call_1",
				Type:     openai.ToolTypeFunction,
				Function: openai.FunctionCall{Name: "get_issue", Arguments: "{not json"},
			}},
		},
		{Role: openai.ChatMessageRoleTool, ToolCallID: "call_1", Content: "{}"},
	}

	results := ExtractToolResults(trajectory)
	if len(results) != 1 {
		t.Fatalf("Expected 1 tool result, got %d", len(results))
	}
	if results[0].Arguments != nil {
		t.Errorf("Expected nil arguments for malformed payload, got %v", results[0].Arguments)
	}
}
