package extract

import (
	"strings"
	"testing"
)

func TestExtract_EmptyTextReturnsNothing(t *testing.T) {
	extractor := NewStatementExtractor()

	if statements := extractor.Extract(""); len(statements) != 0 {
		t.Errorf("Expected no statements for empty text, got %d", len(statements))
	}
	if statements := extractor.Extract("   \n\t  "); len(statements) != 0 {
		t.Errorf("Expected no statements for blank text, got %d", len(statements))
	}
}

func TestExtract_ProtocolOnlyReturnsNothing(t *testing.T) {
	extractor := NewStatementExtractor()

	protocolOnly := []string{
		"Hello! How can I help you today?",
		"Good morning! What can I do for you?",
		"I'm doing well, thanks. How can I assist?",
	}
	for _, text := range protocolOnly {
		if statements := extractor.Extract(text); len(statements) != 0 {
			t.Errorf("Expected no statements for %q, got %d", text, len(statements))
		}
	}
}

func TestExtract_StripsGreetingPrefixKeepsNormative(t *testing.T) {
	extractor := NewStatementExtractor()

	statements := extractor.Extract("Hello! Task A blocks Task B.")
	if len(statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(statements))
	}
	text := strings.ToLower(statements[0].RawText)
	if !strings.Contains(text, "blocks") {
		t.Errorf("Expected normative content kept, got %q", statements[0].RawText)
	}
	if strings.Contains(text, "hello") {
		t.Errorf("Expected greeting stripped, got %q", statements[0].RawText)
	}
}

func TestExtract_StripsMultiSentenceProtocolPrefix(t *testing.T) {
	extractor := NewStatementExtractor()

	statements := extractor.Extract("Hello! I'm doing well. How can I help? Task X blocks Task Y.")
	if len(statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(statements))
	}
	text := strings.ToLower(statements[0].RawText)
	if !strings.Contains(text, "task x blocks task y") {
		t.Errorf("Expected normative sentence kept, got %q", statements[0].RawText)
	}
	if strings.Contains(text, "how can i help") {
		t.Errorf("Expected protocol prefix stripped, got %q", statements[0].RawText)
	}
}

func TestExtract_StripsProtocolSuffix(t *testing.T) {
	extractor := NewStatementExtractor()

	statements := extractor.Extract("Task A blocks Task B. I can help with more details.")
	if len(statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(statements))
	}
	if strings.Contains(strings.ToLower(statements[0].RawText), "can help") {
		t.Errorf("Expected capability offer stripped, got %q", statements[0].RawText)
	}
}

func TestExtract_StripsCascadedSuffixes(t *testing.T) {
	extractor := NewStatementExtractor()

	statements := extractor.Extract(
		"You should prioritize the login fix (e.g., check status, assign owner) Let me know if you need anything else.")
	if len(statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(statements))
	}
	text := strings.ToLower(statements[0].RawText)
	if strings.Contains(text, "let me know") || strings.Contains(text, "e.g.") {
		t.Errorf("Expected cascaded protocol tail stripped, got %q", statements[0].RawText)
	}
	if !strings.Contains(text, "should prioritize") {
		t.Errorf("Expected normative core kept, got %q", statements[0].RawText)
	}
}

func TestExtract_PersonalizationIsPreserved(t *testing.T) {
	extractor := NewStatementExtractor()

	statements := extractor.Extract("Hi! X is better for you.")
	if len(statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(statements))
	}
	if !strings.Contains(strings.ToLower(statements[0].RawText), "better for you") {
		t.Errorf("Expected personalization framing kept, got %q", statements[0].RawText)
	}
}

func TestExtract_NormativeQuestionIsKept(t *testing.T) {
	extractor := NewStatementExtractor()

	// A question carrying normative indicators must not be strippable by
	// appending "?", which would be an easy evasion channel.
	statements := extractor.Extract("Should we prioritize the payment fix?")
	if len(statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(statements))
	}
}

func TestExtract_SingleStatementShape(t *testing.T) {
	extractor := NewStatementExtractor()

	statements := extractor.Extract("You should deploy now.")
	if len(statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(statements))
	}
	s := statements[0]
	if s.ID != "final_response" || s.Subject != "agent" || s.Predicate != "participation" {
		t.Errorf("Unexpected statement shape: %+v", s)
	}
	if s.Modality != "" {
		t.Errorf("Expected modality unset before detection, got %q", s.Modality)
	}
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("First one. Second one! Third one? Tail without terminator")
	if len(sentences) != 4 {
		t.Fatalf("Expected 4 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[1] != "Second one!" {
		t.Errorf("Expected terminator kept with sentence, got %q", sentences[1])
	}
	if sentences[3] != "Tail without terminator" {
		t.Errorf("Expected trailing fragment kept, got %q", sentences[3])
	}
}
