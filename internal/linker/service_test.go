package linker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/normgate/internal/model"
)

func TestService_LoadRunBuildAndSave(t *testing.T) {
	runJSON := `{
		"messages": [
			{"role": "user", "content": "Which ticket first?"},
			{"role": "tool", "tool_call_id": "call_1", "content": "{\"issue_key\": \"AGENT-8\"}"},
			{"role": "assistant", "content": "You should prioritize AGENT-8 first."}
		]
	}`

	dir := t.TempDir()
	runPath := filepath.Join(dir, "run_trial0.json")
	if err := os.WriteFile(runPath, []byte(runJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	service := NewService()

	run, err := service.LoadRun(runPath)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if len(run.Messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(run.Messages))
	}

	linkSet := service.BuildLinks(run)
	if len(linkSet.Links) != 1 {
		t.Fatalf("Expected 1 link, got %d", len(linkSet.Links))
	}
	if linkSet.Links[0].GroundID != "issue_AGENT-8" {
		t.Errorf("Expected ground issue_AGENT-8, got %s", linkSet.Links[0].GroundID)
	}

	linksPath := filepath.Join(dir, "run_trial0.links.json")
	if err := service.SaveLinks(linkSet, linksPath); err != nil {
		t.Fatalf("SaveLinks failed: %v", err)
	}

	data, err := os.ReadFile(linksPath)
	if err != nil {
		t.Fatalf("reading saved links: %v", err)
	}
	var saved model.LinkSet
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("parsing saved links: %v", err)
	}
	if len(saved.Links) != 1 || saved.Links[0].Role != model.RoleSupports {
		t.Errorf("Saved link set does not round-trip: %+v", saved)
	}
}

func TestService_LoadRun_MissingFile(t *testing.T) {
	service := NewService()

	if _, err := service.LoadRun("no_such_run.json"); err == nil {
		t.Error("Expected error for missing run file, got nil")
	}
}

func TestService_LoadRun_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	service := NewService()
	if _, err := service.LoadRun(path); err == nil {
		t.Error("Expected error for malformed run file, got nil")
	}
}
