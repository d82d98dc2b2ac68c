package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/normgate/internal/linker"
)

var suggestOutput string

// suggestLinksCmd represents the suggest-links command
var suggestLinksCmd = &cobra.Command{
	Use:   "suggest-links <run.json>",
	Short: "Suggest statement-ground links from a recorded run",
	Long: `Suggest-links reads a recorded run (JSON object with a "messages"
array), finds entities from tool results that the final assistant
message mentions, and writes candidate supports links.

The output is advisory: links carry structural provenance and feed the
evaluate command via --links, where unresolved ground ids are skipped.

Example:
  normgate suggest-links results/run_trial0.json
  normgate suggest-links results/run_trial0.json --output trial0.links.json
  normgate evaluate --conversation trajectory.json --links trial0.links.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggestLinks,
}

func init() {
	rootCmd.AddCommand(suggestLinksCmd)

	suggestLinksCmd.Flags().StringVar(&suggestOutput, "output", "", "output path (default: <run>.links.json)")
}

func runSuggestLinks(cmd *cobra.Command, args []string) error {
	runFile := args[0]
	if !strings.HasSuffix(runFile, ".json") {
		return fmt.Errorf("expected a .json run file, got: %s", runFile)
	}

	service := linker.NewService()

	run, err := service.LoadRun(runFile)
	if err != nil {
		return err
	}

	linkSet := service.BuildLinks(run)

	outputFile := suggestOutput
	if outputFile == "" {
		outputFile = strings.TrimSuffix(runFile, ".json") + ".links.json"
	}
	if err := service.SaveLinks(linkSet, outputFile); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Generated %d links: %s\n", len(linkSet.Links), outputFile)
	return nil
}
