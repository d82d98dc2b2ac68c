package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/normgate/internal/cache"
	"github.com/ppiankov/normgate/internal/model"
	"github.com/ppiankov/normgate/internal/pipeline"
	"github.com/ppiankov/normgate/internal/worker"
)

var (
	concurrency  int
	outputPath   string
	batchTimeout time.Duration
	noCache      bool
	cacheDir     string
	cacheTTL     time.Duration
)

// batchResult is the JSON shape of one batch output record
type batchResult struct {
	ID       string         `json:"id,omitempty"`
	Judgment model.Judgment `json:"judgment"`
	Cached   bool           `json:"cached,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Evaluate multiple agent messages from a JSONL file in parallel",
	Long: `Batch evaluates multiple recorded agent messages concurrently:
- Read evaluation requests from input file (one JSON object per line)
- Each request holds an agent message, optional trajectory, optional grounds
- Evaluate requests in parallel with configurable worker count
- Memoize judgments so identical requests skip re-evaluation
- Write all judgments as a JSON array, in input order

Example:
  normgate batch requests.jsonl
  normgate batch requests.jsonl --concurrency 10 --output judgments.json
  normgate batch requests.jsonl --no-cache`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputPath, "output", "", "output file for judgments (default: stdout)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable judgment memoization")
	batchCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "judgment cache directory (default: $HOME/.normgate/cache)")
	batchCmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 0, "judgment cache TTL (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	if noCache {
		cfg.Cache.Enabled = false
	}
	if cacheTTL > 0 {
		cfg.Cache.TTL = cacheTTL
	}
	cfg.Concurrency.Workers = concurrency
	cfg.Output.Verbose = verbose

	if verbose {
		fmt.Fprintf(os.Stderr, "Input file:  %s\n", file)
		fmt.Fprintf(os.Stderr, "Workers:     %d\n", concurrency)
		fmt.Fprintf(os.Stderr, "Cache:       %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	store, err := buildJudgmentStore(cfg)
	if err != nil {
		return err
	}

	evaluator := pipeline.NewEvaluator()
	processor := worker.NewBatchProcessor(evaluator, store, cfg.Concurrency.Workers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	output := make([]batchResult, 0, len(results))
	successCount := 0
	failureCount := 0
	for _, result := range results {
		record := batchResult{
			ID:       result.ID,
			Judgment: result.Judgment,
			Cached:   result.Cached,
		}
		if result.Error != nil {
			record.Error = result.Error.Error()
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.ID, result.Error)
		} else {
			successCount++
		}
		output = append(output, record)
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
	} else {
		fmt.Println(string(data))
	}

	fmt.Fprintf(os.Stderr, "\nEvaluated %d requests: %d succeeded, %d failed\n",
		len(results), successCount, failureCount)

	if failureCount > 0 {
		return fmt.Errorf("%d of %d evaluations failed", failureCount, len(results))
	}
	return nil
}

// buildJudgmentStore assembles the memoization store from config. The
// memory layer serves repeats within this run; the disk layer persists
// judgments for later runs.
func buildJudgmentStore(cfg *model.Config) (*cache.JudgmentStore, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	dir := cacheDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		dir = filepath.Join(home, ".normgate", "cache")
	}

	layered := cache.NewLayeredCache(cfg.Cache.TTL, dir, cfg.Cache.TTL)
	return cache.NewJudgmentStore(layered, cfg.Cache.TTL), nil
}
