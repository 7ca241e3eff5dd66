package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/carecam/internal/ai"
	"github.com/kozaktomas/carecam/internal/emotion"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <image>...",
	Short: "Classify the dominant emotion in image files",
	Long: `Run the configured emotion model on one or more image files and print
the label of the first face found in each. Nothing is recorded.

Examples:
  carecam classify face.jpg
  CARECAM_AI_PROVIDER=ollama carecam classify --enable-ai *.png --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().Bool("enable-ai", false, "Enable classification even if CARECAM_AI_ENABLED is false")
	classifyCmd.Flags().Bool("json", false, "Output as JSON")
}

// ClassifyResult is the outcome for one file
type ClassifyResult struct {
	File  string `json:"file"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Error string `json:"error,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	if mustGetBool(cmd, "enable-ai") {
		cfg.AI.Enabled = true
	}
	jsonOutput := mustGetBool(cmd, "json")

	classifier := newClassifier(cfg, log)
	ctx := context.Background()

	results := make([]ClassifyResult, 0, len(args))
	for _, path := range args {
		results = append(results, classifyFile(ctx, classifier, path))
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		if r.Error != "" {
			fmt.Printf("%s: %s (%s)\n", r.File, r.Label, r.Error)
			continue
		}
		fmt.Printf("%s: %s\n", r.File, r.Label)
	}
	if name := classifier.ModelName(); name != "" {
		fmt.Printf("\nModel: %s\n", name)
	}
	if usage, ok := classifier.Usage(); ok {
		printUsage(usage)
	}
	return nil
}

func printUsage(usage ai.Usage) {
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return
	}
	fmt.Printf("\nAPI Usage:\n")
	fmt.Printf("  Requests: %d\n", usage.Requests)
	fmt.Printf("  Input tokens: %d\n", usage.InputTokens)
	fmt.Printf("  Output tokens: %d\n", usage.OutputTokens)
}

func classifyFile(ctx context.Context, classifier *emotion.Classifier, path string) ClassifyResult {
	result := ClassifyResult{File: path}

	img, err := decodeImageFile(path)
	if err != nil {
		label := emotion.Failed(err)
		result.Label, result.Kind, result.Error = label.String(), label.Kind().String(), err.Error()
		return result
	}

	label := classifier.Classify(ctx, img)
	result.Label, result.Kind = label.String(), label.Kind().String()
	if err := label.Err(); err != nil {
		result.Error = err.Error()
	}
	return result
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
