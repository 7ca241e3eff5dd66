package cmd

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/carecam/internal/database"
	"github.com/kozaktomas/carecam/internal/monitor"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Run the emotion monitor without the web server",
	Long: `Read frames from the camera, classify them and record snapshots of
rapid emotion switches, exactly as the web server does, but headless.

Examples:
  # Process 100 frames, one every 500ms
  carecam capture --frames 100 --interval 500ms

  # Run until Ctrl+C and keep every annotated frame
  carecam capture --frames 0 --save-frames ./frames`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().Int("frames", 10, "Number of frames to process (0 = until interrupted)")
	captureCmd.Flags().Duration("interval", time.Second, "Pause between frames")
	captureCmd.Flags().String("save-frames", "", "Directory to write annotated frames to")
	captureCmd.Flags().Bool("verbose", false, "Print every frame instead of a progress bar")
}

// captureSummary counts what a capture run saw.
type captureSummary struct {
	Frames    int
	Failed    int
	Snapshots int
	Labels    map[string]int
}

func runCapture(cmd *cobra.Command, args []string) error {
	frames := mustGetInt(cmd, "frames")
	interval := mustGetDuration(cmd, "interval")
	saveDir := mustGetString(cmd, "save-frames")
	verbose := mustGetBool(cmd, "verbose")

	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	if !cfg.Camera.Enabled {
		return fmt.Errorf("capture is disabled, set CARECAM_CAPTURE_ENABLED=true")
	}
	if saveDir != "" {
		if err := os.MkdirAll(saveDir, 0o755); err != nil {
			return fmt.Errorf("create frame directory: %w", err)
		}
	}

	if err := initSnapshotStore(cfg, log); err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := newSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer session.Stop()

	var bar *progressbar.ProgressBar
	if !verbose {
		total := frames
		if total == 0 {
			total = -1 // spinner
		}
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Capturing"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("frames"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	summary := captureSummary{Labels: make(map[string]int)}
	for i := 0; frames == 0 || i < frames; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}
		if ctx.Err() != nil {
			break
		}

		res := session.NextFrame(ctx)
		if err := recordFrame(&summary, res, saveDir, i); err != nil {
			return err
		}
		if verbose {
			printFrame(i, res)
		} else {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	printCaptureSummary(summary)
	if usage := session.Status().Usage; usage != nil {
		printUsage(*usage)
	}
	return nil
}

func recordFrame(summary *captureSummary, res monitor.Result, saveDir string, index int) error {
	if res.JPEG == nil {
		summary.Failed++
		return nil
	}
	summary.Frames++
	summary.Labels[res.Label.String()]++
	if res.Snapshot {
		summary.Snapshots++
	}
	if saveDir == "" {
		return nil
	}
	name := fmt.Sprintf("frame_%05d_%s.jpg", index, res.Label.String())
	if err := os.WriteFile(filepath.Join(saveDir, name), res.JPEG, 0o644); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func printFrame(index int, res monitor.Result) {
	switch {
	case res.JPEG == nil:
		fmt.Printf("#%d  %s\n", index, res.Diagnostic)
	case res.Snapshot:
		fmt.Printf("#%d  %s  (switch recorded)\n", index, res.Label)
	default:
		fmt.Printf("#%d  %s\n", index, res.Label)
	}
}

func printCaptureSummary(s captureSummary) {
	fmt.Printf("\nFrames processed: %d\n", s.Frames)
	if s.Failed > 0 {
		fmt.Printf("Frames failed:    %d\n", s.Failed)
	}
	fmt.Printf("Switches recorded: %d\n", s.Snapshots)
	for _, label := range slices.Sorted(maps.Keys(s.Labels)) {
		fmt.Printf("  %-10s %d\n", label, s.Labels[label])
	}
}
