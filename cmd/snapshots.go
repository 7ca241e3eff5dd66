package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/carecam/internal/constants"
	"github.com/kozaktomas/carecam/internal/database"
	"github.com/kozaktomas/carecam/internal/emotion"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect stored emotion snapshots",
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	RunE:  runSnapshotsList,
}

var snapshotsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show snapshot counts per emotion",
	RunE:  runSnapshotsStats,
}

var snapshotsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored snapshot images to a directory",
	Long: `Export snapshot images from the snapshot store to a directory, one JPEG
per snapshot, named after the snapshot's staging filename.

Examples:
  carecam snapshots export --dir ./export
  carecam snapshots export --dir ./sad --emotion sad`,
	RunE: runSnapshotsExport,
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
	snapshotsCmd.AddCommand(snapshotsListCmd, snapshotsStatsCmd, snapshotsExportCmd)

	snapshotsCmd.PersistentFlags().String("emotion", "", "Only snapshots with this emotion")

	snapshotsListCmd.Flags().Int("limit", constants.DefaultHandlerPageSize, "Maximum number of snapshots")
	snapshotsListCmd.Flags().Int("offset", 0, "Number of snapshots to skip")
	snapshotsListCmd.Flags().Bool("json", false, "Output as JSON")

	snapshotsExportCmd.Flags().String("dir", "", "Destination directory (required)")
	_ = snapshotsExportCmd.MarkFlagRequired("dir")
}

// openSnapshotReader loads config, connects the store and normalizes the emotion filter.
func openSnapshotReader(cmd *cobra.Command) (database.SnapshotReader, string, error) {
	cfg, log, err := loadRuntime()
	if err != nil {
		return nil, "", err
	}
	if err := initSnapshotStore(cfg, log); err != nil {
		return nil, "", err
	}
	reader, err := database.GetSnapshotReader(cmd.Context())
	if err != nil {
		database.Close()
		return nil, "", err
	}
	filter := emotion.NewCatalog(cfg.Emotions).Normalize(mustGetString(cmd, "emotion"))
	return reader, filter, nil
}

func runSnapshotsList(cmd *cobra.Command, args []string) error {
	reader, emotionFilter, err := openSnapshotReader(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := cmd.Context()
	filter := database.SnapshotFilter{
		Emotion: emotionFilter,
		Limit:   mustGetInt(cmd, "limit"),
		Offset:  mustGetInt(cmd, "offset"),
	}
	snapshots, err := reader.ListSnapshots(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}
	total, err := reader.CountSnapshots(ctx, filter)
	if err != nil {
		return fmt.Errorf("counting snapshots: %w", err)
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshots)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMOTION\tCAPTURED\tFILENAME")
	for _, s := range snapshots {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Emotion, s.CapturedAt.Local().Format("2006-01-02 15:04:05"), s.Filename)
	}
	w.Flush()
	fmt.Printf("\nShowing %d of %d snapshots\n", len(snapshots), total)
	return nil
}

func runSnapshotsStats(cmd *cobra.Command, args []string) error {
	reader, _, err := openSnapshotReader(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	counts, err := reader.CountByEmotion(cmd.Context())
	if err != nil {
		return fmt.Errorf("counting snapshots: %w", err)
	}
	if len(counts) == 0 {
		fmt.Println("No snapshots stored")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMOTION\tCOUNT")
	total := 0
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\n", c.Emotion, c.Count)
		total += c.Count
	}
	fmt.Fprintf(w, "total\t%d\n", total)
	return w.Flush()
}

func runSnapshotsExport(cmd *cobra.Command, args []string) error {
	dir := mustGetString(cmd, "dir")

	reader, emotionFilter, err := openSnapshotReader(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := cmd.Context()
	total, err := reader.CountSnapshots(ctx, database.SnapshotFilter{Emotion: emotionFilter})
	if err != nil {
		return fmt.Errorf("counting snapshots: %w", err)
	}
	if total == 0 {
		fmt.Println("No snapshots to export")
		return nil
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Exporting snapshots"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	written, err := exportSnapshots(ctx, reader, dir, emotionFilter, func() { bar.Add(1) })
	bar.Finish()
	if err != nil {
		return err
	}
	fmt.Printf("\nExported %d snapshots to %s\n", written, dir)
	return nil
}

// exportSnapshots pages through all snapshots matching emotionFilter and writes each
// image into dir. progress is called once per snapshot written.
func exportSnapshots(ctx context.Context, reader database.SnapshotReader, dir, emotionFilter string, progress func()) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export directory: %w", err)
	}

	written := 0
	for offset := 0; ; offset += constants.ExportPageSize {
		page, err := reader.ListSnapshots(ctx, database.SnapshotFilter{
			Emotion: emotionFilter,
			Limit:   constants.ExportPageSize,
			Offset:  offset,
		})
		if err != nil {
			return written, fmt.Errorf("listing snapshots: %w", err)
		}

		for _, meta := range page {
			snapshot, err := reader.GetSnapshot(ctx, meta.ID)
			if err != nil {
				return written, fmt.Errorf("loading snapshot %s: %w", meta.ID, err)
			}
			if snapshot == nil {
				continue // removed since listing
			}
			if err := os.WriteFile(filepath.Join(dir, exportFilename(snapshot)), snapshot.Image, 0o644); err != nil {
				return written, fmt.Errorf("writing snapshot %s: %w", meta.ID, err)
			}
			written++
			if progress != nil {
				progress()
			}
		}

		if len(page) < constants.ExportPageSize {
			return written, nil
		}
	}
}

// exportFilename keeps the staging name but prefixes the id, since staging
// names repeat when the same switch happens twice within one second.
func exportFilename(s *database.EmotionSnapshot) string {
	name := filepath.Base(s.Filename)
	if name == "." || name == "/" || name == "" {
		name = "snapshot.jpg"
	}
	return s.ID[:min(8, len(s.ID))] + "_" + name
}
