package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "carecam",
	Short: "Webcam emotion monitor that snapshots rapid emotion switches",
	Long: `carecam reads frames from a single camera on demand, classifies the
dominant facial emotion of each frame and stores a snapshot whenever the
emotion switches rapidly. Frames are served over HTTP as single JPEGs or an
MJPEG stream, and stored snapshots can be listed and exported.

Capture and classification are both disabled unless CARECAM_CAPTURE_ENABLED
and CARECAM_AI_ENABLED are set.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
