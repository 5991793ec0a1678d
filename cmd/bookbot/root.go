package main

import (
	"github.com/spf13/cobra"

	"github.com/ladybugs/bookbot/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "bookbot",
	Short: "Robotic arm that reads physical books aloud",
	Long: `Bookbot orchestrates a robotic arm that reads physical books aloud.

A camera watches the book, a vision model assesses the scene and reads
the pages, a text-to-speech voice narrates them, and the arm opens the
book and turns pages with trained motor skills.

The session loop:
  - Assess the scene (no book, closed, open, finished)
  - Open the book if it is closed
  - Read each open spread aloud, left page then right
  - Turn the page and verify it actually moved
  - Close the book when the back cover is reached`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.bookbot/config.yaml)",
	)

	rootCmd.AddCommand(versionCmd)
}
