package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ladybugs/bookbot/internal/archive"
	"github.com/ladybugs/bookbot/internal/camera"
	"github.com/ladybugs/bookbot/internal/config"
	"github.com/ladybugs/bookbot/internal/orchestrator"
)

var (
	readDryRun        bool
	readSilent        bool
	readMode          string
	readFrames        string
	readArchiveDir    string
	readMaxIterations int
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Run an autonomous book reading session",
	Long: `Run the full reading session: assess the scene, open the book if
needed, read each spread aloud, turn pages with verification, and close
the book when the back cover is reached.

Examples:
  bookbot read                          # Live camera, real arm
  bookbot read --dry-run                # Simulated arm, no verification
  bookbot read --frames ./captures      # Replay frames from a folder
  bookbot read --silent --mode skim     # No narration, headings only
  bookbot read --archive ./sessions     # Save frames and transcripts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		logLevel := new(slog.LevelVar)
		logLevel.Set(parseLogLevel(cfg.Reading.LogLevel))
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}))

		// Log level follows config file edits while the session runs.
		cm.OnChange(func(c *config.Config) {
			logLevel.Set(parseLogLevel(c.Reading.LogLevel))
			logger.Info("configuration reloaded", "log_level", c.Reading.LogLevel)
		})
		cm.WatchConfig()

		modeFlag := readMode
		if modeFlag == "" {
			modeFlag = cfg.Reading.Mode
		}
		mode, err := parseReadMode(modeFlag)
		if err != nil {
			return err
		}

		src, err := buildSource(cfg, readFrames, logger)
		if err != nil {
			return err
		}
		vis, err := buildVision(cfg, logger)
		if err != nil {
			return err
		}
		mot, err := buildMotor(cfg, readDryRun, logger)
		if err != nil {
			return err
		}
		nar, err := buildNarrator(cfg, readSilent, logger)
		if err != nil {
			return err
		}

		var arch *archive.Session
		if readArchiveDir != "" {
			arch, err = archive.NewSession(readArchiveDir, logger)
			if err != nil {
				return err
			}
		}

		maxIterations := readMaxIterations
		if maxIterations == 0 {
			maxIterations = cfg.Reading.MaxIterations
		}

		ocfg := orchestrator.Config{
			Source:             src,
			Vision:             vis,
			Motor:              mot,
			Archive:            arch,
			Mode:               mode,
			DryRun:             readDryRun,
			MaxSamePageRetries: cfg.Reading.MaxSamePageRetries,
			MaxIterations:      maxIterations,
			Logger:             logger,
		}
		if nar != nil {
			ocfg.Narrator = nar
		}
		orch, err := orchestrator.New(ocfg)
		if err != nil {
			return err
		}

		err = camera.WithSource(src, func(camera.Source) error {
			return orch.Run(ctx)
		})
		if err != nil {
			return err
		}

		if arch != nil {
			dir, err := arch.Finalize()
			if err != nil {
				logger.Error("failed to finalize archive", "error", err)
			} else {
				logger.Info("session archived", "dir", dir)
			}
		}
		logger.Info("reading session complete", "spreads", orch.SpreadCount())
		return nil
	},
}

func init() {
	readCmd.Flags().BoolVar(&readDryRun, "dry-run", false, "simulate motor skills instead of moving the arm")
	readCmd.Flags().BoolVar(&readSilent, "silent", false, "skip narration")
	readCmd.Flags().StringVar(&readMode, "mode", "", "reading mode: verbose or skim (default from config)")
	readCmd.Flags().StringVar(&readFrames, "frames", "", "replay frames from a folder instead of the live camera")
	readCmd.Flags().StringVar(&readArchiveDir, "archive", "", "save frames and transcripts under this directory")
	readCmd.Flags().IntVar(&readMaxIterations, "max-iterations", 0, "abort after this many loop iterations (0 = unbounded)")

	rootCmd.AddCommand(readCmd)
}
