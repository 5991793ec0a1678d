package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ladybugs/bookbot/internal/camera"
	"github.com/ladybugs/bookbot/internal/config"
	"github.com/ladybugs/bookbot/internal/vision"
)

var (
	pageImage  string
	pageHalf   string
	pageMode   string
	pageSilent bool
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Read a single page without moving the arm",
	Long: `Classify and read one page, from an image file or a single camera
frame. Useful for checking the camera angle and prompt quality before
committing to a full session.

Examples:
  bookbot page --image spread.jpg
  bookbot page --image spread.jpg --half left
  bookbot page --mode skim --silent`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.Reading.LogLevel),
		}))

		mode, err := parseReadMode(pageMode)
		if err != nil {
			return err
		}
		var half vision.PageHalf
		switch pageHalf {
		case "", string(vision.HalfWhole):
			half = vision.HalfWhole
		case string(vision.HalfLeft):
			half = vision.HalfLeft
		case string(vision.HalfRight):
			half = vision.HalfRight
		default:
			return fmt.Errorf("unknown page half %q (want left, right or whole)", pageHalf)
		}

		var frame []byte
		if pageImage != "" {
			frame, err = os.ReadFile(pageImage)
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
		} else {
			src, err := buildSource(cfg, "", logger)
			if err != nil {
				return err
			}
			err = camera.WithSource(src, func(s camera.Source) error {
				frame, err = s.Grab()
				return err
			})
			if err != nil {
				return err
			}
		}

		vis, err := buildVision(cfg, logger)
		if err != nil {
			return err
		}

		pageType, err := vis.ClassifyPage(ctx, frame)
		if err != nil {
			return err
		}
		logger.Info("page classified", "type", pageType)
		if pageType.Skippable() {
			fmt.Printf("page type %s is not read aloud\n", pageType)
			return nil
		}

		text, err := vis.ReadPage(ctx, frame, vision.ReadOptions{Half: half, Mode: mode})
		if err != nil {
			return err
		}
		fmt.Println(text)

		if !pageSilent {
			nar, err := buildNarrator(cfg, false, logger)
			if err != nil {
				return err
			}
			if err := nar.Speak(ctx, text); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	pageCmd.Flags().StringVar(&pageImage, "image", "", "read this image file instead of grabbing a camera frame")
	pageCmd.Flags().StringVar(&pageHalf, "half", "", "page half: left, right or whole (default whole)")
	pageCmd.Flags().StringVar(&pageMode, "mode", "", "reading mode: verbose or skim")
	pageCmd.Flags().BoolVar(&pageSilent, "silent", false, "print the text without narrating it")

	rootCmd.AddCommand(pageCmd)
}
