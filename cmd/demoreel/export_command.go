package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"demoreel/internal/deps"
	"demoreel/internal/export"
	"demoreel/internal/logging"
	"demoreel/internal/recorder"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		demoPath      string
		clipSpecs     []string
		outputDir     string
		resolution    string
		speed         float64
		montage       bool
		fadeSeconds   float64
		tickRate      int
		intro         bool
		mapLabel      string
		introDuration float64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Record clips from a demo and encode them",
		Long: `Export replays the demo in the game, captures each requested tick range,
and encodes the captures into video clips, optionally stitched into a montage.

Clips are given as start:end tick ranges with an optional spectate target:

  demoreel export --demo match.dem --clip 1000:3000 --clip "9000:11000:s1mple"

A target starting with '#' is treated as a player slot instead of a name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store := ctx.openSettings()
			if store != nil {
				defer store.Close()
			}
			applySettingsOverrides(cfg, store)

			statuses := deps.Check(deps.Requirements(cfg))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s (run `demoreel deps` for details)",
					strings.Join(missing, ", "))
			}

			clips, err := parseClipSpecs(clipSpecs)
			if err != nil {
				return err
			}

			sessionID := uuid.NewString()[:8]
			logger, logPath, err := logging.NewSession(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir, sessionID)
			if err != nil {
				return fmt.Errorf("open session log: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s (log: %s)\n", sessionID, logPath)

			coordinator := export.NewCoordinator(cfg,
				export.WithLogger(logger),
				export.WithObserver(newProgressPrinter(out)),
			)

			result := coordinator.ExportClips(cmd.Context(), export.Options{
				DemoPath:    demoPath,
				Clips:       clips,
				OutputDir:   outputDir,
				Resolution:  resolution,
				Speed:       speed,
				Montage:     montage,
				FadeSeconds: fadeSeconds,
				TickRate:    tickRate,
				Intro: recorder.IntroSpec{
					Enabled:  intro,
					MapLabel: mapLabel,
					Duration: time.Duration(introDuration * float64(time.Second)),
				},
			})
			if !result.Success {
				return errors.New(result.Err)
			}

			rows := make([][]string, 0, len(result.Clips)+1)
			for i, clip := range result.Clips {
				rows = append(rows, []string{fmt.Sprintf("clip %d", i+1), clip})
			}
			if result.Montage != "" {
				rows = append(rows, []string{"montage", result.Montage})
			}
			fmt.Fprintln(out, renderTable([]string{"Output", "Path"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&demoPath, "demo", "", "Path to the demo file to replay")
	cmd.Flags().StringArrayVar(&clipSpecs, "clip", nil, "Clip as start:end[:player], repeatable")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (defaults to the configured one)")
	cmd.Flags().StringVar(&resolution, "resolution", "1080p", "Capture resolution preset (480p/720p/1080p/1440p/4k)")
	cmd.Flags().Float64Var(&speed, "speed", 1, "Demo playback speed during capture (0 < speed <= 10)")
	cmd.Flags().BoolVar(&montage, "montage", false, "Stitch the processed clips into one video")
	cmd.Flags().Float64Var(&fadeSeconds, "fade", 0.5, "Crossfade length between montage clips in seconds (0 concatenates)")
	cmd.Flags().IntVar(&tickRate, "tick-rate", 0, "Demo tick rate (defaults to the configured one)")
	cmd.Flags().BoolVar(&intro, "intro", false, "Record a map-overview intro before the first clip")
	cmd.Flags().StringVar(&mapLabel, "map", "", "Map label rendered on the intro (e.g. de_mirage)")
	cmd.Flags().Float64Var(&introDuration, "intro-duration", 5, "Intro length in seconds")
	_ = cmd.MarkFlagRequired("demo")
	_ = cmd.MarkFlagRequired("clip")

	return cmd
}

// parseClipSpecs turns start:end[:player] strings into clips. A player field
// starting with '#' selects a spectator slot rather than a name.
func parseClipSpecs(specs []string) ([]recorder.Clip, error) {
	clips := make([]recorder.Clip, 0, len(specs))
	for i, spec := range specs {
		parts := strings.SplitN(strings.TrimSpace(spec), ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("clip %q: expected start:end[:player]", spec)
		}
		start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("clip %q: bad start tick: %w", spec, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("clip %q: bad end tick: %w", spec, err)
		}

		clip := recorder.Clip{
			ID:        fmt.Sprintf("clip_%02d", i+1),
			StartTick: start,
			EndTick:   end,
		}
		if len(parts) == 3 {
			target := strings.TrimSpace(parts[2])
			if slotText, ok := strings.CutPrefix(target, "#"); ok {
				slot, err := strconv.Atoi(slotText)
				if err != nil || slot <= 0 {
					return nil, fmt.Errorf("clip %q: bad player slot %q", spec, target)
				}
				clip.PlayerSlot = slot
			} else {
				clip.PlayerName = target
			}
		}
		clips = append(clips, clip)
	}
	return clips, nil
}
