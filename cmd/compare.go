package cmd

import (
	"log/slog"

	"github.com/csidc/landwatch/internal/archive"
	"github.com/csidc/landwatch/internal/session"
	"github.com/csidc/landwatch/internal/tui"
	"github.com/spf13/cobra"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		reference string
		current   string
		outDir    string
		wait      bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Interactive before/after comparison in the terminal",
		Long: `Opens a full-screen terminal view of an analysis session.

The analysis starts immediately unless --wait is given. Once the result is in,
the visualization tabs are switched with tab or 1-4 and the reveal slider is
moved with the arrow keys or by dragging it with the mouse.`,
		Example: `  landwatch compare --reference plot_2023.png --current plot_2025.jpg

  # Keep the artifacts after quitting
  landwatch compare -r a.png -c b.png --out ./out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, err := a.analyzer()
			if err != nil {
				return err
			}
			previews, err := a.previews()
			if err != nil {
				return err
			}

			ctrl := session.New(analyzer, previews)
			defer ctrl.Close()

			if err := stageFiles(ctrl, reference, current); err != nil {
				return err
			}

			snap, err := tui.Run(cmd.Context(), ctrl, !wait)
			if err != nil {
				return err
			}

			result, ok := ctrl.Result()
			if !ok || outDir == "" {
				slog.Debug("Comparison closed", "phase", snap.Phase)
				return nil
			}
			sink, err := archive.NewDirSink(outDir)
			if err != nil {
				return err
			}
			written, err := archive.SaveResult(cmd.Context(), sink, result)
			if err != nil {
				return err
			}
			slog.Info("Artifacts written", "dir", outDir, "files", len(written))
			return nil
		},
	}

	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Reference (before) image, JPG or PNG")
	cmd.Flags().StringVarP(&current, "current", "c", "", "Current (after) image, JPG or PNG")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write the artifacts to on exit")
	cmd.Flags().BoolVar(&wait, "wait", false, "Do not submit until enter is pressed")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("current")

	return cmd
}
