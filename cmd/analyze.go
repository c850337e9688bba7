package cmd

import (
	"context"
	"log/slog"

	"github.com/csidc/landwatch/internal/archive"
	"github.com/csidc/landwatch/internal/images"
	"github.com/csidc/landwatch/internal/models"
	"github.com/csidc/landwatch/internal/present"
	"github.com/csidc/landwatch/internal/session"
	"github.com/csidc/landwatch/internal/staging"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		reference string
		current   string
		outDir    string
		report    bool
		toArchive bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare a reference and a current image",
		Long: `Submits a reference and a current image of the same plot to the analysis
service and prints the detected changes.

The decoded artifacts (overlay, heatmap, difference and the two annotated
images) can be written to a directory, the PDF report downloaded next to
them, and everything archived to the configured object storage bucket.`,
		Example: `  # Print the summary
  landwatch analyze --reference plot_2023.png --current plot_2025.jpg

  # Write artifacts and the PDF report to ./out as JSON output
  landwatch analyze --reference a.png --current b.png --out ./out --report -o json

  # Archive the artifacts to the configured bucket
  landwatch analyze --reference a.png --current b.png --archive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			analyzer, err := a.analyzer()
			if err != nil {
				return err
			}

			ctrl := session.New(analyzer, images.NewMemoryPreviews())
			defer ctrl.Close()

			if err := stageFiles(ctrl, reference, current); err != nil {
				return err
			}

			result, err := runAnalysis(cmd.Context(), ctrl)
			if err != nil {
				return err
			}

			if err := present.Render(cmd.OutOrStdout(), format, result); err != nil {
				return err
			}

			if outDir != "" {
				sink, err := archive.NewDirSink(outDir)
				if err != nil {
					return err
				}
				written, err := archive.SaveResult(cmd.Context(), sink, result)
				if err != nil {
					return err
				}
				slog.Info("Artifacts written", "dir", outDir, "files", len(written))
			}

			if report {
				dir := outDir
				if dir == "" {
					dir = "."
				}
				client, err := a.apiClient()
				if err != nil {
					return err
				}
				path, err := client.DownloadReport(cmd.Context(), result.ResultID, dir)
				if err != nil {
					return err
				}
				slog.Info("Report saved", "path", path)
			}

			if toArchive || a.cfg.Archive.Enabled {
				sink, err := a.archiveSink(cmd.Context())
				if err != nil {
					return err
				}
				locations, err := archive.SaveResult(cmd.Context(), sink, result)
				if err != nil {
					return err
				}
				for _, loc := range locations {
					slog.Info("Archived", "location", loc)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Reference (before) image, JPG or PNG")
	cmd.Flags().StringVarP(&current, "current", "c", "", "Current (after) image, JPG or PNG")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write the decoded artifacts to")
	cmd.Flags().BoolVar(&report, "report", false, "Download the PDF report of the result")
	cmd.Flags().BoolVar(&toArchive, "archive", false, "Upload artifacts and summary to the configured bucket")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("current")

	return cmd
}

// stageFiles reads both images from disk into their slots
func stageFiles(ctrl *session.Controller, reference, current string) error {
	paths := map[models.Role]string{
		models.RoleReference: reference,
		models.RoleCurrent:   current,
	}
	for _, role := range models.Roles {
		path := paths[role]
		if path == "" {
			continue
		}
		file, err := staging.FileFromPath(path)
		if err != nil {
			return err
		}
		if err := ctrl.Stage(role, file); err != nil {
			return eris.Wrapf(err, "%s image", role)
		}
	}
	return nil
}

// runAnalysis submits the staged pair and waits for the outcome
func runAnalysis(ctx context.Context, ctrl *session.Controller) (*models.AnalysisResult, error) {
	if !ctrl.Submit(ctx) {
		return nil, eris.Errorf("cannot submit in phase %s: both images are required", ctrl.Phase())
	}
	if err := ctrl.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "analysis interrupted")
	}

	snap := ctrl.Snapshot()
	if snap.Phase == session.Failed {
		return nil, eris.New(snap.Error)
	}
	result, ok := ctrl.Result()
	if !ok {
		return nil, session.ErrNoResult
	}
	return result, nil
}
