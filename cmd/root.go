package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/csidc/landwatch/internal/analysis"
	"github.com/csidc/landwatch/internal/archive"
	"github.com/csidc/landwatch/internal/config"
	"github.com/csidc/landwatch/internal/fetcher"
	"github.com/csidc/landwatch/internal/images"
	"github.com/csidc/landwatch/internal/landapi"
	"github.com/csidc/landwatch/internal/present"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

// app carries the configuration loaded before every command runs
type app struct {
	cfg     *config.Config
	baseURL string
	output  string
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "landwatch",
		Short: "Industrial land compliance monitoring client",
		Long: `LandWatch compares a reference and a current satellite image of an industrial
plot through the LandWatch analysis service and presents the detected changes.

It also reads the plot registry, compliance alerts and dashboard statistics,
and downloads the service's PDF reports and CSV exports.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if a.baseURL != "" {
				cfg.API.BaseURL = a.baseURL
			}
			if err := config.InitLogger(cfg.Log); err != nil {
				return err
			}
			a.cfg = cfg
			slog.Debug("Configuration loaded", "base_url", cfg.API.BaseURL, "timeout", cfg.API.Timeout())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "LandWatch service address (overrides api.base_url)")
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "Output format (text, json or yaml)")

	cmd.AddCommand(newAnalyzeCmd(a))
	cmd.AddCommand(newCompareCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newPlotsCmd(a))
	cmd.AddCommand(newAlertsCmd(a))
	cmd.AddCommand(newAreasCmd(a))
	cmd.AddCommand(newStatsCmd(a))
	cmd.AddCommand(newAnalysesCmd(a))
	cmd.AddCommand(newReportCmd(a))
	cmd.AddCommand(newExportCmd(a))

	return cmd
}

func (a *app) format() (present.Format, error) {
	return present.ParseFormat(a.output)
}

func (a *app) fetcher() *fetcher.HTTPFetcher {
	return fetcher.New(fetcher.Options{
		Timeout:    a.cfg.API.Timeout(),
		MaxRetries: a.cfg.API.MaxRetries,
		RatePerSec: a.cfg.API.RatePerSec,
	})
}

func (a *app) apiClient() (*landapi.Client, error) {
	if err := a.cfg.Validate("cli"); err != nil {
		return nil, err
	}
	return landapi.NewClient(a.cfg.API.BaseURL, a.fetcher()), nil
}

func (a *app) analyzer() (*analysis.Client, error) {
	if err := a.cfg.Validate("cli"); err != nil {
		return nil, err
	}
	return analysis.NewClient(a.cfg.API.BaseURL, a.cfg.API.Timeout()), nil
}

func (a *app) previews() (*images.DiskPreviews, error) {
	return images.NewDiskPreviews(a.cfg.Preview.Dir)
}

// archiveSink connects to the configured bucket
func (a *app) archiveSink(ctx context.Context) (archive.Sink, error) {
	if err := a.cfg.Validate("archive"); err != nil {
		return nil, err
	}
	ac := a.cfg.Archive
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	sink, err := archive.NewMinioSink(ctx, archive.MinioOptions{
		Endpoint:  ac.Endpoint,
		Region:    ac.Region,
		Bucket:    ac.Bucket,
		AccessKey: ac.AccessKey,
		SecretKey: ac.SecretKey,
		UseSSL:    ac.UseSSL,
		Prefix:    ac.Prefix,
	})
	if err != nil {
		return nil, eris.Wrap(err, "archive")
	}
	return sink, nil
}
