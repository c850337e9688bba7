package cmd

import (
	"fmt"

	"github.com/csidc/landwatch/internal/landapi"
	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "report <result_id>",
		Short:   "Download the PDF report of an analysis",
		Args:    cobra.ExactArgs(1),
		Example: `  landwatch report 3f2a9c1e --dir ./reports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			path, err := client.DownloadReport(cmd.Context(), args[0], dir)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to save the report in")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:       "export plots|alerts",
		Short:     "Download a CSV export",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(landapi.ExportPlots), string(landapi.ExportAlerts)},
		Example: `  landwatch export plots
  landwatch export alerts --dir ./exports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			export, err := landapi.ParseExport(args[0])
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			path, err := client.DownloadExport(cmd.Context(), export, dir)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to save the export in")
	return cmd
}
