// reportgen is the one-shot collaborator: it runs the same normalization
// and assembly engines as the server against a local extract file and
// writes the workbook to disk.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"daybill/internal/domain"
	"daybill/internal/ingest"
	"daybill/internal/logging"
	"daybill/internal/report"
)

var (
	filePath  string
	dateStr   string
	outPath   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "reportgen",
	Short: "Daily billing workbook generator (TIS-620 CSV → xlsx)",
	Long:  "Normalizes a daily HIS billing extract and writes the multi-sheet report workbook for one day.",
	RunE:  runGenerate,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&filePath, "file", "", "Path to the billing extract CSV (required)")
	f.StringVar(&dateStr, "date", "", "Day to report, YYYY-MM-DD (default: latest day in the extract)")
	f.StringVar(&outPath, "out", "", "Output path (default: Report_YYYYMMDD.xlsx)")
	f.StringVar(&logLevel, "log-level", "info", "Log level")
	f.StringVar(&logFormat, "log-format", "console", "Log format: console or json")
	_ = rootCmd.MarkFlagRequired("file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(logLevel, logFormat)

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read extract: %w", err)
	}

	set, err := ingest.Normalize(raw)
	if err != nil {
		return err
	}
	if set.Empty() {
		return domain.ErrEmptyExtract
	}
	for _, w := range set.Warnings {
		log.Warn().Str("warning", w).Msg("extract schema anomaly")
	}

	day := set.MaxDate
	if dateStr != "" {
		day, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid --date: must be YYYY-MM-DD")
		}
		if day.Before(set.MinDate) || day.After(set.MaxDate) {
			return fmt.Errorf("%w: extract covers %s to %s", domain.ErrDateOutOfRange,
				set.MinDate.Format("2006-01-02"), set.MaxDate.Format("2006-01-02"))
		}
	}

	daySet := &domain.RecordSet{Records: set.ForDay(day), Columns: set.Columns}
	data, err := report.BuildWorkbook(daySet, day)
	if err != nil {
		return fmt.Errorf("assemble report: %w", err)
	}

	out := outPath
	if out == "" {
		out = "Report_" + day.Format("20060102") + ".xlsx"
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	log.Info().
		Str("date", day.Format("2006-01-02")).
		Int("rows", len(daySet.Records)).
		Str("out", out).
		Msg("report written")
	return nil
}
