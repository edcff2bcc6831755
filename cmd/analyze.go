// =============================================================================
// Vendor Price Comparison - Analyze Command
// =============================================================================
//
// This file defines the 'analyze' command, which compares quotation files
// and writes the comparison report.
//
// COMMAND USAGE:
//   pricecompare analyze [FILE...] [flags]
//
// FLAGS:
//   --input-dir        : Directory scanned when no files are given
//   --output           : Report path (default: output_dir + report file name)
//   --no-report        : Do not write the XLSX report
//   --format           : Console output, one of table, json, yaml
//   --duplicate-policy : keep_first or keep_last
//   --min-vendors      : Usable quotations required
//
// PROCESSING PIPELINE:
//   1. Collect the files, in the order given (or lexical order of the
//      input directory); this order breaks price ties
//   2. Parse every file concurrently
//   3. Build vendors, reconcile, order
//   4. Print the result, write the report and the warnings log
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/vendor-price-comparison/internal/analysis"
	"github.com/ginjaninja78/vendor-price-comparison/internal/loader"
	"github.com/ginjaninja78/vendor-price-comparison/internal/report"
	"github.com/ginjaninja78/vendor-price-comparison/internal/types"
	"github.com/ginjaninja78/vendor-price-comparison/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	inputDir        string
	outputPath      string
	noReport        bool
	outputFormat    string
	duplicatePolicy string
	minVendors      int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [FILE...]",
	Short: "Compare vendor quotations and report the lowest price per item",
	Long: `The analyze command reads one quotation file per vendor (xlsx or csv),
detects the item, price, quantity and subtotal columns of each, and finds the
cheapest vendor for every item.

The order of the files matters: when two vendors quote the same lowest price,
the vendor given first wins. Without file arguments the input directory is
scanned and its files are used in name order.

A vendor that cannot be read is skipped with a warning; the run fails only
when fewer than --min-vendors quotations remain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&inputDir, "input-dir", "", "Directory to scan when no files are given (default from config)")
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Report path (default: output_dir/report.file_name_format)")
	analyzeCmd.Flags().BoolVar(&noReport, "no-report", false, "Do not write the XLSX report")
	analyzeCmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "Console output format: table, json or yaml")
	analyzeCmd.Flags().StringVar(&duplicatePolicy, "duplicate-policy", "", "keep_first or keep_last (default from config)")
	analyzeCmd.Flags().IntVar(&minVendors, "min-vendors", 0, "Usable quotations required (default from config)")
}

// =============================================================================
// MAIN ANALYSIS FUNCTION
// =============================================================================

func runAnalyze(cmd *cobra.Command, args []string) error {
	render, ok := renderers[outputFormat]
	if !ok {
		return eris.Errorf("unknown format %q (want table, json or yaml)", outputFormat)
	}

	if duplicatePolicy != "" {
		cfg.Analysis.DuplicatePolicy = duplicatePolicy
	}
	if minVendors > 0 {
		cfg.Analysis.MinVendors = minVendors
	}
	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := analysis.OptionsFromConfig(cfg.Analysis)
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.Server.AllowedExtensions)

	// =========================================================================
	// STEP 1: COLLECT FILES
	// =========================================================================

	files := args
	if len(files) == 0 {
		files, err = fm.DiscoverInputFiles()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return eris.Errorf("no quotation files found in %s", cfg.InputDir)
		}
	}
	zap.L().Info("analyze: starting", zap.Int("files", len(files)))

	// =========================================================================
	// STEP 2: PARSE AND ANALYZE
	// =========================================================================

	inputs, err := loader.New(cfg.CSV, 0).Load(cmd.Context(), loader.FromPaths(files))
	if err != nil {
		return err
	}

	res, err := analysis.New(opts).Run(inputs)
	if err != nil {
		var runErr *analysis.RunError
		if errors.As(err, &runErr) {
			errOut := cmd.ErrOrStderr()
			for _, w := range runErr.Warnings {
				fmt.Fprintln(errOut, "  "+w.String())
			}
			if !noReport {
				writeWarningLog(cmd.OutOrStdout(), fm, runErr.Warnings)
			}
		}
		return err
	}

	// =========================================================================
	// STEP 3: OUTPUT
	// =========================================================================

	out := cmd.OutOrStdout()
	if err := render(out, res); err != nil {
		return err
	}

	if noReport {
		return nil
	}

	if err := fm.EnsureDirectories(); err != nil {
		return err
	}
	path := outputPath
	if path == "" {
		name := utils.GenerateOutputFileName(cfg.Report.FileNameFormat, map[string]string{"id": res.ID})
		path = filepath.Join(cfg.OutputDir, name)
	}
	if err := report.WriteFile(path, res); err != nil {
		return err
	}
	zap.L().Info("analyze: report written", zap.String("path", path))
	if outputFormat == "table" {
		fmt.Fprintf(out, "\nReport written to %s\n", path)
	}

	writeWarningLog(out, fm, res.Warnings)
	return nil
}

// writeWarningLog is best effort; a failure is logged, not returned.
func writeWarningLog(out io.Writer, fm *utils.FileManager, warnings []types.Warning) {
	if len(warnings) == 0 {
		return
	}
	if err := fm.EnsureDirectories(); err != nil {
		zap.L().Warn("analyze: warnings log not written", zap.Error(err))
		return
	}
	path, err := utils.WriteWarningLog(warnings, fm.OutputDir)
	if err != nil {
		zap.L().Warn("analyze: warnings log not written", zap.Error(err))
		return
	}
	if outputFormat == "table" {
		fmt.Fprintf(out, "Warnings written to %s\n", path)
	}
}

// =============================================================================
// RENDERING
// =============================================================================

var renderers = map[string]func(io.Writer, *analysis.Result) error{
	"table": renderTable,
	"json":  renderJSON,
	"yaml":  renderYAML,
}

func renderJSON(out io.Writer, res *analysis.Result) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(res), "encode json")
}

func renderYAML(out io.Writer, res *analysis.Result) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return eris.Wrap(err, "encode yaml")
	}
	return eris.Wrap(enc.Close(), "encode yaml")
}

func renderTable(out io.Writer, res *analysis.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "SERIAL\tITEM\tMIN PRICE\tVENDOR\tQTY\tSUBTOTAL")
	_, _ = fmt.Fprintln(w, "------\t----\t---------\t------\t---\t--------")
	for _, it := range res.Items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			it.Serial, it.DisplayItem, num(it.MinPrice), it.WinningVendor, num(it.Quantity), num(it.Subtotal))
	}
	_, _ = fmt.Fprintf(w, "\t\t\t\tTOTAL\t%s\n", num(res.Total()))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "VENDOR\tITEMS WON\tTOTAL")
	_, _ = fmt.Fprintln(w, "------\t---------\t-----")
	for _, v := range res.Wins {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", v.Vendor, len(v.Items), num(v.Total()))
	}

	if len(res.Warnings) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "Warnings (%d):\n", len(res.Warnings))
		for _, warn := range res.Warnings {
			_, _ = fmt.Fprintf(w, "  %s\n", warn.String())
		}
	}
	return eris.Wrap(w.Flush(), "render table")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
