package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vincentngwk/GIT-ML-DS/internal/analysis"
	"github.com/vincentngwk/GIT-ML-DS/internal/dataset"
	"github.com/vincentngwk/GIT-ML-DS/internal/parser"
	"github.com/vincentngwk/GIT-ML-DS/internal/utils"
	"github.com/vincentngwk/GIT-ML-DS/internal/widget"
)

var (
	prFormat      string
	prOutputPath  string
	prOutputDir   string
	prSampleRows  int
	prMaxRows     int
	prExplorative bool
	prSheetName   string
	prDecimal     string
	prThousands   string
	prOutlierThr  float64
	prQuiet       bool
)

// formats maps CLI format names to renderers and file extensions.
var formats = map[string]struct{ renderer, ext string }{
	"markdown": {"markdown", ".md"},
	"md":       {"markdown", ".md"},
	"html":     {"page", ".html"},
	"json":     {"json", ".json"},
}

var profileCmd = &cobra.Command{
	Use:   "profile <files...>",
	Short: "Profile CSV/TSV/XLSX files and print or save the reports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if prOutputPath != "" && len(files) > 1 {
			return fmt.Errorf("--output takes a single input; use --output-dir for %d files", len(files))
		}
		fm, ok := formats[strings.ToLower(prFormat)]
		if !ok {
			return fmt.Errorf("unsupported --format: %s (use markdown|html|json)", prFormat)
		}
		rdr, err := widget.Get(fm.renderer)
		if err != nil {
			return err
		}

		opt := analysisOptions(currentConfig())
		if cmd.Flags().Changed("explorative") {
			opt.Explorative = prExplorative
		}
		if cmd.Flags().Changed("max-rows") {
			opt.MaxRows = prMaxRows
		}
		if prSampleRows > 0 {
			opt.SampleRows = prSampleRows
		}
		if prOutlierThr > 0 {
			opt.OutlierThreshold = prOutlierThr
		}
		popt := parser.Options{Sheet: prSheetName}
		if popt.Number, err = numberFormat(prDecimal, prThousands); err != nil {
			return err
		}

		out, progress := cmd.OutOrStdout(), cmd.ErrOrStderr()
		total := len(files)
		for i, path := range files {
			if !prQuiet {
				fmt.Fprintf(progress, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := parser.ParseFile(path, popt)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			rep, err := analysis.Profile(cmd.Context(), ds, opt)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			view, err := rdr.Render(rep)
			if err != nil {
				return fmt.Errorf("%s: render report: %w", path, err)
			}

			dest := prOutputPath
			if prOutputDir != "" {
				base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				dest = filepath.Join(prOutputDir, base+".profile"+fm.ext)
			}
			if dest == "" {
				fmt.Fprintln(out, view.String())
				continue
			}
			if err := utils.SafeWriteFile(dest, view.Body); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if !prQuiet {
				fmt.Fprintf(progress, "✓ Wrote profile of %s (%d rows × %d columns) to %s\n", filepath.Base(path), rep.Rows, rep.Variables(), dest)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&prFormat, "format", "f", "markdown", "report format: markdown|html|json")
	profileCmd.Flags().StringVarP(&prOutputPath, "output", "o", "", "write the report to this file")
	profileCmd.Flags().StringVar(&prOutputDir, "output-dir", "", "write one <name>.profile.<ext> per input into this directory")
	profileCmd.Flags().IntVar(&prSampleRows, "sample-rows", 0, "number of head/tail rows in the report (default from config)")
	profileCmd.Flags().IntVar(&prMaxRows, "max-rows", 100000, "maximum rows to profile (0 = unlimited)")
	profileCmd.Flags().BoolVar(&prExplorative, "explorative", true, "include Spearman correlations, interactions and duplicate rows")
	profileCmd.Flags().StringVar(&prSheetName, "sheet-name", "", "XLSX: sheet name to profile (default first sheet)")
	profileCmd.Flags().StringVar(&prDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	profileCmd.Flags().StringVar(&prThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	profileCmd.Flags().Float64Var(&prOutlierThr, "outlier-threshold", 0, "robust |z| threshold for outliers (MAD-based)")
	profileCmd.Flags().BoolVarP(&prQuiet, "quiet", "q", false, "suppress progress output")
}

// expandInputs resolves globs and literal paths, dropping duplicates.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func numberFormat(decimal, thousands string) (dataset.NumberFormat, error) {
	var nf dataset.NumberFormat
	switch strings.ToLower(strings.TrimSpace(decimal)) {
	case ",", "comma":
		nf.Decimal = ','
	case ".", "dot":
		nf.Decimal = '.'
	case "":
	default:
		return nf, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", decimal)
	}
	switch strings.ToLower(thousands) {
	case ",":
		nf.Thousands = ','
	case ".":
		nf.Thousands = '.'
	case "space", " ":
		nf.Thousands = ' '
	case "":
	default:
		return nf, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", thousands)
	}
	return nf, nil
}
